package value_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/value"
	"github.com/dekarrin/wdlcore/internal/wdltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceIntToFloat(t *testing.T) {
	a := wdltype.NewArena()
	s := value.NewStore()
	intT := a.Primitive(wdltype.KindInt)
	floatT := a.Primitive(wdltype.KindFloat)

	v := value.Int(42)
	out, err := value.Coerce(a, s, v, intT, floatT)
	require.NoError(t, err)
	assert.Equal(t, 42.0, out.Float)
}

func TestCoerceRoundTripIdempotent(t *testing.T) {
	a := wdltype.NewArena()
	s := value.NewStore()
	strT := a.Primitive(wdltype.KindString)
	fileT := a.Primitive(wdltype.KindFile)

	v := s.String_("/tmp/out.txt")
	once, err := value.Coerce(a, s, v, strT, fileT)
	require.NoError(t, err)
	twice, err := value.Coerce(a, s, once, fileT, fileT)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestCoerceArrayAllocatesFreshCompound(t *testing.T) {
	a := wdltype.NewArena()
	s := value.NewStore()
	intT := a.Primitive(wdltype.KindInt)
	floatT := a.Primitive(wdltype.KindFloat)
	arrInt := a.Array(intT, false, false)
	arrFloat := a.Array(floatT, false, false)

	v := s.Array([]value.Value{value.Int(1), value.Int(2)}, arrInt)
	out, err := value.Coerce(a, s, v, arrInt, arrFloat)
	require.NoError(t, err)
	assert.NotEqual(t, v.Compound, out.Compound)

	elems := s.Elements(out)
	require.Len(t, elems, 2)
	assert.Equal(t, 1.0, elems[0].Float)
}

func TestCoerceRejectsIncoercible(t *testing.T) {
	a := wdltype.NewArena()
	s := value.NewStore()
	boolT := a.Primitive(wdltype.KindBoolean)
	intT := a.Primitive(wdltype.KindInt)

	_, err := value.Coerce(a, s, value.Boolean(true), boolT, intT)
	assert.Error(t, err)
}
