package wdltype_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/wdltype"
	"github.com/stretchr/testify/assert"
)

func TestPrimitiveCoercions(t *testing.T) {
	a := wdltype.NewArena()
	intT := a.Primitive(wdltype.KindInt)
	floatT := a.Primitive(wdltype.KindFloat)
	strT := a.Primitive(wdltype.KindString)
	fileT := a.Primitive(wdltype.KindFile)
	boolT := a.Primitive(wdltype.KindBoolean)

	assert.True(t, wdltype.IsCoercibleTo(a, intT, floatT))
	assert.True(t, wdltype.IsCoercibleTo(a, intT, intT))
	assert.False(t, wdltype.IsCoercibleTo(a, floatT, intT))
	assert.True(t, wdltype.IsCoercibleTo(a, strT, fileT))
	assert.True(t, wdltype.IsCoercibleTo(a, fileT, strT))
	assert.False(t, wdltype.IsCoercibleTo(a, boolT, intT))
}

func TestNoneCoercesOnlyToOptional(t *testing.T) {
	a := wdltype.NewArena()
	noneT := a.Primitive(wdltype.KindNone)
	intT := a.Primitive(wdltype.KindInt)
	optIntT := a.OptionalPrimitive(wdltype.KindInt)

	assert.False(t, wdltype.IsCoercibleTo(a, noneT, intT))
	assert.True(t, wdltype.IsCoercibleTo(a, noneT, optIntT))
}

func TestArrayCoercionRespectsNonEmpty(t *testing.T) {
	a := wdltype.NewArena()
	intT := a.Primitive(wdltype.KindInt)
	floatT := a.Primitive(wdltype.KindFloat)

	arrInt := a.Array(intT, false, false)
	arrFloatPlus := a.Array(floatT, true, false)
	arrIntPlus := a.Array(intT, true, false)

	assert.False(t, wdltype.IsCoercibleTo(a, arrInt, arrFloatPlus), "empty-able source can't target a non-empty array")
	assert.True(t, wdltype.IsCoercibleTo(a, arrIntPlus, arrFloatPlus))
}

func TestStructToStructRequiresAllMembersCoercible(t *testing.T) {
	a := wdltype.NewArena()
	intT := a.Primitive(wdltype.KindInt)
	floatT := a.Primitive(wdltype.KindFloat)
	strT := a.Primitive(wdltype.KindString)

	s1 := a.DefineStruct("A", []wdltype.Member{{Name: "x", Type: intT}})
	s2 := a.DefineStruct("B", []wdltype.Member{{Name: "x", Type: floatT}})
	s3 := a.DefineStruct("C", []wdltype.Member{{Name: "x", Type: strT}})

	assert.True(t, wdltype.IsCoercibleTo(a, s1, s2))
	assert.False(t, wdltype.IsCoercibleTo(a, s1, s3))
}

func TestStructsEqual(t *testing.T) {
	a := wdltype.NewArena()
	b := wdltype.NewArena()
	intA := a.Primitive(wdltype.KindInt)
	intB := b.Primitive(wdltype.KindInt)

	s1 := a.DefineStruct("Foo", []wdltype.Member{{Name: "x", Type: intA}})
	s2 := b.DefineStruct("Foo", []wdltype.Member{{Name: "x", Type: intB}})

	assert.True(t, wdltype.StructsEqual(a, s1, b, s2))
}

func TestCopyStructFromRecursivelyCopiesMembers(t *testing.T) {
	src := wdltype.NewArena()
	intSrc := src.Primitive(wdltype.KindInt)
	inner := src.DefineStruct("Inner", []wdltype.Member{{Name: "v", Type: intSrc}})
	outer := src.DefineStruct("Outer", []wdltype.Member{{Name: "i", Type: inner}})
	_ = outer

	dst := wdltype.NewArena()
	copiedID, ok := dst.CopyStructFrom(src, "Outer")
	if !ok {
		t.Fatal("expected struct to be copied")
	}
	copied := dst.Get(copiedID)
	if copied.Kind != wdltype.KindStruct || len(copied.Members) != 1 {
		t.Fatalf("unexpected copied struct shape: %+v", copied)
	}
	innerCopied := dst.Get(copied.Members[0].Type)
	if innerCopied.Kind != wdltype.KindStruct || innerCopied.Name != "Inner" {
		t.Fatalf("expected nested struct to be copied too, got %+v", innerCopied)
	}
}
