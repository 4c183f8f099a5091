package override_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/override"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) override.Override {
	t.Helper()
	o, err := override.Parse(s)
	require.NoError(t, err)
	return o
}

func TestParseApply_SimpleDottedPath(t *testing.T) {
	o := mustParse(t, "workflow.task.x=42")
	out, err := override.Apply(nil, []override.Override{o})
	require.NoError(t, err)

	expected := map[string]any{
		"workflow": map[string]any{
			"task": map[string]any{
				"x": int64(42),
			},
		},
	}
	assert.Equal(t, expected, out)
}

func TestParseValue_QuotedString(t *testing.T) {
	o := mustParse(t, `k="foo"`)
	assert.Equal(t, "foo", o.Value.ToJSON())
}

func TestParseValue_FlatList(t *testing.T) {
	o := mustParse(t, "k=foo,bar")
	assert.Equal(t, []any{"foo", "bar"}, o.Value.ToJSON())
}

func TestParseValue_SingleNestedArray(t *testing.T) {
	o := mustParse(t, "k=[[1,2],[3,4]]")
	assert.Equal(t, []any{
		[]any{int64(1), int64(2)},
		[]any{int64(3), int64(4)},
	}, o.Value.ToJSON())
}

func TestParseValue_ArrayListOfArrays(t *testing.T) {
	o := mustParse(t, "k=[[1,2],[3,4]],[[5,6]]")
	assert.Equal(t, []any{
		[]any{
			[]any{int64(1), int64(2)},
			[]any{int64(3), int64(4)},
		},
		[]any{
			[]any{int64(5), int64(6)},
		},
	}, o.Value.ToJSON())
}

func TestParseValue_NullAndNone(t *testing.T) {
	n1 := mustParse(t, "k=null")
	n2 := mustParse(t, "k=None")
	assert.Nil(t, n1.Value.ToJSON())
	assert.Nil(t, n2.Value.ToJSON())
}

func TestParseValue_IntFloatBool(t *testing.T) {
	assert.Equal(t, int64(42), mustParse(t, "k=42").Value.ToJSON())
	assert.Equal(t, 4.2, mustParse(t, "k=4.2").Value.ToJSON())
	assert.Equal(t, true, mustParse(t, "k=true").Value.ToJSON())
	assert.Equal(t, false, mustParse(t, "k=false").Value.ToJSON())
}

func TestParseValue_UnquotedStringFallback(t *testing.T) {
	assert.Equal(t, "hello-world", mustParse(t, "k=hello-world").Value.ToJSON())
}

func TestParsePath_EmptyComponentRejected(t *testing.T) {
	_, err := override.Parse("workflow..param=1")
	assert.ErrorIs(t, err, override.ErrEmptyPathComponent)
}

func TestParse_InvalidFormatRejected(t *testing.T) {
	_, err := override.Parse("no-equals-sign")
	assert.ErrorIs(t, err, override.ErrInvalidFormat)
}

func TestParse_EmptyKeyRejected(t *testing.T) {
	_, err := override.Parse("=1")
	assert.ErrorIs(t, err, override.ErrEmptyKey)
}

func TestApply_PathConflictFails(t *testing.T) {
	a := mustParse(t, "a=1")
	ab := mustParse(t, "a.b=2")
	_, err := override.Apply(nil, []override.Override{a, ab})
	assert.ErrorIs(t, err, override.ErrPathConflict)
}

func TestCheckPathConflicts_NoConflictForSiblings(t *testing.T) {
	a := mustParse(t, "a.x=1")
	b := mustParse(t, "a.y=2")
	err := override.CheckPathConflicts([]override.Override{a, b})
	assert.NoError(t, err)
}

func TestApply_NullParentPromotedToObject(t *testing.T) {
	base := map[string]any{"a": nil}
	o := mustParse(t, "a.b=1")
	out, err := override.Apply(base, []override.Override{o})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": int64(1)}}, out)
}
