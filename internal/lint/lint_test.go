package lint_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/lint"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/parse"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noTaskNamedFooRule is a minimal stand-in lint rule used only to exercise
// the traversal framework; real rule definitions are out of scope per
// spec.md §1.
type noTaskNamedFooRule struct {
	lint.BaseVisitor
	entries, exits int
}

const noTaskNamedFooID = "NoTaskNamedFoo"

func (r *noTaskNamedFooRule) ID() string          { return noTaskNamedFooID }
func (r *noTaskNamedFooRule) Description() string { return "tasks must not be named 'foo'" }
func (r *noTaskNamedFooRule) Tags() []lint.Tag    { return []lint.Tag{lint.TagStyle} }
func (r *noTaskNamedFooRule) ExceptableNodes() []token.SyntaxKind {
	return []token.SyntaxKind{token.NodeTaskDefinition, token.NodeRoot}
}

func (r *noTaskNamedFooRule) TaskDefinition(s *lint.State, reason lint.VisitReason, node cst.Red) {
	if reason == lint.Exit {
		r.exits++
		return
	}
	r.entries++
	ident, ok := node.FirstChildOfKind(token.Ident)
	if !ok || ident.Text() != "foo" {
		return
	}
	sp := ident.Span()
	diag := wdlerrors.New("task must not be named 'foo'", wdlerrors.Span{Start: sp.Start, Len: sp.Len}).WithRule(noTaskNamedFooID)
	s.Diagnostics.ExceptableAdd(diag, node, r.ExceptableNodes())
}

func parseRoot(t *testing.T, src string) cst.Red {
	t.Helper()
	res := parse.Parse([]byte(src))
	require.NotNil(t, res.Tree)
	return cst.NewRoot(res.Tree)
}

func TestRun_FlagsMatchingTask(t *testing.T) {
	src := "version 1.1\ntask foo {\n  command <<< echo hi >>>\n}\n"
	root := parseRoot(t, src)

	rule := &noTaskNamedFooRule{}
	diags := lint.Run(root, []lint.Rule{rule})

	require.Len(t, diags, 1)
	assert.Equal(t, noTaskNamedFooID, diags[0].RuleID)
	assert.Equal(t, 1, rule.entries)
	assert.Equal(t, 1, rule.exits)
}

func TestRun_DoesNotFlagOtherNames(t *testing.T) {
	src := "version 1.1\ntask greet {\n  command <<< echo hi >>>\n}\n"
	root := parseRoot(t, src)

	rule := &noTaskNamedFooRule{}
	diags := lint.Run(root, []lint.Rule{rule})

	assert.Empty(t, diags)
}

func TestExceptableAdd_SuppressesWithinExceptedSubtree(t *testing.T) {
	src := "version 1.1\n#@ except: NoTaskNamedFoo\ntask foo {\n  command <<< echo hi >>>\n}\n"
	root := parseRoot(t, src)

	rule := &noTaskNamedFooRule{}
	diags := lint.Run(root, []lint.Rule{rule})

	assert.Empty(t, diags, "leading `#@ except:` comment on the task should suppress the rule")
}

func TestExceptableAdd_WildcardSuppresses(t *testing.T) {
	src := "version 1.1\n#@ except: *\ntask foo {\n  command <<< echo hi >>>\n}\n"
	root := parseRoot(t, src)

	rule := &noTaskNamedFooRule{}
	diags := lint.Run(root, []lint.Rule{rule})

	assert.Empty(t, diags)
}

func TestExceptableAdd_UnrelatedDirectiveDoesNotSuppress(t *testing.T) {
	src := "version 1.1\n#@ except: SomeOtherRule\ntask foo {\n  command <<< echo hi >>>\n}\n"
	root := parseRoot(t, src)

	rule := &noTaskNamedFooRule{}
	diags := lint.Run(root, []lint.Rule{rule})

	require.Len(t, diags, 1)
}
