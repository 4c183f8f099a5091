package ast_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/syntax/ast"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, src string) ast.Document {
	t.Helper()
	res := parse.Parse([]byte(src))
	require.NotNil(t, res.Tree)
	return ast.NewDocument(cst.NewRoot(res.Tree))
}

func TestDocument_TaskStructure(t *testing.T) {
	src := "version 1.1\ntask greet {\n  input {\n    String name\n  }\n  command <<<\n    echo ~{name}\n  >>>\n  output {\n    String greeting = name\n  }\n}\n"
	doc := parseDoc(t, src)

	vs, ok := doc.VersionStatement()
	require.True(t, ok)
	assert.Equal(t, "1.1", vs.Version())

	tasks := doc.Tasks()
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "greet", task.Name())

	in, ok := task.Input()
	require.True(t, ok)
	decls := in.Decls()
	require.Len(t, decls, 1)
	assert.Equal(t, "name", decls[0].Name())
	assert.False(t, decls[0].IsBound())

	out, ok := task.Output()
	require.True(t, ok)
	outDecls := out.Decls()
	require.Len(t, outDecls, 1)
	assert.Equal(t, "greeting", outDecls[0].Name())
	assert.True(t, outDecls[0].IsBound())

	cmd, ok := task.Command()
	require.True(t, ok)
	phs := cmd.Placeholders()
	require.Len(t, phs, 1)
	expr, ok := phs[0].Expr()
	require.True(t, ok)
	nr, ok := expr.(ast.NameRefExpr)
	require.True(t, ok)
	assert.Equal(t, "name", nr.Name())
}

func TestWorkflow_ScatterAndCall(t *testing.T) {
	src := "version 1.1\nworkflow w {\n  input {\n    Int n\n  }\n  scatter (x in range(n)) {\n    call greet { input: name = \"a\" }\n  }\n}\n"
	doc := parseDoc(t, src)

	wf, ok := doc.Workflow()
	require.True(t, ok)
	assert.Equal(t, "w", wf.Name())

	body := wf.Body()
	require.Len(t, body, 1)
	scatter, ok := body[0].(ast.ScatterStatement)
	require.True(t, ok)
	assert.Equal(t, "x", scatter.Variable())

	inner := scatter.Body()
	require.Len(t, inner, 1)
	call, ok := inner[0].(ast.CallStatement)
	require.True(t, ok)
	assert.Equal(t, "greet", call.Callee())
	assert.Equal(t, "greet", call.ResultName())
	require.Len(t, call.Inputs(), 1)
	assert.Equal(t, "name", call.Inputs()[0].Name())
}

func TestBinaryExpr_PrecedenceShape(t *testing.T) {
	src := "version 1.1\ntask t {\n  command {\n    echo ~{1 + 2 * 3}\n  }\n}\n"
	doc := parseDoc(t, src)
	cmd, _ := doc.Tasks()[0].Command()
	phs := cmd.Placeholders()
	require.Len(t, phs, 1)

	expr, ok := phs[0].Expr()
	require.True(t, ok)
	outer, ok := expr.(ast.BinaryExpr)
	require.True(t, ok)

	_, ok = outer.Right()
	require.True(t, ok)
}
