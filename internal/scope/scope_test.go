package scope_test

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/docgraph"
	"github.com/dekarrin/wdlcore/internal/scope"
	"github.com/dekarrin/wdlcore/internal/syntax/ast"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/parse"
	"github.com/dekarrin/wdlcore/internal/wdltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, src string) ast.Document {
	t.Helper()
	res := parse.Parse([]byte(src))
	require.NotNil(t, res.Tree)
	return ast.NewDocument(cst.NewRoot(res.Tree))
}

func TestBuild_TaskInputsAndOutputs(t *testing.T) {
	src := "version 1.1\ntask greet {\n  input {\n    String name\n  }\n  command <<<\n    echo ~{name}\n  >>>\n  output {\n    String greeting = name\n  }\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	d, diags := scope.Build(g, "/main.wdl", doc)
	require.Empty(t, diags)

	task, ok := d.Tasks["greet"]
	require.True(t, ok)

	in, ok := task.Scope.LocalLookup("name")
	require.True(t, ok)
	assert.Equal(t, scope.CtxInput, in.Context)
	assert.Equal(t, wdltype.KindString, d.Arena.Get(in.Type).Kind)

	out, ok := task.Scope.LocalLookup("greeting")
	require.True(t, ok)
	assert.Equal(t, scope.CtxOutput, out.Context)
}

func TestBuild_DuplicateNameInTaskScopeIsDiagnosed(t *testing.T) {
	src := "version 1.1\ntask t {\n  input {\n    String x\n    Int x\n  }\n  command {\n  }\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	_, diags := scope.Build(g, "/main.wdl", doc)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "already defined")
}

func TestBuild_RecursiveStructIsDiagnosed(t *testing.T) {
	src := "version 1.1\nstruct A {\n  B b\n}\nstruct B {\n  A a\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	d, diags := scope.Build(g, "/main.wdl", doc)
	require.NotEmpty(t, diags)
	_, hasA := d.Structs["A"]
	_, hasB := d.Structs["B"]
	assert.False(t, hasA)
	assert.False(t, hasB)
}

func TestBuild_ScatterPublishesArrayWrappedImplicit(t *testing.T) {
	src := "version 1.1\nworkflow w {\n  input {\n    Array[Int] xs\n  }\n  scatter (x in xs) {\n    Int doubled = x\n  }\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	d, diags := scope.Build(g, "/main.wdl", doc)
	require.Empty(t, diags)

	sn, ok := d.Workflow.Root.Lookup("doubled")
	require.True(t, ok)
	assert.True(t, sn.IsImplicit)
	ty := d.Arena.Get(sn.Type)
	assert.Equal(t, wdltype.KindArray, ty.Kind)
	assert.Equal(t, wdltype.KindInt, d.Arena.Get(ty.Elem).Kind)

	// the scatter variable itself must not escape into the parent scope.
	_, leaked := d.Workflow.Root.LocalLookup("x")
	assert.False(t, leaked)
}

func TestBuild_ConditionalPublishesOptionalImplicit(t *testing.T) {
	src := "version 1.1\nworkflow w {\n  input {\n    Boolean flag\n  }\n  if (flag) {\n    Int y = 1\n  }\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	d, diags := scope.Build(g, "/main.wdl", doc)
	require.Empty(t, diags)

	sn, ok := d.Workflow.Root.Lookup("y")
	require.True(t, ok)
	assert.True(t, sn.IsImplicit)
	assert.True(t, d.Arena.Get(sn.Type).Optional)
}

func TestBuild_CallBindsOutputAggregateType(t *testing.T) {
	src := "version 1.1\ntask greet {\n  input {\n    String name\n  }\n  command {\n  }\n  output {\n    String greeting = name\n  }\n}\nworkflow w {\n  call greet { input: name = \"a\" }\n  output {\n    String g = greet.greeting\n  }\n}\n"
	doc := parseDoc(t, src)

	g := docgraph.New()
	d, diags := scope.Build(g, "/main.wdl", doc)
	require.Empty(t, diags)

	sn, ok := d.Workflow.Root.LocalLookup("greet")
	require.True(t, ok)
	assert.Equal(t, scope.CtxCall, sn.Context)
	ty := d.Arena.Get(sn.Type)
	require.Equal(t, wdltype.KindStruct, ty.Kind)
	require.Len(t, ty.Members, 1)
	assert.Equal(t, "greeting", ty.Members[0].Name)
}

func TestBuild_ImportBringsInNamespaceAndStructs(t *testing.T) {
	libSrc := "version 1.1\nstruct Greeting {\n  String text\n}\ntask greet {\n  input {\n    String name\n  }\n  command {\n  }\n  output {\n    String greeting = name\n  }\n}\n"
	libDoc := parseDoc(t, libSrc)

	g := docgraph.New()
	libScope, libDiags := scope.Build(g, "/lib.wdl", libDoc)
	require.Empty(t, libDiags)
	g.GetOrCreate("/lib.wdl").SetAnalyzed(libScope, nil)
	g.AddImport("/main.wdl", "/lib.wdl")

	mainSrc := "version 1.1\nimport \"lib.wdl\" as lib\nworkflow w {\n  call lib.greet { input: name = \"a\" }\n}\n"
	mainDoc := parseDoc(t, mainSrc)

	d, diags := scope.Build(g, "/main.wdl", mainDoc)
	require.Empty(t, diags)

	ns, ok := d.Namespaces["lib"]
	require.True(t, ok)
	assert.Same(t, libScope, ns.Doc)

	_, hasStruct := d.Structs["Greeting"]
	assert.True(t, hasStruct)

	sn, ok := d.Workflow.Root.LocalLookup("greet")
	require.True(t, ok)
	assert.Equal(t, scope.CtxCall, sn.Context)
}
