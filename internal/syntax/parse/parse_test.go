package parse

import (
	"testing"

	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Losslessness(t *testing.T) {
	testCases := []string{
		"version 1.1\n\ntask greet {\n  input {\n    String name\n  }\n  command <<<\n    echo hello ~{name}\n  >>>\n  output {\n    String greeting = read_string(stdout())\n  }\n  runtime {\n    docker: \"ubuntu:latest\"\n  }\n}\n",
		"version 1.1\n\nworkflow w {\n  input {\n    Int n\n  }\n  if (n > 0) {\n    call greet { input: name = \"a\" }\n  }\n  scatter (x in range(n)) {\n    Int y = x + 1\n  }\n}\n",
		"version 2.0\nstruct Foo {\n  Int bar\n}\n",
		"version 9.9\nthis is nonsense { } not wdl at all\n",
		"version 1.1\ntask t {\n  command {\n    echo ~{1 + 2 * 3}\n  }\n}\n",
	}

	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			res := Parse([]byte(src))
			require.NotNil(t, res.Tree)
			assert.Equal(t, src, res.Tree.FullText())
		})
	}
}

func Test_Parse_UnsupportedVersionBecomesUnparsedTail(t *testing.T) {
	src := "version 9.9\nthis is nonsense\n"
	res := Parse([]byte(src))
	require.NotNil(t, res.Tree)
	assert.Equal(t, token.NodeRoot, res.Tree.Kind())

	children := res.Tree.Children()
	require.Len(t, children, 2)
	assert.Equal(t, token.NodeVersionStatement, children[0].Kind())
	assert.Equal(t, token.Unparsed, children[1].Kind())
}

func Test_Parse_TaskStructure(t *testing.T) {
	src := "version 1.1\ntask t {\n  input {\n    Int x\n  }\n  command {\n    echo ~{x}\n  }\n}\n"
	res := Parse([]byte(src))
	require.Empty(t, res.Diagnostics)

	var task *cst.GreenNode
	for _, c := range res.Tree.Children() {
		if c.Kind() == token.NodeTaskDefinition {
			task = c
		}
	}
	require.NotNil(t, task)

	var sawInput, sawCommand bool
	for _, c := range task.Children() {
		switch c.Kind() {
		case token.NodeInputSection:
			sawInput = true
		case token.NodeCommandSection:
			sawCommand = true
		}
	}
	assert.True(t, sawInput)
	assert.True(t, sawCommand)
}

func findFirst(n *cst.GreenNode, kind token.SyntaxKind) *cst.GreenNode {
	if n.Kind() == kind {
		return n
	}
	for _, c := range n.Children() {
		if found := findFirst(c, kind); found != nil {
			return found
		}
	}
	return nil
}

func Test_Parse_BinaryExprPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the outer BinaryExpr's RHS
	// child should itself be a BinaryExpr (the multiplication), not a bare
	// literal.
	src := "version 1.1\ntask t {\n  command {\n    echo ~{1 + 2 * 3}\n  }\n}\n"
	res := Parse([]byte(src))
	require.Empty(t, res.Diagnostics)

	placeholder := findFirst(res.Tree, token.NodePlaceholder)
	require.NotNil(t, placeholder)

	outer := findFirst(placeholder, token.NodeBinaryExpr)
	require.NotNil(t, outer)

	var sawNestedBinary bool
	for _, c := range outer.Children() {
		if c.Kind() == token.NodeBinaryExpr {
			sawNestedBinary = true
		}
	}
	assert.True(t, sawNestedBinary)
}

func Test_Parser_AbandonDropsEmptyMarker(t *testing.T) {
	p := New([]byte("Int"))
	before := len(p.events)
	m := p.start()
	p.abandon(m)
	assert.Equal(t, before, len(p.events))
}

func Test_Parse_RecoversFromUnexpectedToken(t *testing.T) {
	src := "version 1.1\ntask t {\n  input {\n    Int x\n  }\n  @@@\n}\n"
	res := Parse([]byte(src))
	assert.Equal(t, src, res.Tree.FullText())
	assert.NotEmpty(t, res.Diagnostics)
}
