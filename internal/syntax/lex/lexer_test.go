package lex

import (
	"strings"
	"testing"

	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/stretchr/testify/assert"
)

// collect runs the lexer to EOF (exclusive) and returns every token seen.
func collect(src string) []Token {
	lx := New([]byte(src))
	var toks []Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func kinds(toks []Token) []token.SyntaxKind {
	out := make([]token.SyntaxKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func Test_Lexer_Losslessness(t *testing.T) {
	testCases := []string{
		"version 1.1\n",
		"task greet {\n  input {\n    String name\n  }\n}\n",
		`String s = "hello ~{name}, ${other}!"`,
		"String s = 'raw \\n text'",
		"Int x = 3.14e-2",
		"# a comment\nInt y = 42",
	}

	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			toks := collect(src)
			var sb strings.Builder
			for _, tok := range toks {
				sb.WriteString(tok.Text)
			}
			assert.Equal(t, src, sb.String())
		})
	}
}

func Test_Lexer_KeywordVsIdent(t *testing.T) {
	toks := collect("task workflow notakeyword")
	got := kinds(nonTrivia(toks))
	assert.Equal(t, []token.SyntaxKind{token.KwTask, token.KwWorkflow, token.Ident}, got)
}

func Test_Lexer_DoubleQuotedPlaceholder(t *testing.T) {
	toks := nonTrivia(collect(`"hello ~{name}!"`))
	got := kinds(toks)
	assert.Equal(t, []token.SyntaxKind{
		token.StringStart,
		token.StringText,
		token.PlaceholderOpen,
		token.Ident,
		token.PlaceholderClose,
		token.StringText,
		token.StringEnd,
	}, got)
}

func Test_Lexer_SingleQuotedAcceptsDollarPlaceholder(t *testing.T) {
	// both quoted-string modes recognize ${ as well as ~{.
	toks := nonTrivia(collect(`'a ${b} c'`))
	var opens int
	for _, tok := range toks {
		if tok.Kind == token.PlaceholderOpen {
			opens++
		}
	}
	assert.Equal(t, 1, opens)
}

func Test_Lexer_HeredocRejectsDollarPlaceholder(t *testing.T) {
	// heredocs only recognize ~{; $ { is literal text.
	toks := nonTrivia(collect("<<<\n a ${b} c\n>>>"))
	for _, tok := range toks {
		assert.NotEqual(t, token.PlaceholderOpen, tok.Kind)
	}
}

func Test_Lexer_HeredocNestedPlaceholderWithObjectLiteral(t *testing.T) {
	src := "<<<\n  echo ~{ {\"a\": 1} } done\n>>>"
	toks := nonTrivia(collect(src))

	var opens, closes int
	for _, tok := range toks {
		switch tok.Kind {
		case token.PlaceholderOpen:
			opens++
		case token.PlaceholderClose:
			closes++
		}
	}
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)

	last := toks[len(toks)-1]
	assert.Equal(t, token.StringEnd, last.Kind)
}

func Test_Lexer_BraceCommandRequiresExplicitEntry(t *testing.T) {
	lx := New([]byte("command { echo ~{x} }"))

	var got []token.SyntaxKind
	for i := 0; i < 2; i++ {
		tok := lx.Next()
		got = append(got, tok.Kind)
	}
	assert.Equal(t, []token.SyntaxKind{token.KwCommand, token.Whitespace}, got)

	brace := lx.Next()
	assert.Equal(t, token.LBrace, brace.Kind)
	assert.Equal(t, Main, lx.Mode())

	lx.EnterBraceCommand()
	assert.Equal(t, BraceCommand, lx.Mode())

	var rest []Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
		rest = append(rest, tok)
	}
	last := rest[len(rest)-1]
	assert.Equal(t, token.StringEnd, last.Kind)
	assert.Equal(t, Main, lx.Mode())
}

func Test_Lexer_UnknownCharacterProducesDiagnostic(t *testing.T) {
	lx := New([]byte("Int x = 1 ` 2"))
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	if assert.Len(t, lx.Diags, 1) {
		assert.Equal(t, uint32(10), lx.Diags[0].Primary().Start)
	}
}

func nonTrivia(toks []Token) []Token {
	out := toks[:0]
	for _, t := range toks {
		if !t.Kind.IsTrivia() {
			out = append(out, t)
		}
	}
	return out
}
