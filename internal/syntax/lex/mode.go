// Package lex tokenizes WDL source into a stream of (SyntaxKind, text)
// lexemes for the parser. It is a fixed-grammar lexer: a Lexer produces a
// token stream one item at a time, with explicit mode switching for
// string/heredoc/command contexts. Token patterns are fixed to WDL's
// grammar rather than driven by a caller-registered per-state regex table,
// and mode switches are explicit method calls driven by the parser rather
// than callback-registered actions.
package lex

// Mode is one of the five lexical modes described in the spec: Main plus one
// per interpolation-bearing construct. The lexer switches mode explicitly
// (never via regex backtracking) and always knows how to get back to Main
// inside a placeholder.
type Mode int

const (
	Main Mode = iota
	SingleQuotedString
	DoubleQuotedString
	HeredocCommand
	BraceCommand
)

func (m Mode) String() string {
	switch m {
	case Main:
		return "Main"
	case SingleQuotedString:
		return "SingleQuotedString"
	case DoubleQuotedString:
		return "DoubleQuotedString"
	case HeredocCommand:
		return "HeredocCommand"
	case BraceCommand:
		return "BraceCommand"
	default:
		return "Mode(?)"
	}
}

// quoteStringModes accept both ~{ and ${ as placeholder starts; Heredoc and
// brace commands accept ~{ only for heredocs but both for brace commands,
// per the spec's mode table.
func (m Mode) acceptsDollarPlaceholder() bool {
	return m == DoubleQuotedString || m == SingleQuotedString || m == BraceCommand
}
