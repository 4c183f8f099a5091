package lex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/util"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// Token is one lexeme: a SyntaxKind paired with its exact source text and
// span. Trivia tokens (whitespace, comments) are yielded just like any
// other -- the lexer never swallows anything, which is what keeps the CST
// lossless.
type Token struct {
	Kind token.SyntaxKind
	Text string
	Span cst.Span
}

type frame struct {
	mode  Mode
	depth int // brace-nesting depth within this frame, used by Main (placeholder) and BraceCommand frames
}

// Lexer tokenizes WDL source on demand. Quoted strings, heredocs, and
// placeholders have unambiguous opening delimiters (', ", <<<, ~{, ${) that
// nextMain recognizes and switches mode for on its own. A brace-delimited
// command section's opening `{` is not distinguishable from any other `{` in
// Main mode, though, so the parser must call EnterBraceCommand once it has
// consumed the `command` keyword and its opening brace as ordinary tokens;
// from then on the Lexer pops back to the enclosing mode itself whenever it
// recognizes a matching terminator (closing quote, >>>, matching `}`, or the
// PlaceholderClose `}`).
type Lexer struct {
	src    []byte
	pos    uint32
	frames util.Stack[frame]
	Diags  []wdlerrors.Diagnostic
}

// New creates a Lexer over src, starting in Main mode.
func New(src []byte) *Lexer {
	lx := &Lexer{src: src}
	lx.frames.Push(frame{mode: Main})
	return lx
}

// Mode returns the lexer's current mode.
func (lx *Lexer) Mode() Mode {
	return lx.frames.Peek().mode
}

// EnterBraceCommand switches the lexer into BraceCommand mode. The parser
// calls this immediately after consuming a command section's opening `command
// {` as ordinary Main-mode tokens; the matching `}` is then returned as a
// StringEnd token once the command body has been fully lexed.
func (lx *Lexer) EnterBraceCommand() {
	lx.pushFrame(BraceCommand)
}

func (lx *Lexer) pushFrame(m Mode) {
	lx.frames.Push(frame{mode: m})
}

func (lx *Lexer) atEnd() bool {
	return int(lx.pos) >= len(lx.src)
}

func (lx *Lexer) rest() string {
	return string(lx.src[lx.pos:])
}

func (lx *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(lx.rest(), s)
}

func (lx *Lexer) emit(kind token.SyntaxKind, start uint32) Token {
	return Token{Kind: kind, Text: string(lx.src[start:lx.pos]), Span: cst.Span{Start: start, Len: lx.pos - start}}
}

func (lx *Lexer) errorf(start uint32, format string, args ...interface{}) {
	span := wdlerrors.Span{Start: start, Len: lx.pos - start}
	lx.Diags = append(lx.Diags, wdlerrors.Newf(span, format, args...))
}

// Next returns the next token. At end of input it returns a token.EOF token
// forever.
func (lx *Lexer) Next() Token {
	if lx.atEnd() {
		return Token{Kind: token.EOF, Span: cst.Span{Start: lx.pos}}
	}

	switch lx.Mode() {
	case Main:
		return lx.nextMain()
	case SingleQuotedString:
		return lx.nextStringRun('\'', true)
	case DoubleQuotedString:
		return lx.nextStringRun('"', true)
	case HeredocCommand:
		return lx.nextHeredocRun()
	case BraceCommand:
		return lx.nextBraceRun()
	}
	panic("lex: unreachable mode")
}

// nextMain tokenizes whitespace, comments, identifiers/keywords, numbers,
// punctuation, and the delimiters that switch modes (quotes, <<<, command {).
func (lx *Lexer) nextMain() Token {
	start := lx.pos
	r, size := utf8.DecodeRune(lx.src[lx.pos:])

	switch {
	case r == ' ' || r == '\t' || r == '\r' || r == '\n':
		for !lx.atEnd() {
			r, size := utf8.DecodeRune(lx.src[lx.pos:])
			if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
				break
			}
			lx.pos += uint32(size)
		}
		return lx.emit(token.Whitespace, start)

	case r == '#':
		for !lx.atEnd() {
			r, size := utf8.DecodeRune(lx.src[lx.pos:])
			if r == '\n' {
				break
			}
			lx.pos += uint32(size)
		}
		return lx.emit(token.Comment, start)

	case r == '}':
		lx.pos += uint32(size)
		top := lx.frames.Peek()
		if len(lx.frames.Of) > 1 && top.mode == Main {
			if top.depth == 0 {
				lx.frames.Pop()
				return lx.emit(token.PlaceholderClose, start)
			}
			top.depth--
			lx.frames.Of[len(lx.frames.Of)-1] = top
			return lx.emit(token.RBrace, start)
		}
		return lx.emit(token.RBrace, start)

	case r == '{':
		lx.pos += uint32(size)
		if len(lx.frames.Of) > 1 {
			top := lx.frames.Peek()
			if top.mode == Main {
				top.depth++
				lx.frames.Of[len(lx.frames.Of)-1] = top
			}
		}
		return lx.emit(token.LBrace, start)

	case r == '\'':
		lx.pos += uint32(size)
		lx.pushFrame(SingleQuotedString)
		return lx.emit(token.StringStart, start)

	case r == '"':
		lx.pos += uint32(size)
		lx.pushFrame(DoubleQuotedString)
		return lx.emit(token.StringStart, start)

	case lx.hasPrefix("<<<"):
		lx.pos += 3
		lx.pushFrame(HeredocCommand)
		return lx.emit(token.StringStart, start)

	case lx.hasPrefix(">>>"):
		lx.pos += 3
		if lx.Mode() == Main && len(lx.frames.Of) > 1 {
			lx.frames.Pop()
		}
		return lx.emit(token.StringEnd, start)

	case unicode.IsDigit(r):
		return lx.lexNumber(start)

	case isIdentStart(r):
		return lx.lexIdentOrKeyword(start)

	default:
		return lx.lexPunct(start, r, size)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (lx *Lexer) lexIdentOrKeyword(start uint32) Token {
	for !lx.atEnd() {
		r, size := utf8.DecodeRune(lx.src[lx.pos:])
		if !isIdentCont(r) {
			break
		}
		lx.pos += uint32(size)
	}
	text := string(lx.src[start:lx.pos])
	if kw, ok := token.Keywords[text]; ok {
		return lx.emit(kw, start)
	}
	return lx.emit(token.Ident, start)
}

func (lx *Lexer) lexNumber(start uint32) Token {
	isFloat := false
	for !lx.atEnd() {
		r, size := utf8.DecodeRune(lx.src[lx.pos:])
		if unicode.IsDigit(r) {
			lx.pos += uint32(size)
			continue
		}
		if r == '.' && !isFloat {
			// only consume the dot as part of the number if followed by a digit
			if int(lx.pos)+1 < len(lx.src) && unicode.IsDigit(rune(lx.src[lx.pos+1])) {
				isFloat = true
				lx.pos += uint32(size)
				continue
			}
		}
		if (r == 'e' || r == 'E') && len(lx.src) > int(lx.pos)+1 {
			isFloat = true
			lx.pos += uint32(size)
			if !lx.atEnd() {
				if nr, _ := utf8.DecodeRune(lx.src[lx.pos:]); nr == '+' || nr == '-' {
					lx.pos++
				}
			}
			continue
		}
		break
	}
	if isFloat {
		return lx.emit(token.FloatLiteral, start)
	}
	return lx.emit(token.IntLiteral, start)
}

var twoCharPunct = map[string]token.SyntaxKind{
	"&&": token.LogicalAnd,
	"||": token.LogicalOr,
	"==": token.Equality,
	"!=": token.Inequality,
	"<=": token.LessEqual,
	">=": token.GreaterEqual,
}

var oneCharPunct = map[rune]token.SyntaxKind{
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
	',': token.Comma,
	'.': token.Dot,
	':': token.Colon,
	'=': token.Equals,
	'?': token.Question,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'!': token.LogicalNot,
	'<': token.LessThan,
	'>': token.GreaterThan,
}

func (lx *Lexer) lexPunct(start uint32, r rune, size int) Token {
	if int(lx.pos)+2 <= len(lx.src) {
		two := string(lx.src[lx.pos : lx.pos+2])
		if k, ok := twoCharPunct[two]; ok {
			lx.pos += 2
			return lx.emit(k, start)
		}
	}
	if k, ok := oneCharPunct[r]; ok {
		lx.pos += uint32(size)
		return lx.emit(k, start)
	}
	lx.pos += uint32(size)
	lx.errorf(start, "unknown token %q", string(r))
	return lx.emit(token.Unknown, start)
}

// nextStringRun tokenizes a run inside ' or " mode: a placeholder start, an
// escape sequence, a literal text run, or the closing quote.
func (lx *Lexer) nextStringRun(quote rune, allowBackslashEscapes bool) Token {
	start := lx.pos

	if lx.hasPrefix("~{") {
		lx.pos += 2
		lx.pushFrame(Main)
		return lx.emit(token.PlaceholderOpen, start)
	}
	if lx.Mode().acceptsDollarPlaceholder() && lx.hasPrefix("${") {
		lx.pos += 2
		lx.pushFrame(Main)
		return lx.emit(token.PlaceholderOpen, start)
	}

	r, size := utf8.DecodeRune(lx.src[lx.pos:])
	if r == quote {
		lx.pos += uint32(size)
		lx.frames.Pop()
		return lx.emit(token.StringEnd, start)
	}
	if allowBackslashEscapes && r == '\\' {
		lx.pos += uint32(size)
		if lx.atEnd() {
			lx.errorf(start, "unterminated escape sequence")
			return lx.emit(token.StringEscape, start)
		}
		lx.consumeEscapeBody()
		return lx.emit(token.StringEscape, start)
	}

	// literal text run up to the next quote, placeholder, escape, or EOF
	for !lx.atEnd() {
		if lx.hasPrefix("~{") || (lx.Mode().acceptsDollarPlaceholder() && lx.hasPrefix("${")) {
			break
		}
		nr, nsize := utf8.DecodeRune(lx.src[lx.pos:])
		if nr == quote || (allowBackslashEscapes && nr == '\\') {
			break
		}
		lx.pos += uint32(nsize)
	}
	if lx.pos == start {
		// avoid an infinite loop if we somehow didn't advance
		lx.pos += uint32(size)
	}
	return lx.emit(token.StringText, start)
}

// consumeEscapeBody consumes the character(s) after a backslash, per the
// escape grammar's maximal forms. Validity (e.g. whether \xHH has exactly
// two valid hex digits) is NOT checked here -- that is the job of the
// escape sub-lexer (escape.go), invoked during semantic validation.
func (lx *Lexer) consumeEscapeBody() {
	r, size := utf8.DecodeRune(lx.src[lx.pos:])
	lx.pos += uint32(size)
	switch r {
	case 'x':
		lx.consumeHexDigits(2)
	case 'u':
		lx.consumeHexDigits(4)
	case 'U':
		lx.consumeHexDigits(8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// up to two more octal digits
		for i := 0; i < 2 && !lx.atEnd(); i++ {
			nr, nsize := utf8.DecodeRune(lx.src[lx.pos:])
			if nr < '0' || nr > '7' {
				break
			}
			lx.pos += uint32(nsize)
		}
	default:
		// single-char escape (\n, \t, \\, \', \", \~, \$, ...); nothing more to consume
	}
}

func (lx *Lexer) consumeHexDigits(n int) {
	for i := 0; i < n && !lx.atEnd(); i++ {
		r, size := utf8.DecodeRune(lx.src[lx.pos:])
		if !isHexDigit(r) {
			break
		}
		lx.pos += uint32(size)
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// nextHeredocRun is like nextStringRun but only ~{ introduces a placeholder
// (heredocs do not support ${) and the terminator is >>>, not a quote char.
func (lx *Lexer) nextHeredocRun() Token {
	start := lx.pos

	if lx.hasPrefix("~{") {
		lx.pos += 2
		lx.pushFrame(Main)
		return lx.emit(token.PlaceholderOpen, start)
	}
	if lx.hasPrefix(">>>") {
		lx.pos += 3
		lx.frames.Pop()
		return lx.emit(token.StringEnd, start)
	}

	if r, size := utf8.DecodeRune(lx.src[lx.pos:]); r == '\\' {
		lx.pos += uint32(size)
		if lx.atEnd() {
			lx.errorf(start, "unterminated escape sequence")
			return lx.emit(token.StringEscape, start)
		}
		lx.consumeEscapeBody()
		return lx.emit(token.StringEscape, start)
	}

	for !lx.atEnd() {
		if lx.hasPrefix("~{") || lx.hasPrefix(">>>") {
			break
		}
		r, size := utf8.DecodeRune(lx.src[lx.pos:])
		if r == '\\' {
			break
		}
		lx.pos += uint32(size)
	}
	if lx.pos == start {
		if lx.atEnd() {
			lx.errorf(start, "unterminated heredoc command")
		}
	}
	return lx.emit(token.StringText, start)
}

// nextBraceRun is like nextStringRun but accepts both ~{ and ${ as
// placeholder starts and tracks brace depth so the literal command text may
// itself contain unescaped `{`/`}` (e.g. shell grouping) without ending the
// section prematurely.
func (lx *Lexer) nextBraceRun() Token {
	start := lx.pos

	if lx.hasPrefix("~{") || lx.hasPrefix("${") {
		lx.pos += 2
		lx.pushFrame(Main)
		return lx.emit(token.PlaceholderOpen, start)
	}

	r, size := utf8.DecodeRune(lx.src[lx.pos:])
	if r == '\\' {
		lx.pos += uint32(size)
		if lx.atEnd() {
			lx.errorf(start, "unterminated escape sequence")
			return lx.emit(token.StringEscape, start)
		}
		lx.consumeEscapeBody()
		return lx.emit(token.StringEscape, start)
	}
	top := lx.frames.Peek()
	if r == '{' {
		top.depth++
		lx.frames.Of[len(lx.frames.Of)-1] = top
		lx.pos += uint32(size)
		return lx.emit(token.StringText, start)
	}
	if r == '}' {
		if top.depth == 0 {
			lx.pos += uint32(size)
			lx.frames.Pop()
			return lx.emit(token.StringEnd, start)
		}
		top.depth--
		lx.frames.Of[len(lx.frames.Of)-1] = top
		lx.pos += uint32(size)
		return lx.emit(token.StringText, start)
	}

	for !lx.atEnd() {
		if lx.hasPrefix("~{") || lx.hasPrefix("${") {
			break
		}
		nr, nsize := utf8.DecodeRune(lx.src[lx.pos:])
		if nr == '{' || nr == '}' || nr == '\\' {
			break
		}
		lx.pos += uint32(nsize)
	}
	if lx.pos == start {
		lx.pos += uint32(size)
	}
	return lx.emit(token.StringText, start)
}
