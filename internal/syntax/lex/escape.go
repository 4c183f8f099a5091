package lex

import (
	"strconv"

	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// namedEscapes maps the character following a backslash to its decoded rune,
// for the escapes that are a fixed single character wide.
var namedEscapes = map[byte]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'~':  '~',
	'$':  '$',
}

// DecodeEscape validates and decodes a single StringEscape token's text
// (which always begins with `\`) per WDL's escape grammar. It is invoked
// during semantic validation, never by the primary lexer, per the lexer's
// mode table: the lexer only needs to know an escape's extent, not its
// validity.
//
// On success it returns the decoded rune and a nil Diagnostic. On failure it
// returns utf8.RuneError and a Diagnostic describing the problem; span is the
// escape token's span, used to anchor the diagnostic.
func DecodeEscape(text string, span wdlerrors.Span) (rune, *wdlerrors.Diagnostic) {
	if len(text) < 2 || text[0] != '\\' {
		d := wdlerrors.New("malformed escape sequence", span)
		return 0xFFFD, &d
	}
	body := text[1:]

	if r, ok := namedEscapes[body[0]]; ok && len(body) == 1 {
		return r, nil
	}

	switch body[0] {
	case 'x':
		return decodeFixedHex(body[1:], 2, span)
	case 'u':
		return decodeFixedHex(body[1:], 4, span)
	case 'U':
		return decodeFixedHex(body[1:], 8, span)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		return decodeOctal(body, span)
	}

	d := wdlerrors.Newf(span, "unrecognized escape sequence %q", text)
	return 0xFFFD, &d
}

func decodeFixedHex(digits string, want int, span wdlerrors.Span) (rune, *wdlerrors.Diagnostic) {
	if len(digits) != want {
		d := wdlerrors.Newf(span, "escape sequence requires exactly %d hex digits, got %d", want, len(digits))
		return 0xFFFD, &d
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		d := wdlerrors.Newf(span, "invalid hex digits in escape sequence: %q", digits)
		return 0xFFFD, &d
	}
	if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		d := wdlerrors.Newf(span, "escape sequence \\%s is not a valid Unicode code point", digits)
		return 0xFFFD, &d
	}
	return rune(v), nil
}

func decodeOctal(digits string, span wdlerrors.Span) (rune, *wdlerrors.Diagnostic) {
	if len(digits) != 3 {
		d := wdlerrors.Newf(span, "octal escape sequence requires exactly 3 digits, got %d", len(digits))
		return 0xFFFD, &d
	}
	v, err := strconv.ParseUint(digits, 8, 16)
	if err != nil {
		d := wdlerrors.Newf(span, "invalid octal digits in escape sequence: %q", digits)
		return 0xFFFD, &d
	}
	if v > 0xFF {
		d := wdlerrors.Newf(span, "octal escape sequence \\%s is out of byte range", digits)
		return 0xFFFD, &d
	}
	return rune(v), nil
}
