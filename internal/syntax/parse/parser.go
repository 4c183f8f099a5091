package parse

import (
	"fmt"

	"github.com/dekarrin/wdlcore/internal/syntax/lex"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/util"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
)

// Parser drives an ordinary recursive-descent parse over a lex.Lexer,
// recording its progress as an event stream (see event.go) rather than
// building the CST directly. Trivia (whitespace, comments) is pulled
// through a small lookahead buffer and always attached as leading trivia on
// whatever significant token follows it -- callers never see trivia in at()
// or peek(), but it is never dropped from the event stream either.
type Parser struct {
	lx     *lex.Lexer
	events []event

	buf []lex.Token // lookahead buffer; buf[0] (if any significant) is "current"

	recovery util.Stack[token.Set] // stack of recovery sets, innermost on top
}

// New creates a Parser over src.
func New(src []byte) *Parser {
	p := &Parser{lx: lex.New(src)}
	return p
}

// LexDiagnostics returns the lexer's accumulated diagnostics (bad
// characters, unterminated strings). Parser-level diagnostics are recorded
// as evError events and surfaced separately by the tree builder.
func (p *Parser) LexDiagnostics() []wdlerrors.Diagnostic {
	return p.lx.Diags
}

func (p *Parser) fillTo(n int) {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lx.Next())
	}
}

// nthSignificant returns the nth (0-based) non-trivia token's kind without
// consuming anything.
func (p *Parser) nthSignificant(n int) token.SyntaxKind {
	count := -1
	for i := 0; ; i++ {
		p.fillTo(i)
		tok := p.buf[i]
		if tok.Kind == token.EOF {
			return token.EOF
		}
		if tok.Kind.IsTrivia() {
			continue
		}
		count++
		if count == n {
			return tok.Kind
		}
	}
}

// at reports whether the current significant token has kind k.
func (p *Parser) at(k token.SyntaxKind) bool {
	return p.nthSignificant(0) == k
}

// atAny reports whether the current significant token is in set.
func (p *Parser) atAny(set token.Set) bool {
	return set.Contains(p.nthSignificant(0))
}

// atEOF reports whether the parser has consumed all significant tokens.
func (p *Parser) atEOF() bool {
	return p.nthSignificant(0) == token.EOF
}

// currentText returns the text of the current significant token without
// consuming it. Used where a production needs to inspect a literal's
// spelling while deciding how to proceed (e.g. the version header).
func (p *Parser) currentText() string {
	for i := 0; ; i++ {
		p.fillTo(i)
		tok := p.buf[i]
		if tok.Kind == token.EOF || !tok.Kind.IsTrivia() {
			return tok.Text
		}
	}
}

// bump consumes and emits the next significant token (and any leading
// trivia before it) as evToken events attached to the currently open node.
func (p *Parser) bump() {
	for {
		p.fillTo(0)
		tok := p.buf[0]
		p.buf = p.buf[1:]
		p.events = append(p.events, event{kind: evToken, tokKind: tok.Kind, tokText: tok.Text})
		if !tok.Kind.IsTrivia() {
			return
		}
	}
}

// bumpAs emits the next buffered token (trivia included; it does not skip
// ahead to a significant token) with its kind overridden to k. No grammar
// production calls it.
func (p *Parser) bumpAs(k token.SyntaxKind) {
	p.fillTo(0)
	tok := p.buf[0]
	p.buf = p.buf[1:]
	p.events = append(p.events, event{kind: evToken, tokKind: k, tokText: tok.Text})
}

// eat consumes the current token if it has kind k and reports whether it did.
func (p *Parser) eat(k token.SyntaxKind) bool {
	if !p.at(k) {
		return false
	}
	p.bump()
	return true
}

// expect consumes the current token if it has kind k; otherwise it records
// an error diagnostic without consuming anything (so the caller's enclosing
// recovery logic gets a chance to resynchronize).
func (p *Parser) expect(k token.SyntaxKind) bool {
	if p.eat(k) {
		return true
	}
	p.errorf("expected %s, found %s", k, p.nthSignificant(0))
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.events = append(p.events, event{kind: evError, message: fmt.Sprintf(format, args...)})
}

// errorRecover records an error and then consumes tokens up to (but not
// including) the first one in the innermost recovery set, or EOF. The
// consumed tokens are wrapped in an Unparsed node so they are never
// silently lost from the tree.
func (p *Parser) errorRecover(message string) {
	p.events = append(p.events, event{kind: evError, message: message})
	if p.atEOF() {
		return
	}
	recoverySet := p.currentRecoverySet()
	if recoverySet.Contains(p.nthSignificant(0)) {
		return
	}
	m := p.start()
	for !p.atEOF() && !recoverySet.Contains(p.nthSignificant(0)) {
		p.bump()
	}
	p.complete(m, token.Unparsed)
}

// expectedOneOf records an error naming every kind in want as an acceptable
// continuation, oxford-comma joined the same way the LR parser's diagnostic
// messages are.
func (p *Parser) expectedOneOf(want token.Set) {
	kinds := want.Elements()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	p.errorf("expected %s, found %s", util.MakeTextList(names), p.nthSignificant(0))
}

func (p *Parser) currentRecoverySet() token.Set {
	if p.recovery.Empty() {
		return token.Set{}
	}
	return p.recovery.Peek()
}

// pushRecovery adds set to the recovery stack for the duration of a
// delimited parse, unioned with every enclosing recovery set so an error
// deep in a nested construct can still resynchronize at an outer delimiter.
func (p *Parser) pushRecovery(set token.Set) {
	union := set.Union(p.currentRecoverySet())
	p.recovery.Push(union)
}

func (p *Parser) popRecovery() {
	p.recovery.Pop()
}

// repeatUntil parses items with no delimiter between them (struct members,
// section bodies, task/workflow bodies) until the until token or EOF.
func (p *Parser) repeatUntil(until token.SyntaxKind, recoverySet token.Set, item func()) {
	p.pushRecovery(recoverySet)
	defer p.popRecovery()

	for !p.at(until) && !p.atEOF() {
		before := len(p.events)
		item()
		if len(p.events) == before {
			p.errorRecover("unexpected token")
		}
	}
}

// delimited parses zero or more items separated by an optional delimiter
// token, until the until token (or EOF) is reached. recoverySet should
// contain both the delimiter and the until token so a malformed item doesn't
// consume the rest of the construct.
func (p *Parser) delimited(until, delimiter token.SyntaxKind, recoverySet token.Set, item func()) {
	p.pushRecovery(recoverySet)
	defer p.popRecovery()

	first := true
	for !p.at(until) && !p.atEOF() {
		if !first {
			if !p.eat(delimiter) {
				p.errorRecover("expected " + delimiter.String() + " or " + until.String())
				continue
			}
			if p.at(until) {
				break
			}
		}
		first = false
		before := len(p.events)
		item()
		if len(p.events) == before {
			// item() didn't make progress; avoid looping forever.
			p.errorRecover("expected an item")
		}
	}
}

