package parse

import "github.com/dekarrin/wdlcore/internal/syntax/token"

// supportedVersions are the `version` statement spellings this parser
// understands. A document declaring anything else gets its whole body
// wrapped in a single Unparsed node instead of an error cascade -- the
// parser records one "unsupported version" diagnostic rather than
// hundreds of follow-on parse errors for a grammar it was never going to
// understand anyway.
var supportedVersions = map[string]bool{
	"1.0": true,
	"1.1": true,
	"1.2": true,
}

var typeStartSet = token.NewSet(
	token.KwBoolean, token.KwInt, token.KwFloat, token.KwString,
	token.KwFile, token.KwDirectory, token.KwArray, token.KwMap,
	token.KwPair, token.KwObject, token.Ident,
)

var exprStartSet = token.NewSet(
	token.IntLiteral, token.FloatLiteral, token.KwTrue, token.KwFalse,
	token.KwNone, token.StringStart, token.Ident, token.LParen,
	token.LBracket, token.LBrace, token.KwObject, token.KwIf,
	token.LogicalNot, token.Minus, token.Plus,
)

var taskBodyStartSet = token.NewSet(
	token.KwInput, token.KwOutput, token.KwCommand, token.KwRuntime,
	token.KwMeta, token.KwParameterMeta,
).Union(typeStartSet)

var workflowBodyStartSet = token.NewSet(
	token.KwInput, token.KwOutput, token.KwMeta, token.KwParameterMeta,
	token.KwCall, token.KwScatter, token.KwIf,
).Union(typeStartSet)

// parseDocument is the grammar's start symbol: a version statement, then any
// mix of imports and top-level definitions.
func (p *Parser) parseDocument() {
	m := p.start()

	// flushTrivia emits the trivia left in the lookahead buffer after the
	// last significant token, so trailing whitespace and comments stay in
	// the tree.
	flushTrivia := func() {
		for p.fillTo(0); p.buf[0].Kind.IsTrivia(); p.fillTo(0) {
			tok := p.buf[0]
			p.buf = p.buf[1:]
			p.events = append(p.events, event{kind: evToken, tokKind: tok.Kind, tokText: tok.Text})
		}
	}

	ver := p.parseVersionStatement()
	if !supportedVersions[ver] {
		p.errorf("unsupported WDL version %q", ver)
		tail := p.start()
		for !p.atEOF() {
			p.bump()
		}
		flushTrivia()
		p.complete(tail, token.Unparsed)
		p.complete(m, token.NodeRoot)
		return
	}

	p.repeatUntil(token.EOF, token.Set{}, func() {
		switch {
		case p.at(token.KwImport):
			p.parseImportStatement()
		case p.at(token.KwStruct):
			p.parseStructDefinition()
		case p.at(token.KwTask):
			p.parseTaskDefinition()
		case p.at(token.KwWorkflow):
			p.parseWorkflowDefinition()
		default:
			p.expectedOneOf(token.NewSet(token.KwImport, token.KwStruct, token.KwTask, token.KwWorkflow))
			p.errorRecover("unexpected top-level token")
		}
	})
	flushTrivia()
	p.complete(m, token.NodeRoot)
}

func (p *Parser) parseVersionStatement() string {
	m := p.start()
	p.expect(token.KwVersion)
	ver := p.currentText()
	if !p.atEOF() {
		p.bump()
	}
	p.complete(m, token.NodeVersionStatement)
	return ver
}

func (p *Parser) parseImportStatement() {
	m := p.start()
	p.expect(token.KwImport)
	p.parseStringLiteral()
	if p.eat(token.KwAs) {
		p.expect(token.Ident)
	}
	for p.at(token.KwAlias) {
		p.parseImportAlias()
	}
	p.complete(m, token.NodeImportStatement)
}

func (p *Parser) parseImportAlias() {
	m := p.start()
	p.expect(token.KwAlias)
	p.expect(token.Ident)
	p.expect(token.KwAs)
	p.expect(token.Ident)
	p.complete(m, token.NodeImportAlias)
}

func (p *Parser) parseStructDefinition() {
	m := p.start()
	p.expect(token.KwStruct)
	p.expect(token.Ident)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseDecl()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeStructDefinition)
}

func (p *Parser) parseTaskDefinition() {
	m := p.start()
	p.expect(token.KwTask)
	p.expect(token.Ident)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		switch {
		case p.at(token.KwInput):
			p.parseInputSection()
		case p.at(token.KwOutput):
			p.parseOutputSection()
		case p.at(token.KwCommand):
			p.parseCommandSection()
		case p.at(token.KwRuntime):
			p.parseRuntimeSection()
		case p.at(token.KwMeta):
			p.parseMetaSection()
		case p.at(token.KwParameterMeta):
			p.parseParameterMetaSection()
		case p.atAny(typeStartSet):
			p.parseDecl()
		default:
			p.expectedOneOf(taskBodyStartSet)
			p.errorRecover("unexpected token in task body")
		}
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeTaskDefinition)
}

func (p *Parser) parseWorkflowDefinition() {
	m := p.start()
	p.expect(token.KwWorkflow)
	p.expect(token.Ident)
	p.expect(token.LBrace)
	p.parseWorkflowBody()
	p.expect(token.RBrace)
	p.complete(m, token.NodeWorkflowDefinition)
}

func (p *Parser) parseWorkflowBody() {
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		switch {
		case p.at(token.KwInput):
			p.parseInputSection()
		case p.at(token.KwOutput):
			p.parseOutputSection()
		case p.at(token.KwMeta):
			p.parseMetaSection()
		case p.at(token.KwParameterMeta):
			p.parseParameterMetaSection()
		case p.at(token.KwCall):
			p.parseCallStatement()
		case p.at(token.KwScatter):
			p.parseScatterStatement()
		case p.at(token.KwIf):
			p.parseConditionalStatement()
		case p.atAny(typeStartSet):
			p.parseDecl()
		default:
			p.expectedOneOf(workflowBodyStartSet)
			p.errorRecover("unexpected token in workflow body")
		}
	})
}

func (p *Parser) parseInputSection() {
	m := p.start()
	p.expect(token.KwInput)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseDecl()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeInputSection)
}

func (p *Parser) parseOutputSection() {
	m := p.start()
	p.expect(token.KwOutput)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseDecl()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeOutputSection)
}

func (p *Parser) parseRuntimeSection() {
	m := p.start()
	p.expect(token.KwRuntime)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseKeyValueEntry()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeRuntimeSection)
}

func (p *Parser) parseMetaSection() {
	m := p.start()
	p.expect(token.KwMeta)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseKeyValueEntry()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeMetaSection)
}

func (p *Parser) parseParameterMetaSection() {
	m := p.start()
	p.expect(token.KwParameterMeta)
	p.expect(token.LBrace)
	p.repeatUntil(token.RBrace, token.NewSet(token.RBrace), func() {
		p.parseKeyValueEntry()
	})
	p.expect(token.RBrace)
	p.complete(m, token.NodeParameterMetaSection)
}

// parseKeyValueEntry parses one `name: value` line shared by runtime, meta,
// and parameter_meta sections. It is structurally identical to a map
// literal's entry (NodeMapItem), which is what it is built as -- these
// sections are, syntactically, just an unbraced sequence of map entries.
func (p *Parser) parseKeyValueEntry() {
	m := p.start()
	p.expect(token.Ident)
	p.expect(token.Colon)
	p.parseExpr()
	p.complete(m, token.NodeMapItem)
}

func (p *Parser) parseCommandSection() {
	m := p.start()
	p.expect(token.KwCommand)
	switch {
	case p.at(token.LBrace):
		p.bump()
		// Safe only because at()/expect() never look past the token they
		// match: the lookahead buffer is guaranteed empty here, so the mode
		// switch takes effect before any command-body text is lexed.
		p.lx.EnterBraceCommand()
		p.parseCommandBody()
	case p.at(token.StringStart):
		// the lexer already switched to heredoc mode when it recognized the
		// <<< delimiter, before ever returning this token.
		p.bump()
		p.parseCommandBody()
	default:
		p.expectedOneOf(token.NewSet(token.LBrace, token.StringStart))
	}
	p.complete(m, token.NodeCommandSection)
}

func (p *Parser) parseCommandBody() {
	for {
		switch {
		case p.at(token.StringEnd):
			p.bump()
			return
		case p.at(token.PlaceholderOpen):
			p.parsePlaceholder()
		case p.atEOF():
			p.errorf("unterminated command section")
			return
		default:
			p.bump()
		}
	}
}

func (p *Parser) parsePlaceholder() {
	m := p.start()
	p.bump() // PlaceholderOpen
	p.parseExpr()
	p.expect(token.PlaceholderClose)
	p.complete(m, token.NodePlaceholder)
}

func (p *Parser) parseStringLiteral() CompletedMarker {
	m := p.start()
	p.bump() // StringStart; the lexer already switched string mode on it
	for !p.at(token.StringEnd) && !p.atEOF() {
		if p.at(token.PlaceholderOpen) {
			p.parsePlaceholder()
		} else {
			p.bump()
		}
	}
	p.expect(token.StringEnd)
	return p.complete(m, token.NodeStringLiteral)
}

func (p *Parser) parseDecl() {
	m := p.start()
	p.parseType()
	p.expect(token.Ident)
	if p.eat(token.Equals) {
		p.parseExpr()
		p.complete(m, token.NodeBoundDecl)
		return
	}
	p.complete(m, token.NodeUnboundDecl)
}

func (p *Parser) parseType() {
	m := p.start()
	var kind token.SyntaxKind

	switch {
	case p.at(token.KwArray):
		p.bump()
		p.expect(token.LBracket)
		p.parseType()
		p.expect(token.RBracket)
		p.eat(token.Plus) // non-empty-array marker
		kind = token.NodeTypeArray
	case p.at(token.KwMap):
		p.bump()
		p.expect(token.LBracket)
		p.parseType()
		p.expect(token.Comma)
		p.parseType()
		p.expect(token.RBracket)
		kind = token.NodeTypeMap
	case p.at(token.KwPair):
		p.bump()
		p.expect(token.LBracket)
		p.parseType()
		p.expect(token.Comma)
		p.parseType()
		p.expect(token.RBracket)
		kind = token.NodeTypePair
	case p.at(token.KwObject):
		p.bump()
		kind = token.NodeTypeObject
	case p.atAny(typeStartSet):
		p.bump() // primitive type keyword or struct-name identifier
		kind = token.NodeType
	default:
		p.expectedOneOf(typeStartSet)
		kind = token.NodeType
	}

	p.eat(token.Question) // optional marker
	p.complete(m, kind)
}

func (p *Parser) parseCallStatement() {
	m := p.start()
	p.expect(token.KwCall)
	p.parseQualifiedName()
	if p.eat(token.KwAs) {
		p.expect(token.Ident)
	}
	for p.at(token.KwAfter) {
		am := p.start()
		p.bump()
		p.expect(token.Ident)
		p.complete(am, token.NodeCallAfter)
	}
	if p.eat(token.LBrace) {
		if p.eat(token.KwInput) {
			p.eat(token.Colon)
		}
		p.delimited(token.RBrace, token.Comma, token.NewSet(token.RBrace), func() {
			p.parseCallInput()
		})
		p.expect(token.RBrace)
	}
	p.complete(m, token.NodeCallStatement)
}

func (p *Parser) parseQualifiedName() {
	m := p.start()
	p.expect(token.Ident)
	for p.at(token.Dot) {
		p.bump()
		p.expect(token.Ident)
	}
	p.complete(m, token.NodeNameRefExpr)
}

func (p *Parser) parseCallInput() {
	m := p.start()
	p.expect(token.Ident)
	if p.eat(token.Equals) {
		p.parseExpr()
	}
	p.complete(m, token.NodeCallInput)
}

func (p *Parser) parseScatterStatement() {
	m := p.start()
	p.expect(token.KwScatter)
	p.expect(token.LParen)
	p.expect(token.Ident)
	p.expect(token.KwIn)
	p.parseExpr()
	p.expect(token.RParen)
	p.expect(token.LBrace)
	p.parseWorkflowBody()
	p.expect(token.RBrace)
	p.complete(m, token.NodeScatterStatement)
}

func (p *Parser) parseConditionalStatement() {
	m := p.start()
	p.expect(token.KwIf)
	p.expect(token.LParen)
	p.parseExpr()
	p.expect(token.RParen)
	p.expect(token.LBrace)
	p.parseWorkflowBody()
	p.expect(token.RBrace)
	p.complete(m, token.NodeConditionalStatement)
}

// --- expressions ---

// binOpPrec maps a binary operator token to its precedence; higher binds
// tighter. Absence from the map means "not a binary operator".
var binOpPrec = map[token.SyntaxKind]int{
	token.LogicalOr:    1,
	token.LogicalAnd:   2,
	token.Equality:     3,
	token.Inequality:   3,
	token.LessThan:     4,
	token.LessEqual:    4,
	token.GreaterThan:  4,
	token.GreaterEqual: 4,
	token.Plus:         5,
	token.Minus:        5,
	token.Star:         6,
	token.Slash:        6,
	token.Percent:      6,
}

func (p *Parser) parseExpr() {
	p.parseExprBP(0)
}

// parseExprBP parses an expression binding everything at precedence >= minBP,
// via precedence climbing: the left-hand side is parsed once, then extended
// with a binary operator and right-hand side for as long as the operator's
// precedence meets the threshold. Marker.Precede is what lets the
// already-completed left-hand node be wrapped as the new BinaryExpr's first
// child without re-parsing or re-recording it.
func (p *Parser) parseExprBP(minBP int) {
	if p.at(token.KwIf) {
		p.parseIfExpr()
		return
	}

	lhs := p.parseUnary()
	for {
		op := p.nthSignificant(0)
		bp, ok := binOpPrec[op]
		if !ok || bp < minBP {
			return
		}
		m := p.precede(lhs)
		p.bump()
		p.parseExprBP(bp + 1)
		lhs = p.complete(m, token.NodeBinaryExpr)
	}
}

func (p *Parser) parseIfExpr() {
	m := p.start()
	p.expect(token.KwIf)
	p.parseExpr()
	p.expect(token.KwThen)
	p.parseExpr()
	p.expect(token.KwElse)
	p.parseExpr()
	p.complete(m, token.NodeIfExpr)
}

func (p *Parser) parseUnary() CompletedMarker {
	if p.at(token.LogicalNot) || p.at(token.Minus) || p.at(token.Plus) {
		m := p.start()
		p.bump()
		p.parseUnary()
		return p.complete(m, token.NodeUnaryExpr)
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() CompletedMarker {
	lhs := p.parsePrimary()
	for {
		switch {
		case p.at(token.Dot):
			m := p.precede(lhs)
			p.bump()
			p.expect(token.Ident)
			lhs = p.complete(m, token.NodeAccessExpr)
		case p.at(token.LBracket):
			m := p.precede(lhs)
			p.bump()
			p.parseExpr()
			p.expect(token.RBracket)
			lhs = p.complete(m, token.NodeIndexExpr)
		case p.at(token.LParen):
			m := p.precede(lhs)
			p.bump()
			p.delimited(token.RParen, token.Comma, token.NewSet(token.RParen), func() {
				p.parseExpr()
			})
			p.expect(token.RParen)
			lhs = p.complete(m, token.NodeCallExpr)
		default:
			return lhs
		}
	}
}

func (p *Parser) parsePrimary() CompletedMarker {
	switch {
	case p.at(token.IntLiteral), p.at(token.FloatLiteral), p.at(token.KwTrue),
		p.at(token.KwFalse), p.at(token.KwNone):
		m := p.start()
		p.bump()
		return p.complete(m, token.NodeLiteralExpr)

	case p.at(token.StringStart):
		return p.parseStringLiteral()

	case p.at(token.Ident):
		m := p.start()
		p.bump()
		return p.complete(m, token.NodeNameRefExpr)

	case p.at(token.LParen):
		m := p.start()
		p.bump()
		p.parseExpr()
		if p.eat(token.Comma) {
			p.parseExpr()
			p.expect(token.RParen)
			return p.complete(m, token.NodePairLiteral)
		}
		p.expect(token.RParen)
		return p.complete(m, token.NodeParenExpr)

	case p.at(token.LBracket):
		m := p.start()
		p.bump()
		p.delimited(token.RBracket, token.Comma, token.NewSet(token.RBracket), func() {
			p.parseExpr()
		})
		p.expect(token.RBracket)
		return p.complete(m, token.NodeArrayLiteral)

	case p.at(token.LBrace):
		m := p.start()
		p.bump()
		p.delimited(token.RBrace, token.Comma, token.NewSet(token.RBrace), func() {
			im := p.start()
			p.parseExpr()
			p.expect(token.Colon)
			p.parseExpr()
			p.complete(im, token.NodeMapItem)
		})
		p.expect(token.RBrace)
		return p.complete(m, token.NodeMapLiteral)

	case p.at(token.KwObject):
		m := p.start()
		p.bump()
		p.expect(token.LBrace)
		p.delimited(token.RBrace, token.Comma, token.NewSet(token.RBrace), func() {
			im := p.start()
			p.expect(token.Ident)
			p.expect(token.Colon)
			p.parseExpr()
			p.complete(im, token.NodeObjectItem)
		})
		p.expect(token.RBrace)
		return p.complete(m, token.NodeObjectLiteral)

	default:
		p.expectedOneOf(exprStartSet)
		m := p.start()
		return p.complete(m, token.NodeLiteralExpr)
	}
}
