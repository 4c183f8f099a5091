package ast

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
)

// Expr is the sum type described in spec.md §3:
//
//	Expr = Literal | NameRef | Access | Index | Call | If
//	     | binary/unary ops | Parenthesized
//
// Each concrete case below wraps a CST node and implements Expr via an
// unexported marker method, matching the other sum types in this package.
type Expr interface {
	Span() cst.Span
	Red() cst.Red
	isExpr()
}

func asExpr(r cst.Red) (Expr, bool) {
	switch r.Kind() {
	case token.NodeLiteralExpr:
		return LiteralExpr{red: r}, true
	case token.NodeStringLiteral:
		return StringLiteralExpr{red: r}, true
	case token.NodeNameRefExpr:
		return NameRefExpr{red: r}, true
	case token.NodeAccessExpr:
		return AccessExpr{red: r}, true
	case token.NodeIndexExpr:
		return IndexExpr{red: r}, true
	case token.NodeCallExpr:
		return CallExpr{red: r}, true
	case token.NodeIfExpr:
		return IfExpr{red: r}, true
	case token.NodeBinaryExpr:
		return BinaryExpr{red: r}, true
	case token.NodeUnaryExpr:
		return UnaryExpr{red: r}, true
	case token.NodeParenExpr:
		return ParenExpr{red: r}, true
	case token.NodeArrayLiteral:
		return ArrayLiteralExpr{red: r}, true
	case token.NodeMapLiteral:
		return MapLiteralExpr{red: r}, true
	case token.NodePairLiteral:
		return PairLiteralExpr{red: r}, true
	case token.NodeObjectLiteral:
		return ObjectLiteralExpr{red: r}, true
	default:
		return nil, false
	}
}

// LiteralExpr wraps an int/float/bool/None literal token.
type LiteralExpr struct{ red cst.Red }

func (e LiteralExpr) Span() cst.Span { return e.red.Span() }
func (e LiteralExpr) Red() cst.Red   { return e.red }
func (LiteralExpr) isExpr()          {}

// Kind returns the underlying literal token's kind (IntLiteral, FloatLiteral,
// KwTrue, KwFalse, or KwNone).
func (e LiteralExpr) Kind() token.SyntaxKind {
	for _, c := range e.red.Children() {
		if !c.Kind().IsTrivia() {
			return c.Kind()
		}
	}
	return token.Unknown
}

// Text returns the literal token's raw spelling.
func (e LiteralExpr) Text() string {
	for _, c := range e.red.Children() {
		if !c.Kind().IsTrivia() {
			return c.Text()
		}
	}
	return ""
}

// StringLiteralExpr wraps a NodeStringLiteral used in expression position
// (as opposed to an import URI, which reuses the same node kind).
type StringLiteralExpr struct{ red cst.Red }

func (e StringLiteralExpr) Span() cst.Span { return e.red.Span() }
func (e StringLiteralExpr) Red() cst.Red   { return e.red }
func (StringLiteralExpr) isExpr()          {}

// Parts returns the alternating literal-text and placeholder parts of the
// string, in source order, so callers can evaluate interpolation sites
// without re-parsing.
func (e StringLiteralExpr) Parts() []StringPart {
	var out []StringPart
	for _, c := range e.red.Children() {
		switch c.Kind() {
		case token.StringText:
			out = append(out, StringPart{Text: c.Text()})
		case token.NodePlaceholder:
			ph := Placeholder{red: c}
			expr, _ := ph.Expr()
			out = append(out, StringPart{Placeholder: expr})
		}
	}
	return out
}

// StringPart is one element of a StringLiteralExpr: either a literal text
// run (Placeholder nil) or an interpolation (Text empty, Placeholder set).
type StringPart struct {
	Text        string
	Placeholder Expr
}

// NameRefExpr wraps a bare identifier reference.
type NameRefExpr struct{ red cst.Red }

func (e NameRefExpr) Span() cst.Span { return e.red.Span() }
func (e NameRefExpr) Red() cst.Red   { return e.red }
func (NameRefExpr) isExpr()          {}

func (e NameRefExpr) Name() string {
	if r, ok := e.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

// AccessExpr wraps `lhs.member`.
type AccessExpr struct{ red cst.Red }

func (e AccessExpr) Span() cst.Span { return e.red.Span() }
func (e AccessExpr) Red() cst.Red   { return e.red }
func (AccessExpr) isExpr()          {}

func (e AccessExpr) Object() (Expr, bool) {
	for _, c := range e.red.NonTrivia() {
		if x, ok := asExpr(c); ok {
			return x, true
		}
	}
	return nil, false
}

func (e AccessExpr) Member() string {
	idents := e.red.ChildrenOfKind(token.Ident)
	if len(idents) == 0 {
		return ""
	}
	return idents[len(idents)-1].Text()
}

// IndexExpr wraps `lhs[index]`.
type IndexExpr struct{ red cst.Red }

func (e IndexExpr) Span() cst.Span { return e.red.Span() }
func (e IndexExpr) Red() cst.Red   { return e.red }
func (IndexExpr) isExpr()          {}

func (e IndexExpr) Object() (Expr, bool) {
	for _, c := range e.red.NonTrivia() {
		if x, ok := asExpr(c); ok {
			return x, true
		}
	}
	return nil, false
}

func (e IndexExpr) Index() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) < 2 {
		return nil, false
	}
	return exprs[1], true
}

// CallExpr wraps `callee(args...)` (WDL standard library calls).
type CallExpr struct{ red cst.Red }

func (e CallExpr) Span() cst.Span { return e.red.Span() }
func (e CallExpr) Red() cst.Red   { return e.red }
func (CallExpr) isExpr()          {}

func (e CallExpr) Callee() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) == 0 {
		return nil, false
	}
	return exprs[0], true
}

func (e CallExpr) Args() []Expr {
	exprs := exprChildren(e.red)
	if len(exprs) == 0 {
		return nil
	}
	return exprs[1:]
}

// IfExpr wraps `if cond then a else b`.
type IfExpr struct{ red cst.Red }

func (e IfExpr) Span() cst.Span { return e.red.Span() }
func (e IfExpr) Red() cst.Red   { return e.red }
func (IfExpr) isExpr()          {}

func (e IfExpr) Parts() (cond, then, els Expr, ok bool) {
	exprs := exprChildren(e.red)
	if len(exprs) != 3 {
		return nil, nil, nil, false
	}
	return exprs[0], exprs[1], exprs[2], true
}

// BinaryExpr wraps a binary operator application.
type BinaryExpr struct{ red cst.Red }

func (e BinaryExpr) Span() cst.Span { return e.red.Span() }
func (e BinaryExpr) Red() cst.Red   { return e.red }
func (BinaryExpr) isExpr()          {}

func (e BinaryExpr) Left() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) == 0 {
		return nil, false
	}
	return exprs[0], true
}

func (e BinaryExpr) Right() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) < 2 {
		return nil, false
	}
	return exprs[1], true
}

// Operator returns the binary operator token's kind.
func (e BinaryExpr) Operator() token.SyntaxKind {
	for _, c := range e.red.NonTrivia() {
		if _, ok := asExpr(c); !ok {
			return c.Kind()
		}
	}
	return token.Unknown
}

// UnaryExpr wraps a unary operator application.
type UnaryExpr struct{ red cst.Red }

func (e UnaryExpr) Span() cst.Span { return e.red.Span() }
func (e UnaryExpr) Red() cst.Red   { return e.red }
func (UnaryExpr) isExpr()          {}

func (e UnaryExpr) Operator() token.SyntaxKind {
	for _, c := range e.red.NonTrivia() {
		if _, ok := asExpr(c); !ok {
			return c.Kind()
		}
	}
	return token.Unknown
}

func (e UnaryExpr) Operand() (Expr, bool) {
	for _, c := range e.red.NonTrivia() {
		if x, ok := asExpr(c); ok {
			return x, true
		}
	}
	return nil, false
}

// ParenExpr wraps `(expr)`.
type ParenExpr struct{ red cst.Red }

func (e ParenExpr) Span() cst.Span { return e.red.Span() }
func (e ParenExpr) Red() cst.Red   { return e.red }
func (ParenExpr) isExpr()          {}

func (e ParenExpr) Inner() (Expr, bool) {
	for _, c := range e.red.NonTrivia() {
		if x, ok := asExpr(c); ok {
			return x, true
		}
	}
	return nil, false
}

// ArrayLiteralExpr wraps `[a, b, c]`.
type ArrayLiteralExpr struct{ red cst.Red }

func (e ArrayLiteralExpr) Span() cst.Span { return e.red.Span() }
func (e ArrayLiteralExpr) Red() cst.Red   { return e.red }
func (ArrayLiteralExpr) isExpr()          {}

func (e ArrayLiteralExpr) Elements() []Expr {
	return exprChildren(e.red)
}

// PairLiteralExpr wraps `(a, b)` in expression (not type) position.
type PairLiteralExpr struct{ red cst.Red }

func (e PairLiteralExpr) Span() cst.Span { return e.red.Span() }
func (e PairLiteralExpr) Red() cst.Red   { return e.red }
func (PairLiteralExpr) isExpr()          {}

func (e PairLiteralExpr) Left() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) == 0 {
		return nil, false
	}
	return exprs[0], true
}

func (e PairLiteralExpr) Right() (Expr, bool) {
	exprs := exprChildren(e.red)
	if len(exprs) < 2 {
		return nil, false
	}
	return exprs[1], true
}

// MapLiteralExpr wraps `{k: v, ...}`.
type MapLiteralExpr struct{ red cst.Red }

func (e MapLiteralExpr) Span() cst.Span { return e.red.Span() }
func (e MapLiteralExpr) Red() cst.Red   { return e.red }
func (MapLiteralExpr) isExpr()          {}

// MapEntry is one key/value pair of a MapLiteralExpr.
type MapEntry struct {
	Key, Value Expr
}

func (e MapLiteralExpr) Entries() []MapEntry {
	var out []MapEntry
	for _, item := range e.red.ChildrenOfKind(token.NodeMapItem) {
		exprs := exprChildren(item)
		if len(exprs) != 2 {
			continue
		}
		out = append(out, MapEntry{Key: exprs[0], Value: exprs[1]})
	}
	return out
}

// ObjectLiteralExpr wraps `object { name: v, ... }`.
type ObjectLiteralExpr struct{ red cst.Red }

func (e ObjectLiteralExpr) Span() cst.Span { return e.red.Span() }
func (e ObjectLiteralExpr) Red() cst.Red   { return e.red }
func (ObjectLiteralExpr) isExpr()          {}

// ObjectEntry is one `name: value` pair of an ObjectLiteralExpr.
type ObjectEntry struct {
	Name  string
	Value Expr
}

func (e ObjectLiteralExpr) Entries() []ObjectEntry {
	var out []ObjectEntry
	for _, item := range e.red.ChildrenOfKind(token.NodeObjectItem) {
		name := ""
		if r, ok := item.FirstChildOfKind(token.Ident); ok {
			name = r.Text()
		}
		exprs := exprChildren(item)
		if len(exprs) != 1 {
			continue
		}
		out = append(out, ObjectEntry{Name: name, Value: exprs[0]})
	}
	return out
}

// exprChildren returns every direct non-trivia child of parent that is
// itself an Expr, in source order. Used by the n-ary node kinds (call, if,
// binary, index, pair, array) whose children are entirely expressions.
func exprChildren(parent cst.Red) []Expr {
	var out []Expr
	for _, c := range parent.NonTrivia() {
		if e, ok := asExpr(c); ok {
			out = append(out, e)
		}
	}
	return out
}
