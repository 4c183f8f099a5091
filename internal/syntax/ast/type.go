package ast

import (
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
)

// Type is the sum type described in spec.md §3:
//
//	Type = Primitive(kind, optional) | Array(elem, non-empty, optional)
//	     | Map(key, value, optional) | Pair(left, right, optional)
//	     | Object(optional) | TypeRef(name, optional)
type Type interface {
	Span() cst.Span
	Red() cst.Red
	Optional() bool
	isType()
}

func asType(r cst.Red) (Type, bool) {
	switch r.Kind() {
	case token.NodeType:
		return PrimitiveOrRefType{red: r}, true
	case token.NodeTypeArray:
		return ArrayType{red: r}, true
	case token.NodeTypeMap:
		return MapType{red: r}, true
	case token.NodeTypePair:
		return PairType{red: r}, true
	case token.NodeTypeObject:
		return ObjectType{red: r}, true
	default:
		return nil, false
	}
}

func hasOptionalMarker(r cst.Red) bool {
	_, ok := r.FirstChildOfKind(token.Question)
	return ok
}

// PrimitiveOrRefType wraps either a primitive type keyword (Int, String,
// ...) or a bare identifier referring to a struct name -- the grammar can't
// tell these apart without a symbol table, so both share one CST node kind
// (NodeType) and the scope builder is what resolves a TypeRef's identifier
// against struct definitions.
type PrimitiveOrRefType struct {
	red cst.Red
}

func (t PrimitiveOrRefType) Span() cst.Span  { return t.red.Span() }
func (t PrimitiveOrRefType) Red() cst.Red    { return t.red }
func (t PrimitiveOrRefType) Optional() bool  { return hasOptionalMarker(t.red) }
func (PrimitiveOrRefType) isType()           {}

// Keyword returns the type's leading token kind (e.g. token.KwInt,
// token.Ident for a struct reference).
func (t PrimitiveOrRefType) Keyword() token.SyntaxKind {
	for _, c := range t.red.Children() {
		if !c.Kind().IsTrivia() {
			return c.Kind()
		}
	}
	return token.Unknown
}

// IsTypeRef reports whether this node names a struct rather than a
// primitive: true exactly when Keyword() is token.Ident.
func (t PrimitiveOrRefType) IsTypeRef() bool {
	return t.Keyword() == token.Ident
}

// RefName returns the struct name if IsTypeRef, else "".
func (t PrimitiveOrRefType) RefName() string {
	if !t.IsTypeRef() {
		return ""
	}
	if r, ok := t.red.FirstChildOfKind(token.Ident); ok {
		return r.Text()
	}
	return ""
}

// ArrayType wraps `Array[elem]` or `Array[elem]+`.
type ArrayType struct {
	red cst.Red
}

func (t ArrayType) Span() cst.Span { return t.red.Span() }
func (t ArrayType) Red() cst.Red   { return t.red }
func (t ArrayType) Optional() bool { return hasOptionalMarker(t.red) }
func (ArrayType) isType()          {}

// NonEmpty reports whether the `+` (non-empty-array) marker is present.
func (t ArrayType) NonEmpty() bool {
	_, ok := t.red.FirstChildOfKind(token.Plus)
	return ok
}

func (t ArrayType) Element() (Type, bool) {
	for _, c := range t.red.NonTrivia() {
		if ty, ok := asType(c); ok {
			return ty, true
		}
	}
	return nil, false
}

// MapType wraps `Map[key, value]`.
type MapType struct {
	red cst.Red
}

func (t MapType) Span() cst.Span { return t.red.Span() }
func (t MapType) Red() cst.Red   { return t.red }
func (t MapType) Optional() bool { return hasOptionalMarker(t.red) }
func (MapType) isType()          {}

func (t MapType) KeyValue() (key, value Type, ok bool) {
	var types []Type
	for _, c := range t.red.NonTrivia() {
		if ty, tok := asType(c); tok {
			types = append(types, ty)
		}
	}
	if len(types) != 2 {
		return nil, nil, false
	}
	return types[0], types[1], true
}

// PairType wraps `Pair[left, right]`.
type PairType struct {
	red cst.Red
}

func (t PairType) Span() cst.Span { return t.red.Span() }
func (t PairType) Red() cst.Red   { return t.red }
func (t PairType) Optional() bool { return hasOptionalMarker(t.red) }
func (PairType) isType()          {}

func (t PairType) LeftRight() (left, right Type, ok bool) {
	var types []Type
	for _, c := range t.red.NonTrivia() {
		if ty, tok := asType(c); tok {
			types = append(types, ty)
		}
	}
	if len(types) != 2 {
		return nil, nil, false
	}
	return types[0], types[1], true
}

// ObjectType wraps the bare `Object` type keyword.
type ObjectType struct {
	red cst.Red
}

func (t ObjectType) Span() cst.Span { return t.red.Span() }
func (t ObjectType) Red() cst.Red   { return t.red }
func (t ObjectType) Optional() bool { return hasOptionalMarker(t.red) }
func (ObjectType) isType()          {}
