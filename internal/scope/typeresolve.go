package scope

import (
	"github.com/dekarrin/wdlcore/internal/syntax/ast"
	"github.com/dekarrin/wdlcore/internal/syntax/cst"
	"github.com/dekarrin/wdlcore/internal/syntax/token"
	"github.com/dekarrin/wdlcore/internal/wdlerrors"
	"github.com/dekarrin/wdlcore/internal/wdltype"
)

// typeResolver turns ast.Type nodes into wdltype.ID values against one
// document's arena and struct table, collecting diagnostics for unresolved
// type references along the way.
type typeResolver struct {
	doc   *Document
	diags *[]wdlerrors.Diagnostic
}

func toWdlSpan(s cst.Span) wdlerrors.Span {
	return wdlerrors.Span{Start: s.Start, Len: s.Len}
}

func (r *typeResolver) errorf(span cst.Span, format string, args ...interface{}) wdltype.ID {
	*r.diags = append(*r.diags, wdlerrors.Newf(toWdlSpan(span), format, args...))
	return r.doc.Arena.Primitive(wdltype.KindUnion)
}

// resolve converts t into a wdltype.ID, looking up struct references in
// r.doc.Structs (which must already be fully populated -- see
// resolveStructDefinitions, which runs before any task/workflow is
// resolved).
func (r *typeResolver) resolve(t ast.Type) wdltype.ID {
	switch tt := t.(type) {
	case ast.PrimitiveOrRefType:
		if tt.IsTypeRef() {
			id, ok := r.doc.Structs[tt.RefName()]
			if !ok {
				return r.errorf(tt.Span(), "undefined type %q", tt.RefName())
			}
			if tt.Optional() {
				return r.optionalOf(id)
			}
			return id
		}
		return r.primitiveKeyword(tt)
	case ast.ArrayType:
		elemType, ok := tt.Element()
		if !ok {
			return r.errorf(tt.Span(), "array type missing element type")
		}
		elem := r.resolve(elemType)
		return r.doc.Arena.Array(elem, tt.NonEmpty(), tt.Optional())
	case ast.MapType:
		k, v, ok := tt.KeyValue()
		if !ok {
			return r.errorf(tt.Span(), "map type missing key/value types")
		}
		return r.doc.Arena.Map(r.resolve(k), r.resolve(v), tt.Optional())
	case ast.PairType:
		l, rr, ok := tt.LeftRight()
		if !ok {
			return r.errorf(tt.Span(), "pair type missing left/right types")
		}
		return r.doc.Arena.Pair(r.resolve(l), r.resolve(rr), tt.Optional())
	case ast.ObjectType:
		return r.doc.Arena.Object(tt.Optional())
	default:
		return r.errorf(t.Span(), "unrecognized type node")
	}
}

// optionalOf returns the optional form of id.
func (r *typeResolver) optionalOf(id wdltype.ID) wdltype.ID {
	return r.doc.Arena.ToOptional(id)
}

func (r *typeResolver) primitiveKeyword(t ast.PrimitiveOrRefType) wdltype.ID {
	var kind wdltype.Kind
	switch t.Keyword() {
	case token.KwBoolean:
		kind = wdltype.KindBoolean
	case token.KwInt:
		kind = wdltype.KindInt
	case token.KwFloat:
		kind = wdltype.KindFloat
	case token.KwString:
		kind = wdltype.KindString
	case token.KwFile:
		kind = wdltype.KindFile
	case token.KwDirectory:
		kind = wdltype.KindDirectory
	case token.KwNone:
		kind = wdltype.KindNone
	case token.KwObject:
		return r.doc.Arena.Object(t.Optional())
	default:
		return r.errorf(t.Span(), "unrecognized primitive type keyword")
	}
	if t.Optional() {
		return r.doc.Arena.OptionalPrimitive(kind)
	}
	return r.doc.Arena.Primitive(kind)
}

// collectTypeRefs returns every struct name referenced (directly or via a
// compound wrapper) by t, used to build the struct dependency graph before
// any struct is actually resolved.
func collectTypeRefs(t ast.Type) []string {
	switch tt := t.(type) {
	case ast.PrimitiveOrRefType:
		if tt.IsTypeRef() {
			return []string{tt.RefName()}
		}
		return nil
	case ast.ArrayType:
		if e, ok := tt.Element(); ok {
			return collectTypeRefs(e)
		}
	case ast.MapType:
		if k, v, ok := tt.KeyValue(); ok {
			return append(collectTypeRefs(k), collectTypeRefs(v)...)
		}
	case ast.PairType:
		if l, rr, ok := tt.LeftRight(); ok {
			return append(collectTypeRefs(l), collectTypeRefs(rr)...)
		}
	}
	return nil
}

// resolveStructDefinitions populates d.Structs from doc's local struct
// definitions, merging with whatever imports have already contributed.
// Per spec.md §4.4, a struct whose member types form a dependency cycle
// (through other local structs) is rejected with a diagnostic rather than
// resolved, since the arena has no way to represent an infinitely-unrollable
// type.
func resolveStructDefinitions(d *Document, structs []ast.StructDefinition) []wdlerrors.Diagnostic {
	var diags []wdlerrors.Diagnostic

	defsByName := map[string]ast.StructDefinition{}
	for _, s := range structs {
		name := s.Name()
		if _, dup := defsByName[name]; dup {
			diags = append(diags, wdlerrors.Newf(toWdlSpan(s.Span()), "duplicate struct definition %q", name))
			continue
		}
		defsByName[name] = s
	}

	deps := map[string][]string{}
	for name, s := range defsByName {
		var ds []string
		for _, m := range s.Members() {
			if t, ok := m.Type(); ok {
				ds = append(ds, collectTypeRefs(t)...)
			}
		}
		deps[name] = ds
	}

	cyclic := findCyclicStructs(defsByName, deps)
	for name := range cyclic {
		diags = append(diags, wdlerrors.Newf(toWdlSpan(defsByName[name].Span()), "struct %q is defined recursively", name))
	}

	resolver := &typeResolver{doc: d, diags: &diags}
	resolved := map[string]bool{}
	var resolve func(name string)
	resolve = func(name string) {
		if resolved[name] || cyclic[name] {
			return
		}
		if _, ok := d.Structs[name]; ok {
			resolved[name] = true
			return
		}
		s, ok := defsByName[name]
		if !ok {
			return // imported or unknown; leave to later diagnostic at use site
		}
		resolved[name] = true // mark before recursing to tolerate self-ref safety net
		for _, dep := range deps[name] {
			resolve(dep)
		}
		members := make([]wdltype.Member, 0, len(s.Members()))
		for _, m := range s.Members() {
			t, ok := m.Type()
			if !ok {
				diags = append(diags, wdlerrors.Newf(toWdlSpan(m.Span()), "struct member %q missing a type", m.Name()))
				continue
			}
			members = append(members, wdltype.Member{Name: m.Name(), Type: resolver.resolve(t)})
		}
		d.Structs[name] = d.Arena.DefineStruct(name, members)
	}

	for name := range defsByName {
		resolve(name)
	}

	return diags
}

// findCyclicStructs reports every struct name that participates in a
// dependency cycle through deps, using a standard white/gray/black DFS.
func findCyclicStructs(defsByName map[string]ast.StructDefinition, deps map[string][]string) map[string]bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	cyclic := map[string]bool{}

	var visit func(name string, stack []string) bool
	visit = func(name string, stack []string) bool {
		if _, ok := defsByName[name]; !ok {
			return false
		}
		switch color[name] {
		case gray:
			// found a cycle: every name from the first occurrence of name
			// in stack onward is part of it.
			start := 0
			for i, s := range stack {
				if s == name {
					start = i
					break
				}
			}
			for _, s := range stack[start:] {
				cyclic[s] = true
			}
			return true
		case black:
			return false
		}
		color[name] = gray
		stack = append(stack, name)
		found := false
		for _, dep := range deps[name] {
			if visit(dep, stack) {
				found = true
			}
		}
		color[name] = black
		return found
	}

	for name := range defsByName {
		visit(name, nil)
	}
	return cyclic
}
