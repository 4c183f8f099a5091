// Package wdltype implements the WDL type system: a closed set of
// primitive and compound types, coercion rules between them, and a
// per-document arena that interns compound and struct types so they can
// be referenced by a small integer id instead of a pointer (see
// DESIGN.md), generalized from runtime values to static types.
package wdltype

import "fmt"

// Kind discriminates the shape of a Type.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindInt
	KindFloat
	KindString
	KindFile
	KindDirectory
	KindNone  // the type of the `None` literal; coerces to T? for any T
	KindUnion // indeterminate type standing in for a prior error

	KindArray
	KindMap
	KindPair
	KindObject
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindFile:
		return "File"
	case KindDirectory:
		return "Directory"
	case KindNone:
		return "None"
	case KindUnion:
		return "Union"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindPair:
		return "Pair"
	case KindObject:
		return "Object"
	case KindStruct:
		return "Struct"
	default:
		return "Kind(?)"
	}
}

// ID is an index into an Arena. The zero ID is never a valid allocated type;
// arenas reserve it as a sentinel.
type ID int

// Type is an interned type value. Primitive kinds (everything but Array,
// Map, Pair, Object, Struct) are singletons per arena -- two decls of type
// `Int` share the same ID. Array, Map, Pair, and struct types are stored
// once each; Object types are allocated fresh on every Arena.Object call.
// Member fields reference other IDs in the same arena.
type Type struct {
	Kind     Kind
	Optional bool

	// Array
	Elem ID

	// Array only: `Array[T]+` requires a statically non-empty source to
	// coerce into it.
	NonEmpty bool

	// Map
	Key, Value ID

	// Pair
	Left, Right ID

	// Struct
	Name    string
	Members []Member // ordered; order matters for Map[String,Y]<->Struct coercion member-count checks, not ordering itself
}

// Member is one named, typed field of a Struct type.
type Member struct {
	Name string
	Type ID
}

func (t Type) String() string {
	switch t.Kind {
	case KindArray:
		suffix := ""
		if t.NonEmpty {
			suffix = "+"
		}
		return fmt.Sprintf("Array[%d]%s%s", t.Elem, suffix, optSuffix(t.Optional))
	case KindMap:
		return fmt.Sprintf("Map[%d,%d]%s", t.Key, t.Value, optSuffix(t.Optional))
	case KindPair:
		return fmt.Sprintf("Pair[%d,%d]%s", t.Left, t.Right, optSuffix(t.Optional))
	case KindStruct:
		return t.Name + optSuffix(t.Optional)
	default:
		return t.Kind.String() + optSuffix(t.Optional)
	}
}

func optSuffix(optional bool) string {
	if optional {
		return "?"
	}
	return ""
}
