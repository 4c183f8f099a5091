// Package value implements the runtime value model: typed values parallel
// to internal/wdltype's static types, sharing the arena-of-ids pattern so
// compound values are never referenced by raw pointer. Strings, files,
// and directories share an interner, generalized to WDL's richer compound
// shapes (Pair, Array, Map, Object, Struct).
package value

import "github.com/dekarrin/wdlcore/internal/wdltype"

// ID indexes a compound value in a Store. Scalars are carried inline in a
// Value and never need one.
type ID int

// Value is a single typed runtime value. Scalars are stored inline;
// compounds reference their payload by ID into the owning Store.
type Value struct {
	Kind wdltype.Kind

	Bool   bool
	Int    int64
	Float  float64
	Str    int // index into Store.strings, for String/File/Directory kinds

	// Compound is set (non-zero) for Pair/Array/Map/Object/Struct kinds.
	Compound ID

	// TypeID is the value's static type, used to label Struct values with
	// which struct they are (and to round-trip through wdltype coercion
	// checks without re-deriving a type from scratch).
	TypeID wdltype.ID
}

// IsNone reports whether v represents the WDL `None` literal.
func (v Value) IsNone() bool {
	return v.Kind == wdltype.KindNone
}

// compoundPayload is the tagged union of compound storage shapes named in
// spec.md §4.6: `Pair(v,v) | Array([v]) | Map(ordered [k,v]) | Object(ordered
// [name,v]) | Struct(type_id, ordered [name,v])`.
type compoundPayload struct {
	kind wdltype.Kind

	// Pair
	left, right Value

	// Array
	elements []Value

	// Map (ordered)
	mapKeys   []Value
	mapValues []Value

	// Object / Struct (ordered)
	fieldNames  []string
	fieldValues []Value
}

// Store holds every compound value and interned string for one document's
// (or one execution's) runtime. Like wdltype.Arena, a Store belongs to a
// single owner and is never shared across goroutines without external
// synchronization.
type Store struct {
	compounds []compoundPayload
	strings   []string
	strIndex  map[string]int
}

// NewStore creates an empty Store. Compound ID 0 is reserved.
func NewStore() *Store {
	return &Store{
		compounds: []compoundPayload{{}},
		strIndex:  map[string]int{},
	}
}

func (s *Store) internString(str string) int {
	if i, ok := s.strIndex[str]; ok {
		return i
	}
	i := len(s.strings)
	s.strings = append(s.strings, str)
	s.strIndex[str] = i
	return i
}

// String returns the interned string backing a String/File/Directory value.
func (s *Store) String(v Value) string {
	return s.strings[v.Str]
}

func (s *Store) alloc(p compoundPayload) ID {
	id := ID(len(s.compounds))
	s.compounds = append(s.compounds, p)
	return id
}

// Boolean, Int, Float construct inline scalar values.
func Boolean(b bool) Value  { return Value{Kind: wdltype.KindBoolean, Bool: b} }
func Int(i int64) Value     { return Value{Kind: wdltype.KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: wdltype.KindFloat, Float: f} }
func None() Value           { return Value{Kind: wdltype.KindNone} }

// String, File, Directory intern str in s and return a scalar value
// referencing it.
func (s *Store) String_(str string) Value    { return Value{Kind: wdltype.KindString, Str: s.internString(str)} }
func (s *Store) File(str string) Value       { return Value{Kind: wdltype.KindFile, Str: s.internString(str)} }
func (s *Store) Directory(str string) Value  { return Value{Kind: wdltype.KindDirectory, Str: s.internString(str)} }

// Pair allocates a Pair(left, right) compound value.
func (s *Store) Pair(left, right Value, typeID wdltype.ID) Value {
	id := s.alloc(compoundPayload{kind: wdltype.KindPair, left: left, right: right})
	return Value{Kind: wdltype.KindPair, Compound: id, TypeID: typeID}
}

// Array allocates an Array([elements]) compound value.
func (s *Store) Array(elements []Value, typeID wdltype.ID) Value {
	id := s.alloc(compoundPayload{kind: wdltype.KindArray, elements: append([]Value(nil), elements...)})
	return Value{Kind: wdltype.KindArray, Compound: id, TypeID: typeID}
}

// Map allocates an ordered Map([(k,v)]) compound value. keys and values must
// be the same length and are paired positionally.
func (s *Store) Map(keys, values []Value, typeID wdltype.ID) Value {
	id := s.alloc(compoundPayload{
		kind:      wdltype.KindMap,
		mapKeys:   append([]Value(nil), keys...),
		mapValues: append([]Value(nil), values...),
	})
	return Value{Kind: wdltype.KindMap, Compound: id, TypeID: typeID}
}

// Object allocates an ordered Object compound value.
func (s *Store) Object(names []string, values []Value, typeID wdltype.ID) Value {
	id := s.alloc(compoundPayload{
		kind:        wdltype.KindObject,
		fieldNames:  append([]string(nil), names...),
		fieldValues: append([]Value(nil), values...),
	})
	return Value{Kind: wdltype.KindObject, Compound: id, TypeID: typeID}
}

// Struct allocates an ordered Struct(type_id, [(name,v)]) compound value.
func (s *Store) Struct(typeID wdltype.ID, names []string, values []Value) Value {
	id := s.alloc(compoundPayload{
		kind:        wdltype.KindStruct,
		fieldNames:  append([]string(nil), names...),
		fieldValues: append([]Value(nil), values...),
	})
	return Value{Kind: wdltype.KindStruct, Compound: id, TypeID: typeID}
}

// PairParts returns the left/right values of a Pair value.
func (s *Store) PairParts(v Value) (left, right Value) {
	p := s.compounds[v.Compound]
	return p.left, p.right
}

// Elements returns the element values of an Array value.
func (s *Store) Elements(v Value) []Value {
	return s.compounds[v.Compound].elements
}

// MapEntries returns the ordered key/value slices of a Map value.
func (s *Store) MapEntries(v Value) (keys, values []Value) {
	p := s.compounds[v.Compound]
	return p.mapKeys, p.mapValues
}

// Fields returns the ordered field names/values of an Object or Struct
// value.
func (s *Store) Fields(v Value) (names []string, values []Value) {
	p := s.compounds[v.Compound]
	return p.fieldNames, p.fieldValues
}
