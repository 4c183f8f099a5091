package wdltype

// IsCoercibleTo implements the coercion table from spec.md §4.5. Both IDs
// must belong to arenas rooted at a (struct member lookups recurse within a
// only; cross-arena coercion checks are not needed because by the time
// coercion is checked, every type involved has already been copied into the
// document's own arena per the import rule).
func IsCoercibleTo(a *Arena, from, to ID) bool {
	ft, tt := a.Get(from), a.Get(to)

	if ft.Kind == KindUnion || tt.Kind == KindUnion {
		return true
	}
	if ft.Kind == KindNone {
		return tt.Optional
	}

	switch ft.Kind {
	case KindBoolean:
		return tt.Kind == KindBoolean
	case KindInt:
		return tt.Kind == KindInt || tt.Kind == KindFloat
	case KindFloat:
		return tt.Kind == KindFloat
	case KindString:
		return tt.Kind == KindString || tt.Kind == KindFile || tt.Kind == KindDirectory
	case KindFile:
		return tt.Kind == KindFile || tt.Kind == KindString
	case KindDirectory:
		return tt.Kind == KindDirectory || tt.Kind == KindString
	case KindArray:
		return arrayCoercible(a, ft, tt)
	case KindMap:
		return mapCoercible(a, ft, tt)
	case KindPair:
		return pairCoercible(a, ft, tt)
	case KindStruct:
		return structCoercible(a, ft, tt)
	case KindObject:
		return objectCoercible(a, ft, tt)
	}
	return false
}

func arrayCoercible(a *Arena, ft, tt Type) bool {
	if tt.Kind != KindArray {
		return false
	}
	if !IsCoercibleTo(a, ft.Elem, tt.Elem) {
		return false
	}
	if tt.NonEmpty && !ft.NonEmpty {
		return false
	}
	return true
}

func mapCoercible(a *Arena, ft, tt Type) bool {
	switch tt.Kind {
	case KindMap:
		return IsCoercibleTo(a, ft.Key, tt.Key) && IsCoercibleTo(a, ft.Value, tt.Value)
	case KindStruct:
		// Map[String,Y] <-> Struct: member counts equal, all names present,
		// each member coercible. Without member names on a Map type, this
		// direction is validated at the call site (scope/type-check layer)
		// where the literal's actual keys are known; the Arena alone can't
		// decide it for an abstract Map[String,Y] id, so report true here
		// and let the caller (which has the literal) perform the per-key
		// check via StructFieldsCoercibleFromMap.
		return a.Get(ft.Key).Kind == KindString
	default:
		return false
	}
}

func pairCoercible(a *Arena, ft, tt Type) bool {
	if tt.Kind != KindPair {
		return false
	}
	return IsCoercibleTo(a, ft.Left, tt.Left) && IsCoercibleTo(a, ft.Right, tt.Right)
}

func structCoercible(a *Arena, ft, tt Type) bool {
	switch tt.Kind {
	case KindStruct:
		return structMembersCoercible(a, ft.Members, tt.Members)
	case KindObject:
		return true
	case KindMap:
		return a.Get(tt.Key).Kind == KindString
	default:
		return false
	}
}

func objectCoercible(a *Arena, ft, tt Type) bool {
	switch tt.Kind {
	case KindStruct:
		return true
	case KindMap:
		return a.Get(tt.Key).Kind == KindString
	case KindObject:
		return true
	default:
		return false
	}
}

// structMembersCoercible implements the "member counts equal, all member
// names present, each member coerces" rule for Struct->Struct. The
// Map[String,Y]->Struct check lives in StructFieldsCoercibleFromMap.
func structMembersCoercible(a *Arena, from, to []Member) bool {
	if len(from) != len(to) {
		return false
	}
	byName := make(map[string]ID, len(from))
	for _, m := range from {
		byName[m.Name] = m.Type
	}
	for _, m := range to {
		fromID, ok := byName[m.Name]
		if !ok {
			return false
		}
		if !IsCoercibleTo(a, fromID, m.Type) {
			return false
		}
	}
	return true
}

// StructFieldsCoercibleFromMap checks the member-name/coercion half of the
// Map[String,Y] -> Struct rule that needs the map literal's actual key set
// (unavailable from the Map type alone): every struct member name must be
// present among mapKeys, and the literal's value type (assumed uniformly Y,
// the map's value type) must coerce to that member's type.
func StructFieldsCoercibleFromMap(a *Arena, mapValueType ID, structID ID, mapKeys []string) bool {
	st := a.Get(structID)
	if st.Kind != KindStruct {
		return false
	}
	if len(mapKeys) != len(st.Members) {
		return false
	}
	keySet := make(map[string]bool, len(mapKeys))
	for _, k := range mapKeys {
		keySet[k] = true
	}
	for _, m := range st.Members {
		if !keySet[m.Name] {
			return false
		}
		if !IsCoercibleTo(a, mapValueType, m.Type) {
			return false
		}
	}
	return true
}

// Coerce returns the type to-coerce-to's ID if IsCoercibleTo(a, from, to)
// holds, else 0 and false. Static coercibility is a pure function of the two
// IDs -- "coercing a type" just means "yes, that target ID is a legal
// destination"; producing an actual coerced runtime value is the job of
// internal/value.Coerce, which mirrors this table (spec.md §4.6).
func Coerce(a *Arena, from, to ID) (ID, bool) {
	if IsCoercibleTo(a, from, to) {
		return to, true
	}
	return 0, false
}
