package value

import (
	"fmt"

	"github.com/dekarrin/wdlcore/internal/wdltype"
)

// Coerce converts v (whose static type is `from` in arena a) to `to`,
// allocating a freshly-allocated compound in s when the target is
// compound -- per spec.md §4.6, "a coerced compound is freshly allocated".
// It mirrors wdltype.IsCoercibleTo's table exactly; callers are expected to
// have already confirmed coercibility via that function (or accept the
// error this returns if they have not).
func Coerce(a *wdltype.Arena, s *Store, v Value, from, to wdltype.ID) (Value, error) {
	if !wdltype.IsCoercibleTo(a, from, to) {
		return Value{}, fmt.Errorf("value: %s is not coercible to %s", a.Get(from), a.Get(to))
	}

	ft, tt := a.Get(from), a.Get(to)

	if ft.Kind == wdltype.KindUnion || tt.Kind == wdltype.KindUnion {
		return v, nil
	}
	if ft.Kind == wdltype.KindNone {
		return v, nil
	}

	switch ft.Kind {
	case wdltype.KindBoolean, wdltype.KindFloat:
		return v, nil
	case wdltype.KindInt:
		if tt.Kind == wdltype.KindFloat {
			return Float(float64(v.Int)), nil
		}
		return v, nil
	case wdltype.KindString, wdltype.KindFile, wdltype.KindDirectory:
		return coerceStringlike(s, v, tt.Kind), nil
	case wdltype.KindArray:
		return coerceArray(a, s, v, ft, tt, to)
	case wdltype.KindMap:
		return coerceMap(a, s, v, ft, tt, to)
	case wdltype.KindPair:
		return coercePair(a, s, v, ft, tt, to)
	case wdltype.KindStruct:
		return coerceStruct(a, s, v, tt, to)
	case wdltype.KindObject:
		return coerceObject(a, s, v, tt, to)
	}
	return v, nil
}

func coerceStringlike(s *Store, v Value, toKind wdltype.Kind) Value {
	str := s.String(v)
	out := v
	out.Kind = toKind
	out.Str = s.internString(str)
	return out
}

func coerceArray(a *wdltype.Arena, s *Store, v Value, ft, tt wdltype.Type, to wdltype.ID) (Value, error) {
	elems := s.Elements(v)
	out := make([]Value, len(elems))
	for i, e := range elems {
		c, err := Coerce(a, s, e, ft.Elem, tt.Elem)
		if err != nil {
			return Value{}, err
		}
		out[i] = c
	}
	return s.Array(out, to), nil
}

func coerceMap(a *wdltype.Arena, s *Store, v Value, ft, tt wdltype.Type, to wdltype.ID) (Value, error) {
	keys, values := s.MapEntries(v)
	outK := make([]Value, len(keys))
	outV := make([]Value, len(values))
	for i := range keys {
		ck, err := Coerce(a, s, keys[i], ft.Key, tt.Key)
		if err != nil {
			return Value{}, err
		}
		cv, err := Coerce(a, s, values[i], ft.Value, tt.Value)
		if err != nil {
			return Value{}, err
		}
		outK[i] = ck
		outV[i] = cv
	}
	return s.Map(outK, outV, to), nil
}

func coercePair(a *wdltype.Arena, s *Store, v Value, ft, tt wdltype.Type, to wdltype.ID) (Value, error) {
	left, right := s.PairParts(v)
	cl, err := Coerce(a, s, left, ft.Left, tt.Left)
	if err != nil {
		return Value{}, err
	}
	cr, err := Coerce(a, s, right, ft.Right, tt.Right)
	if err != nil {
		return Value{}, err
	}
	return s.Pair(cl, cr, to), nil
}

func coerceStruct(a *wdltype.Arena, s *Store, v Value, tt wdltype.Type, to wdltype.ID) (Value, error) {
	names, values := s.Fields(v)
	switch tt.Kind {
	case wdltype.KindObject:
		return s.Object(names, values, to), nil
	case wdltype.KindStruct:
		byName := make(map[string]Value, len(names))
		for i, n := range names {
			byName[n] = values[i]
		}
		outNames := make([]string, len(tt.Members))
		outValues := make([]Value, len(tt.Members))
		for i, m := range tt.Members {
			src, ok := byName[m.Name]
			if !ok {
				return Value{}, fmt.Errorf("value: source struct missing member %q", m.Name)
			}
			c, err := Coerce(a, s, src, src.TypeID, m.Type)
			if err != nil {
				return Value{}, err
			}
			outNames[i] = m.Name
			outValues[i] = c
		}
		return s.Struct(to, outNames, outValues), nil
	case wdltype.KindMap:
		outKeys := make([]Value, len(names))
		outValues := make([]Value, len(values))
		for i, n := range names {
			outKeys[i] = s.String_(n)
			c, err := Coerce(a, s, values[i], values[i].TypeID, tt.Value)
			if err != nil {
				return Value{}, err
			}
			outValues[i] = c
		}
		return s.Map(outKeys, outValues, to), nil
	}
	return Value{}, fmt.Errorf("value: cannot coerce struct to %s", tt.Kind)
}

func coerceObject(a *wdltype.Arena, s *Store, v Value, tt wdltype.Type, to wdltype.ID) (Value, error) {
	names, values := s.Fields(v)
	switch tt.Kind {
	case wdltype.KindStruct:
		byName := make(map[string]Value, len(names))
		for i, n := range names {
			byName[n] = values[i]
		}
		outNames := make([]string, len(tt.Members))
		outValues := make([]Value, len(tt.Members))
		for i, m := range tt.Members {
			src, ok := byName[m.Name]
			if !ok {
				return Value{}, fmt.Errorf("value: source object missing member %q", m.Name)
			}
			outNames[i] = m.Name
			outValues[i] = src
		}
		return s.Struct(to, outNames, outValues), nil
	case wdltype.KindMap:
		outKeys := make([]Value, len(names))
		for i, n := range names {
			outKeys[i] = s.String_(n)
		}
		return s.Map(outKeys, values, to), nil
	case wdltype.KindObject:
		return s.Object(names, values, to), nil
	}
	return Value{}, fmt.Errorf("value: cannot coerce object to %s", tt.Kind)
}
