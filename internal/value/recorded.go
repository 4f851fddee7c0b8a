package value

import (
	"fmt"
	"sort"
)

// RecordedKind identifies a RecordedValue's variant (spec.md §3.1's
// "restricted serializable universe").
type RecordedKind int

const (
	RNone RecordedKind = iota
	RBool
	RInt
	RFloat
	RString
	RBytes
	RList
	RDict
)

// RecordedValue is the runtime value universe used inside plans, the
// cache, and the compiled-schema format: no functions, no shared
// mutability, fully serializable.
type RecordedValue struct {
	Kind  RecordedKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Bytes []byte
	List  []RecordedValue
	Dict  *OrderedDict
}

func RNoneVal() RecordedValue                { return RecordedValue{Kind: RNone} }
func RBoolVal(b bool) RecordedValue          { return RecordedValue{Kind: RBool, Bool: b} }
func RIntVal(i int64) RecordedValue          { return RecordedValue{Kind: RInt, Int: i} }
func RFloatVal(f float64) RecordedValue      { return RecordedValue{Kind: RFloat, Float: f} }
func RStringVal(s string) RecordedValue      { return RecordedValue{Kind: RString, Str: s} }
func RBytesVal(b []byte) RecordedValue       { return RecordedValue{Kind: RBytes, Bytes: b} }
func RListVal(items []RecordedValue) RecordedValue {
	return RecordedValue{Kind: RList, List: items}
}
func RDictVal(d *OrderedDict) RecordedValue { return RecordedValue{Kind: RDict, Dict: d} }

// Truthy implements Python-style truthiness for recorded values.
func (r RecordedValue) Truthy() bool {
	switch r.Kind {
	case RNone:
		return false
	case RBool:
		return r.Bool
	case RInt:
		return r.Int != 0
	case RFloat:
		return r.Float != 0
	case RString:
		return r.Str != ""
	case RBytes:
		return len(r.Bytes) > 0
	case RList:
		return len(r.List) > 0
	case RDict:
		return r.Dict != nil && r.Dict.Len() > 0
	default:
		return false
	}
}

// Equal implements structural equality (spec.md §4.3 Eq/Ne semantics).
func (r RecordedValue) Equal(other RecordedValue) bool {
	if r.Kind != other.Kind {
		// Int/Float cross-kind equality follows numeric promotion rules.
		if r.Kind == RInt && other.Kind == RFloat {
			return float64(r.Int) == other.Float
		}
		if r.Kind == RFloat && other.Kind == RInt {
			return r.Float == float64(other.Int)
		}
		return false
	}
	switch r.Kind {
	case RNone:
		return true
	case RBool:
		return r.Bool == other.Bool
	case RInt:
		return r.Int == other.Int
	case RFloat:
		return r.Float == other.Float
	case RString:
		return r.Str == other.Str
	case RBytes:
		if len(r.Bytes) != len(other.Bytes) {
			return false
		}
		for i := range r.Bytes {
			if r.Bytes[i] != other.Bytes[i] {
				return false
			}
		}
		return true
	case RList:
		if len(r.List) != len(other.List) {
			return false
		}
		for i := range r.List {
			if !r.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case RDict:
		if r.Dict == nil || other.Dict == nil {
			return r.Dict == other.Dict
		}
		if r.Dict.Len() != other.Dict.Len() {
			return false
		}
		for _, k := range r.Dict.Keys() {
			ov, ok := other.Dict.Get(k)
			if !ok {
				return false
			}
			rv, _ := r.Dict.Get(k)
			if !rv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

func (r RecordedValue) String() string {
	switch r.Kind {
	case RNone:
		return "None"
	case RBool:
		if r.Bool {
			return "True"
		}
		return "False"
	case RInt:
		return fmt.Sprintf("%d", r.Int)
	case RFloat:
		return fmt.Sprintf("%g", r.Float)
	case RString:
		return r.Str
	case RBytes:
		return fmt.Sprintf("b'%s'", r.Bytes)
	case RList:
		return fmt.Sprintf("%v", r.List)
	case RDict:
		return fmt.Sprintf("%v", r.Dict)
	}
	return "?"
}

// OrderedDict is the insertion-ordered string-keyed map backing
// RecordedValue's Dict variant.
type OrderedDict struct {
	keys   []string
	values map[string]RecordedValue
}

func NewOrderedDict() *OrderedDict {
	return &OrderedDict{values: make(map[string]RecordedValue)}
}

func (d *OrderedDict) Get(key string) (RecordedValue, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *OrderedDict) Set(key string, v RecordedValue) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *OrderedDict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *OrderedDict) SortedKeys() []string {
	out := d.Keys()
	sort.Strings(out)
	return out
}

func (d *OrderedDict) Len() int { return len(d.keys) }
