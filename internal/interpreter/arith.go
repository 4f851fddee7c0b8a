package interpreter

import (
	"sort"
	"strconv"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// The arithmetic, comparison and collection algorithms below mirror
// internal/generator/fold.go's op-by-op semantics exactly (spec.md §4.3),
// adapted from the generator-time value.Value universe to the runtime
// value.RecordedValue universe: same promotion rules, same error
// messages, same negative-indexing convention.

func numericR(v value.RecordedValue, what string) (f float64, isFloat bool, i int64, err error) {
	switch v.Kind {
	case value.RInt:
		return float64(v.Int), false, v.Int, nil
	case value.RFloat:
		return v.Float, true, 0, nil
	default:
		return 0, false, 0, bperrors.TypeError(nil, "unsupported operand type for %s: %v", what, v.Kind)
	}
}

func arith(kind plan.OpKind, l, r value.RecordedValue) (value.RecordedValue, error) {
	if kind == plan.OpAdd {
		if l.Kind == value.RString && r.Kind == value.RString {
			return value.RStringVal(l.Str + r.Str), nil
		}
		if l.Kind == value.RList && r.Kind == value.RList {
			return concatR(l, r)
		}
	}
	lf, lFloat, li, err := numericR(l, string(kind))
	if err != nil {
		return value.RecordedValue{}, err
	}
	rf, rFloat, ri, err := numericR(r, string(kind))
	if err != nil {
		return value.RecordedValue{}, err
	}
	isFloat := lFloat || rFloat
	switch kind {
	case plan.OpAdd:
		if isFloat {
			return value.RFloatVal(lf + rf), nil
		}
		return value.RIntVal(li + ri), nil
	case plan.OpSub:
		if isFloat {
			return value.RFloatVal(lf - rf), nil
		}
		return value.RIntVal(li - ri), nil
	case plan.OpMul:
		if isFloat {
			return value.RFloatVal(lf * rf), nil
		}
		return value.RIntVal(li * ri), nil
	case plan.OpDiv:
		if rf == 0 {
			return value.RecordedValue{}, bperrors.DivisionByZero(nil, "/")
		}
		return value.RFloatVal(lf / rf), nil
	case plan.OpFloorDiv:
		if isFloat {
			if rf == 0 {
				return value.RecordedValue{}, bperrors.DivisionByZero(nil, "//")
			}
			return value.RFloatVal(floorFloatR(lf / rf)), nil
		}
		if ri == 0 {
			return value.RecordedValue{}, bperrors.DivisionByZero(nil, "//")
		}
		return value.RIntVal(floorDivIntR(li, ri)), nil
	case plan.OpMod:
		if isFloat {
			if rf == 0 {
				return value.RecordedValue{}, bperrors.DivisionByZero(nil, "%")
			}
			return value.RFloatVal(pyModFloatR(lf, rf)), nil
		}
		if ri == 0 {
			return value.RecordedValue{}, bperrors.DivisionByZero(nil, "%")
		}
		return value.RIntVal(pyModIntR(li, ri)), nil
	}
	return value.RecordedValue{}, bperrors.InvalidOp(nil, "unhandled arithmetic op %s", kind)
}

func floorFloatR(f float64) float64 {
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return float64(i)
}

func floorDivIntR(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pyModIntR(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func pyModFloatR(a, b float64) float64 {
	return a - floorFloatR(a/b)*b
}

func compareR(kind plan.OpKind, l, r value.RecordedValue) (value.RecordedValue, error) {
	if l.Kind == value.RString && r.Kind == value.RString {
		a, b := l.Str, r.Str
		switch kind {
		case plan.OpLt:
			return value.RBoolVal(a < b), nil
		case plan.OpLe:
			return value.RBoolVal(a <= b), nil
		case plan.OpGt:
			return value.RBoolVal(a > b), nil
		case plan.OpGe:
			return value.RBoolVal(a >= b), nil
		}
	}
	lf, _, _, err := numericR(l, string(kind))
	if err != nil {
		return value.RecordedValue{}, err
	}
	rf, _, _, err := numericR(r, string(kind))
	if err != nil {
		return value.RecordedValue{}, err
	}
	switch kind {
	case plan.OpLt:
		return value.RBoolVal(lf < rf), nil
	case plan.OpLe:
		return value.RBoolVal(lf <= rf), nil
	case plan.OpGt:
		return value.RBoolVal(lf > rf), nil
	case plan.OpGe:
		return value.RBoolVal(lf >= rf), nil
	}
	return value.RecordedValue{}, bperrors.InvalidOp(nil, "unhandled comparison op %s", kind)
}

func negR(v value.RecordedValue) (value.RecordedValue, error) {
	switch v.Kind {
	case value.RInt:
		return value.RIntVal(-v.Int), nil
	case value.RFloat:
		return value.RFloatVal(-v.Float), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "bad operand type for unary -: %v", v.Kind)
	}
}

func concatR(l, r value.RecordedValue) (value.RecordedValue, error) {
	if l.Kind == value.RString && r.Kind == value.RString {
		return value.RStringVal(l.Str + r.Str), nil
	}
	if l.Kind == value.RList && r.Kind == value.RList {
		items := append(append([]value.RecordedValue{}, l.List...), r.List...)
		return value.RListVal(items), nil
	}
	return value.RecordedValue{}, bperrors.TypeError(nil, "can only concatenate matching list/string types, not %v and %v", l.Kind, r.Kind)
}

func containsR(haystack, needle value.RecordedValue) (value.RecordedValue, error) {
	switch haystack.Kind {
	case value.RString:
		return value.RBoolVal(containsSubstrR(haystack.Str, needle.Str)), nil
	case value.RList:
		for _, item := range haystack.List {
			if item.Equal(needle) {
				return value.RBoolVal(true), nil
			}
		}
		return value.RBoolVal(false), nil
	case value.RDict:
		if haystack.Dict == nil {
			return value.RBoolVal(false), nil
		}
		_, ok := haystack.Dict.Get(needle.Str)
		return value.RBoolVal(ok), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "argument of type %v is not iterable", haystack.Kind)
	}
}

func containsSubstrR(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func lenR(v value.RecordedValue) (value.RecordedValue, error) {
	switch v.Kind {
	case value.RString:
		return value.RIntVal(int64(len([]rune(v.Str)))), nil
	case value.RBytes:
		return value.RIntVal(int64(len(v.Bytes))), nil
	case value.RList:
		return value.RIntVal(int64(len(v.List))), nil
	case value.RDict:
		if v.Dict == nil {
			return value.RIntVal(0), nil
		}
		return value.RIntVal(int64(v.Dict.Len())), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "object of type %v has no len()", v.Kind)
	}
}

func normalizeIndexR(i, length int64) int64 {
	if i < 0 {
		return i + length
	}
	return i
}

func indexR(coll, idx value.RecordedValue) (value.RecordedValue, error) {
	switch coll.Kind {
	case value.RList:
		i := normalizeIndexR(idx.Int, int64(len(coll.List)))
		if i < 0 || i >= int64(len(coll.List)) {
			return value.RecordedValue{}, bperrors.IndexError(nil, "list index out of range")
		}
		return coll.List[i], nil
	case value.RString:
		runes := []rune(coll.Str)
		i := normalizeIndexR(idx.Int, int64(len(runes)))
		if i < 0 || i >= int64(len(runes)) {
			return value.RecordedValue{}, bperrors.IndexError(nil, "string index out of range")
		}
		return value.RStringVal(string(runes[i])), nil
	case value.RDict:
		if coll.Dict == nil {
			return value.RecordedValue{}, bperrors.KeyError(nil, "%q", idx.Str)
		}
		v, ok := coll.Dict.Get(idx.Str)
		if !ok {
			return value.RecordedValue{}, bperrors.KeyError(nil, "%q", idx.Str)
		}
		return v, nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "%v object is not subscriptable", coll.Kind)
	}
}

// setIndexR implements spec.md §4.3's rule that SetIndex returns the
// updated collection rather than mutating a shared cache entry.
func setIndexR(coll, idx, newVal value.RecordedValue) (value.RecordedValue, error) {
	switch coll.Kind {
	case value.RList:
		items := append([]value.RecordedValue{}, coll.List...)
		i := normalizeIndexR(idx.Int, int64(len(items)))
		if i < 0 || i >= int64(len(items)) {
			return value.RecordedValue{}, bperrors.IndexError(nil, "list assignment index out of range")
		}
		items[i] = newVal
		return value.RListVal(items), nil
	case value.RDict:
		out := value.NewOrderedDict()
		if coll.Dict != nil {
			for _, k := range coll.Dict.Keys() {
				v, _ := coll.Dict.Get(k)
				out.Set(k, v)
			}
		}
		out.Set(idx.Str, newVal)
		return value.RDictVal(out), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "%v object does not support item assignment", coll.Kind)
	}
}

func itemsOfR(v value.RecordedValue) []value.RecordedValue {
	if v.Kind == value.RList {
		return v.List
	}
	return nil
}

func minMaxR(kind plan.OpKind, v value.RecordedValue) (value.RecordedValue, error) {
	items := itemsOfR(v)
	if len(items) == 0 {
		return value.RecordedValue{}, bperrors.ValueError(nil, "%s() arg is an empty sequence", kind)
	}
	best := items[0]
	for _, item := range items[1:] {
		cmpKind := plan.OpLt
		if kind == plan.OpMax {
			cmpKind = plan.OpGt
		}
		res, err := compareR(cmpKind, item, best)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if res.Truthy() {
			best = item
		}
	}
	return best, nil
}

func sumR(v, start value.RecordedValue) (value.RecordedValue, error) {
	acc := start
	for _, item := range itemsOfR(v) {
		next, err := arith(plan.OpAdd, acc, item)
		if err != nil {
			return value.RecordedValue{}, err
		}
		acc = next
	}
	return acc, nil
}

func absR(v value.RecordedValue) (value.RecordedValue, error) {
	switch v.Kind {
	case value.RInt:
		i := v.Int
		if i < 0 {
			i = -i
		}
		return value.RIntVal(i), nil
	case value.RFloat:
		f := v.Float
		if f < 0 {
			f = -f
		}
		return value.RFloatVal(f), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "bad operand type for abs(): %v", v.Kind)
	}
}

func sortedR(v value.RecordedValue) (value.RecordedValue, error) {
	items := append([]value.RecordedValue{}, itemsOfR(v)...)
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		res, err := compareR(plan.OpLt, items[i], items[j])
		if err != nil {
			sortErr = err
			return false
		}
		return res.Truthy()
	})
	if sortErr != nil {
		return value.RecordedValue{}, sortErr
	}
	return value.RListVal(items), nil
}

func reversedR(v value.RecordedValue) (value.RecordedValue, error) {
	items := itemsOfR(v)
	out := make([]value.RecordedValue, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return value.RListVal(out), nil
}

func toIntR(v value.RecordedValue) (value.RecordedValue, error) {
	switch v.Kind {
	case value.RInt:
		return v, nil
	case value.RFloat:
		return value.RIntVal(int64(v.Float)), nil
	case value.RBool:
		if v.Bool {
			return value.RIntVal(1), nil
		}
		return value.RIntVal(0), nil
	case value.RString:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return value.RecordedValue{}, bperrors.ValueError(nil, "invalid literal for int(): %q", v.Str)
		}
		return value.RIntVal(n), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "int() argument cannot be %v", v.Kind)
	}
}

func toFloatR(v value.RecordedValue) (value.RecordedValue, error) {
	switch v.Kind {
	case value.RFloat:
		return v, nil
	case value.RInt:
		return value.RFloatVal(float64(v.Int)), nil
	case value.RString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return value.RecordedValue{}, bperrors.ValueError(nil, "could not convert string to float: %q", v.Str)
		}
		return value.RFloatVal(f), nil
	default:
		return value.RecordedValue{}, bperrors.TypeError(nil, "float() argument cannot be %v", v.Kind)
	}
}
