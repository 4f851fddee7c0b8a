package generator

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// fold evaluates a pure op whose operands are all concrete literals,
// implementing spec.md §4.3's operator semantics directly at generation
// time instead of deferring to a runtime op (testable property #4,
// "literal purity").
func (g *Generator) fold(op schema.SchemaOp, pos ast.Position) (value.Value, error) {
	lit := func(sv schema.SchemaValue) value.Value { return value.FromRecorded(sv.Literal) }

	switch op.Kind {
	case schema.OpAdd, schema.OpSub, schema.OpMul, schema.OpDiv, schema.OpFloorDiv, schema.OpMod:
		return foldArith(op.Kind, lit(op.Left), lit(op.Right), pos)
	case schema.OpEq:
		return value.Bool(recordedEqual(lit(op.Left), lit(op.Right))), nil
	case schema.OpNe:
		return value.Bool(!recordedEqual(lit(op.Left), lit(op.Right))), nil
	case schema.OpLt, schema.OpLe, schema.OpGt, schema.OpGe:
		return foldCompare(op.Kind, lit(op.Left), lit(op.Right), pos)
	case schema.OpNeg:
		return foldNeg(lit(op.Value), pos)
	case schema.OpNot:
		return value.Bool(!lit(op.Value).Truthy()), nil
	case schema.OpConcat:
		return foldConcat(lit(op.Left), lit(op.Right), pos)
	case schema.OpContains:
		return foldContains(lit(op.Left), lit(op.Right), pos)
	case schema.OpLen:
		return foldLen(lit(op.Value), pos)
	case schema.OpIndex:
		return foldIndex(lit(op.Collection), lit(op.Index), pos)
	case schema.OpSetIndex:
		return foldSetIndex(lit(op.Collection), lit(op.Index), lit(op.NewValue), pos)
	case schema.OpMin, schema.OpMax:
		return foldMinMax(op.Kind, lit(op.Values), pos)
	case schema.OpSum:
		start := value.Int(0)
		if op.Start.Kind == schema.VLiteral && op.Start.Literal.Kind != value.RNone {
			start = lit(op.Start)
		}
		return foldSum(lit(op.Values), start, pos)
	case schema.OpAbs:
		return foldAbs(lit(op.Value), pos)
	case schema.OpSorted:
		return foldSorted(lit(op.Values), pos)
	case schema.OpReversed:
		return foldReversed(lit(op.Values), pos)
	case schema.OpToBool:
		return value.Bool(lit(op.Value).Truthy()), nil
	case schema.OpToInt:
		return foldToInt(lit(op.Value), pos)
	case schema.OpToFloat:
		return foldToFloat(lit(op.Value), pos)
	case schema.OpToStr:
		return value.String(lit(op.Value).String()), nil
	case schema.OpIf:
		if lit(op.Cond).Truthy() {
			return lit(op.Then), nil
		}
		return lit(op.Else), nil
	case schema.OpJsonEncode:
		return foldJSONEncode(lit(op.Value), pos)
	case schema.OpJsonDecode:
		return foldJSONDecode(lit(op.Str), pos)
	default:
		return value.Value{}, nil
	}
}

func numeric(v value.Value, pos ast.Position, what string) (float64, bool, int64, error) {
	switch v.Kind() {
	case value.KindInt:
		return float64(v.AsInt()), false, v.AsInt(), nil
	case value.KindFloat:
		return v.AsFloat(), true, 0, nil
	default:
		return 0, false, 0, bperrors.TypeError(&pos, "unsupported operand type for %s: %s", what, v.Kind())
	}
}

func foldArith(kind schema.OpKind, l, r value.Value, pos ast.Position) (value.Value, error) {
	if kind == schema.OpAdd {
		if l.Kind() == value.KindString && r.Kind() == value.KindString {
			return value.String(l.AsString() + r.AsString()), nil
		}
		if l.Kind() == value.KindList && r.Kind() == value.KindList {
			return foldConcat(l, r, pos)
		}
	}
	lf, lFloat, li, err := numeric(l, pos, string(kind))
	if err != nil {
		return value.Value{}, err
	}
	rf, rFloat, ri, err := numeric(r, pos, string(kind))
	if err != nil {
		return value.Value{}, err
	}
	isFloat := lFloat || rFloat
	switch kind {
	case schema.OpAdd:
		if isFloat {
			return value.Float(lf + rf), nil
		}
		return value.Int(li + ri), nil
	case schema.OpSub:
		if isFloat {
			return value.Float(lf - rf), nil
		}
		return value.Int(li - ri), nil
	case schema.OpMul:
		if isFloat {
			return value.Float(lf * rf), nil
		}
		return value.Int(li * ri), nil
	case schema.OpDiv:
		if rf == 0 {
			return value.Value{}, bperrors.DivisionByZero(&pos, "/")
		}
		return value.Float(lf / rf), nil
	case schema.OpFloorDiv:
		if isFloat {
			if rf == 0 {
				return value.Value{}, bperrors.DivisionByZero(&pos, "//")
			}
			q := lf / rf
			return value.Float(floorFloat(q)), nil
		}
		if ri == 0 {
			return value.Value{}, bperrors.DivisionByZero(&pos, "//")
		}
		return value.Int(floorDivInt(li, ri)), nil
	case schema.OpMod:
		if isFloat {
			if rf == 0 {
				return value.Value{}, bperrors.DivisionByZero(&pos, "%")
			}
			return value.Float(pyModFloat(lf, rf)), nil
		}
		if ri == 0 {
			return value.Value{}, bperrors.DivisionByZero(&pos, "%")
		}
		return value.Int(pyModInt(li, ri)), nil
	}
	return value.Value{}, bperrors.InvalidOp(&pos, "unhandled arithmetic op %s", kind)
}

func floorFloat(f float64) float64 {
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return float64(i)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pyModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

func pyModFloat(a, b float64) float64 {
	m := a - floorFloat(a/b)*b
	return m
}

func recordedEqual(l, r value.Value) bool {
	lr, lerr := value.ToRecorded(l)
	rr, rerr := value.ToRecorded(r)
	if lerr != nil || rerr != nil {
		return false
	}
	return lr.Equal(rr)
}

func foldCompare(kind schema.OpKind, l, r value.Value, pos ast.Position) (value.Value, error) {
	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		a, b := l.AsString(), r.AsString()
		switch kind {
		case schema.OpLt:
			return value.Bool(a < b), nil
		case schema.OpLe:
			return value.Bool(a <= b), nil
		case schema.OpGt:
			return value.Bool(a > b), nil
		case schema.OpGe:
			return value.Bool(a >= b), nil
		}
	}
	lf, _, _, err := numeric(l, pos, string(kind))
	if err != nil {
		return value.Value{}, err
	}
	rf, _, _, err := numeric(r, pos, string(kind))
	if err != nil {
		return value.Value{}, err
	}
	switch kind {
	case schema.OpLt:
		return value.Bool(lf < rf), nil
	case schema.OpLe:
		return value.Bool(lf <= rf), nil
	case schema.OpGt:
		return value.Bool(lf > rf), nil
	case schema.OpGe:
		return value.Bool(lf >= rf), nil
	}
	return value.Value{}, bperrors.InvalidOp(&pos, "unhandled comparison op %s", kind)
}

func foldNeg(v value.Value, pos ast.Position) (value.Value, error) {
	switch v.Kind() {
	case value.KindInt:
		return value.Int(-v.AsInt()), nil
	case value.KindFloat:
		return value.Float(-v.AsFloat()), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "bad operand type for unary -: %s", v.Kind())
	}
}

func foldConcat(l, r value.Value, pos ast.Position) (value.Value, error) {
	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		return value.String(l.AsString() + r.AsString()), nil
	}
	if l.Kind() == value.KindList && r.Kind() == value.KindList {
		items := append(append([]value.Value{}, l.AsList().Items...), r.AsList().Items...)
		return value.ListVal(value.NewList(items)), nil
	}
	return value.Value{}, bperrors.TypeError(&pos, "can only concatenate matching list/string types, not %s and %s", l.Kind(), r.Kind())
}

func foldContains(haystack, needle value.Value, pos ast.Position) (value.Value, error) {
	switch haystack.Kind() {
	case value.KindString:
		return value.Bool(containsSubstr(haystack.AsString(), needle.AsString())), nil
	case value.KindList:
		for _, item := range haystack.AsList().Items {
			if recordedEqual(item, needle) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindDict:
		_, ok := haystack.AsDict().Get(needle.AsString())
		return value.Bool(ok), nil
	case value.KindSet:
		return value.Bool(haystack.AsSet().Contains(needle)), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "argument of type %s is not iterable", haystack.Kind())
	}
}

func containsSubstr(s, sub string) bool {
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

func foldLen(v value.Value, pos ast.Position) (value.Value, error) {
	switch v.Kind() {
	case value.KindString:
		return value.Int(int64(len([]rune(v.AsString())))), nil
	case value.KindBytes:
		return value.Int(int64(len(v.AsBytes()))), nil
	case value.KindList:
		if v.AsList() == nil {
			return value.Int(0), nil
		}
		return value.Int(int64(len(v.AsList().Items))), nil
	case value.KindTuple:
		return value.Int(int64(len(v.AsTuple()))), nil
	case value.KindDict:
		if v.AsDict() == nil {
			return value.Int(0), nil
		}
		return value.Int(int64(v.AsDict().Len())), nil
	case value.KindSet:
		if v.AsSet() == nil {
			return value.Int(0), nil
		}
		return value.Int(int64(v.AsSet().Len())), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "object of type %s has no len()", v.Kind())
	}
}

// normalizeIndex applies spec.md §4.3's negative-indexing rule.
func normalizeIndex(i, length int64) int64 {
	if i < 0 {
		return i + length
	}
	return i
}

func foldIndex(coll, idx value.Value, pos ast.Position) (value.Value, error) {
	switch coll.Kind() {
	case value.KindList:
		items := coll.AsList().Items
		i := normalizeIndex(idx.AsInt(), int64(len(items)))
		if i < 0 || i >= int64(len(items)) {
			return value.Value{}, bperrors.IndexError(&pos, "list index out of range")
		}
		return items[i], nil
	case value.KindTuple:
		items := coll.AsTuple()
		i := normalizeIndex(idx.AsInt(), int64(len(items)))
		if i < 0 || i >= int64(len(items)) {
			return value.Value{}, bperrors.IndexError(&pos, "tuple index out of range")
		}
		return items[i], nil
	case value.KindString:
		runes := []rune(coll.AsString())
		i := normalizeIndex(idx.AsInt(), int64(len(runes)))
		if i < 0 || i >= int64(len(runes)) {
			return value.Value{}, bperrors.IndexError(&pos, "string index out of range")
		}
		return value.String(string(runes[i])), nil
	case value.KindDict:
		v, ok := coll.AsDict().Get(idx.AsString())
		if !ok {
			return value.Value{}, bperrors.KeyError(&pos, "%q", idx.AsString())
		}
		return v, nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "%s object is not subscriptable", coll.Kind())
	}
}

func foldSetIndex(coll, idx, newVal value.Value, pos ast.Position) (value.Value, error) {
	switch coll.Kind() {
	case value.KindList:
		items := append([]value.Value{}, coll.AsList().Items...)
		i := normalizeIndex(idx.AsInt(), int64(len(items)))
		if i < 0 || i >= int64(len(items)) {
			return value.Value{}, bperrors.IndexError(&pos, "list assignment index out of range")
		}
		items[i] = newVal
		return value.ListVal(value.NewList(items)), nil
	case value.KindDict:
		out := value.NewDict()
		for _, k := range coll.AsDict().Keys() {
			v, _ := coll.AsDict().Get(k)
			out.Set(k, v)
		}
		out.Set(idx.AsString(), newVal)
		return value.DictVal(out), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "%s object does not support item assignment", coll.Kind())
	}
}

func itemsOf(v value.Value) []value.Value {
	switch v.Kind() {
	case value.KindList:
		if v.AsList() == nil {
			return nil
		}
		return v.AsList().Items
	case value.KindTuple:
		return v.AsTuple()
	case value.KindSet:
		if v.AsSet() == nil {
			return nil
		}
		return v.AsSet().Items()
	default:
		return nil
	}
}

func foldMinMax(kind schema.OpKind, v value.Value, pos ast.Position) (value.Value, error) {
	items := itemsOf(v)
	if len(items) == 0 {
		return value.Value{}, bperrors.ValueError(&pos, "%s() arg is an empty sequence", kind)
	}
	best := items[0]
	for _, item := range items[1:] {
		cmpKind := schema.OpLt
		if kind == schema.OpMax {
			cmpKind = schema.OpGt
		}
		res, err := foldCompare(cmpKind, item, best, pos)
		if err != nil {
			return value.Value{}, err
		}
		if res.Truthy() {
			best = item
		}
	}
	return best, nil
}

func foldSum(v, start value.Value, pos ast.Position) (value.Value, error) {
	acc := start
	for _, item := range itemsOf(v) {
		next, err := foldArith(schema.OpAdd, acc, item, pos)
		if err != nil {
			return value.Value{}, err
		}
		acc = next
	}
	return acc, nil
}

func foldAbs(v value.Value, pos ast.Position) (value.Value, error) {
	switch v.Kind() {
	case value.KindInt:
		i := v.AsInt()
		if i < 0 {
			i = -i
		}
		return value.Int(i), nil
	case value.KindFloat:
		f := v.AsFloat()
		if f < 0 {
			f = -f
		}
		return value.Float(f), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "bad operand type for abs(): %s", v.Kind())
	}
}

func foldSorted(v value.Value, pos ast.Position) (value.Value, error) {
	items := append([]value.Value{}, itemsOf(v)...)
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		res, err := foldCompare(schema.OpLt, items[i], items[j], pos)
		if err != nil {
			sortErr = err
			return false
		}
		return res.Truthy()
	})
	if sortErr != nil {
		return value.Value{}, sortErr
	}
	return value.ListVal(value.NewList(items)), nil
}

func foldReversed(v value.Value, pos ast.Position) (value.Value, error) {
	items := itemsOf(v)
	out := make([]value.Value, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return value.ListVal(value.NewList(out)), nil
}

func foldToInt(v value.Value, pos ast.Position) (value.Value, error) {
	switch v.Kind() {
	case value.KindInt:
		return v, nil
	case value.KindFloat:
		return value.Int(int64(v.AsFloat())), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		n, err := strconv.ParseInt(v.AsString(), 10, 64)
		if err != nil {
			return value.Value{}, bperrors.ValueError(&pos, "invalid literal for int(): %q", v.AsString())
		}
		return value.Int(n), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "int() argument cannot be %s", v.Kind())
	}
}

func foldToFloat(v value.Value, pos ast.Position) (value.Value, error) {
	switch v.Kind() {
	case value.KindFloat:
		return v, nil
	case value.KindInt:
		return value.Float(float64(v.AsInt())), nil
	case value.KindString:
		f, err := strconv.ParseFloat(v.AsString(), 64)
		if err != nil {
			return value.Value{}, bperrors.ValueError(&pos, "could not convert string to float: %q", v.AsString())
		}
		return value.Float(f), nil
	default:
		return value.Value{}, bperrors.TypeError(&pos, "float() argument cannot be %s", v.Kind())
	}
}

func foldJSONEncode(v value.Value, pos ast.Position) (value.Value, error) {
	rv, err := value.ToRecorded(v)
	if err != nil {
		return value.Value{}, bperrors.TypeError(&pos, "json.encode(): %s", err.Error())
	}
	b, err := json.Marshal(recordedToJSON(rv))
	if err != nil {
		return value.Value{}, bperrors.ValueError(&pos, "json.encode(): %s", err.Error())
	}
	return value.String(string(b)), nil
}

func foldJSONDecode(v value.Value, pos ast.Position) (value.Value, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(v.AsString()), &doc); err != nil {
		return value.Value{}, bperrors.ValueError(&pos, "json.decode(): %s", err.Error())
	}
	return jsonToValue(doc), nil
}

func recordedToJSON(r value.RecordedValue) interface{} {
	switch r.Kind {
	case value.RNone:
		return nil
	case value.RBool:
		return r.Bool
	case value.RInt:
		return r.Int
	case value.RFloat:
		return r.Float
	case value.RString:
		return r.Str
	case value.RBytes:
		return base64.StdEncoding.EncodeToString(r.Bytes)
	case value.RList:
		out := make([]interface{}, len(r.List))
		for i, item := range r.List {
			out[i] = recordedToJSON(item)
		}
		return out
	case value.RDict:
		out := make(map[string]interface{})
		if r.Dict != nil {
			for _, k := range r.Dict.Keys() {
				v, _ := r.Dict.Get(k)
				out[k] = recordedToJSON(v)
			}
		}
		return out
	default:
		return nil
	}
}

func jsonToValue(doc interface{}) value.Value {
	switch d := doc.(type) {
	case nil:
		return value.None
	case bool:
		return value.Bool(d)
	case float64:
		if d == float64(int64(d)) {
			return value.Int(int64(d))
		}
		return value.Float(d)
	case string:
		return value.String(d)
	case []interface{}:
		items := make([]value.Value, len(d))
		for i, item := range d {
			items[i] = jsonToValue(item)
		}
		return value.ListVal(value.NewList(items))
	case map[string]interface{}:
		out := value.NewDict()
		for k, v := range d {
			out.Set(k, jsonToValue(v))
		}
		return value.DictVal(out)
	default:
		return value.None
	}
}
