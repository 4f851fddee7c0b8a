package generator

import (
	"sort"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/builtins"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// registerBuiltins binds the base scope every module starts with
// (spec.md §6.2): op-emitting builtins from internal/builtins, plus the
// purely generation-time builtins that have no runtime op counterpart.
func (g *Generator) registerBuiltins() {
	for name, v := range builtins.BaseSymbolic(g) {
		g.global.Define(name, v)
	}
	for name, v := range g.concreteBuiltins() {
		g.global.Define(name, v)
	}
}

func builtin(name string, call func(value.CallArgs) (value.Value, error)) value.Value {
	return value.BuiltinVal(&value.BuiltinFunction{Name: name, Fn: call})
}

func arg(call value.CallArgs, i int) value.Value {
	if i < len(call.Args) {
		return call.Args[i]
	}
	return value.None
}

func wantConcrete(v value.Value, pos ast.Position, who string) error {
	if v.IsSymbolic() {
		return bperrors.TypeError(&pos, "%s cannot operate on a value that is not yet known (it depends on a deferred operation)", who)
	}
	return nil
}

func (g *Generator) concreteBuiltins() map[string]value.Value {
	return map[string]value.Value{
		"env": builtin("env", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 || call.Args[0].Kind() != value.KindString {
				return value.None, bperrors.ArgumentError(&call.Pos, "env() requires a string name")
			}
			return value.EnvRefVal(call.Args[0].AsString()), nil
		}),
		"config": builtin("config", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 || call.Args[0].Kind() != value.KindString {
				return value.None, bperrors.ArgumentError(&call.Pos, "config() requires a string key")
			}
			return value.ConfigRefVal(call.Args[0].AsString()), nil
		}),
		"range": builtin("range", func(call value.CallArgs) (value.Value, error) {
			var start, stop, step int64 = 0, 0, 1
			switch len(call.Args) {
			case 1:
				stop = call.Args[0].AsInt()
			case 2:
				start, stop = call.Args[0].AsInt(), call.Args[1].AsInt()
			case 3:
				start, stop, step = call.Args[0].AsInt(), call.Args[1].AsInt(), call.Args[2].AsInt()
			default:
				return value.None, bperrors.ArgumentError(&call.Pos, "range() takes 1 to 3 arguments")
			}
			if step == 0 {
				return value.None, bperrors.ValueError(&call.Pos, "range() arg 3 must not be zero")
			}
			var items []value.Value
			if step > 0 {
				for i := start; i < stop; i += step {
					items = append(items, value.Int(i))
				}
			} else {
				for i := start; i > stop; i += step {
					items = append(items, value.Int(i))
				}
			}
			return value.ListVal(value.NewList(items)), nil
		}),
		"enumerate": builtin("enumerate", func(call value.CallArgs) (value.Value, error) {
			if err := wantConcrete(arg(call, 0), call.Pos, "enumerate()"); err != nil {
				return value.None, err
			}
			items := listItems(arg(call, 0))
			out := make([]value.Value, len(items))
			for i, item := range items {
				out[i] = value.Tuple([]value.Value{value.Int(int64(i)), item})
			}
			return value.ListVal(value.NewList(out)), nil
		}),
		"zip": builtin("zip", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 {
				return value.ListVal(value.NewList(nil)), nil
			}
			lists := make([][]value.Value, len(call.Args))
			minLen := -1
			for i, a := range call.Args {
				if err := wantConcrete(a, call.Pos, "zip()"); err != nil {
					return value.None, err
				}
				lists[i] = listItems(a)
				if minLen < 0 || len(lists[i]) < minLen {
					minLen = len(lists[i])
				}
			}
			out := make([]value.Value, minLen)
			for i := 0; i < minLen; i++ {
				row := make([]value.Value, len(lists))
				for j := range lists {
					row[j] = lists[j][i]
				}
				out[i] = value.Tuple(row)
			}
			return value.ListVal(value.NewList(out)), nil
		}),
		"type": builtin("type", func(call value.CallArgs) (value.Value, error) {
			return value.String(arg(call, 0).Kind().String()), nil
		}),
		"repr": builtin("repr", func(call value.CallArgs) (value.Value, error) {
			return value.String(arg(call, 0).String()), nil
		}),
		"all": builtin("all", func(call value.CallArgs) (value.Value, error) {
			if err := wantConcrete(arg(call, 0), call.Pos, "all()"); err != nil {
				return value.None, err
			}
			for _, item := range listItems(arg(call, 0)) {
				if !item.Truthy() {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}),
		"any": builtin("any", func(call value.CallArgs) (value.Value, error) {
			if err := wantConcrete(arg(call, 0), call.Pos, "any()"); err != nil {
				return value.None, err
			}
			for _, item := range listItems(arg(call, 0)) {
				if item.Truthy() {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		}),
		"list": builtin("list", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 {
				return value.ListVal(value.NewList(nil)), nil
			}
			return value.ListVal(value.NewList(append([]value.Value{}, listItems(call.Args[0])...))), nil
		}),
		"tuple": builtin("tuple", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 {
				return value.Tuple(nil), nil
			}
			return value.Tuple(append([]value.Value{}, listItems(call.Args[0])...)), nil
		}),
		"dict": builtin("dict", func(call value.CallArgs) (value.Value, error) {
			d := value.NewDict()
			for k, v := range call.Kwargs {
				d.Set(k, v)
			}
			return value.DictVal(d), nil
		}),
		"bool": builtin("bool", func(call value.CallArgs) (value.Value, error) {
			if arg(call, 0).IsSymbolic() {
				return builtins.BaseSymbolic(g)["bool"].AsBuiltin().Fn(call)
			}
			return value.Bool(arg(call, 0).Truthy()), nil
		}),
		"hasattr": builtin("hasattr", func(call value.CallArgs) (value.Value, error) {
			if arg(call, 1).Kind() != value.KindString {
				return value.None, bperrors.ArgumentError(&call.Pos, "hasattr() name must be a string")
			}
			_, err := g.getMethod(arg(call, 0), arg(call, 1).AsString())
			return value.Bool(err == nil), nil
		}),
		"getattr": builtin("getattr", func(call value.CallArgs) (value.Value, error) {
			if arg(call, 1).Kind() != value.KindString {
				return value.None, bperrors.ArgumentError(&call.Pos, "getattr() name must be a string")
			}
			m, err := g.getMethod(arg(call, 0), arg(call, 1).AsString())
			if err != nil {
				if len(call.Args) > 2 {
					return call.Args[2], nil
				}
				return value.None, bperrors.KeyError(&call.Pos, "%s", err.Error())
			}
			return m, nil
		}),
		"fail": builtin("fail", func(call value.CallArgs) (value.Value, error) {
			msg := "fail() called"
			if len(call.Args) > 0 {
				msg = call.Args[0].String()
			}
			return value.None, bperrors.UserError(&call.Pos, msg)
		}),
		"assert_": builtin("assert_", func(call value.CallArgs) (value.Value, error) {
			if err := wantConcrete(arg(call, 0), call.Pos, "assert_()"); err != nil {
				return value.None, err
			}
			if !arg(call, 0).Truthy() {
				msg := "assertion failed"
				if len(call.Args) > 1 {
					msg = call.Args[1].String()
				}
				return value.None, bperrors.AssertionError(&call.Pos, msg)
			}
			return value.None, nil
		}),
		"assert_eq": builtin("assert_eq", func(call value.CallArgs) (value.Value, error) {
			a, b := arg(call, 0), arg(call, 1)
			if err := wantConcrete(a, call.Pos, "assert_eq()"); err != nil {
				return value.None, err
			}
			if err := wantConcrete(b, call.Pos, "assert_eq()"); err != nil {
				return value.None, err
			}
			if !recordedEqual(a, b) {
				return value.None, bperrors.AssertionError(&call.Pos, "expected %s == %s", a.String(), b.String())
			}
			return value.None, nil
		}),
		"assert_contains": builtin("assert_contains", func(call value.CallArgs) (value.Value, error) {
			haystack, needle := arg(call, 0), arg(call, 1)
			if err := wantConcrete(haystack, call.Pos, "assert_contains()"); err != nil {
				return value.None, err
			}
			res, err := foldContains(haystack, needle, call.Pos)
			if err != nil {
				return value.None, err
			}
			if !res.Truthy() {
				return value.None, bperrors.AssertionError(&call.Pos, "expected %s to contain %s", haystack.String(), needle.String())
			}
			return value.None, nil
		}),
		"map": builtin("map", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) < 2 {
				return value.None, bperrors.ArgumentError(&call.Pos, "map() requires a function and an iterable")
			}
			if err := wantConcrete(call.Args[1], call.Pos, "map()"); err != nil {
				return value.None, err
			}
			items := listItems(call.Args[1])
			out := make([]value.Value, len(items))
			for i, item := range items {
				r, err := g.applyUnary(call.Args[0], item, call.Pos)
				if err != nil {
					return value.None, err
				}
				out[i] = r
			}
			return value.ListVal(value.NewList(out)), nil
		}),
		"filter": builtin("filter", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) < 2 {
				return value.None, bperrors.ArgumentError(&call.Pos, "filter() requires a function and an iterable")
			}
			if err := wantConcrete(call.Args[1], call.Pos, "filter()"); err != nil {
				return value.None, err
			}
			var out []value.Value
			for _, item := range listItems(call.Args[1]) {
				r, err := g.applyUnary(call.Args[0], item, call.Pos)
				if err != nil {
					return value.None, err
				}
				if r.Truthy() {
					out = append(out, item)
				}
			}
			return value.ListVal(value.NewList(out)), nil
		}),
	}
}

func listItems(v value.Value) []value.Value {
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
	case value.KindString:
		runes := []rune(v.AsString())
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out
	case value.KindDict:
		if v.AsDict() == nil {
			return nil
		}
		keys := v.AsDict().Keys()
		sort.Strings(keys)
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.String(k)
		}
		return out
	default:
		return nil
	}
}
