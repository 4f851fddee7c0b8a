package generator

import (
	"strings"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// stringMethod returns the bound method named name on receiver s, or an
// error if there is no such string method (spec.md §4.1's string method
// list — all evaluated at generation time against concrete receivers).
func stringMethod(s value.Value, name string) (value.Value, error) {
	str := s.AsString()
	switch name {
	case "upper":
		return method0(func() value.Value { return value.String(strings.ToUpper(str)) }), nil
	case "lower":
		return method0(func() value.Value { return value.String(strings.ToLower(str)) }), nil
	case "strip":
		return methodStrArgOpt(str, strings.TrimSpace, strings.Trim), nil
	case "lstrip":
		return builtin("lstrip", func(call value.CallArgs) (value.Value, error) {
			cutset := " \t\n\r"
			if len(call.Args) > 0 {
				cutset = call.Args[0].AsString()
			}
			return value.String(strings.TrimLeft(str, cutset)), nil
		}), nil
	case "rstrip":
		return builtin("rstrip", func(call value.CallArgs) (value.Value, error) {
			cutset := " \t\n\r"
			if len(call.Args) > 0 {
				cutset = call.Args[0].AsString()
			}
			return value.String(strings.TrimRight(str, cutset)), nil
		}), nil
	case "capitalize":
		return method0(func() value.Value { return value.String(capitalize(str)) }), nil
	case "title":
		return method0(func() value.Value { return value.String(strings.Title(str)) }), nil
	case "isalpha":
		return method0(func() value.Value { return value.Bool(isAllFunc(str, isAlpha)) }), nil
	case "isdigit":
		return method0(func() value.Value { return value.Bool(isAllFunc(str, isDigit)) }), nil
	case "split":
		return builtin("split", func(call value.CallArgs) (value.Value, error) {
			sep := ""
			if len(call.Args) > 0 {
				sep = call.Args[0].AsString()
			}
			var parts []string
			if sep == "" {
				parts = strings.Fields(str)
			} else {
				parts = strings.Split(str, sep)
			}
			items := make([]value.Value, len(parts))
			for i, p := range parts {
				items[i] = value.String(p)
			}
			return value.ListVal(value.NewList(items)), nil
		}), nil
	case "join":
		return builtin("join", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 {
				return value.None, bperrors.ArgumentError(&call.Pos, "join() requires an iterable argument")
			}
			items := listItems(call.Args[0])
			parts := make([]string, len(items))
			for i, item := range items {
				if item.Kind() != value.KindString {
					return value.None, bperrors.TypeError(&call.Pos, "sequence item %d: expected str, got %s", i, item.Kind())
				}
				parts[i] = item.AsString()
			}
			return value.String(strings.Join(parts, str)), nil
		}), nil
	case "replace":
		return builtin("replace", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) < 2 {
				return value.None, bperrors.ArgumentError(&call.Pos, "replace() requires 2 arguments")
			}
			n := -1
			if len(call.Args) > 2 {
				n = int(call.Args[2].AsInt())
			}
			return value.String(strings.Replace(str, call.Args[0].AsString(), call.Args[1].AsString(), n)), nil
		}), nil
	case "find":
		return builtin("find", func(call value.CallArgs) (value.Value, error) {
			if len(call.Args) == 0 {
				return value.None, bperrors.ArgumentError(&call.Pos, "find() requires an argument")
			}
			return value.Int(int64(strings.Index(str, call.Args[0].AsString()))), nil
		}), nil
	case "startswith":
		return builtin("startswith", func(call value.CallArgs) (value.Value, error) {
			return value.Bool(strings.HasPrefix(str, arg(call, 0).AsString())), nil
		}), nil
	case "endswith":
		return builtin("endswith", func(call value.CallArgs) (value.Value, error) {
			return value.Bool(strings.HasSuffix(str, arg(call, 0).AsString())), nil
		}), nil
	case "removeprefix":
		return builtin("removeprefix", func(call value.CallArgs) (value.Value, error) {
			return value.String(strings.TrimPrefix(str, arg(call, 0).AsString())), nil
		}), nil
	case "removesuffix":
		return builtin("removesuffix", func(call value.CallArgs) (value.Value, error) {
			return value.String(strings.TrimSuffix(str, arg(call, 0).AsString())), nil
		}), nil
	case "format":
		return builtin("format", func(call value.CallArgs) (value.Value, error) {
			return value.String(formatString(str, call.Args)), nil
		}), nil
	default:
		return value.Value{}, bperrors.KeyError(nil, "string has no method %q", name)
	}
}

func method0(f func() value.Value) value.Value {
	return builtin("", func(value.CallArgs) (value.Value, error) { return f(), nil })
}

func methodStrArgOpt(s string, noArg func(string) string, withArg func(string, string) string) value.Value {
	return builtin("", func(call value.CallArgs) (value.Value, error) {
		if len(call.Args) == 0 {
			return value.String(noArg(s)), nil
		}
		return value.String(withArg(s, call.Args[0].AsString())), nil
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func isAllFunc(s string, f func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !f(r) {
			return false
		}
	}
	return true
}

func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// formatString implements a minimal {}-style formatter over positional
// arguments (spec.md §4.1's str.format()).
func formatString(tmpl string, args []value.Value) string {
	var b strings.Builder
	argIdx := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '{' && i+1 < len(tmpl) && tmpl[i+1] == '}' {
			if argIdx < len(args) {
				b.WriteString(args[argIdx].String())
				argIdx++
			}
			i++
			continue
		}
		b.WriteByte(tmpl[i])
	}
	return b.String()
}
