package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// listMethod returns the bound mutating or read-only method named name
// on receiver l (spec.md §4.1's list method list), raising
// MutationDuringIteration if a mutating method targets a list currently
// under active for-loop iteration.
func (g *Generator) listMethod(recv value.Value, name string) (value.Value, error) {
	l := recv.AsList()
	mutating := map[string]bool{"append": true, "extend": true, "insert": true, "pop": true, "remove": true, "clear": true}

	guard := func(pos *ast.Position) error {
		if mutating[name] && g.guard.isIterating(recv) {
			return bperrors.MutationDuringIteration(pos, name)
		}
		return nil
	}

	switch name {
	case "append":
		return builtin("append", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			l.Items = append(l.Items, arg(call, 0))
			return value.None, nil
		}), nil
	case "extend":
		return builtin("extend", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			l.Items = append(l.Items, listItems(arg(call, 0))...)
			return value.None, nil
		}), nil
	case "insert":
		return builtin("insert", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			i := normalizeIndex(arg(call, 0).AsInt(), int64(len(l.Items)))
			if i < 0 {
				i = 0
			}
			if i > int64(len(l.Items)) {
				i = int64(len(l.Items))
			}
			l.Items = append(l.Items[:i], append([]value.Value{arg(call, 1)}, l.Items[i:]...)...)
			return value.None, nil
		}), nil
	case "pop":
		return builtin("pop", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			if len(l.Items) == 0 {
				return value.None, bperrors.IndexError(&call.Pos, "pop from empty list")
			}
			i := int64(len(l.Items) - 1)
			if len(call.Args) > 0 {
				i = normalizeIndex(call.Args[0].AsInt(), int64(len(l.Items)))
			}
			if i < 0 || i >= int64(len(l.Items)) {
				return value.None, bperrors.IndexError(&call.Pos, "pop index out of range")
			}
			v := l.Items[i]
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return v, nil
		}), nil
	case "remove":
		return builtin("remove", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			for i, item := range l.Items {
				if recordedEqual(item, arg(call, 0)) {
					l.Items = append(l.Items[:i], l.Items[i+1:]...)
					return value.None, nil
				}
			}
			return value.None, bperrors.ValueError(&call.Pos, "list.remove(x): x not in list")
		}), nil
	case "clear":
		return builtin("clear", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			l.Items = nil
			return value.None, nil
		}), nil
	case "index":
		return builtin("index", func(call value.CallArgs) (value.Value, error) {
			for i, item := range l.Items {
				if recordedEqual(item, arg(call, 0)) {
					return value.Int(int64(i)), nil
				}
			}
			return value.None, bperrors.ValueError(&call.Pos, "%s is not in list", arg(call, 0).String())
		}), nil
	case "count":
		return builtin("count", func(call value.CallArgs) (value.Value, error) {
			n := int64(0)
			for _, item := range l.Items {
				if recordedEqual(item, arg(call, 0)) {
					n++
				}
			}
			return value.Int(n), nil
		}), nil
	default:
		return value.Value{}, bperrors.KeyError(nil, "list has no method %q", name)
	}
}
