package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// setMethod returns the bound method named name on receiver set s
// (spec.md §4.1's set method list).
func (g *Generator) setMethod(recv value.Value, name string) (value.Value, error) {
	s := recv.AsSet()
	mutating := map[string]bool{"add": true, "remove": true, "discard": true, "update": true}

	guard := func(pos *ast.Position) error {
		if mutating[name] && g.guard.isIterating(recv) {
			return bperrors.MutationDuringIteration(pos, name)
		}
		return nil
	}

	switch name {
	case "add":
		return builtin("add", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			s.Add(arg(call, 0))
			return value.None, nil
		}), nil
	case "remove":
		return builtin("remove", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			if !s.Remove(arg(call, 0)) {
				return value.None, bperrors.KeyError(&call.Pos, "%s", arg(call, 0).String())
			}
			return value.None, nil
		}), nil
	case "discard":
		return builtin("discard", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			s.Remove(arg(call, 0))
			return value.None, nil
		}), nil
	case "update":
		return builtin("update", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			for _, item := range listItems(arg(call, 0)) {
				s.Add(item)
			}
			return value.None, nil
		}), nil
	case "union":
		return builtin("union", func(call value.CallArgs) (value.Value, error) {
			out := value.NewSet()
			for _, item := range s.Items() {
				out.Add(item)
			}
			for _, item := range listItems(arg(call, 0)) {
				out.Add(item)
			}
			return value.SetVal(out), nil
		}), nil
	case "intersection":
		return builtin("intersection", func(call value.CallArgs) (value.Value, error) {
			other := arg(call, 0).AsSet()
			out := value.NewSet()
			for _, item := range s.Items() {
				if other != nil && other.Contains(item) {
					out.Add(item)
				}
			}
			return value.SetVal(out), nil
		}), nil
	case "difference":
		return builtin("difference", func(call value.CallArgs) (value.Value, error) {
			other := arg(call, 0).AsSet()
			out := value.NewSet()
			for _, item := range s.Items() {
				if other == nil || !other.Contains(item) {
					out.Add(item)
				}
			}
			return value.SetVal(out), nil
		}), nil
	case "symmetric_difference":
		return builtin("symmetric_difference", func(call value.CallArgs) (value.Value, error) {
			other := arg(call, 0).AsSet()
			out := value.NewSet()
			for _, item := range s.Items() {
				if other == nil || !other.Contains(item) {
					out.Add(item)
				}
			}
			if other != nil {
				for _, item := range other.Items() {
					if !s.Contains(item) {
						out.Add(item)
					}
				}
			}
			return value.SetVal(out), nil
		}), nil
	case "issubset":
		return builtin("issubset", func(call value.CallArgs) (value.Value, error) {
			other := arg(call, 0).AsSet()
			for _, item := range s.Items() {
				if other == nil || !other.Contains(item) {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}), nil
	case "issuperset":
		return builtin("issuperset", func(call value.CallArgs) (value.Value, error) {
			other := arg(call, 0).AsSet()
			if other == nil {
				return value.Bool(true), nil
			}
			for _, item := range other.Items() {
				if !s.Contains(item) {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}), nil
	default:
		return value.Value{}, bperrors.KeyError(nil, "set has no method %q", name)
	}
}
