package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// dictMethod returns the bound method named name on receiver dict d
// (spec.md §4.1's dict method list).
func (g *Generator) dictMethod(recv value.Value, name string) (value.Value, error) {
	d := recv.AsDict()
	mutating := map[string]bool{"pop": true, "setdefault": true, "update": true, "popitem": true}

	guard := func(pos *ast.Position) error {
		if mutating[name] && g.guard.isIterating(recv) {
			return bperrors.MutationDuringIteration(pos, name)
		}
		return nil
	}

	switch name {
	case "keys":
		return builtin("keys", func(call value.CallArgs) (value.Value, error) {
			items := make([]value.Value, 0, d.Len())
			for _, k := range d.Keys() {
				items = append(items, value.String(k))
			}
			return value.ListVal(value.NewList(items)), nil
		}), nil
	case "values":
		return builtin("values", func(call value.CallArgs) (value.Value, error) {
			items := make([]value.Value, 0, d.Len())
			for _, k := range d.Keys() {
				v, _ := d.Get(k)
				items = append(items, v)
			}
			return value.ListVal(value.NewList(items)), nil
		}), nil
	case "items":
		return builtin("items", func(call value.CallArgs) (value.Value, error) {
			items := make([]value.Value, 0, d.Len())
			for _, k := range d.Keys() {
				v, _ := d.Get(k)
				items = append(items, value.Tuple([]value.Value{value.String(k), v}))
			}
			return value.ListVal(value.NewList(items)), nil
		}), nil
	case "get":
		return builtin("get", func(call value.CallArgs) (value.Value, error) {
			v, ok := d.Get(arg(call, 0).AsString())
			if !ok {
				if len(call.Args) > 1 {
					return call.Args[1], nil
				}
				return value.None, nil
			}
			return v, nil
		}), nil
	case "pop":
		return builtin("pop", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			key := arg(call, 0).AsString()
			v, ok := d.Get(key)
			if !ok {
				if len(call.Args) > 1 {
					return call.Args[1], nil
				}
				return value.None, bperrors.KeyError(&call.Pos, "%q", key)
			}
			d.Delete(key)
			return v, nil
		}), nil
	case "setdefault":
		return builtin("setdefault", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			key := arg(call, 0).AsString()
			if v, ok := d.Get(key); ok {
				return v, nil
			}
			def := value.None
			if len(call.Args) > 1 {
				def = call.Args[1]
			}
			d.Set(key, def)
			return def, nil
		}), nil
	case "update":
		return builtin("update", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			if len(call.Args) > 0 && call.Args[0].Kind() == value.KindDict {
				other := call.Args[0].AsDict()
				for _, k := range other.Keys() {
					v, _ := other.Get(k)
					d.Set(k, v)
				}
			}
			for k, v := range call.Kwargs {
				d.Set(k, v)
			}
			return value.None, nil
		}), nil
	case "popitem":
		return builtin("popitem", func(call value.CallArgs) (value.Value, error) {
			if err := guard(&call.Pos); err != nil {
				return value.None, err
			}
			keys := d.Keys()
			if len(keys) == 0 {
				return value.None, bperrors.KeyError(&call.Pos, "popitem(): dictionary is empty")
			}
			last := keys[len(keys)-1]
			v, _ := d.Get(last)
			d.Delete(last)
			return value.Tuple([]value.Value{value.String(last), v}), nil
		}), nil
	default:
		return value.Value{}, bperrors.KeyError(nil, "dict has no method %q", name)
	}
}
