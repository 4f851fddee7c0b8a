package interpreter

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// resolveCtx bundles the lookups a ValueRef can draw on: the accumulated
// cache (this plan's own ops, read-write) and an optional parent cache
// plus parameter map for sub-plan scopes (spec.md §4.3 "Value
// resolution", §4.4's Dynamic-from-parameter-map rule).
type resolveCtx struct {
	cache  *OpCache       // this scope's own results (local_results for sub-plans)
	parent *OpCache       // enclosing scope's cache, consulted after cache misses
	params map[string]value.RecordedValue
}

func (rc resolveCtx) lookupOp(id int) (value.RecordedValue, bool) {
	if rc.cache != nil {
		if v, ok := rc.cache.Get(id); ok {
			return v, true
		}
	}
	if rc.parent != nil {
		if v, ok := rc.parent.Get(id); ok {
			return v, true
		}
	}
	return value.RecordedValue{}, false
}

// resolveRef implements spec.md §4.3's value resolution rules.
func resolveRef(rc resolveCtx, ref plan.ValueRef) (value.RecordedValue, error) {
	switch ref.Kind {
	case plan.RefLiteral:
		return ref.Literal, nil

	case plan.RefOpOutput:
		v, ok := rc.lookupOp(ref.OpID)
		if !ok {
			return value.RecordedValue{}, bperrors.ResolutionFailed("op %d has no recorded output yet", ref.OpID)
		}
		return walkAccessors(v, ref.Path)

	case plan.RefDynamic:
		v, ok := rc.params[ref.Dynamic]
		if !ok {
			return value.RecordedValue{}, bperrors.ResolutionFailed("parameter %q is not bound in this scope", ref.Dynamic)
		}
		return v, nil

	case plan.RefList:
		items := make([]value.RecordedValue, len(ref.List))
		for i, item := range ref.List {
			v, err := resolveRef(rc, item)
			if err != nil {
				return value.RecordedValue{}, err
			}
			items[i] = v
		}
		return value.RListVal(items), nil

	default:
		return value.RecordedValue{}, bperrors.ResolutionFailed("value ref has unknown kind %d", ref.Kind)
	}
}

// walkAccessors descends an OpOutput's accessor path: Field into a Dict,
// Index into a List with negative indexing from the tail (spec.md §4.3).
func walkAccessors(v value.RecordedValue, path []value.Accessor) (value.RecordedValue, error) {
	cur := v
	for _, a := range path {
		if a.IsIdx {
			if cur.Kind != value.RList {
				return value.RecordedValue{}, bperrors.TypeError(nil, "%v object is not subscriptable", cur.Kind)
			}
			i := a.Index
			if i < 0 {
				i += int64(len(cur.List))
			}
			if i < 0 || i >= int64(len(cur.List)) {
				return value.RecordedValue{}, bperrors.IndexError(nil, "list index out of range")
			}
			cur = cur.List[i]
			continue
		}
		if cur.Kind != value.RDict {
			return value.RecordedValue{}, bperrors.TypeError(nil, "%v object has no field %q", cur.Kind, a.Field)
		}
		fv, ok := cur.Dict.Get(a.Field)
		if !ok {
			return value.RecordedValue{}, bperrors.KeyError(nil, "%q", a.Field)
		}
		cur = fv
	}
	return cur, nil
}

// resolveInputs resolves every ValueRef a Payload references, in
// ReferencedOpIDs order, used both to feed op execution and to compute
// the op's input hash (spec.md §3.8).
func resolveInputs(rc resolveCtx, p plan.Payload) (map[int]value.RecordedValue, []value.RecordedValue, error) {
	ids := p.ReferencedOpIDs()
	seen := make(map[int]bool, len(ids))
	resolved := make(map[int]value.RecordedValue, len(ids))
	ordered := make([]value.RecordedValue, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		v, ok := rc.lookupOp(id)
		if !ok {
			return nil, nil, bperrors.ResolutionFailed("op %d has no recorded output yet", id)
		}
		resolved[id] = v
		ordered = append(ordered, v)
	}
	return resolved, ordered, nil
}
