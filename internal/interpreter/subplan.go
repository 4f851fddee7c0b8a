package interpreter

import (
	"context"
	"sync"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// signal is what a sub-plan op handed back to its sequential runner:
// plain fallthrough, or Break/Continue unwinding toward the nearest
// enclosing loop (spec.md §4.4).
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
)

// execBlockOp dispatches a top-level ForEach/Map/Filter/IfBlock op. Any
// Break/Continue signal produced inside an IfBlock's branch has nowhere
// to go at this entry point — generation never emits one outside a loop
// — so it is discarded rather than propagated further.
func (x *Executor) execBlockOp(ctx context.Context, p plan.Payload, rc resolveCtx) (value.RecordedValue, error) {
	switch p.Kind {
	case plan.OpIfBlock:
		val, _, err := x.runIfBlock(ctx, p, rc)
		return val, err
	case plan.OpForEach:
		return x.runForEach(ctx, p, rc)
	case plan.OpMap:
		return x.runMap(ctx, p, rc)
	case plan.OpFilter:
		return x.runFilter(ctx, p, rc)
	default:
		return value.RecordedValue{}, bperrors.InvalidOp(nil, "%s is not a block operation", p.Kind)
	}
}

// runIfBlock evaluates Cond in the enclosing scope, then runs the
// selected branch as a sub-plan in the same parameter scope (spec.md
// §4.4). IfBlock is transparent to Break/Continue: a signal produced by
// the chosen branch is handed back unchanged for the caller to forward.
func (x *Executor) runIfBlock(ctx context.Context, p plan.Payload, rc resolveCtx) (value.RecordedValue, signal, error) {
	cond, err := resolveRef(rc, p.Cond)
	if err != nil {
		return value.RecordedValue{}, sigNone, err
	}
	body := p.ThenBody
	if !cond.Truthy() {
		body = p.ElseBody
	}
	if body == nil {
		return value.RNoneVal(), sigNone, nil
	}
	return x.runSubPlan(ctx, body, rc.cache, rc.params)
}

// runSubPlan runs sp's ops in order against a fresh local cache, honoring
// per-op guards and Break/Continue (spec.md §4.4). parent lets ops
// inside sp resolve references into the scope it was entered from.
func (x *Executor) runSubPlan(ctx context.Context, sp *plan.SubPlan, parent *OpCache, params map[string]value.RecordedValue) (value.RecordedValue, signal, error) {
	if sp == nil {
		return value.RNoneVal(), sigNone, nil
	}
	local := newOpCache()

	for _, op := range sp.Ops {
		if ctx.Err() != nil {
			return value.RecordedValue{}, sigNone, ctx.Err()
		}
		rc := resolveCtx{cache: local, parent: parent, params: params}

		if op.Guard != nil {
			gv, ok := rc.lookupOp(*op.Guard)
			if !ok || !gv.Truthy() {
				recordLocal(local, rc, op, value.RNoneVal())
				continue
			}
		}

		if x.DryRun {
			// Mirror runOne's top-level dry_run short-circuit: every op
			// (including Break/Continue and nested blocks) resolves to
			// None and the walk never branches, so the whole sub-plan
			// tree is still visited instead of being cut short.
			recordLocal(local, rc, op, value.RNoneVal())
			continue
		}

		switch op.Payload.Kind {
		case plan.OpBreak:
			recordLocal(local, rc, op, value.RNoneVal())
			return outputOf(local, sp.Output), sigBreak, nil

		case plan.OpContinue:
			recordLocal(local, rc, op, value.RNoneVal())
			return outputOf(local, sp.Output), sigContinue, nil

		case plan.OpIfBlock:
			val, sig, err := x.runIfBlock(ctx, op.Payload, rc)
			if err != nil {
				return value.RecordedValue{}, sigNone, err
			}
			recordLocal(local, rc, op, val)
			if sig != sigNone {
				return outputOf(local, sp.Output), sig, nil
			}

		case plan.OpForEach, plan.OpMap, plan.OpFilter:
			val, err := x.execBlockOp(ctx, op.Payload, rc)
			if err != nil {
				return value.RecordedValue{}, sigNone, err
			}
			recordLocal(local, rc, op, val)

		default:
			val, err := x.runOne(ctx, op, rc)
			if err != nil {
				return value.RecordedValue{}, sigNone, err
			}
			recordLocal(local, rc, op, val)
		}
	}

	return outputOf(local, sp.Output), sigNone, nil
}

// recordLocal stores an op's result under its own id, hashed the same
// way the top-level scheduler hashes op results, so OpCache.Stale stays
// meaningful for sub-plan-produced entries too.
func recordLocal(local *OpCache, rc resolveCtx, op plan.Op, val value.RecordedValue) {
	_, ordered, err := resolveInputs(rc, op.Payload)
	if err != nil {
		// The op already executed (or was guard-skipped) with these
		// same inputs; a failure re-resolving them now would mean the
		// sub-plan runner itself is broken, not a user-facing condition.
		ordered = nil
	}
	local.set(op.ID, val, inputHash(ordered))
}

// outputOf reads a sub-plan's declared output id, defaulting to None
// when absent (spec.md §3.5: "0, and no entries, yields None").
func outputOf(local *OpCache, output int) value.RecordedValue {
	v, ok := local.Get(output)
	if !ok {
		return value.RNoneVal()
	}
	return v
}

// mergeParams returns a copy of base with name bound to v, used to bind
// each loop iteration's element without mutating the enclosing scope's
// parameter map (which parallel iterations share read-only access to).
func mergeParams(base map[string]value.RecordedValue, name string, v value.RecordedValue) map[string]value.RecordedValue {
	out := make(map[string]value.RecordedValue, len(base)+1)
	for k, val := range base {
		out[k] = val
	}
	out[name] = v
	return out
}

func iterableItems(v value.RecordedValue) ([]value.RecordedValue, error) {
	if v.Kind != value.RList {
		return nil, bperrors.TypeError(nil, "%v object is not iterable", v.Kind)
	}
	return v.List, nil
}

// runForEach implements the statement-form loop (spec.md §4.4): parallel
// dispatch when Parallel is set and there is more than one item (each
// iteration gets its own independent sub-plan run and cannot observe
// another iteration's Break/Continue), sequential otherwise so Break
// stops the loop and Continue skips to the next item.
func (x *Executor) runForEach(ctx context.Context, p plan.Payload, rc resolveCtx) (value.RecordedValue, error) {
	iter, err := resolveRef(rc, p.Iterable)
	if err != nil {
		return value.RecordedValue{}, err
	}
	items, err := iterableItems(iter)
	if err != nil {
		return value.RecordedValue{}, err
	}
	if p.LoopBody == nil || len(items) == 0 {
		return value.RNoneVal(), nil
	}

	if p.Parallel && len(items) > 1 {
		errs := make([]error, len(items))
		var wg sync.WaitGroup
		for i, item := range items {
			wg.Add(1)
			go func(i int, item value.RecordedValue) {
				defer wg.Done()
				params := mergeParams(rc.params, p.LoopVar, item)
				_, _, err := x.runSubPlan(ctx, p.LoopBody, rc.cache, params)
				errs[i] = err
			}(i, item)
		}
		wg.Wait()
		for _, e := range errs {
			if e != nil {
				return value.RecordedValue{}, e
			}
		}
		return value.RNoneVal(), nil
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return value.RecordedValue{}, ctx.Err()
		}
		params := mergeParams(rc.params, p.LoopVar, item)
		_, sig, err := x.runSubPlan(ctx, p.LoopBody, rc.cache, params)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if sig == sigBreak {
			break
		}
	}
	return value.RNoneVal(), nil
}

// runMap always dispatches every iteration concurrently (spec.md §4.4),
// collecting each body's output in input order.
func (x *Executor) runMap(ctx context.Context, p plan.Payload, rc resolveCtx) (value.RecordedValue, error) {
	iter, err := resolveRef(rc, p.Iterable)
	if err != nil {
		return value.RecordedValue{}, err
	}
	items, err := iterableItems(iter)
	if err != nil {
		return value.RecordedValue{}, err
	}
	if p.LoopBody == nil || len(items) == 0 {
		return value.RListVal(nil), nil
	}

	out := make([]value.RecordedValue, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item value.RecordedValue) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			params := mergeParams(rc.params, p.LoopVar, item)
			val, _, err := x.runSubPlan(ctx, p.LoopBody, rc.cache, params)
			out[i] = val
			errs[i] = err
		}(i, item)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return value.RecordedValue{}, e
		}
	}
	return value.RListVal(out), nil
}

// runFilter always dispatches every iteration concurrently, keeping
// items whose body output is truthy and preserving input order
// (spec.md §4.4).
func (x *Executor) runFilter(ctx context.Context, p plan.Payload, rc resolveCtx) (value.RecordedValue, error) {
	iter, err := resolveRef(rc, p.Iterable)
	if err != nil {
		return value.RecordedValue{}, err
	}
	items, err := iterableItems(iter)
	if err != nil {
		return value.RecordedValue{}, err
	}
	if p.LoopBody == nil || len(items) == 0 {
		return value.RListVal(nil), nil
	}

	keep := make([]bool, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item value.RecordedValue) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			params := mergeParams(rc.params, p.LoopVar, item)
			val, _, err := x.runSubPlan(ctx, p.LoopBody, rc.cache, params)
			if err != nil {
				errs[i] = err
				return
			}
			keep[i] = val.Truthy()
		}(i, item)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return value.RecordedValue{}, e
		}
	}

	out := make([]value.RecordedValue, 0, len(items))
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}
	return value.RListVal(out), nil
}
