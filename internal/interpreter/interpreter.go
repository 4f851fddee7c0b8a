package interpreter

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/blueprint-lang/blueprint/internal/invariant"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
	"golang.org/x/crypto/blake2b"
)

// DefaultMaxConcurrent is spec.md §4.3/§5's default bound on
// simultaneously active op tasks.
const DefaultMaxConcurrent = 64

// Executor drives the streaming DAG interpreter (spec.md §4.3): a
// bounded worker pool over a Plan's ops, producing an OpCache. One
// Executor runs one Plan (or sub-plan, via the evaluator in subplan.go);
// it carries no state between runs.
type Executor struct {
	MaxConcurrent int
	DryRun        bool
	Env           Environment
	HTTPClient    *http.Client
	Stdout        io.Writer
}

// New builds an Executor with spec.md's defaults: max_concurrent 64,
// the real OS environment, a default http.Client, and os.Stdout.
func New() *Executor {
	return &Executor{
		MaxConcurrent: DefaultMaxConcurrent,
		Env:           OSEnvironment{},
		HTTPClient:    http.DefaultClient,
		Stdout:        os.Stdout,
	}
}

func (x *Executor) maxConcurrent() int {
	if x.MaxConcurrent > 0 {
		return x.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

// taskResult is what a completed op task reports back to the scheduler
// loop (spec.md §4.3's "completion message").
type taskResult struct {
	id   int
	val  value.RecordedValue
	hash [blake2b.Size256]byte
	err  error
}

// Run executes a top-level Plan to completion, implementing spec.md
// §4.3's load + run-loop algorithm. On dry_run, every op resolves to
// None instead of actually executing (spec.md §5): ops are still
// dispatched in dependency order, but no operand is resolved.
func (x *Executor) Run(ctx context.Context, p *plan.Plan) (*OpCache, error) {
	invariant.NotNil(p, "plan")
	return x.run(ctx, p.Ops, nil, nil)
}

// run is the scheduler core behind Run. Sub-plan bodies do not go
// through it: subplan.go's runSubPlan evaluates them. parent/params are
// passed through to value resolution (Run passes nil for both).
func (x *Executor) run(ctx context.Context, ops []plan.Op, parent *OpCache, params map[string]value.RecordedValue) (*OpCache, error) {
	cache := newOpCache()
	byID := make(map[int]plan.Op, len(ops))
	dependents := make(map[int][]int)
	pendingDeps := make(map[int]int, len(ops))
	var ready []int

	for _, op := range ops {
		byID[op.ID] = op
	}
	for _, op := range ops {
		pendingDeps[op.ID] = len(op.Inputs)
		for _, in := range op.Inputs {
			dependents[in] = append(dependents[in], op.ID)
		}
		if len(op.Inputs) == 0 {
			ready = append(ready, op.ID)
		}
	}

	resultsCh := make(chan taskResult)
	inFlight := 0
	cancelled := false
	var firstErr error

	dispatch := func(id int) {
		inFlight++
		op := byID[id]
		go func() {
			if ctx.Err() != nil {
				resultsCh <- taskResult{id: id, err: ctx.Err()}
				return
			}
			rc := resolveCtx{cache: cache, parent: parent, params: params}
			// Resolved here, alongside the op's own execution, instead of
			// a second time back in the scheduler loop after completion:
			// this is the same resolution execOp's field-by-field lookups
			// would do anyway, just reused for the input hash too.
			_, ordered, err := resolveInputs(rc, op.Payload)
			if err != nil {
				invariant.Invariant(false, "op %d dispatched before its inputs were ready: %v", id, err)
			}
			hash := inputHash(ordered)
			val, err := x.runOne(ctx, op, rc)
			resultsCh <- taskResult{id: id, val: val, hash: hash, err: err}
		}()
	}

	for len(ready) > 0 || inFlight > 0 {
		for !cancelled && inFlight < x.maxConcurrent() && len(ready) > 0 {
			id := ready[0]
			ready = ready[1:]
			dispatch(id)
		}
		if inFlight == 0 {
			// cancelled with nothing left in flight and nothing new to
			// dispatch: drain the remaining ready queue as abandoned.
			break
		}
		res := <-resultsCh
		inFlight--
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			cancelled = true
			continue
		}
		cache.set(res.id, res.val, res.hash)
		for _, dep := range dependents[res.id] {
			pendingDeps[dep]--
			if pendingDeps[dep] == 0 && !cancelled {
				ready = append(ready, dep)
			}
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return cache, nil
}

// runOne executes a single op, honoring dry_run (spec.md §5: every op
// resolves to None instead of running, preserving the DAG shape).
func (x *Executor) runOne(ctx context.Context, op plan.Op, rc resolveCtx) (value.RecordedValue, error) {
	if x.DryRun {
		return value.RNoneVal(), nil
	}
	switch op.Payload.Kind {
	case plan.OpForEach, plan.OpMap, plan.OpFilter, plan.OpIfBlock:
		return x.execBlockOp(ctx, op.Payload, rc)
	default:
		return x.execOp(op.Payload, rc)
	}
}
