package interpreter

import (
	"bytes"
	"context"
	"testing"

	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSubPlanOutputDefaultsToNoneWithoutEntries(t *testing.T) {
	x := newTestExecutor()
	sp := &plan.SubPlan{Output: 0}
	val, sig, err := x.runSubPlan(context.Background(), sp, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, sigNone, sig)
	assert.Equal(t, value.RNoneVal(), val)
}

func TestRunSubPlanHonorsGuard(t *testing.T) {
	falseGuard := 1
	sp := &plan.SubPlan{
		Ops: []plan.Op{
			{ID: 1, Payload: plan.Payload{Kind: plan.OpNot, Value: plan.Lit(value.RBoolVal(true))}}, // false
			{ID: 2, Guard: &falseGuard, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(1)), Right: plan.Lit(value.RIntVal(1))}},
		},
		Output: 2,
	}
	x := newTestExecutor()
	val, sig, err := x.runSubPlan(context.Background(), sp, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, sigNone, sig)
	assert.Equal(t, value.RNoneVal(), val) // op 2 skipped by its falsy guard
}

func TestRunSubPlanBreakStopsAndReturnsSignal(t *testing.T) {
	sp := &plan.SubPlan{
		Ops: []plan.Op{
			{ID: 1, Payload: plan.Payload{Kind: plan.OpBreak}},
			{ID: 2, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(1)), Right: plan.Lit(value.RIntVal(1))}},
		},
		Output: 2,
	}
	x := newTestExecutor()
	_, sig, err := x.runSubPlan(context.Background(), sp, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, sigBreak, sig)
}

func TestRunIfBlockIsTransparentToBreak(t *testing.T) {
	thenBody := &plan.SubPlan{
		Ops:    []plan.Op{{ID: 1, Payload: plan.Payload{Kind: plan.OpBreak}}},
		Output: 1,
	}
	x := newTestExecutor()
	rc := resolveCtx{cache: newOpCache()}
	_, sig, err := x.runIfBlock(context.Background(), plan.Payload{
		Cond:     plan.Lit(value.RBoolVal(true)),
		ThenBody: thenBody,
	}, rc)
	require.NoError(t, err)
	assert.Equal(t, sigBreak, sig)
}

func TestRunForEachSequentialBreakStopsLoop(t *testing.T) {
	// Loop body breaks as soon as item == 2; the third item must never run.
	items := []value.RecordedValue{value.RIntVal(1), value.RIntVal(2), value.RIntVal(3)}
	cond := &plan.SubPlan{
		Ops: []plan.Op{
			{ID: 1, Payload: plan.Payload{Kind: plan.OpEq, Left: plan.Dyn("item"), Right: plan.Lit(value.RIntVal(2))}},
			{ID: 2, Payload: plan.Payload{Kind: plan.OpIfBlock, Cond: plan.OpOutput(1, nil),
				ThenBody: &plan.SubPlan{Ops: []plan.Op{{ID: 1, Payload: plan.Payload{Kind: plan.OpBreak}}}, Output: 1}},
				Inputs: []int{1}},
			{ID: 3, Payload: plan.Payload{Kind: plan.OpPrint, Message: plan.Dyn("item")}},
		},
		Output: 2,
	}

	var buf bytes.Buffer
	x := newTestExecutor()
	x.Stdout = &buf
	rc := resolveCtx{cache: newOpCache(), params: map[string]value.RecordedValue{}}
	_, err := x.runForEach(context.Background(), plan.Payload{
		Iterable: plan.Lit(value.RListVal(items)),
		LoopVar:  "item",
		LoopBody: cond,
		Parallel: false,
	}, rc)
	require.NoError(t, err)
	assert.Equal(t, "1\n", buf.String()) // item 2 breaks before printing; item 3 never runs
}

func TestRunMapAppliesBodyToEveryItemInOrder(t *testing.T) {
	items := []value.RecordedValue{value.RIntVal(1), value.RIntVal(2), value.RIntVal(3)}
	body := &plan.SubPlan{
		Ops:    []plan.Op{{ID: 1, Payload: plan.Payload{Kind: plan.OpMul, Left: plan.Dyn("item"), Right: plan.Lit(value.RIntVal(10))}}},
		Output: 1,
	}
	x := newTestExecutor()
	rc := resolveCtx{cache: newOpCache(), params: map[string]value.RecordedValue{}}
	out, err := x.runMap(context.Background(), plan.Payload{
		Iterable: plan.Lit(value.RListVal(items)),
		LoopVar:  "item",
		LoopBody: body,
	}, rc)
	require.NoError(t, err)
	require.Equal(t, value.RList, out.Kind)
	assert.Equal(t, []value.RecordedValue{value.RIntVal(10), value.RIntVal(20), value.RIntVal(30)}, out.List)
}

func TestRunFilterKeepsTruthyItemsInOrder(t *testing.T) {
	items := []value.RecordedValue{value.RIntVal(1), value.RIntVal(2), value.RIntVal(3), value.RIntVal(4)}
	body := &plan.SubPlan{
		Ops: []plan.Op{
			{ID: 1, Payload: plan.Payload{Kind: plan.OpMod, Left: plan.Dyn("item"), Right: plan.Lit(value.RIntVal(2))}},
			{ID: 2, Payload: plan.Payload{Kind: plan.OpEq, Left: plan.OpOutput(1, nil), Right: plan.Lit(value.RIntVal(0))}, Inputs: []int{1}},
		},
		Output: 2,
	}
	x := newTestExecutor()
	rc := resolveCtx{cache: newOpCache(), params: map[string]value.RecordedValue{}}
	out, err := x.runFilter(context.Background(), plan.Payload{
		Iterable: plan.Lit(value.RListVal(items)),
		LoopVar:  "item",
		LoopBody: body,
	}, rc)
	require.NoError(t, err)
	assert.Equal(t, []value.RecordedValue{value.RIntVal(2), value.RIntVal(4)}, out.List)
}

func TestRunForEachNonIterableIsTypeError(t *testing.T) {
	x := newTestExecutor()
	rc := resolveCtx{cache: newOpCache(), params: map[string]value.RecordedValue{}}
	_, err := x.runForEach(context.Background(), plan.Payload{
		Iterable: plan.Lit(value.RIntVal(5)),
		LoopVar:  "item",
		LoopBody: &plan.SubPlan{Output: 0},
	}, rc)
	require.Error(t, err)
}

func TestRunSubPlanDryRunVisitsBreakWithoutUnwinding(t *testing.T) {
	sp := &plan.SubPlan{
		Ops: []plan.Op{
			{ID: 1, Payload: plan.Payload{Kind: plan.OpBreak}},
			{ID: 2, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(1)), Right: plan.Lit(value.RIntVal(1))}},
		},
		Output: 2,
	}
	x := newTestExecutor()
	x.DryRun = true
	val, sig, err := x.runSubPlan(context.Background(), sp, nil, nil)
	require.NoError(t, err)
	// Under dry_run every op (including Break) resolves to None without
	// branching, so op 2 is still visited instead of the walk stopping at
	// the Break — no signal ever unwinds the sub-plan.
	assert.Equal(t, sigNone, sig)
	assert.Equal(t, value.RNoneVal(), val)
}
