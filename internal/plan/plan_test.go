package plan

import (
	"testing"

	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestComputeInputsDedupesReferencedOps(t *testing.T) {
	p := Payload{
		Kind:  OpConcat,
		Left:  List([]ValueRef{OpOutput(3, nil), OpOutput(1, nil), OpOutput(3, nil)}),
		Right: OpOutput(2, nil),
	}
	assert.Equal(t, []int{3, 1, 2}, ComputeInputs(p))
}

func TestIsTopologicallyOrderedDetectsForwardReference(t *testing.T) {
	good := &Plan{Ops: []Op{
		{ID: 1, Payload: Payload{Kind: OpAdd, Left: Lit(value.RIntVal(1)), Right: Lit(value.RIntVal(1))}},
		{ID: 2, Payload: Payload{Kind: OpAdd, Left: OpOutput(1, nil), Right: Lit(value.RIntVal(1))}, Inputs: []int{1}},
	}}
	assert.True(t, good.IsTopologicallyOrdered())

	bad := &Plan{Ops: []Op{
		{ID: 1, Payload: Payload{Kind: OpAdd, Left: OpOutput(2, nil), Right: Lit(value.RIntVal(1))}, Inputs: []int{2}},
		{ID: 2, Payload: Payload{Kind: OpAdd, Left: Lit(value.RIntVal(1)), Right: Lit(value.RIntVal(1))}},
	}}
	assert.False(t, bad.IsTopologicallyOrdered())
}

func TestIsTopologicallyOrderedChecksGuardToo(t *testing.T) {
	guard := 2
	bad := &Plan{Ops: []Op{
		{ID: 1, Guard: &guard, Payload: Payload{Kind: OpAdd, Left: Lit(value.RIntVal(1)), Right: Lit(value.RIntVal(1))}},
		{ID: 2, Payload: Payload{Kind: OpAdd, Left: Lit(value.RIntVal(1)), Right: Lit(value.RIntVal(1))}},
	}}
	assert.False(t, bad.IsTopologicallyOrdered())
}

func TestPlanAndSubPlanByID(t *testing.T) {
	p := &Plan{Ops: []Op{{ID: 1}, {ID: 7}}}
	op, ok := p.ByID(7)
	assert.True(t, ok)
	assert.Equal(t, 7, op.ID)
	_, ok = p.ByID(99)
	assert.False(t, ok)

	sp := &SubPlan{Ops: []Op{{ID: 1}, {ID: 2}}}
	op2, ok := sp.ByID(1)
	assert.True(t, ok)
	assert.Equal(t, 1, op2.ID)
}

func TestValueRefOpIDs(t *testing.T) {
	assert.Nil(t, Lit(value.RIntVal(1)).OpIDs())
	assert.Equal(t, []int{5}, OpOutput(5, nil).OpIDs())
	assert.Equal(t, []int{1, 2}, List([]ValueRef{OpOutput(1, nil), Lit(value.RIntVal(0)), OpOutput(2, nil)}).OpIDs())
	assert.Nil(t, Dyn("x").OpIDs())
}
