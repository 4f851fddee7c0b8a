package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/schema"
)

// target is a sub-plan-in-progress, or the implicit top-level schema when
// it is the only entry on the generator's target stack (spec.md §9's
// "reusable current generator target" design note). addEntry appends to
// whichever target is on top; pushTarget/popTarget bracket sub-plan
// bodies (ForEach/Map/Filter/IfBlock) so their ids restart at 0.
type target struct {
	params  []string
	entries []schema.SchemaEntry
	nextID  int
}

func newTarget(params []string) *target {
	return &target{params: params}
}

func (t *target) addEntry(op schema.SchemaOp, guard *int, loc *ast.Position) int {
	id := t.nextID
	t.nextID++
	t.entries = append(t.entries, schema.SchemaEntry{
		ID:             id,
		Op:             op,
		Inputs:         schema.ComputeInputs(op),
		Guard:          guard,
		SourceLocation: loc,
	})
	return id
}

func (t *target) toSubPlan(output int) schema.SchemaSubPlan {
	return schema.SchemaSubPlan{Params: t.params, Entries: t.entries, Output: output}
}
