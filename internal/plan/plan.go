package plan

import "github.com/blueprint-lang/blueprint/internal/ast"

// Op is one concrete operation in a Plan (spec.md §3.4).
type Op struct {
	ID             int
	Payload        Payload
	Inputs         []int
	Guard          *int
	SourceLocation *ast.Position
}

// SubPlan is a self-contained, locally-id-scoped op list with named
// formal parameters, bound at call sites (spec.md §3.5).
type SubPlan struct {
	Params []string
	Ops    []Op
	Output int
}

// Plan is the concrete DAG produced by resolution: insertion order is a
// topological order with respect to Inputs (spec.md §3.6, invariant #1).
type Plan struct {
	Ops []Op
}

// ByID looks up an op by id among this plan's top-level ops.
func (p *Plan) ByID(id int) (Op, bool) {
	for _, op := range p.Ops {
		if op.ID == id {
			return op, true
		}
	}
	return Op{}, false
}

// ByID looks up an op by id within this sub-plan's local ops.
func (sp *SubPlan) ByID(id int) (Op, bool) {
	for _, op := range sp.Ops {
		if op.ID == id {
			return op, true
		}
	}
	return Op{}, false
}

// ComputeInputs derives an op's Inputs field from its payload's
// referenced ids (spec.md §3.9).
func ComputeInputs(p Payload) []int {
	seen := make(map[int]bool)
	var out []int
	for _, id := range p.ReferencedOpIDs() {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IsTopologicallyOrdered checks invariant #1: every op appears after all
// ops it depends on.
func (p *Plan) IsTopologicallyOrdered() bool {
	seen := make(map[int]bool, len(p.Ops))
	for _, op := range p.Ops {
		for _, in := range op.Inputs {
			if !seen[in] {
				return false
			}
		}
		if op.Guard != nil && !seen[*op.Guard] {
			return false
		}
		seen[op.ID] = true
	}
	return true
}
