package schema

import "github.com/blueprint-lang/blueprint/internal/ast"

// SchemaEntry is one op in a Schema (spec.md §3.6).
type SchemaEntry struct {
	ID             int
	Op             SchemaOp
	Inputs         []int // deduplicated, first-appearance order (spec.md §3.9)
	Guard          *int  // gates execution inside a sub-plan (spec.md §3.4)
	SourceLocation *ast.Position
}

// Schema is the symbolic DAG emitted by generation (spec.md §3.6).
type Schema struct {
	Entries []SchemaEntry
	NextID  int
}

// SchemaSubPlan is a self-contained, locally-id-scoped op list used
// inside ForEach/Map/Filter/IfBlock (spec.md §3.5).
type SchemaSubPlan struct {
	Params  []string
	Entries []SchemaEntry
	Output  int // id of the entry producing this sub-plan's value; 0 (and no entries) yields None
}

// ByID looks up an entry by id within this schema's top-level entries.
func (s *Schema) ByID(id int) (SchemaEntry, bool) {
	for _, e := range s.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return SchemaEntry{}, false
}

// ByID looks up an entry by id within this sub-plan's local entries.
func (sp *SchemaSubPlan) ByID(id int) (SchemaEntry, bool) {
	for _, e := range sp.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return SchemaEntry{}, false
}

// dedupeInOrder removes duplicate ids, keeping first occurrence order
// (spec.md §3.9's dependency-closure invariant).
func dedupeInOrder(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ComputeInputs derives an entry's Inputs field from its op's
// referenced ids, per the dependency-closure invariant.
func ComputeInputs(op SchemaOp) []int {
	return dedupeInOrder(op.ReferencedOpIDs())
}
