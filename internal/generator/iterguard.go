package generator

import "github.com/blueprint-lang/blueprint/internal/value"

// iterGuard tracks how many active for-loops are currently iterating
// over each shared-mutable List/Dict/Set (by identity), so mutating
// methods called mid-iteration raise MutationDuringIteration instead of
// silently corrupting the loop (spec.md §4.1 "Mutation and iteration guard").
type iterGuard struct {
	active map[value.Identity]int
}

func newIterGuard() *iterGuard {
	return &iterGuard{active: make(map[value.Identity]int)}
}

func (g *iterGuard) enter(v value.Value) {
	id, ok := v.Identity()
	if !ok {
		return
	}
	g.active[id]++
}

func (g *iterGuard) exit(v value.Value) {
	id, ok := v.Identity()
	if !ok {
		return
	}
	g.active[id]--
	if g.active[id] <= 0 {
		delete(g.active, id)
	}
}

// isIterating reports whether v is currently the subject of an
// in-progress for-loop.
func (g *iterGuard) isIterating(v value.Value) bool {
	id, ok := v.Identity()
	if !ok {
		return false
	}
	return g.active[id] > 0
}
