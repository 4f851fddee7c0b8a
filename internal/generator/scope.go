package generator

import "github.com/blueprint-lang/blueprint/internal/value"

// Scope is a lexical binding environment with parent chaining, used both
// for module/function scopes and for snapshots captured by closures
// (spec.md §4.1 "Function model").
type Scope struct {
	parent *Scope
	vars   map[string]value.Value
}

// NewScope creates a root scope (no parent).
func NewScope() *Scope {
	return &Scope{vars: make(map[string]value.Value)}
}

// Child creates a new scope nested under s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]value.Value)}
}

// Lookup searches this scope and its ancestors, innermost first.
// Implements value.ScopeHandle so captured closures can resolve names.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Define binds name in this scope only (shadowing any outer binding).
func (s *Scope) Define(name string, v value.Value) {
	s.vars[name] = v
}

// Assign rebinds an existing name in the nearest scope that defines it,
// or defines it in this scope if not found anywhere (Python assignment
// semantics for the module/function-local case Blueprint supports).
func (s *Scope) Assign(name string, v value.Value) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return
		}
	}
	s.vars[name] = v
}

// Bindings returns a snapshot of the names defined directly in this
// scope (not its ancestors) — used to collect a module's top-level
// exports for load().
func (s *Scope) Bindings() map[string]value.Value {
	out := make(map[string]value.Value, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

var _ value.ScopeHandle = (*Scope)(nil)
