// Package generator implements the Schema Generator (spec.md §4.1): a
// partial evaluator that walks a parsed module, executing everything
// that can run now and deferring everything that can't (because it
// depends on the outside world) into a symbolic Schema of ops.
package generator

import (
	"fmt"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/builtins"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// Generator holds all state threaded through partial evaluation of one
// module: the target stack building up the Schema (or a sub-plan), the
// module-load registry, and the active mutation-guard tracking.
type Generator struct {
	global  *Scope
	targets []*target
	guard   *iterGuard
	modules *moduleLoader
	file    string
}

// New creates a Generator for a top-level module, wiring the base scope
// with built-in functions, @bp/* modules, and load() support. source
// resolves load() paths outside @bp/*; a nil source means load() of a
// non-built-in path always fails with ImportError.
func New(file string, source SourceLoader) *Generator {
	g := &Generator{
		global:  NewScope(),
		targets: []*target{newTarget(nil)},
		guard:   newIterGuard(),
		file:    file,
	}
	g.modules = newModuleLoader(g, source)
	g.registerBuiltins()
	return g
}

// newChild creates a Generator for a load()-ed module, sharing the
// caller's module-load registry (cache, cycle-detection stack and
// built-in tables) instead of building a fresh one.
func newChild(file string, modules *moduleLoader) *Generator {
	g := &Generator{
		global:  NewScope(),
		targets: []*target{newTarget(nil)},
		guard:   newIterGuard(),
		modules: modules,
		file:    file,
	}
	g.registerBuiltins()
	return g
}

func (g *Generator) top() *target { return g.targets[len(g.targets)-1] }

// pushTarget begins a new sub-plan-in-progress (spec.md §9); entries
// added via Emit while it is active accumulate into it instead of the
// enclosing target.
func (g *Generator) pushTarget(params []string) {
	g.targets = append(g.targets, newTarget(params))
}

// popTarget finishes the current sub-plan-in-progress and returns it.
func (g *Generator) popTarget(output int) schema.SchemaSubPlan {
	t := g.top()
	g.targets = g.targets[:len(g.targets)-1]
	return t.toSubPlan(output)
}

// Emit implements builtins.Emitter: it folds op to a literal when it is
// pure and every operand is already concrete, else it appends a new
// entry to the current target and returns a reference to its output.
func (g *Generator) Emit(kind schema.OpKind, op schema.SchemaOp, pos ast.Position) (value.Value, error) {
	op.Kind = kind
	if kind.IsPure() && op.IsConcrete() {
		return g.fold(op, pos)
	}
	p := pos
	id := g.top().addEntry(op, nil, &p)
	return value.OpRefVal(id), nil
}

// EmitGuarded appends an op gated on a prior entry in the same target
// (spec.md §3.4's Guard field). Unlike Emit it never folds: the entry is
// always appended with guard attached. No code in this package calls it.
func (g *Generator) EmitGuarded(kind schema.OpKind, op schema.SchemaOp, pos ast.Position, guard *int) (value.Value, error) {
	op.Kind = kind
	p := pos
	id := g.top().addEntry(op, guard, &p)
	return value.OpRefVal(id), nil
}

var _ builtins.Emitter = (*Generator)(nil)

// Build finishes generation and returns the completed top-level Schema.
// Must be called after the module's top-level statements have executed.
func (g *Generator) Build() schema.Schema {
	t := g.targets[0]
	return schema.Schema{Entries: t.entries, NextID: t.nextID}
}

// Generate runs a parsed module's top-level statements to completion and
// returns the resulting Schema (spec.md §4.1's top-level entrypoint).
// Top-level if/for statements are rejected per spec.md §4.1's "no
// top-level control flow outside function bodies" rule.
func Generate(file string, mod *ast.Module, source SourceLoader) (schema.Schema, error) {
	g := New(file, source)
	for _, stmt := range mod.Stmts {
		switch stmt.(type) {
		case *ast.IfStmt, *ast.ForStmt:
			p := stmt.Pos()
			return schema.Schema{}, bperrors.ArgumentError(&p, "if/for statements are only allowed inside a function body")
		}
		if _, ctrl, err := g.execStmt(g.global, stmt); err != nil {
			return schema.Schema{}, err
		} else if ctrl != ctrlNone {
			p := stmt.Pos()
			return schema.Schema{}, bperrors.ArgumentError(&p, "return/break/continue are only allowed inside a function body")
		}
	}
	return g.Build(), nil
}

func (g *Generator) errf(pos ast.Position, format string, args ...interface{}) error {
	return bperrors.ArgumentError(&pos, format, args...)
}

func (g *Generator) String() string { return fmt.Sprintf("generator(%s)", g.file) }
