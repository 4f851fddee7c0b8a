// Package builtins implements the op-emitting subset of spec.md §6.2:
// the @bp/io, @bp/http, @bp/exec, @bp/json built-in modules (loaded via
// load("@bp/...")) plus the base builtins that may defer to a runtime
// op when given a symbolic operand (print, sleep, now, sorted, reversed,
// min, max, sum, abs, len, and the to*/str conversions).
//
// Base builtins with no runtime op representation (range, map, filter,
// enumerate, zip, type, hasattr, getattr, repr, all, any, the fail/
// assert_* family, and the list/dict/tuple constructors) are
// generation-time-only and live in internal/generator instead, since
// they have nothing for this package's Emitter to emit.
package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// Emitter is implemented by the generator: it takes an operand payload
// for a single op, folds it to a literal if every operand is concrete
// and the op is pure, or appends a schema entry and returns the
// resulting OpRef otherwise.
type Emitter interface {
	Emit(kind schema.OpKind, op schema.SchemaOp, pos ast.Position) (value.Value, error)
}

// Module is one @bp/* export table.
type Module struct {
	Name    string
	Members map[string]value.Value
}

// Modules returns the built-in module export tables keyed by their
// load() path (spec.md §6.2), wired to emit through e.
func Modules(e Emitter) map[string]Module {
	return map[string]Module{
		"@bp/io":   ioModule(e),
		"@bp/http": httpModule(e),
		"@bp/exec": execModule(e),
		"@bp/json": jsonModule(e),
	}
}

// fn builds a value.BuiltinFunction bound to name.
func fn(name string, call func(value.CallArgs) (value.Value, error)) value.Value {
	return value.BuiltinVal(&value.BuiltinFunction{Name: name, Fn: call})
}

func arg(call value.CallArgs, i int) value.Value {
	if i < len(call.Args) {
		return call.Args[i]
	}
	return value.None
}

func argOr(call value.CallArgs, i int, def value.Value) value.Value {
	if i < len(call.Args) {
		return call.Args[i]
	}
	return def
}
