package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// BaseSymbolic returns the base builtins (spec.md §6.2) that defer to a
// runtime op when given a symbolic operand: print and sleep/now are
// always effectful and always emit; the conversions, len, sorted,
// reversed, min, max, sum, and abs fold at generation time when every
// operand is concrete, and emit their matching op kind otherwise. The
// generator binds these directly into every module's root scope; the
// purely concrete base builtins (range, map, filter, type, ...) are
// generation-time-only and live in the generator package instead.
func BaseSymbolic(e Emitter) map[string]value.Value {
	unary := func(kind schema.OpKind, name string) value.Value {
		return fn(name, func(call value.CallArgs) (value.Value, error) {
			v, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "%s(): %s", name, err.Error())
			}
			return e.Emit(kind, schema.SchemaOp{Value: v}, call.Pos)
		})
	}
	collection := func(kind schema.OpKind, name string) value.Value {
		return fn(name, func(call value.CallArgs) (value.Value, error) {
			v, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "%s(): %s", name, err.Error())
			}
			return e.Emit(kind, schema.SchemaOp{Values: v}, call.Pos)
		})
	}

	return map[string]value.Value{
		"print": fn("print", func(call value.CallArgs) (value.Value, error) {
			v, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "print(): %s", err.Error())
			}
			return e.Emit(schema.OpPrint, schema.SchemaOp{Message: v}, call.Pos)
		}),
		"sleep": fn("sleep", func(call value.CallArgs) (value.Value, error) {
			v, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "sleep(): %s", err.Error())
			}
			return e.Emit(schema.OpSleep, schema.SchemaOp{Seconds: v}, call.Pos)
		}),
		"now": fn("now", func(call value.CallArgs) (value.Value, error) {
			return e.Emit(schema.OpNow, schema.SchemaOp{}, call.Pos)
		}),

		"len":    unary(schema.OpLen, "len"),
		"abs":    unary(schema.OpAbs, "abs"),
		"bool":   unary(schema.OpToBool, "bool"),
		"int":    unary(schema.OpToInt, "int"),
		"float":  unary(schema.OpToFloat, "float"),
		"str":    unary(schema.OpToStr, "str"),

		"sum": fn("sum", func(call value.CallArgs) (value.Value, error) {
			values, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "sum(): %s", err.Error())
			}
			op := schema.SchemaOp{Values: values}
			if len(call.Args) > 1 {
				start, err := sv(call.Args[1])
				if err != nil {
					return value.None, bperrors.TypeError(&call.Pos, "sum() start: %s", err.Error())
				}
				op.Start = start
			}
			return e.Emit(schema.OpSum, op, call.Pos)
		}),
		"min":      collection(schema.OpMin, "min"),
		"max":      collection(schema.OpMax, "max"),
		"sorted":   collection(schema.OpSorted, "sorted"),
		"reversed": collection(schema.OpReversed, "reversed"),
	}
}
