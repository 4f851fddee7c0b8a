package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// jsonModule wires @bp/json's encode/decode builtins (spec.md §6.2).
func jsonModule(e Emitter) Module {
	return Module{
		Name: "@bp/json",
		Members: map[string]value.Value{
			"encode": fn("encode", func(call value.CallArgs) (value.Value, error) {
				v, err := sv(arg(call, 0))
				if err != nil {
					return value.None, bperrors.TypeError(&call.Pos, "json.encode() value: %s", err.Error())
				}
				return e.Emit(schema.OpJsonEncode, schema.SchemaOp{Value: v}, call.Pos)
			}),
			"decode": fn("decode", func(call value.CallArgs) (value.Value, error) {
				s, err := sv(arg(call, 0))
				if err != nil {
					return value.None, bperrors.TypeError(&call.Pos, "json.decode() str: %s", err.Error())
				}
				return e.Emit(schema.OpJsonDecode, schema.SchemaOp{Str: s}, call.Pos)
			}),
		},
	}
}
