package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// execModule wires @bp/exec's process builtins (spec.md §6.2, §4.2.3).
// run() emits the portable Exec op directly; shell() emits ExecShell,
// which the resolver lowers to a platform-specific Exec invocation.
func execModule(e Emitter) Module {
	spawn := func(kind schema.OpKind, name string) value.Value {
		return fn(name, func(call value.CallArgs) (value.Value, error) {
			command, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "%s() command: %s", name, err.Error())
			}
			op := schema.SchemaOp{Command: command}
			if args, ok := call.Kwargs["args"]; ok {
				argsSV, err := sv(args)
				if err != nil {
					return value.None, bperrors.TypeError(&call.Pos, "%s() args: %s", name, err.Error())
				}
				op.Args = argsSV
			} else if len(call.Args) > 1 {
				argsSV, err := sv(arg(call, 1))
				if err != nil {
					return value.None, bperrors.TypeError(&call.Pos, "%s() args: %s", name, err.Error())
				}
				op.Args = argsSV
			}
			return e.Emit(kind, op, call.Pos)
		})
	}

	return Module{
		Name: "@bp/exec",
		Members: map[string]value.Value{
			"run":   spawn(schema.OpExec, "run"),
			"shell": spawn(schema.OpExecShell, "shell"),
		},
	}
}
