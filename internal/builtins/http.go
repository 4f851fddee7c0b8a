package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// httpModule wires @bp/http's single request builtin (spec.md §6.2). The
// verb-specific helpers (get/post/put/delete/patch) are thin wrappers around it
// so the op surface stays a single HttpRequest kind.
func httpModule(e Emitter) Module {
	request := func(call value.CallArgs, method string) (value.Value, error) {
		url, err := sv(arg(call, 0))
		if err != nil {
			return value.None, bperrors.TypeError(&call.Pos, "http request url: %s", err.Error())
		}
		op := schema.SchemaOp{Method: schema.Literal(value.RStringVal(method)), Url: url}
		if h, ok := call.Kwargs["headers"]; ok {
			hv, err := sv(h)
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "http request headers: %s", err.Error())
			}
			op.Headers = hv
		}
		if b, ok := call.Kwargs["body"]; ok {
			bv, err := sv(b)
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "http request body: %s", err.Error())
			}
			op.Body = bv
		}
		return e.Emit(schema.OpHttpRequest, op, call.Pos)
	}

	verb := func(method string) value.Value {
		return fn("http."+method, func(call value.CallArgs) (value.Value, error) {
			return request(call, method)
		})
	}

	return Module{
		Name: "@bp/http",
		Members: map[string]value.Value{
			"request": fn("request", func(call value.CallArgs) (value.Value, error) {
				methodArg := arg(call, 1)
				method := "GET"
				if methodArg.Kind() == value.KindString {
					method = methodArg.AsString()
				}
				return request(call, method)
			}),
			"get":    verb("GET"),
			"post":   verb("POST"),
			"put":    verb("PUT"),
			"delete": verb("DELETE"),
			"patch":  verb("PATCH"),
		},
	}
}
