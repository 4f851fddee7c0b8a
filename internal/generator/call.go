package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// getMethod dispatches an attribute lookup against a concrete receiver
// to the method tables in methods_string.go/methods_list.go/
// methods_dict.go/methods_set.go (spec.md §4.1).
func (g *Generator) getMethod(recv value.Value, name string) (value.Value, error) {
	switch recv.Kind() {
	case value.KindString:
		return stringMethod(recv, name)
	case value.KindList:
		return g.listMethod(recv, name)
	case value.KindDict:
		return g.dictMethod(recv, name)
	case value.KindSet:
		return g.setMethod(recv, name)
	default:
		return value.Value{}, bperrors.KeyError(nil, "%s object has no attribute %q", recv.Kind(), name)
	}
}

// callValue invokes a callable value.Value (function, lambda, builtin,
// or partial) with the given positional/keyword arguments (spec.md
// §4.1's function model).
func (g *Generator) callValue(callee value.Value, args []value.Value, kwargs map[string]value.Value, pos ast.Position) (value.Value, error) {
	switch callee.Kind() {
	case value.KindBuiltinFunction:
		b := callee.AsBuiltin()
		return b.Fn(value.CallArgs{Args: args, Kwargs: kwargs, Pos: pos})

	case value.KindFunction:
		f := callee.AsFunction()
		scope, err := g.bindParams(f.Params, args, kwargs, f.Scope, pos)
		if err != nil {
			return value.Value{}, err
		}
		result, ctrl, err := g.execBlock(scope, f.Body)
		if err != nil {
			return value.Value{}, err
		}
		if ctrl == ctrlBreak || ctrl == ctrlContinue {
			return value.Value{}, bperrors.ArgumentError(&pos, "break/continue outside of a loop")
		}
		return result, nil

	case value.KindLambda:
		l := callee.AsLambda()
		scope, err := g.bindParams(l.Params, args, kwargs, l.Scope, pos)
		if err != nil {
			return value.Value{}, err
		}
		return g.evalExpr(scope, l.Body)

	case value.KindPartial:
		p := callee.AsPartial()
		allArgs := append(append([]value.Value{}, p.Args...), args...)
		allKwargs := make(map[string]value.Value, len(p.Kwargs)+len(kwargs))
		for k, v := range p.Kwargs {
			allKwargs[k] = v
		}
		for k, v := range kwargs {
			allKwargs[k] = v
		}
		return g.callValue(p.Target, allArgs, allKwargs, pos)

	default:
		return value.Value{}, bperrors.TypeError(&pos, "%s object is not callable", callee.Kind())
	}
}

// bindParams binds positional and keyword call arguments to a
// function/lambda's formal parameters in a new child of its closure
// scope, applying default-value expressions for omitted parameters.
func (g *Generator) bindParams(params []ast.Param, args []value.Value, kwargs map[string]value.Value, closure value.ScopeHandle, pos ast.Position) (*Scope, error) {
	parent, ok := closure.(*Scope)
	if !ok || parent == nil {
		parent = g.global
	}
	scope := parent.Child()

	used := make(map[string]bool, len(kwargs))
	for i, p := range params {
		if i < len(args) {
			scope.Define(p.Name, args[i])
			continue
		}
		if v, ok := kwargs[p.Name]; ok {
			scope.Define(p.Name, v)
			used[p.Name] = true
			continue
		}
		if p.Default != nil {
			def, err := g.evalExpr(scope, p.Default)
			if err != nil {
				return nil, err
			}
			scope.Define(p.Name, def)
			continue
		}
		return nil, bperrors.ArgumentError(&pos, "missing required argument: %q", p.Name)
	}
	for k := range kwargs {
		if !used[k] && !hasParam(params, k) {
			return nil, bperrors.ArgumentError(&pos, "unexpected keyword argument %q", k)
		}
	}
	return scope, nil
}

func hasParam(params []ast.Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// evalCall evaluates a call expression's callee and arguments, then
// dispatches through callValue. The callee expression may itself be an
// AttrExpr (method call, e.g. x.upper()) — evalExpr already resolves
// that to a bound builtin via getMethod, so no special case is needed
// here.
func (g *Generator) evalCall(scope *Scope, e *ast.CallExpr) (value.Value, error) {
	callee, err := g.evalExpr(scope, e.Func)
	if err != nil {
		return value.Value{}, err
	}
	args, err := g.evalExprList(scope, e.Args)
	if err != nil {
		return value.Value{}, err
	}
	var kwargs map[string]value.Value
	if len(e.Kwargs) > 0 {
		kwargs = make(map[string]value.Value, len(e.Kwargs))
		for k, kExpr := range e.Kwargs {
			kv, err := g.evalExpr(scope, kExpr)
			if err != nil {
				return value.Value{}, err
			}
			kwargs[k] = kv
		}
	}
	return g.callValue(callee, args, kwargs, e.Position)
}

// applyUnary invokes a single-argument function value with one
// positional argument, used by map()/filter() (builtins.go) which take a
// callable expressed inline as a lambda or named function.
func (g *Generator) applyUnary(callee value.Value, item value.Value, pos ast.Position) (value.Value, error) {
	return g.callValue(callee, []value.Value{item}, nil, pos)
}
