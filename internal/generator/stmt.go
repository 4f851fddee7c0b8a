package generator

import (
	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// ctrlSignal is what a statement or block handed control back up: plain
// fallthrough, or one of return/break/continue unwinding toward the
// nearest construct that handles it.
type ctrlSignal int

const (
	ctrlNone ctrlSignal = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// execBlock runs a statement sequence in order, stopping early the
// moment a statement signals return/break/continue.
func (g *Generator) execBlock(scope *Scope, stmts []ast.Stmt) (value.Value, ctrlSignal, error) {
	for _, s := range stmts {
		v, ctrl, err := g.execStmt(scope, s)
		if err != nil {
			return value.Value{}, ctrlNone, err
		}
		if ctrl != ctrlNone {
			return v, ctrl, nil
		}
	}
	return value.None, ctrlNone, nil
}

// execStmt partially evaluates one statement (spec.md §4.1).
func (g *Generator) execStmt(scope *Scope, s ast.Stmt) (value.Value, ctrlSignal, error) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		_, err := g.evalExpr(scope, st.X)
		return value.None, ctrlNone, err

	case *ast.AssignStmt:
		return value.None, ctrlNone, g.execAssign(scope, st)

	case *ast.ReturnStmt:
		if st.Value == nil {
			return value.None, ctrlReturn, nil
		}
		v, err := g.evalExpr(scope, st.Value)
		if err != nil {
			return value.Value{}, ctrlNone, err
		}
		return v, ctrlReturn, nil

	case *ast.BreakStmt:
		return value.None, ctrlBreak, nil

	case *ast.ContinueStmt:
		return value.None, ctrlContinue, nil

	case *ast.IfStmt:
		return g.execIf(scope, st)

	case *ast.ForStmt:
		return g.execFor(scope, st)

	case *ast.FuncDef:
		scope.Define(st.Name, value.FuncVal(&value.Function{Name: st.Name, Params: st.Params, Body: st.Body, Scope: scope}))
		return value.None, ctrlNone, nil

	case *ast.LoadStmt:
		exports, err := g.Load(st.Path, st.Bindings, st.Position)
		if err != nil {
			return value.Value{}, ctrlNone, err
		}
		for _, name := range st.Bindings {
			scope.Define(name, exports[name])
		}
		return value.None, ctrlNone, nil

	default:
		p := s.Pos()
		return value.Value{}, ctrlNone, bperrors.ArgumentError(&p, "unsupported statement %T", s)
	}
}

func (g *Generator) execAssign(scope *Scope, st *ast.AssignStmt) error {
	rhs, err := g.evalExpr(scope, st.Value)
	if err != nil {
		return err
	}
	switch target := st.Target.(type) {
	case *ast.Ident:
		scope.Assign(target.Name, rhs)
		return nil
	case *ast.IndexExpr:
		return g.assignIndex(scope, target, rhs)
	case *ast.AttrExpr:
		return bperrors.TypeError(&target.Position, "attribute assignment is not supported")
	default:
		p := st.Target.Pos()
		return bperrors.ArgumentError(&p, "invalid assignment target %T", st.Target)
	}
}

func (g *Generator) assignIndex(scope *Scope, target *ast.IndexExpr, rhs value.Value) error {
	coll, err := g.evalExpr(scope, target.Value)
	if err != nil {
		return err
	}
	idx, err := g.evalExpr(scope, target.Index)
	if err != nil {
		return err
	}

	if coll.IsSymbolic() {
		rootIdent, ok := target.Value.(*ast.Ident)
		if !ok {
			return bperrors.TypeError(&target.Position, "item assignment on a value that is not yet known requires a plain variable")
		}
		collSV, err := schema.FromValue(coll)
		if err != nil {
			return err
		}
		idxSV, err := schema.FromValue(idx)
		if err != nil {
			return err
		}
		rhsSV, err := schema.FromValue(rhs)
		if err != nil {
			return err
		}
		newColl, err := g.Emit(schema.OpSetIndex, schema.SchemaOp{Collection: collSV, Index: idxSV, NewValue: rhsSV}, target.Position)
		if err != nil {
			return err
		}
		scope.Assign(rootIdent.Name, newColl)
		return nil
	}

	if g.guard.isIterating(coll) {
		return bperrors.MutationDuringIteration(&target.Position, "[]=")
	}
	switch coll.Kind() {
	case value.KindList:
		list := coll.AsList()
		i := normalizeIndex(idx.AsInt(), int64(len(list.Items)))
		if i < 0 || i >= int64(len(list.Items)) {
			return bperrors.IndexError(&target.Position, "list assignment index out of range")
		}
		list.Items[i] = rhs
		return nil
	case value.KindDict:
		if idx.Kind() != value.KindString {
			return bperrors.TypeError(&target.Position, "dict keys must be strings")
		}
		coll.AsDict().Set(idx.AsString(), rhs)
		return nil
	default:
		return bperrors.TypeError(&target.Position, "%s object does not support item assignment", coll.Kind())
	}
}

func (g *Generator) execIf(scope *Scope, st *ast.IfStmt) (value.Value, ctrlSignal, error) {
	cond, err := g.evalExpr(scope, st.Cond)
	if err != nil {
		return value.Value{}, ctrlNone, err
	}

	if !cond.IsSymbolic() {
		if cond.Truthy() {
			return g.execBlock(scope.Child(), st.Then)
		}
		return g.execBlock(scope.Child(), st.Else)
	}

	condSV, err := schema.FromValue(cond)
	if err != nil {
		return value.Value{}, ctrlNone, err
	}

	g.pushTarget(nil)
	if _, _, err := g.execBlock(scope.Child(), st.Then); err != nil {
		g.popTarget(0)
		return value.Value{}, ctrlNone, err
	}
	thenPlan := g.popTarget(lastEntryID(g.targets))

	g.pushTarget(nil)
	var elsePlan *schema.SchemaSubPlan
	if len(st.Else) > 0 {
		if _, _, err := g.execBlock(scope.Child(), st.Else); err != nil {
			g.popTarget(0)
			return value.Value{}, ctrlNone, err
		}
		p := g.popTarget(lastEntryID(g.targets))
		elsePlan = &p
	} else {
		p := g.popTarget(0)
		elsePlan = &p
	}

	op := schema.SchemaOp{Cond: condSV, ThenBody: &thenPlan, ElseBody: elsePlan}
	_, err = g.Emit(schema.OpIfBlock, op, st.Position)
	return value.None, ctrlNone, err
}

// lastEntryID reports the output id a just-finished sub-plan-in-progress
// should report: the last entry it accumulated, or 0 (None) if it is empty.
func lastEntryID(targets []*target) int {
	t := targets[len(targets)-1]
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[len(t.entries)-1].ID
}

func (g *Generator) execFor(scope *Scope, st *ast.ForStmt) (value.Value, ctrlSignal, error) {
	iter, err := g.evalExpr(scope, st.Iter)
	if err != nil {
		return value.Value{}, ctrlNone, err
	}

	if !iter.IsSymbolic() {
		g.guard.enter(iter)
		defer g.guard.exit(iter)
		for _, item := range listItems(iter) {
			inner := scope.Child()
			inner.Define(st.Var, item)
			v, ctrl, err := g.execBlock(inner, st.Body)
			if err != nil {
				return value.Value{}, ctrlNone, err
			}
			switch ctrl {
			case ctrlBreak:
				return value.None, ctrlNone, nil
			case ctrlReturn:
				return v, ctrlReturn, nil
			}
		}
		return value.None, ctrlNone, nil
	}

	iterSV, err := schema.FromValue(iter)
	if err != nil {
		return value.Value{}, ctrlNone, err
	}

	g.pushTarget([]string{st.Var})
	bodyScope := scope.Child()
	bodyScope.Define(st.Var, value.ParamRefVal(st.Var))
	if _, ctrl, err := g.execBlock(bodyScope, st.Body); err != nil {
		g.popTarget(0)
		return value.Value{}, ctrlNone, err
	} else if ctrl == ctrlReturn {
		g.popTarget(0)
		return value.Value{}, ctrlNone, bperrors.ArgumentError(&st.Position, "return from inside a loop over a value that is not yet known is not supported")
	}
	body := g.popTarget(lastEntryID(g.targets))

	op := schema.SchemaOp{
		Iterable: iterSV,
		LoopVar:  st.Var,
		LoopBody: &body,
	}
	op.Parallel = isForEachParallel(&body, st.Var)
	_, err = g.Emit(schema.OpForEach, op, st.Position)
	return value.None, ctrlNone, err
}
