package generator

import (
	"fmt"
	"strings"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// evalExpr partially evaluates an expression: every sub-expression that
// can be computed now is computed now; anything touching the outside
// world flows through Emit and comes back as an OpRef (spec.md §4.1).
func (g *Generator) evalExpr(scope *Scope, expr ast.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.NoneLit:
		return value.None, nil
	case *ast.BoolLit:
		return value.Bool(e.Value), nil
	case *ast.IntLit:
		return value.Int(e.Value), nil
	case *ast.FloatLit:
		return value.Float(e.Value), nil
	case *ast.StringLit:
		return value.String(e.Value), nil
	case *ast.BytesLit:
		return value.Bytes(e.Value), nil

	case *ast.Ident:
		v, ok := scope.Lookup(e.Name)
		if !ok {
			err := bperrors.NameError(&e.Position, "name %q is not defined", e.Name)
			if s := suggest(e.Name, definedNames(scope)); s != "" {
				err = err.WithSuggestion(s)
			}
			return value.Value{}, err
		}
		return v, nil

	case *ast.ListExpr:
		items, err := g.evalExprList(scope, e.Elements)
		if err != nil {
			return value.Value{}, err
		}
		return value.ListVal(value.NewList(items)), nil

	case *ast.TupleExpr:
		items, err := g.evalExprList(scope, e.Elements)
		if err != nil {
			return value.Value{}, err
		}
		return value.Tuple(items), nil

	case *ast.SetExpr:
		items, err := g.evalExprList(scope, e.Elements)
		if err != nil {
			return value.Value{}, err
		}
		s := value.NewSet()
		for _, item := range items {
			s.Add(item)
		}
		return value.SetVal(s), nil

	case *ast.DictExpr:
		d := value.NewDict()
		for i, kExpr := range e.Keys {
			k, err := g.evalExpr(scope, kExpr)
			if err != nil {
				return value.Value{}, err
			}
			if k.Kind() != value.KindString {
				return value.Value{}, bperrors.TypeError(&e.Position, "dict keys must be strings, got %s", k.Kind())
			}
			v, err := g.evalExpr(scope, e.Values[i])
			if err != nil {
				return value.Value{}, err
			}
			d.Set(k.AsString(), v)
		}
		return value.DictVal(d), nil

	case *ast.BinaryExpr:
		return g.evalBinary(scope, e)

	case *ast.UnaryExpr:
		return g.evalUnary(scope, e)

	case *ast.CallExpr:
		return g.evalCall(scope, e)

	case *ast.AttrExpr:
		recv, err := g.evalExpr(scope, e.Value)
		if err != nil {
			return value.Value{}, err
		}
		if recv.IsSymbolic() {
			if ref := recv.AsOpRef(); recv.Kind() == value.KindOpRef {
				return value.OpRefPathVal(ref.ID, append(append([]value.Accessor{}, ref.Path...), value.FieldAccessor(e.Name))), nil
			}
			return value.Value{}, bperrors.TypeError(&e.Position, "cannot access attribute %q of a value that is not yet known", e.Name)
		}
		return g.getMethod(recv, e.Name)

	case *ast.IndexExpr:
		return g.evalIndex(scope, e)

	case *ast.SliceExpr:
		return g.evalSlice(scope, e)

	case *ast.CondExpr:
		return g.evalCond(scope, e)

	case *ast.FStringExpr:
		return g.evalFString(scope, e)

	case *ast.PercentExpr:
		return g.evalPercent(scope, e)

	case *ast.LambdaExpr:
		return value.LambdaVal(&value.Lambda{Params: e.Params, Body: e.Body, Scope: scope}), nil

	case *ast.ListCompExpr:
		return g.evalListComp(scope, e)

	case *ast.DictCompExpr:
		return g.evalDictComp(scope, e)

	default:
		return value.Value{}, bperrors.ArgumentError(exprPos(expr), "unsupported expression %T", expr)
	}
}

func exprPos(e ast.Expr) *ast.Position {
	p := e.Pos()
	return &p
}

func definedNames(scope *Scope) []string {
	var names []string
	for cur := scope; cur != nil; cur = cur.parent {
		for k := range cur.vars {
			names = append(names, k)
		}
	}
	return names
}

func (g *Generator) evalExprList(scope *Scope, exprs []ast.Expr) ([]value.Value, error) {
	out := make([]value.Value, len(exprs))
	for i, e := range exprs {
		v, err := g.evalExpr(scope, e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var binOpKind = map[ast.BinOp]schema.OpKind{
	ast.OpAdd: schema.OpAdd, ast.OpSub: schema.OpSub, ast.OpMul: schema.OpMul,
	ast.OpDiv: schema.OpDiv, ast.OpFloorDiv: schema.OpFloorDiv, ast.OpMod: schema.OpMod,
	ast.OpEq: schema.OpEq, ast.OpNe: schema.OpNe,
	ast.OpLt: schema.OpLt, ast.OpLe: schema.OpLe, ast.OpGt: schema.OpGt, ast.OpGe: schema.OpGe,
}

func (g *Generator) evalBinary(scope *Scope, e *ast.BinaryExpr) (value.Value, error) {
	// and/or short-circuit in Python style and never emit an op: their
	// result is whichever operand decided the outcome, symbolic or not.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		l, err := g.evalExpr(scope, e.Left)
		if err != nil {
			return value.Value{}, err
		}
		if l.IsSymbolic() {
			return value.Value{}, bperrors.TypeError(&e.Position, "and/or require a concrete left operand to short-circuit")
		}
		if e.Op == ast.OpAnd && !l.Truthy() {
			return l, nil
		}
		if e.Op == ast.OpOr && l.Truthy() {
			return l, nil
		}
		return g.evalExpr(scope, e.Right)
	}

	l, err := g.evalExpr(scope, e.Left)
	if err != nil {
		return value.Value{}, err
	}
	r, err := g.evalExpr(scope, e.Right)
	if err != nil {
		return value.Value{}, err
	}

	if e.Op == ast.OpIn {
		left, err := schema.FromValue(r)
		if err != nil {
			return value.Value{}, bperrors.TypeError(&e.Position, "in: %s", err.Error())
		}
		right, err := schema.FromValue(l)
		if err != nil {
			return value.Value{}, bperrors.TypeError(&e.Position, "in: %s", err.Error())
		}
		return g.Emit(schema.OpContains, schema.SchemaOp{Left: left, Right: right}, e.Position)
	}

	if kind, ok := binOpKind[e.Op]; ok {
		left, err := schema.FromValue(l)
		if err != nil {
			return value.Value{}, bperrors.TypeError(&e.Position, "%s", err.Error())
		}
		right, err := schema.FromValue(r)
		if err != nil {
			return value.Value{}, bperrors.TypeError(&e.Position, "%s", err.Error())
		}
		return g.Emit(kind, schema.SchemaOp{Left: left, Right: right}, e.Position)
	}

	// Bitwise operators have no op-layer representation (spec.md §3.3's
	// op set is arithmetic/logic over the recorded value universe only);
	// they are generation-time-only and require concrete integers.
	if l.IsSymbolic() || r.IsSymbolic() {
		return value.Value{}, bperrors.TypeError(&e.Position, "operator %s requires concrete integer operands", e.Op)
	}
	if l.Kind() != value.KindInt || r.Kind() != value.KindInt {
		return value.Value{}, bperrors.TypeError(&e.Position, "unsupported operand types for %s: %s and %s", e.Op, l.Kind(), r.Kind())
	}
	a, b := l.AsInt(), r.AsInt()
	switch e.Op {
	case ast.OpBitAnd:
		return value.Int(a & b), nil
	case ast.OpBitOr:
		return value.Int(a | b), nil
	case ast.OpBitXor:
		return value.Int(a ^ b), nil
	case ast.OpShl:
		return value.Int(a << uint(b)), nil
	case ast.OpShr:
		return value.Int(a >> uint(b)), nil
	default:
		return value.Value{}, bperrors.ArgumentError(&e.Position, "unhandled binary operator %s", e.Op)
	}
}

func (g *Generator) evalUnary(scope *Scope, e *ast.UnaryExpr) (value.Value, error) {
	v, err := g.evalExpr(scope, e.Operand)
	if err != nil {
		return value.Value{}, err
	}
	sv, err := schema.FromValue(v)
	if err != nil {
		return value.Value{}, bperrors.TypeError(&e.Position, "%s", err.Error())
	}
	switch e.Op {
	case ast.OpNeg:
		return g.Emit(schema.OpNeg, schema.SchemaOp{Value: sv}, e.Position)
	case ast.OpNot:
		return g.Emit(schema.OpNot, schema.SchemaOp{Value: sv}, e.Position)
	default:
		return value.Value{}, bperrors.ArgumentError(&e.Position, "unhandled unary operator %s", e.Op)
	}
}

func (g *Generator) evalIndex(scope *Scope, e *ast.IndexExpr) (value.Value, error) {
	coll, err := g.evalExpr(scope, e.Value)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := g.evalExpr(scope, e.Index)
	if err != nil {
		return value.Value{}, err
	}
	if coll.Kind() == value.KindOpRef && idx.Kind() == value.KindInt {
		ref := coll.AsOpRef()
		return value.OpRefPathVal(ref.ID, append(append([]value.Accessor{}, ref.Path...), value.IndexAccessor(idx.AsInt()))), nil
	}
	collSV, err := schema.FromValue(coll)
	if err != nil {
		return value.Value{}, bperrors.TypeError(&e.Position, "%s", err.Error())
	}
	idxSV, err := schema.FromValue(idx)
	if err != nil {
		return value.Value{}, bperrors.TypeError(&e.Position, "%s", err.Error())
	}
	return g.Emit(schema.OpIndex, schema.SchemaOp{Collection: collSV, Index: idxSV}, e.Position)
}

func (g *Generator) evalSlice(scope *Scope, e *ast.SliceExpr) (value.Value, error) {
	v, err := g.evalExpr(scope, e.Value)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsSymbolic() {
		return value.Value{}, bperrors.TypeError(&e.Position, "slicing is only supported on a concrete value")
	}
	items := listItems(v)
	n := int64(len(items))
	low, high, step := int64(0), n, int64(1)
	if e.Step != nil {
		s, err := g.evalExpr(scope, e.Step)
		if err != nil {
			return value.Value{}, err
		}
		step = s.AsInt()
		if step == 0 {
			return value.Value{}, bperrors.ValueError(&e.Position, "slice step cannot be zero")
		}
	}
	if step < 0 {
		low, high = n-1, -n-1
	}
	if e.Low != nil {
		l, err := g.evalExpr(scope, e.Low)
		if err != nil {
			return value.Value{}, err
		}
		low = clampSliceIndex(normalizeIndex(l.AsInt(), n), n)
	}
	if e.High != nil {
		h, err := g.evalExpr(scope, e.High)
		if err != nil {
			return value.Value{}, err
		}
		high = clampSliceIndex(normalizeIndex(h.AsInt(), n), n)
	}
	var out []value.Value
	if step > 0 {
		for i := low; i < high && i < n; i += step {
			if i >= 0 {
				out = append(out, items[i])
			}
		}
	} else {
		for i := low; i > high && i >= 0; i += step {
			if i < n {
				out = append(out, items[i])
			}
		}
	}
	if v.Kind() == value.KindString {
		var b strings.Builder
		for _, item := range out {
			b.WriteString(item.AsString())
		}
		return value.String(b.String()), nil
	}
	return value.ListVal(value.NewList(out)), nil
}

func clampSliceIndex(i, n int64) int64 {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func (g *Generator) evalCond(scope *Scope, e *ast.CondExpr) (value.Value, error) {
	cond, err := g.evalExpr(scope, e.Cond)
	if err != nil {
		return value.Value{}, err
	}
	if !cond.IsSymbolic() {
		if cond.Truthy() {
			return g.evalExpr(scope, e.Then)
		}
		return g.evalExpr(scope, e.Else)
	}
	then, err := g.evalExpr(scope, e.Then)
	if err != nil {
		return value.Value{}, err
	}
	els, err := g.evalExpr(scope, e.Else)
	if err != nil {
		return value.Value{}, err
	}
	condSV, err := schema.FromValue(cond)
	if err != nil {
		return value.Value{}, err
	}
	thenSV, err := schema.FromValue(then)
	if err != nil {
		return value.Value{}, err
	}
	elseSV, err := schema.FromValue(els)
	if err != nil {
		return value.Value{}, err
	}
	return g.Emit(schema.OpIf, schema.SchemaOp{Cond: condSV, Then: thenSV, Else: elseSV}, e.Position)
}

func (g *Generator) evalFString(scope *Scope, e *ast.FStringExpr) (value.Value, error) {
	var b strings.Builder
	for _, part := range e.Parts {
		if part.Expr == nil {
			b.WriteString(part.Text)
			continue
		}
		v, err := g.evalExpr(scope, part.Expr)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsSymbolic() {
			return value.Value{}, bperrors.TypeError(&e.Position, "f-string interpolation requires a concrete value")
		}
		b.WriteString(v.String())
	}
	return value.String(b.String()), nil
}

func (g *Generator) evalPercent(scope *Scope, e *ast.PercentExpr) (value.Value, error) {
	format, err := g.evalExpr(scope, e.Format)
	if err != nil {
		return value.Value{}, err
	}
	args, err := g.evalExpr(scope, e.Args)
	if err != nil {
		return value.Value{}, err
	}
	if format.IsSymbolic() || args.IsSymbolic() {
		return value.Value{}, bperrors.TypeError(&e.Position, "%% formatting requires concrete operands")
	}
	var items []value.Value
	switch args.Kind() {
	case value.KindTuple:
		items = args.AsTuple()
	default:
		items = []value.Value{args}
	}
	out, err := percentFormat(format.AsString(), items, e.Position)
	if err != nil {
		return value.Value{}, err
	}
	return value.String(out), nil
}

// percentFormat implements printf-style `%` formatting over the
// argument tuple (spec.md §6.1): %s, %d/%i, %f, %r, %x/%X, %o, %e, %g,
// and literal %%.
func percentFormat(tmpl string, args []value.Value, pos ast.Position) (string, error) {
	var b strings.Builder
	argIdx := 0
	next := func() (value.Value, error) {
		if argIdx >= len(args) {
			return value.Value{}, bperrors.ArgumentError(&pos, "not enough arguments for format string")
		}
		v := args[argIdx]
		argIdx++
		return v, nil
	}
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			b.WriteByte(tmpl[i])
			continue
		}
		if i+1 >= len(tmpl) {
			return "", bperrors.ValueError(&pos, "incomplete format specifier at end of string")
		}
		verb := tmpl[i+1]
		i++
		switch verb {
		case '%':
			b.WriteByte('%')
		case 's', 'r':
			v, err := next()
			if err != nil {
				return "", err
			}
			b.WriteString(v.String())
		case 'd', 'i':
			v, err := next()
			if err != nil {
				return "", err
			}
			iv, err := foldToInt(v, pos)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%d", iv.AsInt())
		case 'x', 'X', 'o':
			v, err := next()
			if err != nil {
				return "", err
			}
			iv, err := foldToInt(v, pos)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+string(verb), iv.AsInt())
		case 'f', 'e', 'g':
			v, err := next()
			if err != nil {
				return "", err
			}
			fv, err := foldToFloat(v, pos)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+string(verb), fv.AsFloat())
		default:
			return "", bperrors.ValueError(&pos, "unsupported format specifier %%%c", verb)
		}
	}
	return b.String(), nil
}

func (g *Generator) evalListComp(scope *Scope, e *ast.ListCompExpr) (value.Value, error) {
	iter, err := g.evalExpr(scope, e.Iter)
	if err != nil {
		return value.Value{}, err
	}
	if iter.IsSymbolic() {
		return value.Value{}, bperrors.TypeError(&e.Position, "comprehensions require a concrete iterable")
	}
	g.guard.enter(iter)
	defer g.guard.exit(iter)

	var out []value.Value
	for _, item := range listItems(iter) {
		inner := scope.Child()
		inner.Define(e.Var, item)
		if e.If != nil {
			cond, err := g.evalExpr(inner, e.If)
			if err != nil {
				return value.Value{}, err
			}
			if !cond.Truthy() {
				continue
			}
		}
		v, err := g.evalExpr(inner, e.Element)
		if err != nil {
			return value.Value{}, err
		}
		out = append(out, v)
	}
	return value.ListVal(value.NewList(out)), nil
}

func (g *Generator) evalDictComp(scope *Scope, e *ast.DictCompExpr) (value.Value, error) {
	iter, err := g.evalExpr(scope, e.Iter)
	if err != nil {
		return value.Value{}, err
	}
	if iter.IsSymbolic() {
		return value.Value{}, bperrors.TypeError(&e.Position, "comprehensions require a concrete iterable")
	}
	g.guard.enter(iter)
	defer g.guard.exit(iter)

	d := value.NewDict()
	for _, item := range listItems(iter) {
		inner := scope.Child()
		inner.Define(e.Var, item)
		if e.If != nil {
			cond, err := g.evalExpr(inner, e.If)
			if err != nil {
				return value.Value{}, err
			}
			if !cond.Truthy() {
				continue
			}
		}
		k, err := g.evalExpr(inner, e.Key)
		if err != nil {
			return value.Value{}, err
		}
		if k.Kind() != value.KindString {
			return value.Value{}, bperrors.TypeError(&e.Position, "dict comprehension keys must be strings")
		}
		v, err := g.evalExpr(inner, e.Value)
		if err != nil {
			return value.Value{}, err
		}
		d.Set(k.AsString(), v)
	}
	return value.DictVal(d), nil
}
