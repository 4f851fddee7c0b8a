package generator

import (
	"testing"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }
func intLit(v int64) *ast.IntLit   { return &ast.IntLit{Value: v} }
func strLit(s string) *ast.StringLit { return &ast.StringLit{Value: s} }

func TestGeneratePureArithmeticFoldsAwayWithNoSchemaEntries(t *testing.T) {
	// x = 2 + 3
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.AssignStmt{
				Target: ident("x"),
				Value:  &ast.BinaryExpr{Op: ast.OpAdd, Left: intLit(2), Right: intLit(3)},
			},
		},
	}

	s, err := Generate("m.bp", mod, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Entries, "a pure, fully concrete op should fold instead of emitting a schema entry")
}

func TestGenerateEffectfulCallDefersIntoOneSchemaEntry(t *testing.T) {
	// print("hello")
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{Func: ident("print"), Args: []ast.Expr{strLit("hello")}}},
		},
	}

	s, err := Generate("m.bp", mod, nil)
	require.NoError(t, err)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, schema.OpPrint, s.Entries[0].Op.Kind)
	assert.Equal(t, schema.Literal(value.RStringVal("hello")), s.Entries[0].Op.Message)
}

func TestGenerateSymbolicOperandDefersArithmeticIntoSchemaEntry(t *testing.T) {
	// x = env("HOME")
	// y = x + "/tmp"
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.AssignStmt{
				Target: ident("x"),
				Value:  &ast.CallExpr{Func: ident("env"), Args: []ast.Expr{strLit("HOME")}},
			},
			&ast.AssignStmt{
				Target: ident("y"),
				Value:  &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("x"), Right: strLit("/tmp")},
			},
		},
	}

	s, err := Generate("m.bp", mod, nil)
	require.NoError(t, err)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, schema.OpAdd, s.Entries[0].Op.Kind)
	assert.Equal(t, schema.EnvRef("HOME"), s.Entries[0].Op.Left)
}

func TestGenerateRejectsTopLevelIfStatement(t *testing.T) {
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.IfStmt{Cond: &ast.BoolLit{Value: true}, Then: nil},
		},
	}
	_, err := Generate("m.bp", mod, nil)
	assert.Error(t, err)
}

func TestGenerateRejectsTopLevelForStatement(t *testing.T) {
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.ForStmt{Var: "i", Iter: &ast.ListExpr{}, Body: nil},
		},
	}
	_, err := Generate("m.bp", mod, nil)
	assert.Error(t, err)
}

func TestGenerateRejectsTopLevelReturn(t *testing.T) {
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.ReturnStmt{},
		},
	}
	_, err := Generate("m.bp", mod, nil)
	assert.Error(t, err)
}

func TestGenerateFuncDefIsCallableAndFoldsOnConcreteArgs(t *testing.T) {
	// def add_one(n): return n + 1
	// x = add_one(4)
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.FuncDef{
				Name:   "add_one",
				Params: []ast.Param{{Name: "n"}},
				Body: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: ident("n"), Right: intLit(1)}},
				},
			},
			&ast.AssignStmt{
				Target: ident("x"),
				Value:  &ast.CallExpr{Func: ident("add_one"), Args: []ast.Expr{intLit(4)}},
			},
		},
	}

	s, err := Generate("m.bp", mod, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Entries, "add_one(4) is a pure fold over concrete arguments, no deferred op expected")
}

func TestGenerateUndefinedNameIsError(t *testing.T) {
	mod := &ast.Module{
		File: "m.bp",
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: ident("nope")},
		},
	}
	_, err := Generate("m.bp", mod, nil)
	assert.Error(t, err)
}
