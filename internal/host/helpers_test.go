package host

import (
	"context"
	"io"
	"testing"

	"github.com/nalgeon/be"

	"pseudo2wasm/internal/compiler"
	"pseudo2wasm/internal/frontend/ast"
)

func named(name string) *ast.NamedType { return &ast.NamedType{Name: name} }

func id(name string) *ast.IdentifierExpr { return &ast.IdentifierExpr{Name: name} }

func num(v int32) *ast.IntegerLit { return &ast.IntegerLit{Value: v} }

func realLit(v float64) *ast.RealLit { return &ast.RealLit{Value: v} }

func str(s string) *ast.StringLit { return &ast.StringLit{Value: s} }

func char(r rune) *ast.CharLit { return &ast.CharLit{Value: r} }

func boolean(v bool) *ast.BooleanLit { return &ast.BooleanLit{Value: v} }

func bin(x ast.Expression, op ast.Operator, y ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{X: x, Op: op, Y: y}
}

func call(name string, args ...ast.Expression) *ast.CallExpr {
	return &ast.CallExpr{Callee: name, Args: args}
}

func index(x ast.Expression, indices ...ast.Expression) *ast.IndexExpr {
	return &ast.IndexExpr{X: x, Indices: indices}
}

func sel(x ast.Expression, field string) *ast.SelectExpr {
	return &ast.SelectExpr{X: x, Field: field}
}

func declare(name string, typ ast.DataType) *ast.VarDecl {
	return &ast.VarDecl{Name: name, DataType: typ}
}

func array(elem ast.DataType, bounds ...int32) *ast.ArrayTypeNode {
	arr := &ast.ArrayTypeNode{Element: elem}
	for i := 0; i+1 < len(bounds); i += 2 {
		arr.Dims = append(arr.Dims, ast.DimensionNode{Lower: bounds[i], Upper: bounds[i+1]})
	}
	return arr
}

func assign(target, value ast.Expression) *ast.AssignStmt {
	return &ast.AssignStmt{Target: target, Value: value}
}

func output(values ...ast.Expression) *ast.OutputStmt {
	return &ast.OutputStmt{Values: values}
}

func input(target ast.Expression) *ast.InputStmt { return &ast.InputStmt{Target: target} }

func param(name, typ string) *ast.Param { return &ast.Param{Name: name, DataType: named(typ)} }

func forLoop(v string, from, to, step ast.Expression, body ...ast.Statement) *ast.ForStmt {
	return &ast.ForStmt{Var: id(v), From: from, To: to, Step: step, Body: body}
}

// compileAndRun compiles stmts and runs the module with the given inputs.
func compileAndRun(t *testing.T, inputs []string, stmts ...ast.Statement) (*Result, compiler.Result, error) {
	t.Helper()
	compiled := compiler.Compile(&ast.Program{Body: stmts}, &compiler.Options{Writer: io.Discard})
	be.Err(t, compiled.Err, nil)
	res, err := Run(context.Background(), compiled.Binary(), Config{Inputs: inputs})
	return res, compiled, err
}

// runOutput compiles and runs stmts and returns the output items.
func runOutput(t *testing.T, inputs []string, stmts ...ast.Statement) []string {
	t.Helper()
	res, _, err := compileAndRun(t, inputs, stmts...)
	be.Err(t, err, nil)
	return res.Output
}
