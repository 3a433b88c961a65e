package typechecker

import (
	"pseudo2wasm/internal/frontend/ast"
)

func named(name string) *ast.NamedType { return &ast.NamedType{Name: name} }

func ident(name string) *ast.IdentifierExpr { return &ast.IdentifierExpr{Name: name} }

func intLit(v int32) *ast.IntegerLit { return &ast.IntegerLit{Value: v} }

func realLit(v float64) *ast.RealLit { return &ast.RealLit{Value: v} }

func strLit(s string) *ast.StringLit { return &ast.StringLit{Value: s} }

func declare(name string, typ ast.DataType) *ast.VarDecl {
	return &ast.VarDecl{Name: name, DataType: typ}
}

func bin(x ast.Expression, op ast.Operator, y ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{X: x, Op: op, Y: y}
}

func assign(target, value ast.Expression) *ast.AssignStmt {
	return &ast.AssignStmt{Target: target, Value: value}
}

func output(values ...ast.Expression) *ast.OutputStmt {
	return &ast.OutputStmt{Values: values}
}

func param(name, typ string) *ast.Param {
	return &ast.Param{Name: name, DataType: named(typ)}
}

func program(stmts ...ast.Statement) *ast.Program {
	return &ast.Program{Body: stmts}
}
