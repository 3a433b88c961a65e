package ast

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestInspectVisitsNestedNodes(t *testing.T) {
	prog := &Program{Body: []Statement{
		&ProcDecl{Name: "p", Body: []Statement{
			&OutputStmt{Values: []Expression{&StringLit{Value: "in proc"}}},
		}},
		&ForStmt{
			Var:  &IdentifierExpr{Name: "i"},
			From: &IntegerLit{Value: 1},
			To:   &IntegerLit{Value: 3},
			Body: []Statement{
				&IfStmt{
					Cond: &BinaryExpr{X: &IdentifierExpr{Name: "i"}, Op: OpEq, Y: &IntegerLit{Value: 2}},
					Then: []Statement{&OutputStmt{Values: []Expression{&StringLit{Value: "two"}}}},
					Else: []Statement{&CallStmt{Callee: "p"}},
				},
			},
		},
	}}

	var strs []string
	kinds := map[string]int{}
	Inspect(prog, func(n Node) bool {
		kinds[KindName(n)]++
		if s, ok := n.(*StringLit); ok {
			strs = append(strs, s.Value)
		}
		return true
	})

	be.Equal(t, strs, []string{"in proc", "two"})
	be.Equal(t, kinds["identifier"], 2)
	be.Equal(t, kinds["integer literal"], 3)
	be.Equal(t, kinds["CALL"], 1)
}

func TestInspectSkipsChildren(t *testing.T) {
	prog := &Program{Body: []Statement{
		&FuncDecl{Name: "f", Body: []Statement{
			&ReturnStmt{Value: &IntegerLit{Value: 1}},
		}},
		&OutputStmt{Values: []Expression{&IntegerLit{Value: 2}}},
	}}

	count := 0
	Inspect(prog, func(n Node) bool {
		if _, ok := n.(*IntegerLit); ok {
			count++
		}
		_, isFunc := n.(*FuncDecl)
		return !isFunc
	})
	be.Equal(t, count, 1)
}
