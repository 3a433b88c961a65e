package ast

// Inspect traverses statements and expressions depth-first, calling f for
// each node before its children. When f returns false the children of that
// node are skipped. Type syntax is not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		inspectBlock(n.Body, f)
	case *FuncDecl:
		inspectBlock(n.Body, f)
	case *ProcDecl:
		inspectBlock(n.Body, f)
	case *AssignStmt:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *IfStmt:
		inspectExpr(n.Cond, f)
		inspectBlock(n.Then, f)
		inspectBlock(n.Else, f)
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		inspectBlock(n.Body, f)
	case *RepeatStmt:
		inspectBlock(n.Body, f)
		inspectExpr(n.Cond, f)
	case *ForStmt:
		if n.Var != nil {
			Inspect(n.Var, f)
		}
		inspectExpr(n.From, f)
		inspectExpr(n.To, f)
		inspectExpr(n.Step, f)
		inspectBlock(n.Body, f)
	case *CallStmt:
		inspectExprs(n.Args, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *OutputStmt:
		inspectExprs(n.Values, f)
	case *InputStmt:
		inspectExpr(n.Target, f)
	case *IndexExpr:
		inspectExpr(n.X, f)
		inspectExprs(n.Indices, f)
	case *SelectExpr:
		inspectExpr(n.X, f)
	case *DerefExpr:
		inspectExpr(n.X, f)
	case *AddressExpr:
		inspectExpr(n.X, f)
	case *UnaryExpr:
		inspectExpr(n.X, f)
	case *BinaryExpr:
		inspectExpr(n.X, f)
		inspectExpr(n.Y, f)
	case *CallExpr:
		inspectExprs(n.Args, f)
	case *CastExpr:
		inspectExpr(n.X, f)
	}
}

func inspectBlock(stmts []Statement, f func(Node) bool) {
	for _, stmt := range stmts {
		if stmt != nil {
			Inspect(stmt, f)
		}
	}
}

func inspectExprs(exprs []Expression, f func(Node) bool) {
	for _, e := range exprs {
		inspectExpr(e, f)
	}
}

// inspectExpr skips empty optional slots such as a missing STEP.
func inspectExpr(e Expression, f func(Node) bool) {
	if e == nil {
		return
	}
	Inspect(e, f)
}
