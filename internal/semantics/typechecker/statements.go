package typechecker

import (
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/semantics/table"
	"pseudo2wasm/internal/types"
)

func (c *Checker) checkAssign(stmt *ast.AssignStmt) error {
	target, err := c.checkExpr(stmt.Target)
	if err != nil {
		return err
	}
	if !isAddressable(stmt.Target) {
		return c.errorf(diagnostics.ErrNotAddressable, stmt, "cannot assign to %s", ast.KindName(stmt.Target))
	}
	value, err := c.checkExpr(stmt.Value)
	if err != nil {
		return err
	}
	converted, err := c.convertTo(stmt, stmt.Value, value, target, "cannot assign %s to %s")
	if err != nil {
		return err
	}
	stmt.Value = converted
	return nil
}

// convertTo checks that a value of type from may be stored as type to and
// wraps expr in a conversion when the scalar kinds differ. format receives
// (from, to) for the mismatch message.
func (c *Checker) convertTo(node ast.Node, expr ast.Expression, from, to types.Type, format string) (ast.Expression, error) {
	switch dst := to.(type) {
	case *types.BasicType:
		src, ok := from.(*types.BasicType)
		if !ok {
			break
		}
		if !types.Assignable(src.Kind, dst.Kind) {
			return nil, c.errorf(diagnostics.ErrTypeMismatch, node, format, from, to)
		}
		return convert(expr, dst.Kind), nil
	case *types.PointerType:
		if dst.Equals(from) {
			return expr, nil
		}
		return nil, c.errorf(diagnostics.ErrTypeMismatch, node, format, from, to)
	case *types.ArrayType, *types.RecordType:
		return nil, c.errorf(diagnostics.ErrAggregateAssign, node, "%s assignment is unsupported", to)
	}
	switch from.(type) {
	case *types.ArrayType, *types.RecordType:
		return nil, c.errorf(diagnostics.ErrAggregateAssign, node, "%s assignment is unsupported", from)
	}
	return nil, c.errorf(diagnostics.ErrTypeMismatch, node, format, from, to)
}

// convert wraps expr in a conversion to kind unless it already has that kind.
func convert(expr ast.Expression, kind types.BasicKind) ast.Expression {
	if types.IsKind(ast.TypeOf(expr), kind) {
		return expr
	}
	return &ast.CastExpr{X: expr, Type: types.NewBasic(kind), Location: *expr.Loc()}
}

func (c *Checker) checkCondition(stmt ast.Statement, cond *ast.Expression) error {
	typ, err := c.checkExpr(*cond)
	if err != nil {
		return err
	}
	if !types.IsKind(typ, types.BOOLEAN) {
		return c.errorf(diagnostics.ErrConditionType, stmt, "%s condition must be BOOLEAN, found %s", ast.KindName(stmt), typ)
	}
	return nil
}

func (c *Checker) checkFor(stmt *ast.ForStmt) error {
	varType, err := c.checkExpr(stmt.Var)
	if err != nil {
		return err
	}
	if !types.IsKind(varType, types.INTEGER) {
		return c.errorf(diagnostics.ErrForClause, stmt, "FOR loop variable '%s' must be INTEGER, found %s", stmt.Var.Name, varType)
	}

	if stmt.Step == nil {
		stmt.Step = &ast.IntegerLit{Value: 1, Location: stmt.Location}
	}
	clauses := []struct {
		name string
		expr ast.Expression
	}{
		{"start value", stmt.From},
		{"end value", stmt.To},
		{"step value", stmt.Step},
	}
	for _, clause := range clauses {
		typ, err := c.checkExpr(clause.expr)
		if err != nil {
			return err
		}
		if !types.IsKind(typ, types.INTEGER) {
			return c.errorf(diagnostics.ErrForClause, stmt, "FOR %s must be INTEGER, found %s", clause.name, typ)
		}
	}
	return c.checkNestedBlock(stmt.Body)
}

func (c *Checker) checkCallStmt(stmt *ast.CallStmt) error {
	sig, err := c.table.LookupProcedure(stmt.Callee)
	if err != nil {
		return c.scopeError(stmt, err)
	}
	return c.checkArgs(stmt, "procedure", sig, stmt.Args)
}

// checkArgs enforces exact arity and converts each argument to its
// parameter type. args is updated in place.
func (c *Checker) checkArgs(node ast.Node, what string, sig *table.Signature, args []ast.Expression) error {
	if len(args) != len(sig.Params) {
		return c.errorf(diagnostics.ErrArityMismatch, node, "%s '%s' expects %d arguments, but %d are provided",
			what, sig.Name, len(sig.Params), len(args))
	}
	for i, arg := range args {
		typ, err := c.checkExpr(arg)
		if err != nil {
			return err
		}
		converted, err := c.convertTo(node, arg, typ, sig.Params[i].Type, "cannot pass %s as "+sig.Params[i].Name+" of type %s")
		if err != nil {
			return err
		}
		args[i] = converted
	}
	return nil
}

func (c *Checker) checkReturn(stmt *ast.ReturnStmt) error {
	if !c.table.InFunctionBody() {
		return c.errorf(diagnostics.ErrMisplacedReturn, stmt, "RETURN is only allowed inside a FUNCTION body")
	}
	typ, err := c.checkExpr(stmt.Value)
	if err != nil {
		return err
	}
	converted, err := c.convertTo(stmt, stmt.Value, typ, c.table.Current().ReturnType, "cannot return %s from a FUNCTION returning %s")
	if err != nil {
		return err
	}
	stmt.Value = converted
	return nil
}

func (c *Checker) checkOutput(stmt *ast.OutputStmt) error {
	for _, value := range stmt.Values {
		typ, err := c.checkExpr(value)
		if err != nil {
			return err
		}
		if _, ok := types.AsBasic(typ); !ok {
			return c.errorf(diagnostics.ErrTypeMismatch, stmt, "cannot OUTPUT a value of type %s", typ)
		}
	}
	return nil
}

func (c *Checker) checkInput(stmt *ast.InputStmt) error {
	typ, err := c.checkExpr(stmt.Target)
	if err != nil {
		return err
	}
	if !isAddressable(stmt.Target) {
		return c.errorf(diagnostics.ErrNotAddressable, stmt, "cannot INPUT into %s", ast.KindName(stmt.Target))
	}
	if _, ok := types.AsBasic(typ); !ok {
		return c.errorf(diagnostics.ErrTypeMismatch, stmt, "cannot INPUT a value of type %s", typ)
	}
	return nil
}
