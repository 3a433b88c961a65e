package typechecker

import (
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

// isAddressable reports whether expr names a memory location.
func isAddressable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IdentifierExpr, *ast.IndexExpr, *ast.SelectExpr, *ast.DerefExpr:
		return true
	}
	return false
}

// checkExpr computes the type of expr, records it on the node and returns it.
func (c *Checker) checkExpr(expr ast.Expression) (types.Type, error) {
	switch e := expr.(type) {
	case *ast.IntegerLit:
		e.Type = types.TypeInteger
		return e.Type, nil
	case *ast.RealLit:
		e.Type = types.TypeReal
		return e.Type, nil
	case *ast.CharLit:
		e.Type = types.TypeChar
		return e.Type, nil
	case *ast.StringLit:
		e.Type = types.TypeString
		return e.Type, nil
	case *ast.BooleanLit:
		e.Type = types.TypeBoolean
		return e.Type, nil
	case *ast.IdentifierExpr:
		typ, err := c.table.Lookup(e.Name)
		if err != nil {
			return nil, c.scopeError(e, err)
		}
		e.Type = typ
		return typ, nil
	case *ast.IndexExpr:
		return c.checkIndex(e)
	case *ast.SelectExpr:
		return c.checkSelect(e)
	case *ast.DerefExpr:
		typ, err := c.checkExpr(e.X)
		if err != nil {
			return nil, err
		}
		ptr, ok := typ.(*types.PointerType)
		if !ok {
			return nil, c.errorf(diagnostics.ErrNotDereferencing, e, "cannot dereference a value of type %s", typ)
		}
		e.Type = ptr.Base
		return e.Type, nil
	case *ast.AddressExpr:
		typ, err := c.checkExpr(e.X)
		if err != nil {
			return nil, err
		}
		if !isAddressable(e.X) {
			return nil, c.errorf(diagnostics.ErrNotAddressable, e, "cannot take the address of %s", ast.KindName(e.X))
		}
		e.Type = types.NewPointer(typ)
		return e.Type, nil
	case *ast.UnaryExpr:
		return c.checkUnary(e)
	case *ast.BinaryExpr:
		return c.checkBinary(e)
	case *ast.CallExpr:
		sig, err := c.table.LookupFunction(e.Callee)
		if err != nil {
			return nil, c.scopeError(e, err)
		}
		if err := c.checkArgs(e, "function", sig, e.Args); err != nil {
			return nil, err
		}
		e.Type = sig.Returns
		return e.Type, nil
	case *ast.CastExpr:
		return e.Type, nil
	}
	return nil, c.errorf(diagnostics.ErrInvalidType, expr, "unsupported expression %s", ast.KindName(expr))
}

func (c *Checker) checkIndex(e *ast.IndexExpr) (types.Type, error) {
	base, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}

	var elem types.Type
	switch t := base.(type) {
	case *types.ArrayType:
		if len(e.Indices) != len(t.Dims) {
			return nil, c.errorf(diagnostics.ErrNotIndexable, e, "%s expects %d indices, but %d are provided", t, len(t.Dims), len(e.Indices))
		}
		elem = t.Element
	case *types.PointerType:
		if _, ok := t.Base.(*types.BasicType); !ok || len(e.Indices) != 1 {
			return nil, c.errorf(diagnostics.ErrNotIndexable, e, "cannot index %s", t)
		}
		elem = t.Base
	default:
		return nil, c.errorf(diagnostics.ErrNotIndexable, e, "cannot index a value of type %s", base)
	}

	for i, index := range e.Indices {
		typ, err := c.checkExpr(index)
		if err != nil {
			return nil, err
		}
		b, ok := types.AsBasic(typ)
		if !ok || (b.Kind != types.INTEGER && b.Kind != types.CHAR && b.Kind != types.BOOLEAN) {
			return nil, c.errorf(diagnostics.ErrTypeMismatch, e, "index %d must be INTEGER, found %s", i+1, typ)
		}
		e.Indices[i] = convert(index, types.INTEGER)
	}
	e.Type = elem
	return elem, nil
}

func (c *Checker) checkSelect(e *ast.SelectExpr) (types.Type, error) {
	base, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	if _, ok := base.(*types.RecordType); !ok {
		return nil, c.errorf(diagnostics.ErrNotIndexable, e, "cannot select field '%s' of a value of type %s", e.Field, base)
	}
	field, err := types.FieldType(base, e.Field)
	if err != nil {
		return nil, c.errorf(diagnostics.ErrFieldNotFound, e, "%s", err.Error())
	}
	e.Type = field
	return field, nil
}

func (c *Checker) checkUnary(e *ast.UnaryExpr) (types.Type, error) {
	typ, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	rules, ok := unaryRules[e.Op]
	if !ok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "unknown unary operator '%s'", e.Op)
	}
	b, ok := types.AsBasic(typ)
	if !ok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "operator '%s' cannot be applied to %s", e.Op, typ)
	}
	result, ok := rules[b.Kind]
	if !ok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "operator '%s' cannot be applied to %s", e.Op, typ)
	}
	e.Type = types.NewBasic(result)
	return e.Type, nil
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) (types.Type, error) {
	left, err := c.checkExpr(e.X)
	if err != nil {
		return nil, err
	}
	right, err := c.checkExpr(e.Y)
	if err != nil {
		return nil, err
	}

	if _, ok := classOf(e.Op); !ok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "unknown binary operator '%s'", e.Op)
	}
	lb, lok := types.AsBasic(left)
	rb, rok := types.AsBasic(right)
	if !lok || !rok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "operator '%s' cannot be applied to %s and %s", e.Op, left, right)
	}
	rule, ok := lookupBinaryRule(e.Op, lb.Kind, rb.Kind)
	if !ok {
		return nil, c.errorf(diagnostics.ErrInvalidOperands, e, "operator '%s' cannot be applied to %s and %s", e.Op, left, right)
	}

	if rule.operand != types.STRING {
		e.X = convert(e.X, rule.operand)
		e.Y = convert(e.Y, rule.operand)
	}
	e.Type = types.NewBasic(rule.result)
	return e.Type, nil
}
