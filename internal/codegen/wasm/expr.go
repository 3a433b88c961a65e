package wasm

import (
	"pseudo2wasm/internal/codegen/layout"
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

// emitExpr leaves the value of expr on the operand stack.
func (g *Generator) emitExpr(expr ast.Expression) error {
	c := &g.fn.body
	switch e := expr.(type) {
	case *ast.IntegerLit:
		c.i32Const(e.Value)
	case *ast.RealLit:
		c.f64Const(e.Value)
	case *ast.CharLit:
		c.i32Const(int32(e.Value))
	case *ast.BooleanLit:
		if e.Value {
			c.i32Const(1)
		} else {
			c.i32Const(0)
		}
	case *ast.StringLit:
		ptr, ok := g.stringPtrs[e.Value]
		if !ok {
			return g.errorf(diagnostics.ErrUnresolvedName, e, "string literal %q was not interned", e.Value)
		}
		c.i32Const(int32(ptr))
	case *ast.IdentifierExpr, *ast.IndexExpr, *ast.SelectExpr, *ast.DerefExpr:
		return g.emitLoad(e)
	case *ast.AddressExpr:
		return g.emitAddress(e.X)
	case *ast.UnaryExpr:
		return g.emitUnary(e)
	case *ast.BinaryExpr:
		return g.emitBinary(e)
	case *ast.CallExpr:
		return g.emitCall(e, e.Callee, e.Args)
	case *ast.CastExpr:
		return g.emitCast(e)
	default:
		return g.errorf(diagnostics.ErrUnsupportedNode, expr, "unsupported expression %s", ast.KindName(expr))
	}
	return nil
}

func (g *Generator) emitLoad(e ast.Expression) error {
	typ := ast.TypeOf(e)
	op, err := loadOpcode(typ)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "cannot load a value of type %s", typ)
	}
	if err := g.emitAddress(e); err != nil {
		return err
	}
	g.fn.body.mem(op, 0)
	return nil
}

// emitAddress leaves the byte address of an addressable expression on the
// operand stack.
func (g *Generator) emitAddress(expr ast.Expression) error {
	c := &g.fn.body
	switch e := expr.(type) {
	case *ast.IdentifierExpr:
		pl, ok := g.planner.Lookup(e.Name)
		if !ok {
			return g.errorf(diagnostics.ErrUnresolvedName, e, "no storage for '%s'", e.Name)
		}
		if pl.Class == layout.Global {
			c.i32Const(int32(pl.Offset))
			return nil
		}
		c.globalGet(globalStackBase)
		if pl.Offset != 0 {
			c.i32Const(int32(pl.Offset))
			c.op(opcodeI32Add)
		}
		return nil
	case *ast.IndexExpr:
		return g.emitIndexAddress(e)
	case *ast.SelectExpr:
		rec, ok := ast.TypeOf(e.X).(*types.RecordType)
		if !ok {
			return g.errorf(diagnostics.ErrUnsupportedNode, e, "cannot select '%s' from %s", e.Field, ast.TypeOf(e.X))
		}
		_, offset, ok := rec.Field(e.Field)
		if !ok {
			return g.errorf(diagnostics.ErrUnresolvedName, e, "%s has no field '%s'", rec, e.Field)
		}
		if err := g.emitAddress(e.X); err != nil {
			return err
		}
		if offset != 0 {
			c.i32Const(int32(offset))
			c.op(opcodeI32Add)
		}
		return nil
	case *ast.DerefExpr:
		return g.emitExpr(e.X)
	}
	return g.errorf(diagnostics.ErrNonAddressableLHS, expr, "%s does not name a memory location", ast.KindName(expr))
}

// emitIndexAddress flattens an N-dimensional index: base plus the sum of
// (index - lower) * section * elementSize over all dimensions. Indices are
// not bounds checked.
func (g *Generator) emitIndexAddress(e *ast.IndexExpr) error {
	c := &g.fn.body
	switch t := ast.TypeOf(e.X).(type) {
	case *types.ArrayType:
		if len(e.Indices) != len(t.Dims) {
			return g.errorf(diagnostics.ErrEmitArity, e, "%s needs %d indices, got %d", t, len(t.Dims), len(e.Indices))
		}
		if err := g.emitAddress(e.X); err != nil {
			return err
		}
		sections := t.SectionSizes()
		elem := t.Element.Size()
		for i, index := range e.Indices {
			if err := g.emitExpr(index); err != nil {
				return err
			}
			if lower := t.Dims[i].Lower; lower != 0 {
				c.i32Const(lower)
				c.op(opcodeI32Sub)
			}
			c.i32Const(int32(sections[i] * elem))
			c.op(opcodeI32Mul)
			c.op(opcodeI32Add)
		}
		return nil
	case *types.PointerType:
		if len(e.Indices) != 1 {
			return g.errorf(diagnostics.ErrEmitArity, e, "pointer index takes 1 index, got %d", len(e.Indices))
		}
		if err := g.emitExpr(e.X); err != nil {
			return err
		}
		if err := g.emitExpr(e.Indices[0]); err != nil {
			return err
		}
		c.i32Const(int32(t.Base.Size()))
		c.op(opcodeI32Mul)
		c.op(opcodeI32Add)
		return nil
	}
	return g.errorf(diagnostics.ErrNonAddressableLHS, e, "cannot index %s", ast.TypeOf(e.X))
}

func (g *Generator) emitUnary(e *ast.UnaryExpr) error {
	c := &g.fn.body
	valType, err := valueType(e.Type)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	switch e.Op {
	case ast.OpSub:
		if valType == valTypeF64 {
			if err := g.emitExpr(e.X); err != nil {
				return err
			}
			c.op(opcodeF64Neg)
			return nil
		}
		c.i32Const(0)
		if err := g.emitExpr(e.X); err != nil {
			return err
		}
		c.op(opcodeI32Sub)
		return nil
	case ast.OpAdd:
		return g.emitExpr(e.X)
	case ast.OpNot:
		if err := g.emitExpr(e.X); err != nil {
			return err
		}
		c.op(opcodeI32Eqz)
		return nil
	}
	return g.errorf(diagnostics.ErrUnsupportedNode, e, "unsupported unary operator '%s'", e.Op)
}

func (g *Generator) emitBinary(e *ast.BinaryExpr) error {
	if e.Op == ast.OpConcat {
		return g.errorf(diagnostics.ErrUnsupportedConcat, e, "unsupported string concatenation")
	}
	left, lok := types.AsBasic(ast.TypeOf(e.X))
	right, rok := types.AsBasic(ast.TypeOf(e.Y))
	if !lok || !rok {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "operator '%s' on %s and %s", e.Op, ast.TypeOf(e.X), ast.TypeOf(e.Y))
	}
	if left.Kind == types.STRING || right.Kind == types.STRING {
		return g.emitStringCompare(e, left.Kind, right.Kind)
	}

	if err := g.emitExpr(e.X); err != nil {
		return err
	}
	if err := g.emitExpr(e.Y); err != nil {
		return err
	}
	valType, err := valueType(left)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	op, err := binaryOpcode(e.Op, valType)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	g.fn.body.op(op)
	return nil
}

// emitStringCompare calls a comparison builtin and compares its -1/0/1
// result against zero with the original operator.
func (g *Generator) emitStringCompare(e *ast.BinaryExpr, left, right types.BasicKind) error {
	if !isComparison(e.Op) {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "operator '%s' cannot be applied to strings", e.Op)
	}
	c := &g.fn.body
	if err := g.emitExpr(e.X); err != nil {
		return err
	}
	if err := g.emitExpr(e.Y); err != nil {
		return err
	}

	op := e.Op
	switch {
	case left == types.STRING && right == types.STRING:
		c.call(g.callables[builtinStrcmp].index)
	case left == types.CHAR:
		c.call(g.callables[builtinChrcmp].index)
	case right == types.CHAR:
		// operands arrive as (string, char); the builtin takes (char, string)
		ch := g.fn.newLocal(valTypeI32)
		str := g.fn.newLocal(valTypeI32)
		c.localSet(ch)
		c.localSet(str)
		c.localGet(ch)
		c.localGet(str)
		c.call(g.callables[builtinChrcmp].index)
		op = flipComparison(op)
	default:
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "cannot compare %s with %s", left, right)
	}

	c.i32Const(0)
	cmp, err := compareOpcode(op, valTypeI32)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	c.op(cmp)
	return nil
}

// emitCall pushes the arguments in order and calls a builtin or user
// callable. Arguments were already converted to the parameter types.
func (g *Generator) emitCall(node ast.Node, callee string, args []ast.Expression) error {
	fn, ok := g.callables[callee]
	if !ok {
		return g.errorf(diagnostics.ErrUnresolvedName, node, "no function named '%s'", callee)
	}
	if len(args) != len(fn.sig.params) {
		return g.errorf(diagnostics.ErrEmitArity, node, "'%s' expects %d arguments, but %d are provided",
			callee, len(fn.sig.params), len(args))
	}
	for _, arg := range args {
		if err := g.emitExpr(arg); err != nil {
			return err
		}
	}
	g.fn.body.call(fn.index)
	return nil
}

func (g *Generator) emitCast(e *ast.CastExpr) error {
	from := ast.TypeOf(e.X)
	fromVal, err := valueType(from)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	toVal, err := valueType(e.Type)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "%s", err.Error())
	}
	if types.IsKind(e.Type, types.STRING) && !types.IsKind(from, types.STRING) {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "unsupported conversion from %s to STRING", from)
	}
	op, ok := castOpcode(fromVal, toVal)
	if !ok {
		return g.errorf(diagnostics.ErrUnsupportedNode, e, "unsupported conversion from %s to %s", from, e.Type)
	}
	if err := g.emitExpr(e.X); err != nil {
		return err
	}
	g.fn.body.op(op...)
	return nil
}
