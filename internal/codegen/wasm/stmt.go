package wasm

import (
	"errors"

	"pseudo2wasm/internal/codegen/layout"
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

func (g *Generator) emitBlock(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := g.emitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitNestedBlock(stmts []ast.Statement) error {
	g.fn.depth++
	defer func() { g.fn.depth-- }()
	return g.emitBlock(stmts)
}

func (g *Generator) emitStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if _, err := g.planner.Place(s.Name, s.Resolved, g.planner.Class()); err != nil {
			return g.errorf(placementCode(err), s, "%s", err.Error())
		}
		return nil
	case *ast.TypeDecl:
		return nil
	case *ast.FuncDecl:
		return g.emitCallable(s, s.Name, s.Params, s.Body)
	case *ast.ProcDecl:
		return g.emitCallable(s, s.Name, s.Params, s.Body)
	case *ast.AssignStmt:
		return g.emitAssign(s)
	case *ast.IfStmt:
		return g.emitIf(s)
	case *ast.WhileStmt:
		return g.emitWhile(s)
	case *ast.RepeatStmt:
		return g.emitRepeat(s)
	case *ast.ForStmt:
		return g.emitFor(s)
	case *ast.CallStmt:
		return g.emitCall(s, s.Callee, s.Args)
	case *ast.ReturnStmt:
		return g.emitReturn(s)
	case *ast.OutputStmt:
		return g.emitOutput(s)
	case *ast.InputStmt:
		return g.emitInput(s)
	}
	return g.errorf(diagnostics.ErrUnsupportedNode, stmt, "unsupported statement %s", ast.KindName(stmt))
}

// emitCallable lowers a FUNCTION or PROCEDURE into its own wasm function
// framed by the shadow stack prologue and epilogue.
func (g *Generator) emitCallable(decl ast.Statement, name string, params []*ast.Param, body []ast.Statement) error {
	if !g.fn.entry || g.fn.depth > 0 {
		return g.errorf(diagnostics.ErrUnsupportedNode, decl, "'%s' is not declared at program level", name)
	}
	fn, ok := g.callables[name]
	if !ok {
		return g.errorf(diagnostics.ErrUnresolvedName, decl, "no index for '%s'", name)
	}

	outer := g.fn
	state := &funcState{name: name, params: uint32(len(params))}
	if len(fn.sig.results) > 0 {
		state.hasResult = true
		state.result = fn.sig.results[0]
		state.retLocal = state.newLocal(state.result)
	}
	g.fn = state
	g.planner.BeginCallable()
	defer func() {
		g.planner.EndCallable()
		g.fn = outer
	}()

	var copies code
	for i, p := range params {
		pl, err := g.planner.Place(p.Name, p.Resolved, layout.Local)
		if err != nil {
			return diagnostics.NewEmissionError(placementCode(err), "parameter", p.Loc(), "%s", err.Error())
		}
		store, err := storeOpcode(p.Resolved)
		if err != nil {
			return diagnostics.NewEmissionError(diagnostics.ErrUnsupportedNode, "parameter", p.Loc(), "%s", err.Error())
		}
		copies.globalGet(globalStackBase)
		copies.localGet(uint32(i))
		copies.mem(store, pl.Offset)
	}

	if err := g.emitBlock(body); err != nil {
		return err
	}
	g.epilogue(&state.body)
	if state.hasResult {
		state.body.localGet(state.retLocal)
	}

	head := prologue(g.planner.FrameSize())
	head = append(head, copies...)
	state.body = append(head, state.body...)
	return g.addFunction(name, fn.index, fn.sig, state)
}

// prologue saves the caller's frame base on the shadow stack, makes the
// new frame current and reserves frameSize bytes for it.
func prologue(frameSize uint32) code {
	var c code
	c.globalGet(globalStackTop)
	c.globalGet(globalStackBase)
	c.mem(opcodeI32Store, 0)

	c.globalGet(globalStackTop)
	c.i32Const(4)
	c.op(opcodeI32Add)
	c.globalSet(globalStackTop)

	c.globalGet(globalStackTop)
	c.globalSet(globalStackBase)

	c.globalGet(globalStackTop)
	c.i32Const(int32(frameSize))
	c.op(opcodeI32Add)
	c.globalSet(globalStackTop)
	return c
}

// epilogue drops the current frame and restores the caller's base.
func (g *Generator) epilogue(c *code) {
	c.globalGet(globalStackBase)
	c.globalSet(globalStackTop)

	c.globalGet(globalStackTop)
	c.i32Const(4)
	c.op(opcodeI32Sub)
	c.globalSet(globalStackTop)

	c.globalGet(globalStackTop)
	c.mem(opcodeI32Load, 0)
	c.globalSet(globalStackBase)
}

func (g *Generator) emitAssign(s *ast.AssignStmt) error {
	typ := ast.TypeOf(s.Target)
	switch typ.(type) {
	case *types.BasicType, *types.PointerType:
	default:
		return g.errorf(diagnostics.ErrUnsupportedAssign, s, "assignment of %s is unsupported", typ)
	}
	if err := g.emitAddress(s.Target); err != nil {
		return err
	}
	if err := g.emitExpr(s.Value); err != nil {
		return err
	}
	return g.emitStore(s, typ, 0)
}

func (g *Generator) emitStore(node ast.Node, typ types.Type, offset uint32) error {
	op, err := storeOpcode(typ)
	if err != nil {
		return g.errorf(diagnostics.ErrUnsupportedAssign, node, "%s", err.Error())
	}
	g.fn.body.mem(op, offset)
	return nil
}

func (g *Generator) emitIf(s *ast.IfStmt) error {
	if err := g.emitExpr(s.Cond); err != nil {
		return err
	}
	g.enter(opcodeIf)
	if err := g.emitNestedBlock(s.Then); err != nil {
		return err
	}
	if len(s.Else) > 0 {
		g.fn.body.op(opcodeElse)
		if err := g.emitNestedBlock(s.Else); err != nil {
			return err
		}
	}
	g.leave()
	return nil
}

// emitWhile lowers to loop L { if cond { body; br L } }.
func (g *Generator) emitWhile(s *ast.WhileStmt) error {
	loop := g.enter(opcodeLoop)
	if err := g.emitExpr(s.Cond); err != nil {
		return err
	}
	g.enter(opcodeIf)
	if err := g.emitNestedBlock(s.Body); err != nil {
		return err
	}
	g.branch(loop)
	g.leave()
	g.leave()
	return nil
}

// emitRepeat lowers to loop L { body; if !cond { br L } }.
func (g *Generator) emitRepeat(s *ast.RepeatStmt) error {
	loop := g.enter(opcodeLoop)
	if err := g.emitNestedBlock(s.Body); err != nil {
		return err
	}
	if err := g.emitExpr(s.Cond); err != nil {
		return err
	}
	g.fn.body.op(opcodeI32Eqz)
	g.enter(opcodeIf)
	g.branch(loop)
	g.leave()
	g.leave()
	return nil
}

// emitFor lowers to var := from; loop L { if to >= var { body; var += step; br L } }.
// The bounds and step are evaluated on every iteration.
func (g *Generator) emitFor(s *ast.ForStmt) error {
	if s.Step == nil {
		return g.errorf(diagnostics.ErrUnsupportedNode, s, "FOR without a checked step")
	}
	if err := g.emitAddress(s.Var); err != nil {
		return err
	}
	if err := g.emitExpr(s.From); err != nil {
		return err
	}
	g.fn.body.mem(opcodeI32Store, 0)

	loop := g.enter(opcodeLoop)
	if err := g.emitExpr(s.To); err != nil {
		return err
	}
	if err := g.emitExpr(s.Var); err != nil {
		return err
	}
	g.fn.body.op(opcodeI32GeS)
	g.enter(opcodeIf)
	if err := g.emitNestedBlock(s.Body); err != nil {
		return err
	}
	if err := g.emitAddress(s.Var); err != nil {
		return err
	}
	if err := g.emitExpr(s.Var); err != nil {
		return err
	}
	if err := g.emitExpr(s.Step); err != nil {
		return err
	}
	g.fn.body.op(opcodeI32Add)
	g.fn.body.mem(opcodeI32Store, 0)
	g.branch(loop)
	g.leave()
	g.leave()
	return nil
}

func (g *Generator) emitReturn(s *ast.ReturnStmt) error {
	if !g.fn.hasResult {
		return g.errorf(diagnostics.ErrUnsupportedNode, s, "RETURN outside a FUNCTION body")
	}
	if err := g.emitExpr(s.Value); err != nil {
		return err
	}
	g.fn.body.localSet(g.fn.retLocal)
	g.epilogue(&g.fn.body)
	g.fn.body.localGet(g.fn.retLocal)
	g.fn.body.op(opcodeReturn)
	return nil
}

var logFunctions = map[types.BasicKind]string{
	types.INTEGER: LogInteger,
	types.REAL:    LogReal,
	types.CHAR:    LogChar,
	types.STRING:  LogString,
	types.BOOLEAN: LogInteger,
}

func (g *Generator) emitOutput(s *ast.OutputStmt) error {
	for _, value := range s.Values {
		b, ok := types.AsBasic(ast.TypeOf(value))
		if !ok {
			return g.errorf(diagnostics.ErrUnsupportedNode, s, "cannot OUTPUT a value of type %s", ast.TypeOf(value))
		}
		if err := g.emitExpr(value); err != nil {
			return err
		}
		g.fn.body.call(g.importIDs[logFunctions[b.Kind]])
	}
	return nil
}

func (g *Generator) emitInput(s *ast.InputStmt) error {
	typ := ast.TypeOf(s.Target)
	b, ok := types.AsBasic(typ)
	if !ok {
		return g.errorf(diagnostics.ErrUnsupportedNode, s, "cannot INPUT a value of type %s", typ)
	}
	var name string
	for _, in := range inputImports {
		if in.kind == b.Kind {
			name = in.name
		}
	}
	index, ok := g.importIDs[name]
	if !ok {
		return g.errorf(diagnostics.ErrUnresolvedName, s, "no host import for INPUT of %s", typ)
	}
	if err := g.emitAddress(s.Target); err != nil {
		return err
	}
	g.fn.body.call(index)
	return g.emitStore(s, typ, 0)
}

// enter opens a structured block and returns its label. Labels are unique
// across the whole compilation.
func (g *Generator) enter(op byte) int {
	g.labels++
	g.fn.open = append(g.fn.open, g.labels)
	g.fn.body.op(op, blockTypeVoid)
	return g.labels
}

func (g *Generator) leave() {
	g.fn.open = g.fn.open[:len(g.fn.open)-1]
	g.fn.body.op(opcodeEnd)
}

// branch jumps to label, translated to a relative depth.
func (g *Generator) branch(label int) {
	for i := len(g.fn.open) - 1; i >= 0; i-- {
		if g.fn.open[i] == label {
			g.fn.body.br(uint32(len(g.fn.open) - 1 - i))
			return
		}
	}
	panic("wasm: branch to a closed label")
}

func placementCode(err error) string {
	if errors.Is(err, layout.ErrNoSpace) {
		return diagnostics.ErrMemoryLimit
	}
	return diagnostics.ErrUnsupportedNode
}
