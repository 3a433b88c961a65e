package wasm

import (
	"fmt"

	"pseudo2wasm/internal/codegen/layout"
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

// Names shared with the host that runs the module.
const (
	EnvModule       = "env"
	MemoryModule    = "js"
	MemoryName      = "mem"
	EntryExport     = "main"
	StackTopExport  = "stackTop"
	StackBaseExport = "stackBase"
)

// Host functions imported from EnvModule.
const (
	LogInteger   = "logInteger"
	LogReal      = "logReal"
	LogChar      = "logChar"
	LogString    = "logString"
	InputInteger = "inputInteger"
	InputReal    = "inputReal"
	InputChar    = "inputChar"
	InputString  = "inputString"
	InputBoolean = "inputBoolean"
)

const (
	PageSize         = 65536
	MaxPages         = 65536
	DefaultStackSize = 64 * 1024

	// string literals start here; lower addresses stay unused
	dataBase = 1024
)

const (
	globalStackTop  uint32 = 0
	globalStackBase uint32 = 1
)

// Options tunes the emitted module.
type Options struct {
	// StackSize is the number of bytes reserved past the static area for
	// the shadow stack. Zero means DefaultStackSize.
	StackSize uint32
}

// Output is an emitted module together with its memory map.
type Output struct {
	Binary      []byte
	StaticBase  uint32
	StaticEnd   uint32
	MemoryPages uint32
	Strings     int
	Functions   int
}

type funcSig struct {
	params  []ValType
	results []ValType
}

type callable struct {
	name  string
	index uint32
	sig   funcSig
}

// Generator lowers one checked program. It is not safe for concurrent use;
// every Emit call builds its own.
type Generator struct {
	opts    Options
	mod     *ModuleBuilder
	planner *layout.Planner

	importIDs map[string]uint32
	callables map[string]*callable
	decls     []ast.Statement // root FUNCTION and PROCEDURE declarations in source order
	inputs    map[types.BasicKind]bool

	dataEnd    uint32
	stringPtrs map[string]uint32
	strings    []string

	labels    int
	fn        *funcState
	mainIndex uint32
}

// funcState is the function whose body is being emitted.
type funcState struct {
	name      string
	params    uint32
	locals    []ValType
	body      code
	hasResult bool
	result    ValType
	retLocal  uint32

	entry     bool

	// labels of the enclosing structured blocks, innermost last
	open []int
	// statement nesting below the function's top level
	depth int
}

func (f *funcState) newLocal(t ValType) uint32 {
	f.locals = append(f.locals, t)
	return f.params + uint32(len(f.locals)) - 1
}

// Emit lowers a checked program into a WebAssembly binary. Every expression
// of prog must carry the type the checker assigned to it.
func Emit(prog *ast.Program, opts Options) (*Output, error) {
	if prog == nil {
		return nil, fmt.Errorf("wasm: missing program")
	}
	if opts.StackSize == 0 {
		opts.StackSize = DefaultStackSize
	}
	g := &Generator{
		opts:       opts,
		mod:        &ModuleBuilder{},
		importIDs:  make(map[string]uint32),
		callables:  make(map[string]*callable),
		inputs:     make(map[types.BasicKind]bool),
		dataEnd:    dataBase,
		stringPtrs: make(map[string]uint32),
	}

	if err := g.collect(prog); err != nil {
		return nil, err
	}
	g.declareImports()
	if err := g.declareFunctions(); err != nil {
		return nil, err
	}

	g.planner = layout.NewPlanner(g.dataEnd)
	g.mod.addGlobal(valTypeI32, true, []byte{opcodeI32Const, 0x00})
	g.mod.addGlobal(valTypeI32, true, []byte{opcodeI32Const, 0x00})

	if err := g.emitBuiltins(); err != nil {
		return nil, err
	}
	if err := g.emitMain(prog); err != nil {
		return nil, err
	}

	for _, s := range g.strings {
		data := append([]byte(s), 0)
		g.mod.addData(g.stringPtrs[s], data)
	}

	pages, err := g.memoryMinPages()
	if err != nil {
		return nil, err
	}
	g.mod.importMemory(MemoryModule, MemoryName, pages)
	g.mod.addExport(EntryExport, exportKindFunc, g.mainIndex)
	g.mod.addExport(StackTopExport, exportKindGlobal, globalStackTop)
	g.mod.addExport(StackBaseExport, exportKindGlobal, globalStackBase)

	return &Output{
		Binary:      g.mod.emit(),
		StaticBase:  g.planner.StaticBase(),
		StaticEnd:   g.planner.StaticEnd(),
		MemoryPages: pages,
		Strings:     len(g.strings),
		Functions:   len(g.mod.functions),
	}, nil
}

func (g *Generator) errorf(code string, node ast.Node, format string, args ...any) error {
	return diagnostics.NewEmissionError(code, ast.KindName(node), node.Loc(), format, args...)
}

// collect interns every string literal, records which INPUT kinds occur
// and lists the callables, all before any address is handed out.
func (g *Generator) collect(prog *ast.Program) error {
	for _, stmt := range prog.Body {
		switch stmt.(type) {
		case *ast.FuncDecl, *ast.ProcDecl:
			g.decls = append(g.decls, stmt)
		}
	}

	var err error
	ast.Inspect(prog, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch v := n.(type) {
		case *ast.StringLit:
			g.stringPtr(v.Value)
		case *ast.InputStmt:
			b, ok := types.AsBasic(ast.TypeOf(v.Target))
			if !ok {
				err = g.errorf(diagnostics.ErrUnsupportedNode, v, "cannot INPUT a value of type %s", ast.TypeOf(v.Target))
				return false
			}
			g.inputs[b.Kind] = true
		}
		return true
	})
	return err
}

func (g *Generator) stringPtr(value string) uint32 {
	if ptr, ok := g.stringPtrs[value]; ok {
		return ptr
	}
	ptr := g.dataEnd
	g.stringPtrs[value] = ptr
	g.strings = append(g.strings, value)
	g.dataEnd = layout.AlignTo(ptr+uint32(len(value))+1, 4)
	return ptr
}

var inputImports = []struct {
	kind types.BasicKind
	name string
	typ  ValType
}{
	{types.INTEGER, InputInteger, valTypeI32},
	{types.REAL, InputReal, valTypeF64},
	{types.CHAR, InputChar, valTypeI32},
	{types.STRING, InputString, valTypeI32},
	{types.BOOLEAN, InputBoolean, valTypeI32},
}

func (g *Generator) declareImports() {
	logs := []struct {
		name string
		typ  ValType
	}{
		{LogInteger, valTypeI32},
		{LogReal, valTypeF64},
		{LogChar, valTypeI32},
		{LogString, valTypeI32},
	}
	for _, l := range logs {
		typeIndex := g.mod.addType([]ValType{l.typ}, nil)
		g.importIDs[l.name] = g.mod.addImportFunc(EnvModule, l.name, typeIndex)
	}
	for _, in := range inputImports {
		if !g.inputs[in.kind] {
			continue
		}
		typeIndex := g.mod.addType(nil, []ValType{in.typ})
		g.importIDs[in.name] = g.mod.addImportFunc(EnvModule, in.name, typeIndex)
	}
}

// declareFunctions fixes the index of every defined function: builtins,
// then user callables in source order, then the program body.
func (g *Generator) declareFunctions() error {
	next := uint32(len(g.mod.importFuncs))
	for _, b := range builtins {
		g.callables[b.name] = &callable{name: b.name, index: next, sig: b.sig}
		next++
	}
	for _, decl := range g.decls {
		name, sig, err := g.signature(decl)
		if err != nil {
			return err
		}
		if _, exists := g.callables[name]; exists {
			return g.errorf(diagnostics.ErrUnsupportedNode, decl, "'%s' is defined twice", name)
		}
		g.callables[name] = &callable{name: name, index: next, sig: sig}
		next++
	}
	g.mainIndex = next
	return nil
}

func (g *Generator) signature(decl ast.Statement) (string, funcSig, error) {
	var (
		name   string
		params []*ast.Param
		sig    funcSig
	)
	switch d := decl.(type) {
	case *ast.FuncDecl:
		name, params = d.Name, d.Params
		ret, err := valueType(d.Resolved)
		if err != nil {
			return "", sig, g.errorf(diagnostics.ErrUnsupportedNode, d, "FUNCTION '%s' has no scalar result", d.Name)
		}
		sig.results = []ValType{ret}
	case *ast.ProcDecl:
		name, params = d.Name, d.Params
	}
	for _, p := range params {
		v, err := valueType(p.Resolved)
		if err != nil {
			return "", sig, diagnostics.NewEmissionError(diagnostics.ErrUnsupportedNode, "parameter", p.Loc(),
				"parameter '%s' has no scalar type", p.Name)
		}
		sig.params = append(sig.params, v)
	}
	return name, sig, nil
}

// addFunction appends a finished body and checks it landed on the index
// handed out by declareFunctions.
func (g *Generator) addFunction(name string, want uint32, sig funcSig, state *funcState) error {
	typeIndex := g.mod.addType(sig.params, sig.results)
	got := g.mod.addFunction(typeIndex, state.locals, state.body)
	if got != want {
		return fmt.Errorf("wasm: function '%s' landed at index %d, expected %d", name, got, want)
	}
	return nil
}

// emitMain lowers the program body into the entry function. Callables are
// emitted as they are met, so their indices follow source order.
func (g *Generator) emitMain(prog *ast.Program) error {
	entry := &funcState{name: EntryExport, entry: true}
	g.fn = entry
	if err := g.emitBlock(prog.Body); err != nil {
		return err
	}

	var seed code
	seed.i32Const(int32(g.planner.StaticEnd()))
	seed.globalSet(globalStackTop)
	seed.i32Const(int32(g.planner.StaticEnd()))
	seed.globalSet(globalStackBase)
	entry.body = append(seed, entry.body...)

	g.fn = nil
	return g.addFunction(EntryExport, g.mainIndex, funcSig{}, entry)
}

// memoryMinPages covers the static area plus the shadow stack, within the
// 4 GiB a 32-bit memory can address.
func (g *Generator) memoryMinPages() (uint32, error) {
	size := uint64(g.planner.StaticEnd()) + uint64(g.opts.StackSize)
	pages := (size + PageSize - 1) / PageSize
	if pages > MaxPages {
		return 0, diagnostics.NewEmissionError(diagnostics.ErrMemoryLimit, "program", nil,
			"static area of %d bytes plus a %d byte stack needs %d pages, more than %d", g.planner.StaticEnd(), g.opts.StackSize, pages, MaxPages)
	}
	if pages == 0 {
		pages = 1
	}
	return uint32(pages), nil
}
