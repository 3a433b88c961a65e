package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/oklog/ulid/v2"

	"pseudo2wasm/colors"
	"pseudo2wasm/internal/codegen/wasm"
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/phase"
	"pseudo2wasm/internal/semantics/table"
	"pseudo2wasm/internal/semantics/typechecker"
)

type FORMAT int

const (
	ANSI FORMAT = iota
	HTML
)

// Options for compilation
type Options struct {
	// Debug output
	Debug bool
	// Output format for diagnostics: ANSI goes to Writer, HTML is returned
	// in Result.Output
	LogFormat FORMAT
	// Destination of debug logs and ANSI diagnostics (default os.Stderr)
	Writer io.Writer
	// Stop after the semantic check
	SkipCodegen bool
	// Bytes reserved for the shadow stack (0 uses wasm.DefaultStackSize)
	StackSize uint32
}

// Result of compilation
type Result struct {
	RunID   ulid.ULID
	Success bool
	Phase   phase.Phase // last phase reached
	Err     error       // first error, nil on success

	Module  *wasm.Output       // nil unless Phase is PhaseEmitted
	Symbols *table.SymbolTable // nil unless checking succeeded

	// Rendered diagnostic in HTML mode
	Output string
}

// Binary returns the module bytes, or nil when emission did not finish.
func (r Result) Binary() []byte {
	if r.Module == nil {
		return nil
	}
	return r.Module.Binary
}

type run struct {
	opts    *Options
	id      ulid.ULID
	tracker phase.Tracker
	w       io.Writer
}

// CompileFile reads a JSON syntax tree from path and compiles it.
func CompileFile(path string, opts *Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		r := newRun(opts)
		return r.fail(fmt.Errorf("failed to read %s: %w", path, err))
	}
	return CompileJSON(data, opts)
}

// CompileJSON decodes a JSON syntax tree and compiles it.
func CompileJSON(data []byte, opts *Options) Result {
	r := newRun(opts)
	r.debugf(colors.CYAN, "[Phase 1] Decode (%d bytes)\n", len(data))
	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return r.fail(err)
	}
	return r.compile(prog)
}

// Compile checks prog and emits its WebAssembly module. prog is decorated
// in place.
func Compile(prog *ast.Program, opts *Options) Result {
	r := newRun(opts)
	r.debugf(colors.CYAN, "[Phase 1] Decode (tree supplied)\n")
	return r.compile(prog)
}

func newRun(opts *Options) *run {
	if opts == nil {
		opts = &Options{}
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return &run{opts: opts, id: ulid.Make(), w: w}
}

func (r *run) compile(prog *ast.Program) Result {
	if prog == nil {
		return r.fail(fmt.Errorf("no program to compile"))
	}
	if err := r.tracker.Advance(phase.PhaseDecoded); err != nil {
		return r.fail(err)
	}

	r.debugf(colors.CYAN, "[Phase 2] Check\n")
	symbols, err := typechecker.Check(prog)
	if err != nil {
		return r.fail(err)
	}
	if err := r.tracker.Advance(phase.PhaseChecked); err != nil {
		return r.fail(err)
	}
	r.debugf(colors.GREEN, "  ✓ %d scope(s)\n", symbols.Len())

	if r.opts.SkipCodegen {
		return Result{RunID: r.id, Success: true, Phase: r.tracker.Current(), Symbols: symbols}
	}

	r.debugf(colors.CYAN, "[Phase 3] Emit\n")
	out, err := wasm.Emit(prog, wasm.Options{StackSize: r.opts.StackSize})
	if err != nil {
		res := r.fail(err)
		res.Symbols = symbols
		return res
	}
	if err := r.tracker.Advance(phase.PhaseEmitted); err != nil {
		return r.fail(err)
	}
	r.debugf(colors.GREEN, "  ✓ %d bytes, %d function(s), %d string(s), static area %d..%d, %d page(s)\n",
		len(out.Binary), out.Functions, out.Strings, out.StaticBase, out.StaticEnd, out.MemoryPages)

	return Result{RunID: r.id, Success: true, Phase: r.tracker.Current(), Module: out, Symbols: symbols}
}

// fail renders err as a diagnostic. The result never carries module bytes.
func (r *run) fail(err error) Result {
	res := Result{RunID: r.id, Phase: r.tracker.Current(), Err: err}
	diag := diagnostics.FromError(err)
	if r.opts.LogFormat == HTML {
		res.Output = diagnostics.RenderHTML(diag)
		return res
	}
	emitter := diagnostics.NewEmitter(r.w)
	emitter.Emit(diag)
	emitter.Summary(1)
	return res
}

func (r *run) debugf(c colors.COLOR, format string, args ...any) {
	if !r.opts.Debug {
		return
	}
	colors.GREY.Fprintf(r.w, "%s ", r.id)
	c.Fprintf(r.w, format, args...)
}
