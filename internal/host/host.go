// Package host runs compiled programs under wazero, supplying the env
// imports for OUTPUT and INPUT and the imported linear memory.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"pseudo2wasm/internal/codegen/wasm"
)

const programModule = "program"

var (
	ErrInputExhausted = errors.New("host: no more input")
	ErrHeapExhausted  = errors.New("host: input string heap exhausted")
)

// Config feeds a run.
type Config struct {
	// Inputs answer INPUT statements in order.
	Inputs []string
	// Stdout, when set, receives every output item on its own line as it
	// is produced.
	Stdout io.Writer
}

// Result is what a finished run left behind.
type Result struct {
	// Output holds one entry per logged value.
	Output []string
	// Shadow stack globals after the entry function returned.
	StackTop  uint32
	StackBase uint32
}

// session is the host state behind the env functions of one run.
type session struct {
	cfg    Config
	inputs []string
	mem    api.Memory
	heap   uint32 // next free byte of the input string area
	result *Result
}

// Run instantiates bin and calls its entry function. Memory is sized from
// the binary's own import plus one page that holds strings read by INPUT.
func Run(ctx context.Context, bin []byte, cfg Config) (*Result, error) {
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("host: compile: %w", err)
	}
	minPages, ok := importedMemory(compiled)
	if !ok {
		return nil, fmt.Errorf("host: module does not import %s.%s", wasm.MemoryModule, wasm.MemoryName)
	}

	memMod, err := r.InstantiateWithConfig(ctx, wasm.NewMemoryModule(minPages+1),
		wazero.NewModuleConfig().WithName(wasm.MemoryModule))
	if err != nil {
		return nil, fmt.Errorf("host: memory: %w", err)
	}

	s := &session{
		cfg:    cfg,
		inputs: cfg.Inputs,
		mem:    memMod.ExportedMemory(wasm.MemoryName),
		heap:   minPages * wasm.PageSize,
		result: &Result{},
	}
	if _, err := s.envModule(r).Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("host: env: %w", err)
	}

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(programModule))
	if err != nil {
		return nil, fmt.Errorf("host: instantiate: %w", err)
	}
	entry := mod.ExportedFunction(wasm.EntryExport)
	if entry == nil {
		return nil, fmt.Errorf("host: module does not export %q", wasm.EntryExport)
	}
	if _, err := entry.Call(ctx); err != nil {
		return s.result, fmt.Errorf("host: %s: %w", wasm.EntryExport, err)
	}

	if g := mod.ExportedGlobal(wasm.StackTopExport); g != nil {
		s.result.StackTop = uint32(g.Get())
	}
	if g := mod.ExportedGlobal(wasm.StackBaseExport); g != nil {
		s.result.StackBase = uint32(g.Get())
	}
	return s.result, nil
}

// importedMemory finds the js.mem import and its minimum page count.
func importedMemory(compiled wazero.CompiledModule) (uint32, bool) {
	for _, def := range compiled.ImportedMemories() {
		if module, name, _ := def.Import(); module == wasm.MemoryModule && name == wasm.MemoryName {
			return def.Min(), true
		}
	}
	return 0, false
}

func (s *session) envModule(r wazero.Runtime) wazero.HostModuleBuilder {
	return r.NewHostModuleBuilder(wasm.EnvModule).
		NewFunctionBuilder().WithFunc(func(_ context.Context, v int32) {
		s.emit(strconv.Itoa(int(v)))
	}).Export(wasm.LogInteger).
		NewFunctionBuilder().WithFunc(func(_ context.Context, v float64) {
		s.emit(strconv.FormatFloat(v, 'g', -1, 64))
	}).Export(wasm.LogReal).
		NewFunctionBuilder().WithFunc(func(_ context.Context, v int32) {
		s.emit(string(rune(v)))
	}).Export(wasm.LogChar).
		NewFunctionBuilder().WithFunc(func(_ context.Context, ptr uint32) {
		s.emit(s.readString(ptr))
	}).Export(wasm.LogString).
		NewFunctionBuilder().WithFunc(func(context.Context) int32 {
		v, err := strconv.ParseInt(s.next(), 10, 32)
		if err != nil {
			panic(fmt.Errorf("host: INPUT INTEGER: %w", err))
		}
		return int32(v)
	}).Export(wasm.InputInteger).
		NewFunctionBuilder().WithFunc(func(context.Context) float64 {
		v, err := strconv.ParseFloat(s.next(), 64)
		if err != nil {
			panic(fmt.Errorf("host: INPUT REAL: %w", err))
		}
		return v
	}).Export(wasm.InputReal).
		NewFunctionBuilder().WithFunc(func(context.Context) int32 {
		ch, _ := utf8.DecodeRuneInString(s.next())
		return int32(ch)
	}).Export(wasm.InputChar).
		NewFunctionBuilder().WithFunc(func(context.Context) uint32 {
		return s.writeString(s.next())
	}).Export(wasm.InputString).
		NewFunctionBuilder().WithFunc(func(context.Context) int32 {
		if s.next() == "TRUE" {
			return 1
		}
		return 0
	}).Export(wasm.InputBoolean)
}

func (s *session) emit(item string) {
	s.result.Output = append(s.result.Output, item)
	if s.cfg.Stdout != nil {
		fmt.Fprintln(s.cfg.Stdout, item)
	}
}

func (s *session) next() string {
	if len(s.inputs) == 0 {
		panic(ErrInputExhausted)
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v
}

func (s *session) readString(ptr uint32) string {
	var buf []byte
	for {
		b, ok := s.mem.ReadByte(ptr)
		if !ok {
			panic(fmt.Errorf("host: string at %d runs past memory", ptr))
		}
		if b == 0 {
			return string(buf)
		}
		buf = append(buf, b)
		ptr++
	}
}

// writeString copies v into the input area NUL-terminated.
func (s *session) writeString(v string) uint32 {
	data := append([]byte(v), 0)
	ptr := s.heap
	if !s.mem.Write(ptr, data) {
		panic(ErrHeapExhausted)
	}
	s.heap += uint32(len(data))
	return ptr
}
