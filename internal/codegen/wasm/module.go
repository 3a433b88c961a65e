package wasm

import (
	"bytes"
	"slices"
)

type ValType byte

const (
	valTypeI32 ValType = 0x7f
	valTypeF64 ValType = 0x7c
)

func (v ValType) String() string {
	switch v {
	case valTypeI32:
		return "i32"
	case valTypeF64:
		return "f64"
	}
	return "unknown"
}

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)

const (
	sectionType   = 1
	sectionImport = 2
	sectionFunc   = 3
	sectionMemory = 5
	sectionGlobal = 6
	sectionExport = 7
	sectionCode   = 10
	sectionData   = 11
)

const (
	importKindFunc   = 0x00
	importKindMemory = 0x02
	exportKindFunc   = 0x00
	exportKindMem    = 0x02
	exportKindGlobal = 0x03
)

type funcType struct {
	params  []ValType
	results []ValType
}

type importFunc struct {
	module    string
	name      string
	typeIndex uint32
}

type memoryImport struct {
	module string
	name   string
	min    uint32
}

type functionDef struct {
	typeIndex uint32
	locals    []ValType
	body      []byte
}

type exportDef struct {
	name  string
	kind  byte
	index uint32
}

type dataSegment struct {
	offset uint32
	data   []byte
}

type globalDef struct {
	valType ValType
	mutable bool
	init    []byte
}

// ModuleBuilder collects module contents and serializes them in section
// order. Imported functions take the lowest function indices.
type ModuleBuilder struct {
	types       []funcType
	importFuncs []importFunc
	importMem   *memoryImport
	functions   []functionDef
	exports     []exportDef
	data        []dataSegment
	globals     []globalDef

	// memoryMin > 0 defines a memory of that many pages in the module itself
	memoryMin uint32
}

// addType interns a signature.
func (m *ModuleBuilder) addType(params, results []ValType) uint32 {
	for i, t := range m.types {
		if slices.Equal(t.params, params) && slices.Equal(t.results, results) {
			return uint32(i)
		}
	}
	m.types = append(m.types, funcType{params: params, results: results})
	return uint32(len(m.types) - 1)
}

func (m *ModuleBuilder) addImportFunc(module, name string, typeIndex uint32) uint32 {
	m.importFuncs = append(m.importFuncs, importFunc{module: module, name: name, typeIndex: typeIndex})
	return uint32(len(m.importFuncs) - 1)
}

func (m *ModuleBuilder) importMemory(module, name string, min uint32) {
	m.importMem = &memoryImport{module: module, name: name, min: min}
}

// addFunction returns the function index, which counts imports first.
func (m *ModuleBuilder) addFunction(typeIndex uint32, locals []ValType, body []byte) uint32 {
	m.functions = append(m.functions, functionDef{typeIndex: typeIndex, locals: locals, body: body})
	return uint32(len(m.importFuncs) + len(m.functions) - 1)
}

func (m *ModuleBuilder) addExport(name string, kind byte, index uint32) {
	m.exports = append(m.exports, exportDef{name: name, kind: kind, index: index})
}

func (m *ModuleBuilder) addData(offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	m.data = append(m.data, dataSegment{offset: offset, data: data})
}

// addGlobal takes the initializer without its closing end opcode.
func (m *ModuleBuilder) addGlobal(valType ValType, mutable bool, init []byte) uint32 {
	m.globals = append(m.globals, globalDef{valType: valType, mutable: mutable, init: init})
	return uint32(len(m.globals) - 1)
}

func (m *ModuleBuilder) emit() []byte {
	var out bytes.Buffer
	out.Write(wasmMagic)
	out.Write(wasmVersion)

	writeSection(&out, sectionType, len(m.types), func(b *bytes.Buffer, i int) {
		t := m.types[i]
		b.WriteByte(0x60)
		writeValTypes(b, t.params)
		writeValTypes(b, t.results)
	})

	imports := len(m.importFuncs)
	if m.importMem != nil {
		imports++
	}
	writeSection(&out, sectionImport, imports, func(b *bytes.Buffer, i int) {
		if i < len(m.importFuncs) {
			imp := m.importFuncs[i]
			b.Write(encodeString(imp.module))
			b.Write(encodeString(imp.name))
			b.WriteByte(importKindFunc)
			b.Write(encodeU32(imp.typeIndex))
			return
		}
		b.Write(encodeString(m.importMem.module))
		b.Write(encodeString(m.importMem.name))
		b.WriteByte(importKindMemory)
		b.Write(encodeLimits(m.importMem.min))
	})

	writeSection(&out, sectionFunc, len(m.functions), func(b *bytes.Buffer, i int) {
		b.Write(encodeU32(m.functions[i].typeIndex))
	})

	memories := 0
	if m.memoryMin > 0 {
		memories = 1
	}
	writeSection(&out, sectionMemory, memories, func(b *bytes.Buffer, _ int) {
		b.Write(encodeLimits(m.memoryMin))
	})

	writeSection(&out, sectionGlobal, len(m.globals), func(b *bytes.Buffer, i int) {
		g := m.globals[i]
		b.WriteByte(byte(g.valType))
		if g.mutable {
			b.WriteByte(0x01)
		} else {
			b.WriteByte(0x00)
		}
		b.Write(g.init)
		b.WriteByte(opcodeEnd)
	})

	writeSection(&out, sectionExport, len(m.exports), func(b *bytes.Buffer, i int) {
		exp := m.exports[i]
		b.Write(encodeString(exp.name))
		b.WriteByte(exp.kind)
		b.Write(encodeU32(exp.index))
	})

	writeSection(&out, sectionCode, len(m.functions), func(b *bytes.Buffer, i int) {
		fn := m.functions[i]
		body := encodeLocals(fn.locals)
		body = append(body, fn.body...)
		body = append(body, opcodeEnd)
		b.Write(encodeU32(uint32(len(body))))
		b.Write(body)
	})

	// active segments for memory 0; the offset is an i32.const, so signed
	writeSection(&out, sectionData, len(m.data), func(b *bytes.Buffer, i int) {
		seg := m.data[i]
		b.WriteByte(0x00)
		b.WriteByte(opcodeI32Const)
		b.Write(encodeS32(int32(seg.offset)))
		b.WriteByte(opcodeEnd)
		b.Write(encodeU32(uint32(len(seg.data))))
		b.Write(seg.data)
	})

	return out.Bytes()
}

// writeSection appends section id holding a vector of n entries. Empty
// sections are omitted.
func writeSection(out *bytes.Buffer, id byte, n int, entry func(b *bytes.Buffer, i int)) {
	if n == 0 {
		return
	}
	var content bytes.Buffer
	content.Write(encodeU32(uint32(n)))
	for i := 0; i < n; i++ {
		entry(&content, i)
	}
	out.WriteByte(id)
	out.Write(encodeU32(uint32(content.Len())))
	out.Write(content.Bytes())
}

// NewMemoryModule builds a module that only defines and exports one
// linear memory of the given size. Hosts instantiate it under MemoryModule
// so compiled programs can import their memory from it.
func NewMemoryModule(pages uint32) []byte {
	if pages == 0 {
		pages = 1
	}
	mod := &ModuleBuilder{memoryMin: pages}
	mod.addExport(MemoryName, exportKindMem, 0)
	return mod.emit()
}

func writeValTypes(b *bytes.Buffer, vs []ValType) {
	b.Write(encodeU32(uint32(len(vs))))
	for _, v := range vs {
		b.WriteByte(byte(v))
	}
}

func encodeString(s string) []byte {
	return append(encodeU32(uint32(len(s))), s...)
}

func encodeU32(v uint32) []byte {
	out := make([]byte, 0, 5)
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func encodeS32(v int32) []byte {
	out := make([]byte, 0, 5)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		// done once the remaining bits are pure sign extension of bit 6
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// encodeLimits writes a minimum-only limit.
func encodeLimits(min uint32) []byte {
	return append([]byte{0x00}, encodeU32(min)...)
}

// encodeLocals groups consecutive locals of one type into (count, type) runs.
func encodeLocals(locals []ValType) []byte {
	type run struct {
		count uint32
		typ   ValType
	}
	var runs []run
	for _, t := range locals {
		if n := len(runs); n > 0 && runs[n-1].typ == t {
			runs[n-1].count++
			continue
		}
		runs = append(runs, run{count: 1, typ: t})
	}
	out := encodeU32(uint32(len(runs)))
	for _, r := range runs {
		out = append(out, encodeU32(r.count)...)
		out = append(out, byte(r.typ))
	}
	return out
}
