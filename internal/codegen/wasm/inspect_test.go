package wasm

import (
	"bytes"
	"errors"
	"fmt"
)

// ExternKind tags imports and exports.
type ExternKind byte

const (
	ExternFunc   ExternKind = importKindFunc
	ExternMemory ExternKind = importKindMemory
	ExternGlobal ExternKind = exportKindGlobal
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	}
	return fmt.Sprintf("extern(%d)", byte(k))
}

type FuncType struct {
	Params  []ValType
	Results []ValType
}

type Import struct {
	Module    string
	Name      string
	Kind      ExternKind
	TypeIndex uint32 // functions
	MemoryMin uint32 // memories, in pages
}

type Global struct {
	Type    ValType
	Mutable bool
	Init    int32
}

type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

type Segment struct {
	Offset uint32
	Bytes  []byte
}

// ModuleInfo is the decoded outline of a binary, used to check what a
// compilation produced.
type ModuleInfo struct {
	Types     []FuncType
	Imports   []Import
	Functions []uint32 // type index per defined function
	Memories  []uint32 // minimum pages per defined memory
	Globals   []Global
	Exports   []Export
	Bodies    [][]byte
	Data      []Segment
}

var errTruncated = errors.New("wasm: truncated module")

// Inspect decodes the sections this package writes. Unknown sections are
// skipped.
func Inspect(bin []byte) (*ModuleInfo, error) {
	if len(bin) < 8 || !bytes.Equal(bin[:4], wasmMagic) {
		return nil, fmt.Errorf("wasm: missing magic header")
	}
	if !bytes.Equal(bin[4:8], wasmVersion) {
		return nil, fmt.Errorf("wasm: unsupported version")
	}

	info := &ModuleInfo{}
	r := &reader{buf: bin, pos: 8}
	for !r.done() {
		id, err := r.readByte()
		if err != nil {
			return nil, err
		}
		size, err := r.u32()
		if err != nil {
			return nil, err
		}
		content, err := r.bytes(size)
		if err != nil {
			return nil, err
		}
		sr := &reader{buf: content}
		if err := info.readSection(id, sr); err != nil {
			return nil, fmt.Errorf("wasm: section %d: %w", id, err)
		}
	}
	return info, nil
}

func (m *ModuleInfo) readSection(id byte, r *reader) error {
	if id != sectionType && id != sectionImport && id != sectionFunc && id != sectionMemory &&
		id != sectionGlobal && id != sectionExport && id != sectionCode && id != sectionData {
		return nil
	}
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var err error
		switch id {
		case sectionType:
			err = m.readType(r)
		case sectionImport:
			err = m.readImport(r)
		case sectionFunc:
			var idx uint32
			idx, err = r.u32()
			m.Functions = append(m.Functions, idx)
		case sectionMemory:
			var min uint32
			min, err = r.limits()
			m.Memories = append(m.Memories, min)
		case sectionGlobal:
			err = m.readGlobal(r)
		case sectionExport:
			err = m.readExport(r)
		case sectionCode:
			var size uint32
			if size, err = r.u32(); err == nil {
				var body []byte
				body, err = r.bytes(size)
				m.Bodies = append(m.Bodies, body)
			}
		case sectionData:
			err = m.readSegment(r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *ModuleInfo) readType(r *reader) error {
	form, err := r.readByte()
	if err != nil {
		return err
	}
	if form != 0x60 {
		return fmt.Errorf("unexpected type form 0x%02x", form)
	}
	params, err := r.valTypes()
	if err != nil {
		return err
	}
	results, err := r.valTypes()
	if err != nil {
		return err
	}
	m.Types = append(m.Types, FuncType{Params: params, Results: results})
	return nil
}

func (m *ModuleInfo) readImport(r *reader) error {
	var imp Import
	var err error
	if imp.Module, err = r.name(); err != nil {
		return err
	}
	if imp.Name, err = r.name(); err != nil {
		return err
	}
	kind, err := r.readByte()
	if err != nil {
		return err
	}
	imp.Kind = ExternKind(kind)
	switch imp.Kind {
	case ExternFunc:
		imp.TypeIndex, err = r.u32()
	case ExternMemory:
		imp.MemoryMin, err = r.limits()
	default:
		err = fmt.Errorf("unsupported import kind %s", imp.Kind)
	}
	if err != nil {
		return err
	}
	m.Imports = append(m.Imports, imp)
	return nil
}

func (m *ModuleInfo) readGlobal(r *reader) error {
	typ, err := r.readByte()
	if err != nil {
		return err
	}
	mut, err := r.readByte()
	if err != nil {
		return err
	}
	init, err := r.constExpr()
	if err != nil {
		return err
	}
	m.Globals = append(m.Globals, Global{Type: ValType(typ), Mutable: mut == 0x01, Init: init})
	return nil
}

func (m *ModuleInfo) readExport(r *reader) error {
	name, err := r.name()
	if err != nil {
		return err
	}
	kind, err := r.readByte()
	if err != nil {
		return err
	}
	index, err := r.u32()
	if err != nil {
		return err
	}
	m.Exports = append(m.Exports, Export{Name: name, Kind: ExternKind(kind), Index: index})
	return nil
}

func (m *ModuleInfo) readSegment(r *reader) error {
	flag, err := r.u32()
	if err != nil {
		return err
	}
	if flag != 0 {
		return fmt.Errorf("unsupported data segment flag %d", flag)
	}
	offset, err := r.constExpr()
	if err != nil {
		return err
	}
	size, err := r.u32()
	if err != nil {
		return err
	}
	data, err := r.bytes(size)
	if err != nil {
		return err
	}
	m.Data = append(m.Data, Segment{Offset: uint32(offset), Bytes: data})
	return nil
}

// Export finds an export by name.
func (m *ModuleInfo) Export(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// MemoryImport returns the imported memory, if any.
func (m *ModuleInfo) MemoryImport() (Import, bool) {
	for _, imp := range m.Imports {
		if imp.Kind == ExternMemory {
			return imp, true
		}
	}
	return Import{}, false
}

// FuncImports lists the names of imported functions in index order.
func (m *ModuleInfo) FuncImports() []string {
	var names []string
	for _, imp := range m.Imports {
		if imp.Kind == ExternFunc {
			names = append(names, imp.Name)
		}
	}
	return names
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool { return r.pos >= len(r.buf) }

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n uint32) ([]byte, error) {
	if uint64(r.pos)+uint64(n) > uint64(len(r.buf)) {
		return nil, errTruncated
	}
	out := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return out, nil
}

func (r *reader) u32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, fmt.Errorf("wasm: LEB128 overflow")
		}
	}
}

func (r *reader) s32() (int32, error) {
	var result int32
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 32 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
		if shift >= 35 {
			return 0, fmt.Errorf("wasm: LEB128 overflow")
		}
	}
}

func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) valTypes() ([]ValType, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	out := make([]ValType, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		out = append(out, ValType(b))
	}
	return out, nil
}

func (r *reader) limits() (uint32, error) {
	flag, err := r.readByte()
	if err != nil {
		return 0, err
	}
	min, err := r.u32()
	if err != nil {
		return 0, err
	}
	if flag&0x01 != 0 {
		if _, err := r.u32(); err != nil {
			return 0, err
		}
	}
	return min, nil
}

// constExpr reads an i32.const initializer terminated by end.
func (r *reader) constExpr() (int32, error) {
	op, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if op != opcodeI32Const {
		return 0, fmt.Errorf("unsupported initializer opcode 0x%02x", op)
	}
	v, err := r.s32()
	if err != nil {
		return 0, err
	}
	end, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if end != opcodeEnd {
		return 0, fmt.Errorf("initializer not terminated")
	}
	return v, nil
}
