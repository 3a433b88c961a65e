package layout

import (
	"errors"
	"fmt"

	"pseudo2wasm/internal/types"
)

// ErrNoSpace reports a placement that would push a storage area past
// types.MaxSize bytes.
var ErrNoSpace = errors.New("layout: out of address space")

// StorageClass tells whether a variable lives at a fixed address or in the
// frame of the running callable.
type StorageClass int

const (
	Global StorageClass = iota
	Local
)

func (c StorageClass) String() string {
	switch c {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// Placement records where one variable's bytes live. Global offsets are
// absolute addresses; Local offsets are relative to the frame base.
type Placement struct {
	Name   string
	Offset uint32
	Class  StorageClass
	Type   types.Type
}

func (p *Placement) String() string {
	return fmt.Sprintf("%s %s@%d (%s)", p.Class, p.Name, p.Offset, p.Type)
}

// Planner hands out byte offsets. The global counter only grows; the local
// counter starts over for every callable body.
type Planner struct {
	staticBase   uint32
	globalOffset uint32
	localOffset  uint32

	globals map[string]*Placement
	locals  map[string]*Placement

	inCallable bool
}

// NewPlanner starts the global area at staticBase, rounded up to 8 bytes.
func NewPlanner(staticBase uint32) *Planner {
	base := AlignTo(staticBase, 8)
	return &Planner{
		staticBase:   base,
		globalOffset: base,
		globals:      make(map[string]*Placement),
		locals:       make(map[string]*Placement),
	}
}

// Place reserves Size(typ) contiguous bytes for name in the given class.
func (p *Planner) Place(name string, typ types.Type, class StorageClass) (*Placement, error) {
	if typ == nil {
		return nil, fmt.Errorf("layout: no type for '%s'", name)
	}
	switch class {
	case Global:
		if _, exists := p.globals[name]; exists {
			return nil, fmt.Errorf("layout: global '%s' placed twice", name)
		}
		end, err := reserve(name, p.globalOffset, typ)
		if err != nil {
			return nil, err
		}
		pl := &Placement{Name: name, Offset: p.globalOffset, Class: Global, Type: typ}
		p.globals[name] = pl
		p.globalOffset = end
		return pl, nil
	case Local:
		if !p.inCallable {
			return nil, fmt.Errorf("layout: local '%s' outside a callable", name)
		}
		if _, exists := p.locals[name]; exists {
			return nil, fmt.Errorf("layout: local '%s' placed twice", name)
		}
		end, err := reserve(name, p.localOffset, typ)
		if err != nil {
			return nil, err
		}
		pl := &Placement{Name: name, Offset: p.localOffset, Class: Local, Type: typ}
		p.locals[name] = pl
		p.localOffset = end
		return pl, nil
	}
	return nil, fmt.Errorf("layout: unknown storage class %d", class)
}

// reserve returns the offset just past typ's bytes placed at offset.
func reserve(name string, offset uint32, typ types.Type) (uint32, error) {
	if err := types.CheckSize(typ); err != nil {
		return 0, fmt.Errorf("%w: '%s': %v", ErrNoSpace, name, err)
	}
	end := uint64(offset) + uint64(typ.Size())
	if end > types.MaxSize {
		return 0, fmt.Errorf("%w: '%s' would end at byte %d", ErrNoSpace, name, end)
	}
	return uint32(end), nil
}

// BeginCallable drops the previous callable's locals and resets the frame.
func (p *Planner) BeginCallable() {
	p.locals = make(map[string]*Placement)
	p.localOffset = 0
	p.inCallable = true
}

// EndCallable returns to program level, where only globals resolve.
func (p *Planner) EndCallable() {
	p.locals = make(map[string]*Placement)
	p.localOffset = 0
	p.inCallable = false
}

// InCallable reports whether new declarations belong to a frame.
func (p *Planner) InCallable() bool { return p.inCallable }

// Class is the storage class a declaration made now would get.
func (p *Planner) Class() StorageClass {
	if p.inCallable {
		return Local
	}
	return Global
}

// Lookup resolves the current callable's locals before globals.
func (p *Planner) Lookup(name string) (*Placement, bool) {
	if pl, ok := p.locals[name]; ok {
		return pl, true
	}
	pl, ok := p.globals[name]
	return pl, ok
}

// FrameSize is the byte count the current callable's frame needs so far.
func (p *Planner) FrameSize() uint32 { return p.localOffset }

// StaticBase is the first global address.
func (p *Planner) StaticBase() uint32 { return p.staticBase }

// StaticEnd is the 8-byte aligned end of the global area. The shadow
// stack starts here.
func (p *Planner) StaticEnd() uint32 { return AlignTo(p.globalOffset, 8) }

// AlignTo rounds value up to a multiple of alignment.
func AlignTo(value, alignment uint32) uint32 {
	if alignment <= 1 {
		return value
	}
	rem := value % alignment
	if rem == 0 {
		return value
	}
	return value + (alignment - rem)
}
