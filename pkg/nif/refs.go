package nif

// NiRef is a nullable ordinal index into the block array denoting an
// owning child edge (parent -> child in the scene tree).
type NiRef struct {
	index uint32
}

// NiPtr is a nullable ordinal index into the block array denoting a
// non-owning back-reference edge (e.g. a bone pointing at its skeleton
// root). The core distinguishes NiRef from NiPtr only so that graph edits
// rewrite both kinds without ever treating a back-edge as ownership.
type NiPtr struct {
	index uint32
}

// NewNiRef / NewNiPtr construct a reference to the given block id.
func NewNiRef(index uint32) NiRef { return NiRef{index: index} }
func NewNiPtr(index uint32) NiPtr { return NiPtr{index: index} }

func (r NiRef) Index() uint32 { return r.index }
func (p NiPtr) Index() uint32 { return p.index }

func (r NiRef) IsEmpty() bool { return r.index == NPOS }
func (p NiPtr) IsEmpty() bool { return p.index == NPOS }

func (r *NiRef) Clear() { r.index = NPOS }
func (p *NiPtr) Clear() { p.index = NPOS }

func (r *NiRef) SetIndex(index uint32) { r.index = index }
func (p *NiPtr) SetIndex(index uint32) { p.index = index }

// ref is the minimal view the graph editor needs to rewrite a reference in
// place, regardless of whether it came from a NiRef or a NiPtr field.
type ref interface {
	Index() uint32
	IsEmpty() bool
	Clear()
	SetIndex(uint32)
}

func (r *NiRef) asRef() ref { return r }
func (p *NiPtr) asRef() ref { return p }
