package nif

// Payload is the capability set every block implements. The core never
// interprets payload semantics: it only needs a type name to place the
// block in the type registry, the reference fields to rewrite on
// structural edits, and a way to serialize the block back out. Payload
// bodies stay opaque and polymorphic to the core.
//
// Concrete payload types (NiNode, NiTriShape, BSLightingShaderProperty,
// ...) live outside this package; the graph only ever sees this interface.
type Payload interface {
	// BlockName returns the stable type name written to the header's
	// blockTypes table (e.g. "NiNode").
	BlockName() string

	// ChildRefs enumerates the block's owning (NiRef) reference fields.
	// The returned pointers alias the payload's own fields so the graph
	// editor can rewrite them in place.
	ChildRefs() []*NiRef

	// PtrRefs enumerates the block's non-owning (NiPtr) back-reference
	// fields, aliased the same way as ChildRefs.
	PtrRefs() []*NiPtr

	// StringRefs enumerates the block's string-reference fields, aliased
	// the same way as ChildRefs.
	StringRefs() []*NiStringRef

	// WritePayload serializes the block body (not its type name or size;
	// those are header bookkeeping) to w under the given version.
	WritePayload(w *Writer, v Version) error
}

// Constructor builds a Payload by reading its body from r under version v.
// Registered constructors are looked up by block type name while reading a
// file.
type Constructor func(r *Reader, v Version) (Payload, error)

// Registry maps block type names to constructors. A Registry is the
// external collaborator the core delegates to for everything it treats as
// opaque; the core ships only the Unknown fallback (unknown.go).
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register associates a block type name with its constructor. Registering
// the same name twice overwrites the previous constructor.
func (reg *Registry) Register(name string, ctor Constructor) {
	reg.ctors[name] = ctor
}

// Lookup returns the constructor registered for name, or (nil, false) if
// the type is unknown; callers should fall back to Unknown (ReadUnknown).
func (reg *Registry) Lookup(name string) (Constructor, bool) {
	ctor, ok := reg.ctors[name]
	return ctor, ok
}
