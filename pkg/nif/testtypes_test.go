package nif

// fakeNode is a minimal Payload used across tests: it carries a handful of
// child/pointer/string refs and a fixed-size scalar body, enough to
// exercise the graph editor's reference-rewriting paths without any real
// scene-graph semantics.
type fakeNode struct {
	typeName string
	value    uint32
	children []NiRef
	ptrs     []NiPtr
	strs     []NiStringRef
}

func newFakeNode(typeName string) *fakeNode {
	return &fakeNode{typeName: typeName}
}

func (n *fakeNode) BlockName() string { return n.typeName }

func (n *fakeNode) ChildRefs() []*NiRef {
	out := make([]*NiRef, len(n.children))
	for i := range n.children {
		out[i] = &n.children[i]
	}
	return out
}

func (n *fakeNode) PtrRefs() []*NiPtr {
	out := make([]*NiPtr, len(n.ptrs))
	for i := range n.ptrs {
		out[i] = &n.ptrs[i]
	}
	return out
}

func (n *fakeNode) StringRefs() []*NiStringRef {
	out := make([]*NiStringRef, len(n.strs))
	for i := range n.strs {
		out[i] = &n.strs[i]
	}
	return out
}

// WritePayload serializes value followed by the full ref shape (counts
// plus each child/pointer/string field) so round-trip tests can exercise
// real wire bytes instead of only in-memory graph state.
func (n *fakeNode) WritePayload(w *Writer, _ Version) error {
	if err := w.WriteU32(n.value); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(n.children))); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := w.WriteU32(c.Index()); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint32(len(n.ptrs))); err != nil {
		return err
	}
	for _, p := range n.ptrs {
		if err := w.WriteU32(p.Index()); err != nil {
			return err
		}
	}
	if err := w.WriteU32(uint32(len(n.strs))); err != nil {
		return err
	}
	for i := range n.strs {
		if err := n.strs[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

func readFakeNode(typeName string) Constructor {
	return func(r *Reader, _ Version) (Payload, error) {
		n := &fakeNode{typeName: typeName}
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		n.value = v

		nChildren, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		n.children = make([]NiRef, nChildren)
		for i := range n.children {
			idx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			n.children[i] = NewNiRef(idx)
		}

		nPtrs, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		n.ptrs = make([]NiPtr, nPtrs)
		for i := range n.ptrs {
			idx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			n.ptrs[i] = NewNiPtr(idx)
		}

		nStrs, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		n.strs = make([]NiStringRef, nStrs)
		for i := range n.strs {
			if err := n.strs[i].Read(r); err != nil {
				return nil, err
			}
		}

		return n, nil
	}
}
