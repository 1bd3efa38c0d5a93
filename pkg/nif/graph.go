package nif

import "fmt"

// Graph is the block array plus the header bookkeeping that stays
// coaligned with it. Block identity is the block's ordinal position in
// blocks; every structural edit below rewrites every NiRef/NiPtr field
// across the whole graph so that identity keeps meaning "current array
// index". Ordinal references behave as arena indices, not pointers.
//
// A Graph is single-threaded cooperative: all methods run synchronously to
// completion and assume exclusive access. Distinct Graphs are independent
// and may be used concurrently from separate goroutines.
type Graph struct {
	Header Header

	blocks []Payload
	roots  []uint32
}

// NewGraph returns an empty graph for the given version, ready for
// AddBlock calls.
func NewGraph(version Version) *Graph {
	g := &Graph{}
	g.Header.version = version
	return g
}

// NumBlocks returns the current block count.
func (g *Graph) NumBlocks() int { return len(g.blocks) }

// Block returns the payload at id, or nil if id is out of range.
func (g *Graph) Block(id uint32) Payload {
	if id == NPOS || int(id) >= len(g.blocks) {
		return nil
	}
	return g.blocks[id]
}

// Roots returns the footer's root block ids, produced by the payload
// layer and stored verbatim by the core.
func (g *Graph) Roots() []uint32 { return g.roots }

// SetRoots replaces the footer's root block ids.
func (g *Graph) SetRoots(roots []uint32) { g.roots = append([]uint32(nil), roots...) }

// allRefs returns every NiRef/NiPtr field across every block, optionally
// excluding pointer (back-edge) refs.
func (g *Graph) allRefs(includePtrs bool) []ref {
	var out []ref
	for _, b := range g.blocks {
		for _, r := range b.ChildRefs() {
			out = append(out, r.asRef())
		}
		if includePtrs {
			for _, p := range b.PtrRefs() {
				out = append(out, p.asRef())
			}
		}
	}
	return out
}

// AddOrFindBlockTypeId returns the index of name in the block-type table,
// appending it if absent. Type strings are compared byte-exact.
func (g *Graph) AddOrFindBlockTypeId(name string) uint16 {
	for i, t := range g.Header.blockTypes {
		if t == name {
			return uint16(i)
		}
	}
	g.Header.blockTypes = append(g.Header.blockTypes, name)
	return uint16(len(g.Header.blockTypes) - 1)
}

func (g *Graph) blockTypeRefCount(typeID uint16) int {
	count := 0
	for _, t := range g.Header.blockTypeIndices {
		if t == typeID {
			count++
		}
	}
	return count
}

// eraseBlockTypeIfLastUser erases blockTypes[typeID] when fewer than two
// blocks use it: the caller is about to remove or retype the one
// remaining user, whose type index is still counted here. Every later
// type index shifts down by one to keep the table dense.
func (g *Graph) eraseBlockTypeIfLastUser(typeID uint16) {
	if g.blockTypeRefCount(typeID) >= 2 {
		return
	}
	bt := g.Header.blockTypes
	g.Header.blockTypes = append(bt[:typeID], bt[typeID+1:]...)
	for i, t := range g.Header.blockTypeIndices {
		if t > typeID {
			g.Header.blockTypeIndices[i] = t - 1
		}
	}
}

// AddBlock appends payload to the graph and returns its new block id.
func (g *Graph) AddBlock(payload Payload) uint32 {
	typeID := g.AddOrFindBlockTypeId(payload.BlockName())
	g.Header.blockTypeIndices = append(g.Header.blockTypeIndices, typeID)
	if g.Header.version.File() >= V20_2_0_5 {
		g.Header.blockSizes = append(g.Header.blockSizes, 0)
	}
	g.blocks = append(g.blocks, payload)
	return uint32(len(g.blocks) - 1)
}

// DeleteBlock removes block id, compacts the type table if id held the
// last user of its type, and rewrites every remaining reference so that
// edges into id become NPOS and edges past id shift down by one.
func (g *Graph) DeleteBlock(id uint32) {
	if id == NPOS || int(id) >= len(g.blocks) {
		return
	}

	typeID := g.Header.blockTypeIndices[id]
	g.eraseBlockTypeIfLastUser(typeID)

	g.Header.blockTypeIndices = append(g.Header.blockTypeIndices[:id], g.Header.blockTypeIndices[id+1:]...)
	if int(id) < len(g.Header.blockSizes) {
		g.Header.blockSizes = append(g.Header.blockSizes[:id], g.Header.blockSizes[id+1:]...)
	}
	g.blocks = append(g.blocks[:id], g.blocks[id+1:]...)

	g.rewriteRefsAfterDelete(id)
}

func (g *Graph) rewriteRefsAfterDelete(id uint32) {
	for _, r := range g.allRefs(true) {
		if r.IsEmpty() {
			continue
		}
		switch {
		case r.Index() == id:
			r.Clear()
		case r.Index() > id:
			r.SetIndex(r.Index() - 1)
		}
	}
	for i, root := range g.roots {
		switch {
		case root == id:
			g.roots[i] = NPOS
		case root != NPOS && root > id:
			g.roots[i] = root - 1
		}
	}
}

// DeleteBlockByType deletes every block of the given type name. If
// orphanedOnly is set, a block is skipped when IsBlockReferenced reports
// it is still targeted by some reference, pointers included. Deletion
// proceeds in descending id order so earlier ids stay stable
// mid-iteration.
func (g *Graph) DeleteBlockByType(typeName string, orphanedOnly bool) {
	typeID := uint16(0)
	found := false
	for i, t := range g.Header.blockTypes {
		if t == typeName {
			typeID = uint16(i)
			found = true
			break
		}
	}
	if !found {
		return
	}

	var ids []uint32
	for i, t := range g.Header.blockTypeIndices {
		if t == typeID {
			ids = append(ids, uint32(i))
		}
	}

	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if orphanedOnly && g.IsBlockReferenced(id, true) {
			continue
		}
		g.DeleteBlock(id)
	}
}

// ReplaceBlock swaps in newPayload at id, keeping its ordinal (and every
// existing reference to it) valid. The old type is compacted out of the
// type table if id held its last user.
func (g *Graph) ReplaceBlock(id uint32, newPayload Payload) uint32 {
	if id == NPOS || int(id) >= len(g.blocks) {
		return NPOS
	}

	// The old type is erased (if id was its last user) before the new
	// type id is resolved, so a same-named replacement re-adds the name
	// at the table's end rather than keeping its slot.
	oldType := g.Header.blockTypeIndices[id]
	g.eraseBlockTypeIfLastUser(oldType)

	newType := g.AddOrFindBlockTypeId(newPayload.BlockName())
	g.Header.blockTypeIndices[id] = newType

	if int(id) < len(g.Header.blockSizes) {
		g.Header.blockSizes[id] = 0
	}
	g.blocks[id] = newPayload
	return id
}

// SetBlockOrder applies the permutation newOrder (newOrder[i] is the id
// block i should end at) to blocks, blockTypeIndices, blockSizes, and
// every reference field. It is a no-op if len(newOrder) != NumBlocks().
func (g *Graph) SetBlockOrder(newOrder []uint32) {
	n := len(g.blocks)
	if len(newOrder) != n {
		return
	}

	newBlocks := make([]Payload, n)
	newTypeIndices := make([]uint16, n)
	for i := 0; i < n; i++ {
		newBlocks[newOrder[i]] = g.blocks[i]
		newTypeIndices[newOrder[i]] = g.Header.blockTypeIndices[i]
	}

	if g.Header.version.File() >= V20_2_0_5 && len(g.Header.blockSizes) == n {
		newSizes := make([]uint32, n)
		for i := 0; i < n; i++ {
			newSizes[newOrder[i]] = g.Header.blockSizes[i]
		}
		g.Header.blockSizes = newSizes
	}

	g.blocks = newBlocks
	g.Header.blockTypeIndices = newTypeIndices

	remap := func(r ref) {
		if r.IsEmpty() {
			return
		}
		if idx := r.Index(); int(idx) < len(newOrder) {
			r.SetIndex(newOrder[idx])
		}
	}
	for _, b := range g.blocks {
		for _, c := range b.ChildRefs() {
			remap(c.asRef())
		}
		for _, p := range b.PtrRefs() {
			remap(p.asRef())
		}
	}

	for i, root := range g.roots {
		if root != NPOS && int(root) < len(newOrder) {
			g.roots[i] = newOrder[root]
		}
	}
}

// IsBlockReferenced reports whether any child reference (and, if
// includePtrs, any pointer reference) across the graph targets id.
func (g *Graph) IsBlockReferenced(id uint32, includePtrs bool) bool {
	if id == NPOS {
		return false
	}
	for _, r := range g.allRefs(includePtrs) {
		if r.Index() == id {
			return true
		}
	}
	return false
}

// GetBlockRefCount counts how many references (and, if includePtrs,
// pointer references) across the graph target id.
func (g *Graph) GetBlockRefCount(id uint32, includePtrs bool) int {
	if id == NPOS {
		return 0
	}
	count := 0
	for _, r := range g.allRefs(includePtrs) {
		if r.Index() == id {
			count++
		}
	}
	return count
}

// GetBlockID returns the ordinal of payload within the graph, or NPOS if
// it is not present (identity comparison).
func (g *Graph) GetBlockID(payload Payload) uint32 {
	for i, b := range g.blocks {
		if b == payload {
			return uint32(i)
		}
	}
	return NPOS
}

func (g *Graph) stringRefs() []*NiStringRef {
	var out []*NiStringRef
	for _, b := range g.blocks {
		out = append(out, b.StringRefs()...)
	}
	return out
}

// FillStringRefs resolves every block's cached string value from the
// header's string pool. It is the read-side counterpart to
// UpdateHeaderStrings and is a no-op before V20_1_0_1.
//
// The `index -= numStrings` branch below compensates for an overflow
// convention seen in files written by older exporters. Treat it as a
// data quirk preserved for round-trip fidelity, not a designed behavior.
func (g *Graph) FillStringRefs() {
	if g.Header.version.File() < V20_1_0_1 {
		return
	}
	numStrings := uint32(len(g.Header.strings))
	for _, sr := range g.stringRefs() {
		idx := sr.GetIndex()
		if idx != NPOS && idx >= numStrings {
			idx -= numStrings
			sr.SetIndex(idx)
		}
		sr.Set(g.GetStringById(idx))
	}
}

// UpdateHeaderStrings rebuilds the header's string pool from every block's
// current cached string value. If hasUnknown is false the pool is cleared
// first. A no-op before V20_1_0_1 beyond the clear.
func (g *Graph) UpdateHeaderStrings(hasUnknown bool) {
	if !hasUnknown {
		g.ClearStrings()
	}
	if g.Header.version.File() < V20_1_0_1 {
		return
	}
	for _, sr := range g.stringRefs() {
		addEmpty := sr.GetIndex() != NPOS
		id := g.AddOrFindStringId(sr.Get(), addEmpty)
		sr.SetIndex(id)
	}
	g.Header.recomputeMaxStringLen()
}

// AddOrFindStringId returns the pool index of str, appending it if absent.
// If addEmpty is false and str is empty, it returns NPOS without adding an
// entry.
func (g *Graph) AddOrFindStringId(str string, addEmpty bool) uint32 {
	for i, s := range g.Header.strings {
		if s == str {
			return uint32(i)
		}
	}
	if !addEmpty && str == "" {
		return NPOS
	}
	if uint32(len(g.Header.strings)) == NPOS {
		return NPOS
	}
	g.Header.strings = append(g.Header.strings, str)
	return uint32(len(g.Header.strings) - 1)
}

// FindStringId returns the pool index of str, or NPOS if not present.
func (g *Graph) FindStringId(str string) uint32 {
	for i, s := range g.Header.strings {
		if s == str {
			return uint32(i)
		}
	}
	return NPOS
}

// GetStringById returns the pool entry at id, or "" if id is NPOS or out
// of range.
func (g *Graph) GetStringById(id uint32) string {
	if id == NPOS || int(id) >= len(g.Header.strings) {
		return ""
	}
	return g.Header.strings[id]
}

// SetStringById overwrites the pool entry at id, if valid.
func (g *Graph) SetStringById(id uint32, str string) {
	if id != NPOS && int(id) < len(g.Header.strings) {
		g.Header.strings[id] = str
	}
}

// GetStringCount returns the number of pool entries.
func (g *Graph) GetStringCount() int { return len(g.Header.strings) }

// ClearStrings empties the string pool.
func (g *Graph) ClearStrings() {
	g.Header.strings = nil
	g.Header.maxStringLen = 0
}

// CheckInvariants verifies the structural invariants (block-type-table
// and block-size-table alignment with the block array) that every public
// operation must preserve. It is intended for tests and defensive
// callers, not called automatically by every mutator; editor operations
// are not transactional.
func (g *Graph) CheckInvariants() error {
	n := len(g.blocks)
	if len(g.Header.blockTypeIndices) != n {
		return fmt.Errorf("%w: blockTypeIndices length %d != %d blocks", ErrInvariantViolated, len(g.Header.blockTypeIndices), n)
	}
	if len(g.Header.blockSizes) != 0 && len(g.Header.blockSizes) != n {
		return fmt.Errorf("%w: blockSizes length %d != %d blocks", ErrInvariantViolated, len(g.Header.blockSizes), n)
	}
	for i, t := range g.Header.blockTypeIndices {
		if int(t) >= len(g.Header.blockTypes) {
			return fmt.Errorf("%w: block %d has out-of-range type %d", ErrInvariantViolated, i, t)
		}
	}
	for i, t := range g.Header.blockTypes {
		if g.blockTypeRefCount(uint16(i)) == 0 {
			return fmt.Errorf("%w: orphan block type %q", ErrInvariantViolated, t)
		}
	}
	for _, r := range g.allRefs(true) {
		if !r.IsEmpty() && int(r.Index()) >= n {
			return fmt.Errorf("%w: reference %d out of range (%d blocks)", ErrInvariantViolated, r.Index(), n)
		}
	}
	for _, sr := range g.stringRefs() {
		if sr.IsEmpty() {
			continue
		}
		if int(sr.GetIndex()) >= len(g.Header.strings) {
			return fmt.Errorf("%w: string ref %d out of range (%d strings)", ErrInvariantViolated, sr.GetIndex(), len(g.Header.strings))
		}
		if g.Header.strings[sr.GetIndex()] != sr.Get() {
			return fmt.Errorf("%w: string ref %d cache %q != pool %q", ErrInvariantViolated, sr.GetIndex(), sr.Get(), g.Header.strings[sr.GetIndex()])
		}
	}
	maxLen := uint32(0)
	for _, s := range g.Header.strings {
		if uint32(len(s)) > maxLen {
			maxLen = uint32(len(s))
		}
	}
	if maxLen != g.Header.maxStringLen {
		return fmt.Errorf("%w: maxStringLen %d != actual max %d", ErrInvariantViolated, g.Header.maxStringLen, maxLen)
	}
	return nil
}
