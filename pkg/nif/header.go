package nif

import "fmt"

// Header holds the version-dependent preamble: the file's Version,
// Bethesda/legacy metadata, the block-type registry table, the block-size
// table, the central string pool, and group sizes.
//
// Header keeps no separate numBlocks/numBlockTypes/numStrings/numGroups
// counters: each count derives from the length of its slice, so the
// parallel tables cannot drift out of sync with the arrays they describe.
type Header struct {
	version Version

	// Bethesda branch.
	creator      NiString
	exportInfo1  NiString
	exportInfo2  NiString
	exportInfo3  NiString
	unkInt1      uint32

	// Pre-Bethesda, file >= V30_0_0_2 branch.
	embedData []byte

	// Pre-3.1 branch.
	copyright1 NiString
	copyright2 NiString
	copyright3 NiString

	endian Endian

	blockTypes       []string
	blockTypeIndices []uint16
	blockSizes       []uint32

	strings      []string
	maxStringLen uint32

	groupSizes []uint32

	// blockSizePos is the stream offset of the blockSizes table, recorded
	// during Put so the caller can seek back and patch it once every
	// block's actual written size is known.
	blockSizePos int64

	valid bool
}

func (h *Header) Version() Version     { return h.version }
func (h *Header) SetVersion(v Version) { h.version = v }
func (h *Header) Valid() bool          { return h.valid }
func (h *Header) Endian() Endian       { return h.endian }
func (h *Header) SetEndian(e Endian)   { h.endian = e }

func (h *Header) NumBlockTypes() int { return len(h.blockTypes) }
func (h *Header) NumStrings() int    { return len(h.strings) }

func (h *Header) BlockSizePos() int64 { return h.blockSizePos }

func (h *Header) CreatorInfo() string { return h.creator.String() }
func (h *Header) SetCreatorInfo(s string) { h.creator.Set(s) }

// ExportInfo concatenates the up-to-three export info lines the Bethesda
// branch carries, newline-joined.
func (h *Header) ExportInfo() string {
	out := h.exportInfo1.String()
	if h.exportInfo2.Len() > 0 {
		out += "\n" + h.exportInfo2.String()
	}
	if h.exportInfo3.Len() > 0 {
		out += "\n" + h.exportInfo3.String()
	}
	return out
}

// SetExportInfo splits s into up to three 254-byte lines across
// exportInfo1..3; anything past the third line is dropped.
func (h *Header) SetExportInfo(s string) {
	slots := []*NiString{&h.exportInfo1, &h.exportInfo2, &h.exportInfo3}
	for _, slot := range slots {
		slot.Set("")
	}
	for i, slot := 0, 0; i < len(s) && slot < len(slots); i, slot = i+254, slot+1 {
		end := i + 254
		if end > len(s) {
			end = len(s)
		}
		slots[slot].Set(s[i:end])
	}
}

// BlockTypeName returns the type name at blockTypes[id], or "" if id is
// out of range.
func (h *Header) BlockTypeName(id uint16) string {
	if int(id) >= len(h.blockTypes) {
		return ""
	}
	return h.blockTypes[id]
}

// BlockTypeIndex returns the type index for block id, or 0xFFFF if id is
// out of range.
func (h *Header) BlockTypeIndex(id uint32, numBlocks int) uint16 {
	if id == NPOS || int(id) >= numBlocks || int(id) >= len(h.blockTypeIndices) {
		return 0xFFFF
	}
	return h.blockTypeIndices[id]
}

// BlockTypeString returns the type name of block id.
func (h *Header) BlockTypeString(id uint32, numBlocks int) string {
	ti := h.BlockTypeIndex(id, numBlocks)
	if ti == 0xFFFF {
		return ""
	}
	return h.BlockTypeName(ti)
}

// SetUnkInt1 sets the Bethesda-branch unknown u32 field written only when
// stream > 130.
func (h *Header) SetUnkInt1(v uint32) { h.unkInt1 = v }

// SetEmbedData sets the raw byte blob written on the pre-Bethesda,
// file >= V30_0_0_2 branch.
func (h *Header) SetEmbedData(data []byte) { h.embedData = append([]byte(nil), data...) }

// SetCopyrightLines sets the three pre-3.1-branch copyright lines.
func (h *Header) SetCopyrightLines(l1, l2, l3 string) {
	h.copyright1.Set(l1)
	h.copyright2.Set(l2)
	h.copyright3.Set(l3)
}

// SetGroupSizes sets the group-size table written when file >= V5_0_0_6.
func (h *Header) SetGroupSizes(sizes []uint32) { h.groupSizes = append([]uint32(nil), sizes...) }

// GroupSizes returns the group-size table.
func (h *Header) GroupSizes() []uint32 { return h.groupSizes }

// BlockSize returns the recorded size of block id, or NPOS if unavailable.
func (h *Header) BlockSize(id uint32) uint32 {
	if int(id) >= len(h.blockSizes) {
		return NPOS
	}
	return h.blockSizes[id]
}

// Get parses the version-gated preamble from r. On success h.valid is set
// true; if the version line does not match one of the three known
// families, Get returns nil with h.valid left false and no further bytes
// meaningfully consumed.
func (h *Header) Get(r *Reader) (uint32, error) {
	r.endian = LittleEndian
	line, err := r.ReadLine(128)
	if err != nil {
		return 0, err
	}

	file, isNDS, recognized := parseVersionLine(line)
	if !recognized {
		h.valid = false
		return 0, nil
	}

	switch {
	case file > V3_1 && !isNDS:
		file, err = r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.version.SetFile(file)
	case isNDS:
		nds, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.version.SetFile(file)
		h.version.SetNDS(nds)
	default:
		h.version.SetFile(file)
		for _, cr := range []*NiString{&h.copyright1, &h.copyright2, &h.copyright3} {
			line, err := r.ReadLine(128)
			if err != nil {
				return 0, err
			}
			cr.Set(line)
		}
	}

	// Everything up to and including the endian byte is little-endian on
	// the wire; only the fields after it honor h.endian.
	if h.version.File() >= V20_0_0_3 {
		e, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		if e == 0 {
			h.endian = BigEndian
		} else {
			h.endian = LittleEndian
		}
	} else {
		h.endian = LittleEndian
	}
	r.endian = h.endian

	if h.version.File() >= V10_0_1_8 {
		user, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.version.SetUser(user)
	}
	r.SetVersion(h.version)

	numBlocks, err := r.ReadU32()
	if err != nil {
		return 0, err
	}

	if h.version.IsBethesda() {
		stream, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.version.SetStream(stream)
		r.SetVersion(h.version)

		if err := h.creator.Read(r, 1); err != nil {
			return 0, err
		}
		if h.version.Stream() > 130 {
			h.unkInt1, err = r.ReadU32()
			if err != nil {
				return 0, err
			}
		}
		if err := h.exportInfo1.Read(r, 1); err != nil {
			return 0, err
		}
		if err := h.exportInfo2.Read(r, 1); err != nil {
			return 0, err
		}
		if h.version.Stream() == 130 {
			if err := h.exportInfo3.Read(r, 1); err != nil {
				return 0, err
			}
		}
	} else if h.version.File() >= V30_0_0_2 {
		n, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		data, err := r.ReadBytes(int(n))
		if err != nil {
			return 0, err
		}
		h.embedData = append([]byte(nil), data...)
	}

	if h.version.File() >= V5_0_0_1 {
		n, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.blockTypes = make([]string, n)
		for i := range h.blockTypes {
			var s NiString
			if err := s.Read(r, 4); err != nil {
				return 0, err
			}
			h.blockTypes[i] = s.String()
		}
		h.blockTypeIndices = make([]uint16, numBlocks)
		for i := range h.blockTypeIndices {
			v, err := r.ReadU16()
			if err != nil {
				return 0, err
			}
			h.blockTypeIndices[i] = v
		}
	}

	if h.version.File() >= V20_2_0_5 {
		h.blockSizes = make([]uint32, numBlocks)
		for i := range h.blockSizes {
			v, err := r.ReadU32()
			if err != nil {
				return 0, err
			}
			h.blockSizes[i] = v
		}
	}

	if h.version.File() >= V20_1_0_1 {
		n, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		if _, err := r.ReadU32(); err != nil { // maxStringLen, recomputed below
			return 0, err
		}
		h.strings = make([]string, n)
		for i := range h.strings {
			var s NiString
			if err := s.Read(r, 4); err != nil {
				return 0, err
			}
			h.strings[i] = s.String()
		}
		h.recomputeMaxStringLen()
	}

	if h.version.File() >= V5_0_0_6 {
		n, err := r.ReadU32()
		if err != nil {
			return 0, err
		}
		h.groupSizes = make([]uint32, n)
		for i := range h.groupSizes {
			v, err := r.ReadU32()
			if err != nil {
				return 0, err
			}
			h.groupSizes[i] = v
		}
	}

	h.valid = true
	return numBlocks, nil
}

// Put serializes the preamble for numBlocks blocks. If the version's
// blockSizes table is present on the wire (file >= V20_2_0_5), Put records
// the table's stream offset in h.blockSizePos and writes the current
// (possibly stale) h.blockSizes values as placeholders; the caller must
// seek back to BlockSizePos() and rewrite the table once every block has
// been serialized and its true size is known.
func (h *Header) Put(w *Writer, numBlocks uint32) error {
	w.endian = LittleEndian
	if err := w.WriteLine(h.version.String()); err != nil {
		return err
	}

	isNDS := h.version.NDS() != 0
	switch {
	case h.version.File() > V3_1 && !isNDS:
		if err := w.WriteU32(h.version.File()); err != nil {
			return err
		}
	case isNDS:
		if err := w.WriteU32(h.version.NDS()); err != nil {
			return err
		}
	default:
		for _, cr := range []NiString{h.copyright1, h.copyright2, h.copyright3} {
			if err := w.WriteLine(cr.String()); err != nil {
				return err
			}
		}
	}

	// Mirror Get: fields after the endian byte honor h.endian, everything
	// before it is little-endian on the wire.
	if h.version.File() >= V20_0_0_3 {
		e := uint8(1)
		if h.endian == BigEndian {
			e = 0
		}
		if err := w.WriteU8(e); err != nil {
			return err
		}
	} else {
		h.endian = LittleEndian
	}
	w.endian = h.endian

	if h.version.File() >= V10_0_1_8 {
		if err := w.WriteU32(h.version.User()); err != nil {
			return err
		}
	}

	if err := w.WriteU32(numBlocks); err != nil {
		return err
	}

	if h.version.IsBethesda() {
		if err := w.WriteU32(h.version.Stream()); err != nil {
			return err
		}
		h.creator.SetNullOutput()
		if err := h.creator.Write(w, 1); err != nil {
			return err
		}
		if h.version.Stream() > 130 {
			if err := w.WriteU32(h.unkInt1); err != nil {
				return err
			}
		}
		h.exportInfo1.SetNullOutput()
		if err := h.exportInfo1.Write(w, 1); err != nil {
			return err
		}
		h.exportInfo2.SetNullOutput()
		if err := h.exportInfo2.Write(w, 1); err != nil {
			return err
		}
		if h.version.Stream() == 130 {
			h.exportInfo3.SetNullOutput()
			if err := h.exportInfo3.Write(w, 1); err != nil {
				return err
			}
		}
	} else if h.version.File() >= V30_0_0_2 {
		if err := w.WriteU32(uint32(len(h.embedData))); err != nil {
			return err
		}
		if err := w.WriteBytes(h.embedData); err != nil {
			return err
		}
	}

	if h.version.File() >= V5_0_0_1 {
		if err := w.WriteU32(uint32(len(h.blockTypes))); err != nil {
			return err
		}
		for _, name := range h.blockTypes {
			s := NewNiString(name)
			if err := s.Write(w, 4); err != nil {
				return err
			}
		}
		for _, ti := range h.blockTypeIndices {
			if err := w.WriteU16(ti); err != nil {
				return err
			}
		}
	}

	if h.version.File() >= V20_2_0_5 {
		h.blockSizePos = w.Tell()
		for i := uint32(0); i < numBlocks; i++ {
			var v uint32
			if int(i) < len(h.blockSizes) {
				v = h.blockSizes[i]
			}
			if err := w.WriteU32(v); err != nil {
				return err
			}
		}
	}

	if h.version.File() >= V20_1_0_1 {
		if err := w.WriteU32(uint32(len(h.strings))); err != nil {
			return err
		}
		if err := w.WriteU32(h.maxStringLen); err != nil {
			return err
		}
		for _, str := range h.strings {
			s := NewNiString(str)
			if err := s.Write(w, 4); err != nil {
				return err
			}
		}
	}

	if h.version.File() >= V5_0_0_6 {
		if err := w.WriteU32(uint32(len(h.groupSizes))); err != nil {
			return err
		}
		for _, g := range h.groupSizes {
			if err := w.WriteU32(g); err != nil {
				return err
			}
		}
	}

	return nil
}

// PatchBlockSizes seeks w back to the reserved block-size table (recorded
// by the most recent Put) and rewrites it with the now-known sizes. It is
// a no-op if the active version has no block-size table.
func (h *Header) PatchBlockSizes(w *Writer, sizes []uint32) error {
	if h.version.File() < V20_2_0_5 {
		return nil
	}
	resume := w.Tell()
	if err := w.Seek(h.blockSizePos); err != nil {
		return err
	}
	for _, sz := range sizes {
		if err := w.WriteU32(sz); err != nil {
			return err
		}
	}
	return w.Seek(resume)
}

func (h *Header) recomputeMaxStringLen() {
	max := uint32(0)
	for _, s := range h.strings {
		if n := uint32(len(s)); n > max {
			max = n
		}
	}
	h.maxStringLen = max
}

// checkVersionSupported rejects only a zero file version. Every non-zero
// version is handled by the gated fields above (versions at or below V3_1
// take the copyright-line branch), even if a given payload registry does
// not know any block types for it.
func checkVersionSupported(v Version) error {
	if v.File() == 0 {
		return fmt.Errorf("%w: zero file version", ErrVersionUnsupported)
	}
	return nil
}
