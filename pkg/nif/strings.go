package nif

import "fmt"

// NiString is a variable-width length-prefixed byte string: szSize selects
// whether the length is stored as u8, u16, or u32. It backs
// creator/exportInfo/copyright header fields and the blockTypes table.
type NiString struct {
	value      string
	nullOutput bool
}

func NewNiString(value string) NiString { return NiString{value: value} }

func (s NiString) String() string { return s.value }
func (s *NiString) Set(v string)  { s.value = v }
func (s NiString) Len() int       { return len(s.value) }

// SetNullOutput causes the next Write to append a trailing 0x00 and count
// it in the serialized length. The creator and export-info header fields
// serialize this way.
func (s *NiString) SetNullOutput() { s.nullOutput = true }

// Read decodes a length-prefixed string of the given width (1, 2, or 4
// bytes). Any other szSize is a no-op. A single trailing
// NUL byte, if present in the decoded bytes, is discarded from the value.
func (s *NiString) Read(r *Reader, szSize int) error {
	var n int
	switch szSize {
	case 1:
		v, err := r.ReadU8()
		if err != nil {
			return err
		}
		n = int(v)
	case 2:
		v, err := r.ReadU16()
		if err != nil {
			return err
		}
		n = int(v)
	case 4:
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		n = int(v)
	default:
		return nil
	}

	b, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	if len(b) > 0 && b[len(b)-1] == 0x00 {
		b = b[:len(b)-1]
	}
	s.value = string(b)
	return nil
}

// Write encodes the string with a length prefix of the given width. If
// nullOutput is set, the serialized length includes one extra byte and a
// trailing 0x00 is appended after the payload.
func (s *NiString) Write(w *Writer, szSize int) error {
	sz := len(s.value)
	out := sz
	if s.nullOutput {
		out = sz + 1
	}

	switch szSize {
	case 1:
		if err := w.WriteU8(uint8(out)); err != nil {
			return err
		}
	case 2:
		if err := w.WriteU16(uint16(out)); err != nil {
			return err
		}
	case 4:
		if err := w.WriteU32(uint32(out)); err != nil {
			return err
		}
	}

	if err := w.WriteBytes([]byte(s.value)); err != nil {
		return err
	}
	if s.nullOutput {
		return w.WriteU8(0)
	}
	return nil
}

// niStringRefInlineCap is the largest declared length an inline
// (pre-20.1.0.3) string reference reads in full; longer declarations
// leave the value empty.
const niStringRefInlineCap = 2048

// NiStringRef is a value that is either an inline string (file <
// V20_1_0_3) or an index into the header's central string pool
// (file >= V20_1_0_3). It always carries a cached copy of the resolved
// string value.
type NiStringRef struct {
	cached string
	index  uint32
}

func NewNiStringRef(value string) NiStringRef {
	return NiStringRef{cached: value, index: NPOS}
}

func (s NiStringRef) Get() string       { return s.cached }
func (s *NiStringRef) Set(v string)     { s.cached = v }
func (s NiStringRef) GetIndex() uint32  { return s.index }
func (s *NiStringRef) SetIndex(i uint32) { s.index = i }

func (s NiStringRef) Index() uint32  { return s.index }
func (s NiStringRef) IsEmpty() bool  { return s.index == NPOS }
func (s *NiStringRef) Clear()        { s.index = NPOS }

// Read decodes a string reference. Before V20_1_0_3 this is an inline
// length-prefixed string capped at 2048 bytes; at or after V20_1_0_3 it is
// a pool index, rejected with ErrLengthTooLarge above
// nifStringIndexLimit.
func (s *NiStringRef) Read(r *Reader) error {
	if r.Version().File() < V20_1_0_3 {
		sz, err := r.ReadU32()
		if err != nil {
			return err
		}
		if sz <= niStringRefInlineCap {
			b, err := r.ReadBytes(int(sz))
			if err != nil {
				return err
			}
			s.cached = string(b)
		} else {
			// A declared length beyond the cap yields an empty value
			// WITHOUT consuming the declared byte count: the cursor stays
			// right after the 4-byte length field. Existing readers behave
			// this way and round-trip fidelity depends on it.
			s.cached = ""
		}
		s.index = NPOS
		return nil
	}

	idx, err := r.ReadU32()
	if err != nil {
		return err
	}
	if idx != NPOS && idx > nifStringIndexLimit {
		return fmt.Errorf("%w: string index %d", ErrLengthTooLarge, idx)
	}
	s.index = idx
	return nil
}

// Write encodes the string reference symmetrically with Read.
func (s *NiStringRef) Write(w *Writer) error {
	if w.Version().File() < V20_1_0_3 {
		sz := uint32(len(s.cached))
		if err := w.WriteU32(sz); err != nil {
			return err
		}
		return w.WriteBytes([]byte(s.cached))
	}

	if s.index != NPOS && s.index > nifStringIndexLimit {
		return fmt.Errorf("%w: string index %d", ErrLengthTooLarge, s.index)
	}
	return w.WriteU32(s.index)
}
