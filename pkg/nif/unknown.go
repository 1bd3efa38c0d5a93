package nif

// Unknown is the fallback payload for block types the registry does not
// recognize: it stores the declared block size worth of bytes verbatim
// and writes them back unchanged. Its type name round-trips
// through the header's blockTypes table like any other block; Unknown
// itself never inspects it.
type Unknown struct {
	typeName string
	data     []byte
}

// NewUnknown constructs an Unknown payload that will serialize exactly
// size bytes of data.
func NewUnknown(typeName string, size uint32) *Unknown {
	return &Unknown{typeName: typeName, data: make([]byte, size)}
}

// ReadUnknown constructs an Unknown payload by consuming size bytes from r.
// Use this as the fallback Constructor when Registry.Lookup fails.
func ReadUnknown(typeName string, size uint32) Constructor {
	return func(r *Reader, _ Version) (Payload, error) {
		data, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, len(data))
		copy(buf, data)
		return &Unknown{typeName: typeName, data: buf}, nil
	}
}

func (u *Unknown) BlockName() string         { return u.typeName }
func (u *Unknown) ChildRefs() []*NiRef       { return nil }
func (u *Unknown) PtrRefs() []*NiPtr         { return nil }
func (u *Unknown) StringRefs() []*NiStringRef { return nil }

func (u *Unknown) Data() []byte { return u.data }

func (u *Unknown) WritePayload(w *Writer, _ Version) error {
	if len(u.data) == 0 {
		return nil
	}
	return w.WriteBytes(u.data)
}
