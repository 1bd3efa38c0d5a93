package nif

import (
	"bytes"
	"testing"
)

func TestUnknownRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3, 4, 5}
	w := NewWriter(LittleEndian, Version{})
	if err := w.WriteBytes(data); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes(), LittleEndian, Version{})
	ctor := ReadUnknown("BSUnknownBlock", uint32(len(data)))
	payload, err := ctor(r, Version{})
	if err != nil {
		t.Fatal(err)
	}

	u, ok := payload.(*Unknown)
	if !ok {
		t.Fatalf("ReadUnknown produced %T, want *Unknown", payload)
	}
	if u.BlockName() != "BSUnknownBlock" {
		t.Fatalf("BlockName() = %q, want %q", u.BlockName(), "BSUnknownBlock")
	}
	if !bytes.Equal(u.Data(), data) {
		t.Fatalf("Data() = %v, want %v", u.Data(), data)
	}

	out := NewWriter(LittleEndian, Version{})
	if err := u.WritePayload(out, Version{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("re-serialized = %v, want %v", out.Bytes(), data)
	}
}

func TestUnknownZeroSize(t *testing.T) {
	t.Parallel()

	u := NewUnknown("EmptyBlock", 0)
	w := NewWriter(LittleEndian, Version{})
	if err := u.WritePayload(w, Version{}); err != nil {
		t.Fatal(err)
	}
	if len(w.Bytes()) != 0 {
		t.Fatalf("expected zero bytes written, got %d", len(w.Bytes()))
	}
	if u.ChildRefs() != nil || u.PtrRefs() != nil || u.StringRefs() != nil {
		t.Fatal("Unknown must report no reference fields")
	}
}
