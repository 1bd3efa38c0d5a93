package nif

import (
	"errors"
	"strings"
	"testing"
)

func TestNiStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, szSize := range []int{1, 2, 4} {
		w := NewWriter(LittleEndian, Version{})
		s := NewNiString("NiNode")
		if err := s.Write(w, szSize); err != nil {
			t.Fatalf("szSize %d: Write: %v", szSize, err)
		}

		r := NewReader(w.Bytes(), LittleEndian, Version{})
		var got NiString
		if err := got.Read(r, szSize); err != nil {
			t.Fatalf("szSize %d: Read: %v", szSize, err)
		}
		if got.String() != "NiNode" {
			t.Fatalf("szSize %d: got %q, want %q", szSize, got.String(), "NiNode")
		}
	}
}

func TestNiStringNullOutput(t *testing.T) {
	t.Parallel()

	w := NewWriter(LittleEndian, Version{})
	s := NewNiString("abc")
	s.SetNullOutput()
	if err := s.Write(w, 1); err != nil {
		t.Fatal(err)
	}

	// length byte must be len+1, and a trailing 0x00 appended.
	want := []byte{4, 'a', 'b', 'c', 0}
	got := w.Bytes()
	if len(got) != len(want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bytes() = %v, want %v", got, want)
		}
	}

	r := NewReader(got, LittleEndian, Version{})
	var round NiString
	if err := round.Read(r, 1); err != nil {
		t.Fatal(err)
	}
	if round.String() != "abc" {
		t.Fatalf("round-tripped value = %q, want %q", round.String(), "abc")
	}
}

func TestNiStringRefInlineRoundTrip(t *testing.T) {
	t.Parallel()

	v := NewVersion(V20_1_0_1)
	w := NewWriter(LittleEndian, v)
	ref := NewNiStringRef("hello")
	if err := ref.Write(w); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes(), LittleEndian, v)
	var got NiStringRef
	if err := got.Read(r); err != nil {
		t.Fatal(err)
	}
	if got.Get() != "hello" {
		t.Fatalf("Get() = %q, want %q", got.Get(), "hello")
	}
	if !got.IsEmpty() {
		t.Fatalf("inline string ref should carry index NPOS, got %d", got.Index())
	}
}

func TestNiStringRefInlineAtCapReadsInFull(t *testing.T) {
	t.Parallel()

	v := NewVersion(V20_1_0_1)
	w := NewWriter(LittleEndian, v)
	ref := NewNiStringRef(strings.Repeat("x", niStringRefInlineCap))
	if err := ref.Write(w); err != nil {
		t.Fatal(err)
	}
	tail := []byte{0xAA, 0xBB}
	if err := w.WriteBytes(tail); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes(), LittleEndian, v)
	var got NiStringRef
	if err := got.Read(r); err != nil {
		t.Fatal(err)
	}
	if len(got.Get()) != niStringRefInlineCap {
		t.Fatalf("len(Get()) = %d, want %d (a length exactly at the cap is valid)", len(got.Get()), niStringRefInlineCap)
	}
	rest, err := r.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if rest[0] != 0xAA || rest[1] != 0xBB {
		t.Fatalf("cursor not at end of string body; read %v", rest)
	}
}

func TestNiStringRefInlineOverCapTruncatesWithoutConsuming(t *testing.T) {
	t.Parallel()

	v := NewVersion(V20_1_0_1)
	w := NewWriter(LittleEndian, v)
	if err := w.WriteU32(niStringRefInlineCap + 1); err != nil {
		t.Fatal(err)
	}
	// Intentionally no payload bytes: the quirk means Read must not try to
	// consume the declared byte count after seeing a length beyond the cap.
	tail := []byte{0xAA, 0xBB}
	if err := w.WriteBytes(tail); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes(), LittleEndian, v)
	var got NiStringRef
	if err := got.Read(r); err != nil {
		t.Fatal(err)
	}
	if got.Get() != "" {
		t.Fatalf("Get() = %q, want empty per truncation quirk", got.Get())
	}
	// Cursor must sit right after the length field, not after a phantom
	// body of the declared length.
	rest, err := r.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if rest[0] != 0xAA || rest[1] != 0xBB {
		t.Fatalf("cursor did not stay put after over-cap length; read %v", rest)
	}
}

func TestNiStringRefIndexedRoundTrip(t *testing.T) {
	t.Parallel()

	v := NewVersion(V20_1_0_3)
	w := NewWriter(LittleEndian, v)
	ref := NewNiStringRef("")
	ref.SetIndex(42)
	if err := ref.Write(w); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes(), LittleEndian, v)
	var got NiStringRef
	if err := got.Read(r); err != nil {
		t.Fatal(err)
	}
	if got.GetIndex() != 42 {
		t.Fatalf("GetIndex() = %d, want 42", got.GetIndex())
	}
}

func TestNiStringRefIndexOverLimitFails(t *testing.T) {
	t.Parallel()

	v := NewVersion(V20_1_0_3)
	w := NewWriter(LittleEndian, v)
	ref := NewNiStringRef("")
	ref.SetIndex(nifStringIndexLimit + 1)
	if err := ref.Write(w); !errors.Is(err, ErrLengthTooLarge) {
		t.Fatalf("Write() error = %v, want ErrLengthTooLarge", err)
	}
}
