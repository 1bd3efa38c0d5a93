package nif

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is the top-level handle produced by Open/ReadBytes: a parsed Header,
// the block Graph, and the mmap (or buffer) backing the read, if any. It
// orchestrates the Header/Graph/Registry components end to end; it does
// not itself know anything about payload semantics.
type File struct {
	Graph *Graph

	data    []byte
	mmapped bool
}

// Open maps path read-only and parses it against registry, preferring
// golang.org/x/sys/unix.Mmap for a zero-copy view and falling back to a
// buffered whole-file read when mmap is unavailable. The returned File
// must be closed to release any mapping.
func Open(path string, registry *Registry) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: implausible file size %d", ErrCorrupt, size64)
	}
	size := int(size64)

	if size > 0 {
		data, mmapErr := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if mmapErr == nil {
			nf, err := parse(data, registry)
			if err != nil {
				_ = unix.Munmap(data)
				return nil, err
			}
			nf.data = data
			nf.mmapped = true
			return nf, nil
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parse(data, registry)
}

// ReadBytes parses an in-memory buffer against registry without any file or
// mmap involvement. Useful for round-tripping synthetic or already-loaded
// data.
func ReadBytes(data []byte, registry *Registry) (*File, error) {
	return parse(data, registry)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size <= 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parse(data []byte, registry *Registry) (*File, error) {
	r := NewReader(data, LittleEndian, Version{})

	g := &Graph{}
	numBlocks, err := g.Header.Get(r)
	if err != nil {
		return nil, err
	}
	if !g.Header.Valid() {
		return nil, ErrCorrupt
	}
	if err := checkVersionSupported(g.Header.Version()); err != nil {
		return nil, err
	}

	if registry == nil {
		registry = NewRegistry()
	}

	g.blocks = make([]Payload, numBlocks)
	for i := uint32(0); i < numBlocks; i++ {
		typeName := g.Header.BlockTypeString(i, int(numBlocks))
		ctor, ok := registry.Lookup(typeName)
		if !ok {
			ctor = ReadUnknown(typeName, g.Header.BlockSize(i))
		}
		payload, err := ctor(r, g.Header.Version())
		if err != nil {
			return nil, fmt.Errorf("nif: block %d (%s): %w", i, typeName, err)
		}
		g.blocks[i] = payload
	}

	g.FillStringRefs()

	numRoots, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	roots := make([]uint32, numRoots)
	for i := range roots {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		roots[i] = v
	}
	g.roots = roots

	return &File{Graph: g, data: data}, nil
}

// Close releases any mmap backing this File. It is a no-op for Files that
// were not produced by Open with an mmap'd view.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
	}
	f.data = nil
	f.mmapped = false
	return err
}

// Bytes serializes the current graph: UpdateHeaderStrings rebuilds the
// string pool, the header preamble is written with the block-size table
// reserved, every block is serialized while its written span is measured,
// the block-size table is patched, and the footer (root list) is
// appended.
func (f *File) Bytes() ([]byte, error) {
	g := f.Graph
	g.UpdateHeaderStrings(false)

	w := NewWriter(g.Header.Endian(), g.Header.Version())
	numBlocks := uint32(len(g.blocks))
	if err := g.Header.Put(w, numBlocks); err != nil {
		return nil, err
	}

	sizes := make([]uint32, numBlocks)
	for i, b := range g.blocks {
		start := w.Tell()
		if err := b.WritePayload(w, g.Header.Version()); err != nil {
			return nil, fmt.Errorf("nif: block %d (%s): %w", i, b.BlockName(), err)
		}
		sizes[i] = uint32(w.Tell() - start)
	}
	if err := g.Header.PatchBlockSizes(w, sizes); err != nil {
		return nil, err
	}
	if g.Header.Version().File() >= V20_2_0_5 {
		g.Header.blockSizes = sizes
	}

	if err := w.WriteU32(uint32(len(g.roots))); err != nil {
		return nil, err
	}
	for _, root := range g.roots {
		if err := w.WriteU32(root); err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// WriteFile serializes the graph and writes it to path, truncating any
// existing file. Intentionally a simple whole-buffer write, not a
// streaming writer.
func (f *File) WriteFile(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
