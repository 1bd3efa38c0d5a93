// Package nif implements the versioned container layer of the
// Gamebryo/NetImmerse Interchange Format: the header preamble, the
// block graph, typed references, and the central string pool.
//
// Block payloads themselves (NiNode, NiTriShape, shaders, ...) are out of
// scope; the package treats every block as an opaque Payload (see block.go)
// and only manages the graph structure around it.
package nif

import "errors"

// Sentinel error kinds. Each already carries the "nif: " prefix; wrap them
// with fmt.Errorf("%w: ...", ErrX, ...) to add context; callers should
// match with errors.Is.
var (
	// ErrTruncated means the stream ended before a field could be read in full.
	ErrTruncated = errors.New("nif: truncated stream")

	// ErrIO means the underlying byte stream failed a read or write.
	ErrIO = errors.New("nif: i/o error")

	// ErrVersionUnsupported means the file's version falls outside the range
	// this package knows how to parse.
	ErrVersionUnsupported = errors.New("nif: unsupported version")

	// ErrLengthTooLarge means a string index exceeded nifStringIndexLimit.
	// An over-long inline string length is not an error: NiStringRef.Read
	// leaves the value empty instead.
	ErrLengthTooLarge = errors.New("nif: length exceeds limit")

	// ErrInvariantViolated means a post-edit integrity check failed: a
	// dangling reference, or a desync between numBlocks and the parallel
	// blockTypeIndices/blockSizes/blocks arrays.
	ErrInvariantViolated = errors.New("nif: invariant violated")

	// ErrCorrupt is returned by File.Open-style entry points when the
	// container cannot be trusted structurally (unrecognized version line,
	// implausible file size). A buffer that ends mid-field yields
	// ErrTruncated instead.
	ErrCorrupt = errors.New("nif: corrupt file")
)
