// Package container embeds a flatvec-encoded buffer in a self-describing
// file: a fixed header carrying the root address, followed by the
// (optionally compressed) payload bytes, protected by a CRC32 checksum.
//
// The header identifies the file and locates the root region; the schema of
// the encoded tree is carried out-of-band by the caller, as the core format
// prescribes.
package container

import "errors"

const (
	// MagicNumber identifies flatvec container files (ASCII: "FVC0")
	MagicNumber = 0x46564330
	// Version is the current file format version (v1.0.0)
	Version = 0x00010000

	// headerSize is the encoded size of FileHeader.
	headerSize = 64

	// MaxPayloadLen bounds the payload and stored lengths a header may
	// declare. Region addresses are uint32 offsets, so a larger payload
	// would be unaddressable.
	MaxPayloadLen = 1 << 32
)

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrInvalidVersion   = errors.New("unsupported version")
	ErrInvalidCodec     = errors.New("unknown payload codec")
	ErrTruncated        = errors.New("truncated container")
	ErrOversized        = errors.New("payload length exceeds format limit")
	ErrMappedCompressed = errors.New("cannot memory-map a compressed container")
)

// Codec identifies the payload encoding.
type Codec uint8

const (
	// CodecNone stores the payload verbatim. Required for memory-mapped
	// loading.
	CodecNone Codec = iota
	// CodecLZ4 compresses the payload with an lz4 frame.
	CodecLZ4
	// CodecZstd compresses the payload with zstandard.
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// FileHeader is the 64-byte header at the start of every container file.
// Layout keeps the payload at a 64-byte offset so memory-mapped loads hand
// out an 8-byte-aligned payload base.
type FileHeader struct {
	Magic      uint32   // 0x46564330 ("FVC0")
	Version    uint32   // File format version
	Codec      uint8    // Payload codec
	RootKind   uint8    // flatvec.Kind of the root region's elements (0 if unspecified)
	Padding1   [2]byte
	Root       uint32   // Root region address within the decoded payload
	PayloadLen uint64   // Decoded payload length in bytes
	StoredLen  uint64   // Stored (possibly compressed) payload length in bytes
	Checksum   uint32   // CRC32 of the stored payload
	Padding2   [4]byte
	Reserved   [24]byte // Future use
}
