package container

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// CRC32 (IEEE polynomial) guards against accidental storage corruption.
// It is not cryptographically secure and must not be relied on for tamper
// detection.

var crc32Table = crc32.MakeTable(crc32.IEEE)

// ComputeChecksum computes the CRC32 checksum of data.
func ComputeChecksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32Table)
}

// ChecksumWriter wraps an io.Writer and computes a running CRC32 checksum
// of everything written through it.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

// NewChecksumWriter creates a new checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{
		w:    w,
		hash: crc32.New(crc32Table),
	}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	if _, err := cw.hash.Write(p); err != nil {
		return 0, err
	}
	return cw.w.Write(p)
}

// Sum returns the current checksum value.
func (cw *ChecksumWriter) Sum() uint32 {
	return cw.hash.Sum32()
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// IsChecksumMismatch returns true if err is, or wraps, a checksum mismatch
// error.
func IsChecksumMismatch(err error) bool {
	var cme *ChecksumMismatchError
	return errors.As(err, &cme)
}
