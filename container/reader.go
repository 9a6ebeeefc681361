package container

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/flatvec"
	"github.com/hupe1980/flatvec/internal/mmap"
)

// Loaded is a decoded container ready for reading. Data holds the payload
// bytes the encoded tree is addressed against; Root is the root region's
// address within Data.
//
// For memory-mapped containers Data aliases the mapping and becomes invalid
// after Close. Heap-loaded containers have a no-op Close.
type Loaded struct {
	Data     []byte
	Root     flatvec.Address
	RootKind flatvec.Kind

	closer io.Closer
}

// Close releases the resources backing Data, if any.
func (l *Loaded) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.Data = nil
	return err
}

// readHeader decodes and validates the fixed header.
func readHeader(b []byte) (*FileHeader, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("%w: %d header bytes", ErrTruncated, len(b))
	}
	var h FileHeader
	if err := binary.Read(bytes.NewReader(b[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	if Codec(h.Codec) > CodecZstd {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCodec, h.Codec)
	}
	if h.PayloadLen > MaxPayloadLen || h.StoredLen > MaxPayloadLen {
		return nil, fmt.Errorf("%w: stored %d, decoded %d bytes", ErrOversized, h.StoredLen, h.PayloadLen)
	}
	if uint64(h.Root) > h.PayloadLen {
		return nil, fmt.Errorf("%w: root address 0x%x beyond payload of %d bytes", ErrTruncated, h.Root, h.PayloadLen)
	}
	return &h, nil
}

// ReadFrom reads a whole container from r onto the heap, verifying the
// checksum and decompressing the payload as needed.
func ReadFrom(r io.Reader, opts ...Option) (*Loaded, error) {
	_ = applyOptions(opts)

	head := make([]byte, headerSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h, err := readHeader(head)
	if err != nil {
		return nil, err
	}

	// The header's lengths are untrusted until the checksum passes: stream
	// the stored bytes through the checksummer instead of pre-allocating
	// from StoredLen.
	var stored bytes.Buffer
	cw := NewChecksumWriter(&stored)
	n, err := io.Copy(cw, io.LimitReader(r, int64(h.StoredLen)))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if uint64(n) != h.StoredLen {
		return nil, fmt.Errorf("%w: payload is %d of %d bytes", ErrTruncated, n, h.StoredLen)
	}
	if cw.Sum() != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: cw.Sum()}
	}

	payload, err := decodePayload(Codec(h.Codec), stored.Bytes(), int(h.PayloadLen))
	if err != nil {
		return nil, err
	}

	return &Loaded{
		Data:     payload,
		Root:     flatvec.Address(h.Root),
		RootKind: flatvec.Kind(h.RootKind),
	}, nil
}

// Load reads the container at path onto the heap.
func Load(path string, opts ...Option) (*Loaded, error) {
	o := applyOptions(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := ReadFrom(bufio.NewReaderSize(f, 256*1024), opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	o.logger.Info("container loaded",
		"path", path,
		"payload_bytes", len(l.Data),
	)
	return l, nil
}

// OpenMapped memory-maps the container at path and returns a zero-copy
// view of the payload. Only uncompressed containers can be mapped; the
// checksum is still verified over the mapped bytes before the view is
// handed out.
func OpenMapped(path string, opts ...Option) (*Loaded, error) {
	o := applyOptions(opts)

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	h, err := readHeader(m.Data)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if Codec(h.Codec) != CodecNone {
		_ = m.Close()
		return nil, fmt.Errorf("open %s: %w (codec %s)", path, ErrMappedCompressed, Codec(h.Codec))
	}
	if uint64(len(m.Data)) < headerSize+h.StoredLen {
		_ = m.Close()
		return nil, fmt.Errorf("open %s: %w", path, ErrTruncated)
	}

	payload := m.Data[headerSize : headerSize+h.StoredLen]
	if sum := ComputeChecksum(payload); sum != h.Checksum {
		_ = m.Close()
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	switch o.accessHint {
	case HintSequential:
		_ = m.Advise(mmap.AccessSequential)
	case HintRandom:
		_ = m.Advise(mmap.AccessRandom)
	}

	o.logger.Info("container mapped",
		"path", path,
		"payload_bytes", len(payload),
	)

	return &Loaded{
		Data:     payload,
		Root:     flatvec.Address(h.Root),
		RootKind: flatvec.Kind(h.RootKind),
		closer:   m,
	}, nil
}
