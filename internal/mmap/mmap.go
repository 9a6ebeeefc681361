// Package mmap provides read-only memory mapping of container files so an
// encoded buffer can be walked in place, without copying it onto the heap.
package mmap

import (
	"errors"
	"io"
	"os"
)

// AccessPattern provides hints to the kernel about how the mapped data will
// be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
)

// ErrClosed is returned when accessing a mapping after Close.
var ErrClosed = errors.New("mmap: mapping is closed")

// File represents a read-only memory-mapped file.
//
// Data aliases the mapped region: any views derived from it become invalid
// after Close.
type File struct {
	Data []byte
	f    *os.File
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &File{Data: nil, f: f}, nil
	}
	if size < 0 || size != int64(int(size)) {
		f.Close()
		return nil, errors.New("mmap: invalid file size")
	}

	data, err := osMap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{Data: data, f: f}, nil
}

// Advise hints the kernel about the expected access pattern. The hint is
// advisory; failures to apply it are not fatal.
func (m *File) Advise(pattern AccessPattern) error {
	if m == nil || m.Data == nil {
		return nil
	}
	return osAdvise(m.Data, pattern)
}

// ReadAt implements io.ReaderAt over the mapped region.
func (m *File) ReadAt(p []byte, off int64) (n int, err error) {
	if m.Data == nil {
		return 0, ErrClosed
	}
	if off < 0 || off >= int64(len(m.Data)) {
		return 0, io.EOF
	}
	n = copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the memory and closes the underlying file.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.Data != nil {
		err = osUnmap(m.Data)
		m.Data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}
