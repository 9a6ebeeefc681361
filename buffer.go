package flatvec

// initialBufferCap is the starting capacity of a fresh Buffer's backing
// array. Growth doubles from here.
const initialBufferCap = 256

// Buffer owns a contiguous, growable byte region and is the single source
// of truth for storage. It issues stable offset-based addresses: once bytes
// have been written at an offset, that offset keeps meaning the same logical
// bytes for the buffer's whole lifetime. Growth only extends capacity, it
// never relocates logical offsets relative to the start.
//
// A Buffer is built by exactly one logical writer and becomes logically
// immutable once construction finishes; after that any number of readers
// may share it without locks.
type Buffer struct {
	data []byte
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, initialBufferCap)}
}

// Append reserves n bytes aligned to align at the current end of storage,
// growing the backing array geometrically if needed, and returns the offset
// at which the reservation begins. Padding bytes inserted for alignment are
// zero.
//
// Growth may reallocate the backing storage: every slice previously
// resolved through Get or Bytes becomes invalid after Append. Only
// addresses, never resolved slices, may be retained across construction
// steps.
func (b *Buffer) Append(n, align int) Address {
	off := alignUp(len(b.data), align)
	end := off + n
	if end > cap(b.data) {
		b.grow(end)
	}
	b.data = b.data[:end]
	return Address(off)
}

// grow reallocates the backing array with at least need capacity, doubling
// the current capacity until it fits. Allocation failure is an unrecoverable
// resource error and surfaces as a runtime OOM, not as a value.
func (b *Buffer) grow(need int) {
	newCap := cap(b.data) * 2
	if newCap < initialBufferCap {
		newCap = initialBufferCap
	}
	for newCap < need {
		newCap *= 2
	}
	fresh := make([]byte, len(b.data), newCap)
	copy(fresh, b.data)
	b.data = fresh
}

// Get resolves an address to the storage starting at that offset. The
// returned slice reaches to the current end of storage and is valid only
// until the next Append.
func (b *Buffer) Get(addr Address) []byte {
	return b.data[addr:]
}

// Bytes returns the full encoded contents. Valid only until the next
// Append.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}
