package flatvec

// Allocator is a thin cursor over exactly one Buffer. It hands out aligned
// reservations for in-place construction; reservations are append-only and
// never reused or freed. The Allocator carries no state worth persisting
// and is discarded once construction of the buffer's content is complete.
//
// Not safe for concurrent use: a single Allocator/Buffer pair must be
// driven by one logical builder at a time.
type Allocator struct {
	buf *Buffer
}

// NewAllocator creates an Allocator bound to buf. The Allocator borrows the
// Buffer and must not outlive it.
func NewAllocator(buf *Buffer) *Allocator {
	return &Allocator{buf: buf}
}

// Reserve delegates to Buffer.Append, inserting padding bytes as needed so
// the returned address satisfies align.
func (a *Allocator) Reserve(n, align int) Address {
	return a.buf.Append(n, align)
}

// Buffer returns the Buffer this Allocator reserves from.
func (a *Allocator) Buffer() *Buffer {
	return a.buf
}
