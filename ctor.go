package flatvec

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Scalar constrains the trivial element types: fixed-size values stored
// inline in their slot at a stride of their own size.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Ctor is the construction handle over one reserved vector region. It is a
// transient builder: it exists only while the region's slots are being
// filled and is discarded once construction completes. Every slot from 0 to
// Len()-1 must be constructed exactly once before the region, or any
// ancestor region, is handed to a reader; the builder does not verify this.
type Ctor interface {
	// Address returns the offset at which the region was reserved.
	Address() Address
	// Len returns the region's declared element count.
	Len() int
}

func sizeOf[T Scalar]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// putScalar copies the little-endian byte image of v into dst. The platform
// guard restricts the package to little-endian hosts, so a plain memory
// copy is the encoded form.
func putScalar[T Scalar](dst []byte, v T) {
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)))
}

func getScalar[T Scalar](src []byte) T {
	var v T
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)), src)
	return v
}

// slotsOffset returns the offset of slot 0 from the region base for slots
// of the given width: the count header rounded up to the slot alignment.
func slotsOffset(width int) int {
	if width < HeaderWidth {
		return HeaderWidth
	}
	return alignUp(HeaderWidth, width)
}

// regionAlign returns the alignment a region base needs so that both the
// uint32 count header and the naturally aligned slots line up.
func regionAlign(width int) int {
	if width > HeaderWidth {
		return width
	}
	return HeaderWidth
}

// VectorCtor builds a vector of trivial elements in place.
type VectorCtor[T Scalar] struct {
	buf   *Buffer
	addr  Address
	count int
}

// NewVectorCtor reserves a region for a vector of count elements of scalar
// type T, writes the count header, and returns the builder bound to the
// region's address.
func NewVectorCtor[T Scalar](a *Allocator, count int) *VectorCtor[T] {
	width := sizeOf[T]()
	addr := a.Reserve(slotsOffset(width)+count*width, regionAlign(width))
	buf := a.Buffer()
	binary.LittleEndian.PutUint32(buf.data[addr:], uint32(count))
	return &VectorCtor[T]{buf: buf, addr: addr, count: count}
}

// ConstructAt writes v into slot i. Each slot must be constructed exactly
// once. An index outside [0, Len()) is a builder bug, not untrusted input,
// and panics.
func (c *VectorCtor[T]) ConstructAt(i int, v T) {
	if i < 0 || i >= c.count {
		panic(fmt.Sprintf("flatvec: construct index %d out of range [0,%d)", i, c.count))
	}
	width := sizeOf[T]()
	off := int(c.addr) + slotsOffset(width) + i*width
	putScalar(c.buf.data[off:off+width], v)
}

// Address returns the offset of the region under construction.
func (c *VectorCtor[T]) Address() Address { return c.addr }

// Len returns the declared element count.
func (c *VectorCtor[T]) Len() int { return c.count }

// NestedCtor builds a vector whose elements are themselves vectors. Each
// slot stores the address of a separately allocated child region; the
// child's size is not known when the parent is laid out, so children are
// never embedded inline.
type NestedCtor[C Ctor] struct {
	alloc   *Allocator
	addr    Address
	count   int
	newElem func(*Allocator, int) C
}

// NewNestedCtor reserves a region of count address slots, writes the count
// header, and returns the builder. newElem allocates and returns the
// builder for one child region: pass NewVectorCtor[T] for a vector-of-
// scalar child, or Nested(...) to go one level deeper.
func NewNestedCtor[C Ctor](a *Allocator, count int, newElem func(*Allocator, int) C) *NestedCtor[C] {
	addr := a.Reserve(HeaderWidth+count*AddressWidth, HeaderWidth)
	binary.LittleEndian.PutUint32(a.Buffer().data[addr:], uint32(count))
	return &NestedCtor[C]{alloc: a, addr: addr, count: count, newElem: newElem}
}

// ConstructAt allocates a new child region of subCount elements elsewhere
// in the buffer, records its address in slot i, and returns the child's
// builder for the caller to fill in. This is the recursive step that gives
// arbitrary-depth nesting while keeping every region a flat array.
func (c *NestedCtor[C]) ConstructAt(i, subCount int) C {
	if i < 0 || i >= c.count {
		panic(fmt.Sprintf("flatvec: construct index %d out of range [0,%d)", i, c.count))
	}
	child := c.newElem(c.alloc, subCount)
	// Resolve the parent slot only after the child allocation: growth may
	// have reallocated the backing storage.
	off := int(c.addr) + HeaderWidth + i*AddressWidth
	binary.LittleEndian.PutUint32(c.alloc.Buffer().data[off:], uint32(child.Address()))
	return child
}

// Address returns the offset of the region under construction.
func (c *NestedCtor[C]) Address() Address { return c.addr }

// Len returns the declared element count.
func (c *NestedCtor[C]) Len() int { return c.count }

// Nested adapts a child builder constructor for use one nesting level
// deeper:
//
//	NewNestedCtor(a, n, Nested(NewVectorCtor[uint32]))
//
// builds a vector of vectors of vectors of uint32.
func Nested[C Ctor](newElem func(*Allocator, int) C) func(*Allocator, int) *NestedCtor[C] {
	return func(a *Allocator, count int) *NestedCtor[C] {
		return NewNestedCtor(a, count, newElem)
	}
}
