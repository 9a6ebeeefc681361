package flatvec

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Vector is a read-only view of a vector-of-scalars region. data is the
// whole encoded buffer; addr roots the region within it. The view borrows
// the underlying bytes and must not outlive them.
type Vector[T Scalar] struct {
	data []byte
	addr Address
}

// VectorAt interprets addr within data as a vector of scalar T. No decoding
// happens; element access resolves slots directly from the bytes.
func VectorAt[T Scalar](data []byte, addr Address) Vector[T] {
	return Vector[T]{data: data, addr: addr}
}

// Len returns the element count from the region header.
func (v Vector[T]) Len() int {
	return int(binary.LittleEndian.Uint32(v.data[v.addr:]))
}

// At returns element i, or ErrOutOfRange if i is outside the vector's
// bounds.
func (v Vector[T]) At(i int) (T, error) {
	if n := v.Len(); i < 0 || i >= n {
		var zero T
		return zero, fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, n)
	}
	return v.Index(i), nil
}

// Index returns element i without bounds checking. The caller guarantees
// 0 <= i < Len(); this is the escape hatch for performance-critical paths
// that have already established bounds.
func (v Vector[T]) Index(i int) T {
	width := sizeOf[T]()
	off := int(v.addr) + slotsOffset(width) + i*width
	return getScalar[T](v.data[off : off+width])
}

// Raw returns the slot array as a typed window over the underlying bytes
// without copying. It fails if the storage is not naturally aligned for T
// in memory; callers that cannot tolerate that fall back to Index/Span.
func (v Vector[T]) Raw() ([]T, error) {
	n := v.Len()
	if n == 0 {
		return nil, nil
	}
	width := sizeOf[T]()
	off := int(v.addr) + slotsOffset(width)
	b := v.data[off : off+n*width]
	if err := validateAlignment(unsafe.Pointer(&b[0]), width); err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// Span returns the read-only iterable projection of the vector.
func (v Vector[T]) Span() Span[T] {
	return Span[T]{n: v.Len(), index: v.Index}
}

// NestedVector is a read-only view of a vector whose elements are
// themselves vectors. Child views are materialized lazily, per access; the
// child regions are not walked until indexed.
type NestedVector[V any] struct {
	data   []byte
	addr   Address
	elemAt func([]byte, Address) V
}

// NestedVectorAt interprets addr within data as a vector of compound
// elements. elemAt constructs the view for one child region: pass
// VectorAt[T] for a vector of vectors of T, or NestedOf(...) to go one
// level deeper.
func NestedVectorAt[V any](data []byte, addr Address, elemAt func([]byte, Address) V) NestedVector[V] {
	return NestedVector[V]{data: data, addr: addr, elemAt: elemAt}
}

// Len returns the element count from the region header.
func (v NestedVector[V]) Len() int {
	return int(binary.LittleEndian.Uint32(v.data[v.addr:]))
}

// At returns the view of element i, or ErrOutOfRange if i is outside the
// vector's bounds.
func (v NestedVector[V]) At(i int) (V, error) {
	if n := v.Len(); i < 0 || i >= n {
		var zero V
		return zero, fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, n)
	}
	return v.Index(i), nil
}

// Index returns the view of element i without bounds checking. The caller
// guarantees 0 <= i < Len().
func (v NestedVector[V]) Index(i int) V {
	off := int(v.addr) + HeaderWidth + i*AddressWidth
	child := Address(binary.LittleEndian.Uint32(v.data[off:]))
	return v.elemAt(v.data, child)
}

// Span returns the read-only iterable projection of the vector. Child views
// are still materialized on demand per access.
func (v NestedVector[V]) Span() Span[V] {
	return Span[V]{n: v.Len(), index: v.Index}
}

// NestedOf adapts a child view constructor one nesting level deeper,
// mirroring Nested on the construction side:
//
//	NestedVectorAt(data, root, NestedOf(VectorAt[uint32]))
//
// reads a vector of vectors of vectors of uint32.
func NestedOf[V any](elemAt func([]byte, Address) V) func([]byte, Address) NestedVector[V] {
	return func(data []byte, addr Address) NestedVector[V] {
		return NestedVectorAt(data, addr, elemAt)
	}
}
