// Package verify validates an encoded flatvec region tree before it is
// trusted. The base format deliberately performs no construction-order or
// bounds checking; any buffer crossing a trust boundary (loaded from a file
// or received over a network) should pass verification before readers walk
// it with unchecked access.
//
// Verification checks, for every region reachable from the root: header and
// slot-array bounds, element alignment, and that no two regions overlap,
// which also rejects address cycles.
package verify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/flatvec"
)

// DefaultMaxDepth bounds nesting recursion so a malicious buffer cannot
// exhaust the stack.
const DefaultMaxDepth = 1024

var (
	// ErrOutOfBounds indicates a region header or slot array reaching past
	// the end of the buffer.
	ErrOutOfBounds = errors.New("region out of bounds")
	// ErrMisaligned indicates a region address that does not satisfy its
	// element alignment.
	ErrMisaligned = errors.New("misaligned region")
	// ErrOverlap indicates two reachable regions sharing bytes, including
	// address cycles.
	ErrOverlap = errors.New("overlapping regions")
	// ErrTooDeep indicates nesting beyond the configured depth limit.
	ErrTooDeep = errors.New("nesting too deep")
	// ErrNotVector indicates a root type that is not a vector.
	ErrNotVector = errors.New("root type must be a vector")
)

// Option configures a verification pass.
type Option func(*verifier)

// WithMaxDepth overrides the nesting depth limit.
func WithMaxDepth(d int) Option {
	return func(v *verifier) { v.maxDepth = d }
}

type verifier struct {
	data     []byte
	visited  *roaring.Bitmap
	maxDepth int
}

// Verify walks the region tree rooted at root, of vector type typ, within
// data. It returns nil if every reachable region is in bounds, aligned and
// disjoint from all others.
func Verify(data []byte, root flatvec.Address, typ flatvec.Type, opts ...Option) error {
	if typ.Kind() != flatvec.KindVector {
		return fmt.Errorf("%w: got %s", ErrNotVector, typ)
	}
	v := &verifier{
		data:     data,
		visited:  roaring.New(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v.region(root, typ, 0)
}

// slotsOffset mirrors the construction-side layout rule: the count header
// rounded up to the slot alignment.
func slotsOffset(width int) int {
	if width < flatvec.HeaderWidth {
		return flatvec.HeaderWidth
	}
	return (flatvec.HeaderWidth + width - 1) &^ (width - 1)
}

func (v *verifier) region(addr flatvec.Address, typ flatvec.Type, depth int) error {
	if depth > v.maxDepth {
		return fmt.Errorf("%w: depth %d at address 0x%x", ErrTooDeep, depth, addr)
	}

	elem := typ.Elem()
	width := elem.SlotWidth()

	base := uint64(addr)
	if base%uint64(flatvec.HeaderWidth) != 0 {
		return fmt.Errorf("%w: address 0x%x", ErrMisaligned, addr)
	}
	if base+flatvec.HeaderWidth > uint64(len(v.data)) {
		return fmt.Errorf("%w: header at 0x%x, buffer is %d bytes", ErrOutOfBounds, addr, len(v.data))
	}

	count := uint64(binary.LittleEndian.Uint32(v.data[addr:]))
	slots := base + uint64(slotsOffset(width))
	if slots%uint64(width) != 0 {
		return fmt.Errorf("%w: %s slots at 0x%x", ErrMisaligned, elem, slots)
	}
	end := slots + count*uint64(width)
	if end > uint64(len(v.data)) {
		return fmt.Errorf("%w: %d %s elements at 0x%x, buffer is %d bytes",
			ErrOutOfBounds, count, elem, addr, len(v.data))
	}

	if v.visited.IntersectsWithInterval(base, end) {
		return fmt.Errorf("%w: region [0x%x,0x%x)", ErrOverlap, base, end)
	}
	v.visited.AddRange(base, end)

	if elem.Kind() != flatvec.KindVector {
		return nil
	}
	for i := uint64(0); i < count; i++ {
		slot := slots + i*flatvec.AddressWidth
		child := flatvec.Address(binary.LittleEndian.Uint32(v.data[slot:]))
		if err := v.region(child, elem, depth+1); err != nil {
			return err
		}
	}
	return nil
}
