package flatvec

// Address is an unsigned byte offset into a Buffer's storage. Unlike a raw
// pointer it stays valid across buffer growth: growth reallocates the
// backing array but never changes what an offset means relative to the
// start.
type Address uint32

const (
	// HeaderWidth is the encoded width of a vector's count header.
	HeaderWidth = 4

	// AddressWidth is the encoded width of an Address in a compound slot.
	AddressWidth = 4
)

// alignUp rounds n up to the next multiple of align. align must be a power
// of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
