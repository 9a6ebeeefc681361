package flatvec

import "fmt"

// Kind enumerates the element kinds the format can encode. Scalar kinds are
// trivial: fixed-size, stored inline in their slot. KindVector is compound:
// variable-size, stored as an Address to a separately allocated region.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindVector
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindVector:  "vector",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Trivial reports whether values of this kind are stored inline in their
// slot.
func (k Kind) Trivial() bool {
	return k >= KindUint8 && k <= KindFloat64
}

var scalarWidths = [...]int{
	KindUint8:   1,
	KindUint16:  2,
	KindUint32:  4,
	KindUint64:  8,
	KindInt8:    1,
	KindInt16:   2,
	KindInt32:   4,
	KindInt64:   8,
	KindFloat32: 4,
	KindFloat64: 8,
}

// Type describes a vector element type at runtime: either a scalar kind or
// a vector of a nested element type. It is a small closed variant used
// where static dispatch is unavailable, e.g. by the verifier walking
// untrusted bytes. The zero value is invalid.
type Type struct {
	kind Kind
	elem *Type
}

// ScalarType returns the Type for a trivial kind. It panics if k is not a
// scalar kind.
func ScalarType(k Kind) Type {
	if !k.Trivial() {
		panic(fmt.Sprintf("flatvec: %s is not a scalar kind", k))
	}
	return Type{kind: k}
}

// VectorOf returns the Type of a vector with the given element type.
func VectorOf(elem Type) Type {
	if elem.kind == KindInvalid {
		panic("flatvec: vector of invalid element type")
	}
	return Type{kind: KindVector, elem: &elem}
}

// Kind returns the type's kind.
func (t Type) Kind() Kind {
	return t.kind
}

// Elem returns the element type of a vector type. It panics for scalar
// types.
func (t Type) Elem() Type {
	if t.kind != KindVector || t.elem == nil {
		panic(fmt.Sprintf("flatvec: %s has no element type", t.kind))
	}
	return *t.elem
}

// SlotWidth returns the encoded width of one slot holding a value of this
// type: the scalar's size for trivial types, AddressWidth for compound
// types.
func (t Type) SlotWidth() int {
	if t.kind == KindVector {
		return AddressWidth
	}
	return scalarWidths[t.kind]
}

// Align returns the required alignment of a slot of this type. Slots are
// naturally aligned, so this equals SlotWidth.
func (t Type) Align() int {
	return t.SlotWidth()
}

func (t Type) String() string {
	if t.kind == KindVector {
		return fmt.Sprintf("vector<%s>", t.Elem())
	}
	return t.kind.String()
}
