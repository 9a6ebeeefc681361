package flatvec_test

import (
	"fmt"

	"github.com/hupe1980/flatvec"
)

// Example_flatVector demonstrates constructing and reading a vector of
// trivial elements.
func Example_flatVector() {
	alloc := flatvec.NewAllocator(flatvec.NewBuffer())

	ctor := flatvec.NewVectorCtor[uint32](alloc, 3)
	for i := 0; i < 3; i++ {
		ctor.ConstructAt(i, uint32(i*10))
	}

	vec := flatvec.VectorAt[uint32](alloc.Buffer().Bytes(), ctor.Address())
	for v := range vec.Span().All() {
		fmt.Println(v)
	}
	// Output:
	// 0
	// 10
	// 20
}

// Example_nestedVector demonstrates a vector of vectors: compound slots
// hold offsets, so inner vectors live in their own regions.
func Example_nestedVector() {
	alloc := flatvec.NewAllocator(flatvec.NewBuffer())

	ctor := flatvec.NewNestedCtor(alloc, 2, flatvec.NewVectorCtor[uint16])
	inner := ctor.ConstructAt(0, 2)
	inner.ConstructAt(0, 7)
	inner.ConstructAt(1, 8)
	ctor.ConstructAt(1, 0)

	vec := flatvec.NestedVectorAt(alloc.Buffer().Bytes(), ctor.Address(), flatvec.VectorAt[uint16])
	for i := 0; i < vec.Len(); i++ {
		fmt.Println(vec.Index(i).Span().Collect())
	}
	// Output:
	// [7 8]
	// []
}
