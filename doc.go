// Package flatvec implements an append-only, offset-addressed binary
// container for nested variable-length sequences. A tree of vectors is built
// once into a flat byte buffer and later read back with zero deserialization
// cost: no parsing pass, no allocation, direct indexed access. The format is
// the substrate used to persist compiled execution graphs that a runtime
// walks directly from memory or from a memory-mapped file.
//
// # Layout
//
// Every vector occupies one contiguous region:
//
//	[count : uint32][padding to element alignment][slot_0]...[slot_{count-1}]
//
// For trivial (fixed-size scalar) element types the slots hold the value
// bytes inline at a fixed stride. For compound element types (nested
// vectors) each slot holds a uint32 Address pointing at a separately
// allocated child region built by the same rule. A whole buffer is a forest
// of such regions; a root address plus the root type is enough to decode
// everything.
//
// Addresses are byte offsets into the Buffer, never raw pointers. Buffer
// growth may reallocate the backing storage, but an offset keeps meaning the
// same logical bytes, so offsets are the only thing that may be retained
// across construction steps.
//
// # Construction
//
//	buf := flatvec.NewBuffer()
//	alloc := flatvec.NewAllocator(buf)
//
//	ctor := flatvec.NewVectorCtor[uint32](alloc, 4)
//	for i := 0; i < 4; i++ {
//		ctor.ConstructAt(i, uint32(i))
//	}
//
//	vec := flatvec.VectorAt[uint32](buf.Bytes(), ctor.Address())
//	span := vec.Span()
//
// Nested vectors allocate their child regions through the same allocator:
//
//	outer := flatvec.NewNestedCtor(alloc, 3, flatvec.NewVectorCtor[uint32])
//	inner := outer.ConstructAt(0, 2) // child Vector<uint32> of len 2
//	inner.ConstructAt(0, 7)
//	inner.ConstructAt(1, 8)
//
// Construction and reading are strictly phase-separated. Every slot must be
// constructed exactly once before any region of the tree is read; the
// builders do not verify this (see package verify for a validation pass over
// untrusted bytes). Once construction finishes the buffer is logically
// immutable and safe for unrestricted concurrent reading.
package flatvec
