// Package graph encodes compiled execution graphs into the flatvec format.
// A program is a kernel-name table plus a list of nodes referencing value
// slots; the encoded form is a forest of vectors a runtime walks directly
// from memory or from a memory-mapped container, without a decode pass.
package graph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/flatvec"
)

// Section indices within the root section table.
const (
	sectionKernels = iota // Vector<Vector<uint8>>: kernel names
	sectionNodeKernels    // Vector<uint32>: per-node kernel-table index
	sectionOperands       // Vector<Vector<uint32>>: per-node operand slots
	sectionResults        // Vector<Vector<uint32>>: per-node result slots
	sectionAttrs          // Vector<Vector<uint64>>: per-node immediates
	numSections
)

var (
	// ErrKernelIndex indicates a node referencing a kernel-table index that
	// does not exist.
	ErrKernelIndex = errors.New("kernel index out of range")
	// ErrMalformed indicates an encoded program whose sections are missing
	// or inconsistent.
	ErrMalformed = errors.New("malformed program")
)

// Node is one operation of a compiled program. Operands and Results name
// value slots in the runtime frame; Attrs carry kernel-specific immediate
// attributes.
type Node struct {
	Kernel   int
	Operands []uint32
	Results  []uint32
	Attrs    []uint64
}

// Program is the builder-side representation of a compiled execution
// graph.
type Program struct {
	Kernels []string
	Nodes   []Node
}

// Encode lays the program out as a forest of vector regions in a fresh
// buffer and returns the buffer together with the root address of the
// section table.
func Encode(p *Program) (*flatvec.Buffer, flatvec.Address, error) {
	for i, n := range p.Nodes {
		if n.Kernel < 0 || n.Kernel >= len(p.Kernels) {
			return nil, 0, fmt.Errorf("%w: node %d references kernel %d of %d", ErrKernelIndex, i, n.Kernel, len(p.Kernels))
		}
	}

	buf := flatvec.NewBuffer()
	alloc := flatvec.NewAllocator(buf)

	root := flatvec.NewVectorCtor[uint32](alloc, numSections)

	{
		ctor := flatvec.NewNestedCtor(alloc, len(p.Kernels), flatvec.NewVectorCtor[uint8])
		for i, name := range p.Kernels {
			inner := ctor.ConstructAt(i, len(name))
			for j := 0; j < len(name); j++ {
				inner.ConstructAt(j, name[j])
			}
		}
		root.ConstructAt(sectionKernels, uint32(ctor.Address()))
	}

	{
		ctor := flatvec.NewVectorCtor[uint32](alloc, len(p.Nodes))
		for i, n := range p.Nodes {
			ctor.ConstructAt(i, uint32(n.Kernel))
		}
		root.ConstructAt(sectionNodeKernels, uint32(ctor.Address()))
	}

	encodeSlotLists := func(section int, pick func(Node) []uint32) {
		ctor := flatvec.NewNestedCtor(alloc, len(p.Nodes), flatvec.NewVectorCtor[uint32])
		for i, n := range p.Nodes {
			inner := ctor.ConstructAt(i, len(pick(n)))
			for j, slot := range pick(n) {
				inner.ConstructAt(j, slot)
			}
		}
		root.ConstructAt(section, uint32(ctor.Address()))
	}
	encodeSlotLists(sectionOperands, func(n Node) []uint32 { return n.Operands })
	encodeSlotLists(sectionResults, func(n Node) []uint32 { return n.Results })

	{
		ctor := flatvec.NewNestedCtor(alloc, len(p.Nodes), flatvec.NewVectorCtor[uint64])
		for i, n := range p.Nodes {
			inner := ctor.ConstructAt(i, len(n.Attrs))
			for j, a := range n.Attrs {
				inner.ConstructAt(j, a)
			}
		}
		root.ConstructAt(sectionAttrs, uint32(ctor.Address()))
	}

	return buf, root.Address(), nil
}
