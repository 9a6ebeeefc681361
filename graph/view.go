package graph

import (
	"fmt"

	"github.com/hupe1980/flatvec"
	"github.com/hupe1980/flatvec/verify"
)

// View is a zero-deserialization reader over an encoded program. It keeps
// only the section table; nodes and names are resolved lazily per access.
// The view borrows the underlying bytes and must not outlive them.
type View struct {
	data     []byte
	sections flatvec.Vector[uint32]
}

// At roots a View at the program encoded at root within data. The bytes
// are trusted as-is; call Check first for input crossing a trust boundary.
func At(data []byte, root flatvec.Address) View {
	return View{
		data:     data,
		sections: flatvec.VectorAt[uint32](data, root),
	}
}

func (v View) section(i int) flatvec.Address {
	return flatvec.Address(v.sections.Index(i))
}

// NumKernels returns the size of the kernel-name table.
func (v View) NumKernels() int {
	return flatvec.NestedVectorAt(v.data, v.section(sectionKernels), flatvec.VectorAt[uint8]).Len()
}

// KernelName returns entry i of the kernel-name table. The returned string
// is a copy; use it freely after the buffer is gone.
func (v View) KernelName(i int) string {
	names := flatvec.NestedVectorAt(v.data, v.section(sectionKernels), flatvec.VectorAt[uint8])
	raw, err := names.Index(i).Raw()
	if err != nil {
		// uint8 slots are always aligned; this cannot fail on a verified
		// buffer.
		panic(fmt.Sprintf("graph: kernel name %d: %v", i, err))
	}
	return string(raw)
}

// NumNodes returns the node count.
func (v View) NumNodes() int {
	return flatvec.VectorAt[uint32](v.data, v.section(sectionNodeKernels)).Len()
}

// Node returns the lazily materialized view of node i.
func (v View) Node(i int) NodeView {
	return NodeView{view: v, index: i}
}

// NodeView is a zero-copy view of one node of an encoded program.
type NodeView struct {
	view  View
	index int
}

// Index returns the node's position in the program.
func (n NodeView) Index() int { return n.index }

// KernelIndex returns the node's index into the kernel-name table.
func (n NodeView) KernelIndex() int {
	return int(flatvec.VectorAt[uint32](n.view.data, n.view.section(sectionNodeKernels)).Index(n.index))
}

// KernelName returns the name of the kernel the node invokes.
func (n NodeView) KernelName() string {
	return n.view.KernelName(n.KernelIndex())
}

// Operands returns the node's operand slot list.
func (n NodeView) Operands() flatvec.Span[uint32] {
	return flatvec.NestedVectorAt(n.view.data, n.view.section(sectionOperands), flatvec.VectorAt[uint32]).Index(n.index).Span()
}

// Results returns the node's result slot list.
func (n NodeView) Results() flatvec.Span[uint32] {
	return flatvec.NestedVectorAt(n.view.data, n.view.section(sectionResults), flatvec.VectorAt[uint32]).Index(n.index).Span()
}

// Attrs returns the node's immediate attributes.
func (n NodeView) Attrs() flatvec.Span[uint64] {
	return flatvec.NestedVectorAt(n.view.data, n.view.section(sectionAttrs), flatvec.VectorAt[uint64]).Index(n.index).Span()
}

// Decode materializes the encoded program back into builder form, mainly
// for tooling and round-trip tests; the runtime reads the view directly.
func Decode(data []byte, root flatvec.Address) (*Program, error) {
	if err := Check(data, root); err != nil {
		return nil, err
	}
	v := At(data, root)

	p := &Program{
		Kernels: make([]string, v.NumKernels()),
		Nodes:   make([]Node, v.NumNodes()),
	}
	for i := range p.Kernels {
		p.Kernels[i] = v.KernelName(i)
	}
	for i := range p.Nodes {
		n := v.Node(i)
		p.Nodes[i] = Node{
			Kernel:   n.KernelIndex(),
			Operands: n.Operands().Collect(),
			Results:  n.Results().Collect(),
			Attrs:    n.Attrs().Collect(),
		}
	}
	return p, nil
}

var (
	u8Type  = flatvec.ScalarType(flatvec.KindUint8)
	u32Type = flatvec.ScalarType(flatvec.KindUint32)
	u64Type = flatvec.ScalarType(flatvec.KindUint64)

	sectionTypes = [numSections]flatvec.Type{
		sectionKernels:     flatvec.VectorOf(flatvec.VectorOf(u8Type)),
		sectionNodeKernels: flatvec.VectorOf(u32Type),
		sectionOperands:    flatvec.VectorOf(flatvec.VectorOf(u32Type)),
		sectionResults:     flatvec.VectorOf(flatvec.VectorOf(u32Type)),
		sectionAttrs:       flatvec.VectorOf(flatvec.VectorOf(u64Type)),
	}
)

// ProgramType returns the type descriptor of the program's root section
// table. The table's entries address heterogeneous section regions, so the
// descriptor covers the table itself; SectionTypes describes the regions it
// points at.
func ProgramType() flatvec.Type {
	return flatvec.VectorOf(u32Type)
}

// SectionTypes returns the type descriptors of the program's sections in
// table order, for callers running their own verification over a loaded
// container.
func SectionTypes() []flatvec.Type {
	types := sectionTypes
	return types[:]
}

// Check verifies an encoded program before it is trusted: the section
// table and every section region must be in bounds and well formed, the
// per-node sections must agree on the node count, and every node's kernel
// index must resolve.
func Check(data []byte, root flatvec.Address) error {
	if err := verify.Verify(data, root, ProgramType()); err != nil {
		return fmt.Errorf("section table: %w", err)
	}
	sections := flatvec.VectorAt[uint32](data, root)
	if sections.Len() != numSections {
		return fmt.Errorf("%w: %d sections, want %d", ErrMalformed, sections.Len(), numSections)
	}
	for i, typ := range sectionTypes {
		if err := verify.Verify(data, flatvec.Address(sections.Index(i)), typ); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}

	v := At(data, root)
	numNodes := v.NumNodes()
	for _, section := range []int{sectionOperands, sectionResults, sectionAttrs} {
		n := flatvec.NestedVectorAt(data, v.section(section), flatvec.VectorAt[uint32]).Len()
		if n != numNodes {
			return fmt.Errorf("%w: section %d has %d entries, want %d", ErrMalformed, section, n, numNodes)
		}
	}

	numKernels := v.NumKernels()
	for i := 0; i < numNodes; i++ {
		if k := v.Node(i).KernelIndex(); k >= numKernels {
			return fmt.Errorf("%w: node %d references kernel %d of %d", ErrKernelIndex, i, k, numKernels)
		}
	}
	return nil
}
