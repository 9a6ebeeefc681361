package exec

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flatvec/graph"
)

// scaleKernel multiplies operand 0 by the factor in attr 0 and writes the
// product into result 0.
func scaleKernel(_ context.Context, frame *Frame, node graph.NodeView) error {
	in, err := frame.Get(node.Operands().Index(0))
	if err != nil {
		return err
	}
	factor, err := node.Attrs().At(0)
	if err != nil {
		return err
	}
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = v * float32(factor)
	}
	return frame.Set(node.Results().Index(0), out)
}

func encodeView(t *testing.T, p *graph.Program) graph.View {
	t.Helper()
	buf, root, err := graph.Encode(p)
	require.NoError(t, err)
	return graph.At(buf.Bytes(), root)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("test.scale", scaleKernel))

	err := reg.Register("test.scale", scaleKernel)
	assert.ErrorIs(t, err, ErrDuplicateKernel)

	_, err = reg.Lookup("test.missing")
	assert.ErrorIs(t, err, ErrKernelNotFound)

	k, err := reg.Lookup("test.scale")
	require.NoError(t, err)
	assert.NotNil(t, k)

	assert.Equal(t, []string{"test.scale"}, reg.Names())
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("test.scale", scaleKernel)
	assert.Panics(t, func() { reg.MustRegister("test.scale", scaleKernel) })
}

func TestRunChain(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("test.scale", scaleKernel)

	// slot1 = slot0 * 2, slot2 = slot1 * 3.
	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.scale"},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{1}, Attrs: []uint64{2}},
			{Kernel: 0, Operands: []uint32{1}, Results: []uint32{2}, Attrs: []uint64{3}},
		},
	})

	frame := NewFrame(3)
	require.NoError(t, frame.Set(0, []float32{1, 2}))

	runner := NewRunner(reg)
	require.NoError(t, runner.Run(context.Background(), view, frame))

	out, err := frame.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 12}, out)
}

func TestRunIndependentNodesShareAWave(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("test.mark", func(_ context.Context, frame *Frame, node graph.NodeView) error {
		return frame.Set(node.Results().Index(0), []float32{1})
	})

	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.mark"},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{1}},
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{2}},
		},
	})

	frame := NewFrame(3)
	require.NoError(t, frame.Set(0, []float32{0}))

	// Both nodes read only frame inputs, so they share a wave and may run
	// concurrently.
	runner := NewRunner(reg)
	require.NoError(t, runner.Run(context.Background(), view, frame))

	out1, err := frame.Get(1)
	require.NoError(t, err)
	out2, err := frame.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, out1)
	assert.Equal(t, []float32{1}, out2)
}

func TestRunInPlaceUpdateDoesNotSelfDepend(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("test.double", func(_ context.Context, frame *Frame, node graph.NodeView) error {
		buf, err := frame.Get(node.Operands().Index(0))
		if err != nil {
			return err
		}
		for i := range buf {
			buf[i] *= 2
		}
		return nil
	})

	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.double"},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{0}},
		},
	})

	frame := NewFrame(1)
	require.NoError(t, frame.Set(0, []float32{3}))

	runner := NewRunner(reg)
	require.NoError(t, runner.Run(context.Background(), view, frame))

	out, err := frame.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{6}, out)
}

func TestRunFailsFastOnMissingKernel(t *testing.T) {
	var ran atomic.Bool

	reg := NewRegistry()
	reg.MustRegister("test.present", func(context.Context, *Frame, graph.NodeView) error {
		ran.Store(true)
		return nil
	})

	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.present", "test.absent"},
		Nodes: []graph.Node{
			{Kernel: 0},
			{Kernel: 1},
		},
	})

	runner := NewRunner(reg)
	err := runner.Run(context.Background(), view, NewFrame(0))
	assert.ErrorIs(t, err, ErrKernelNotFound)
	assert.False(t, ran.Load(), "no kernel may run when resolution fails")
}

func TestRunPropagatesKernelError(t *testing.T) {
	boom := errors.New("boom")

	reg := NewRegistry()
	reg.MustRegister("test.fail", func(context.Context, *Frame, graph.NodeView) error {
		return boom
	})

	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.fail"},
		Nodes:   []graph.Node{{Kernel: 0}},
	})

	err := NewRunner(reg).Run(context.Background(), view, NewFrame(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test.fail")
}

func TestScheduleRejectsSlotConflict(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("test.scale", scaleKernel)

	view := encodeView(t, &graph.Program{
		Kernels: []string{"test.scale"},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{1}, Attrs: []uint64{1}},
			{Kernel: 0, Operands: []uint32{0}, Results: []uint32{1}, Attrs: []uint64{1}},
		},
	})

	err := NewRunner(reg).Run(context.Background(), view, NewFrame(2))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestFrameBounds(t *testing.T) {
	frame := NewFrame(1)

	assert.ErrorIs(t, frame.Set(5, nil), ErrSlotRange)

	_, err := frame.Get(5)
	assert.ErrorIs(t, err, ErrSlotRange)

	_, err = frame.Get(0)
	assert.ErrorIs(t, err, ErrSlotUnset)
}
