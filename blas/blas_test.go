package blas

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flatvec/exec"
	"github.com/hupe1980/flatvec/graph"
)

// fakeBackend runs the routines in pure Go so the bridge kernels can be
// exercised without a vendor library.
type fakeBackend struct{}

func (fakeBackend) Axpy(_ context.Context, n int, alpha float32, x []float32, incx int, y []float32, incy int) Status {
	if n < 0 || incx != 1 || incy != 1 || len(x) < n || len(y) < n {
		return StatusInvalidValue
	}
	for i := 0; i < n; i++ {
		y[i] += alpha * x[i]
	}
	return StatusSuccess
}

func (fakeBackend) Gemm(_ context.Context, transA, transB bool, m, n, k int, alpha float32,
	a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) Status {
	at := func(i, j int) float32 {
		if transA {
			return a[j+i*lda]
		}
		return a[i+j*lda]
	}
	bt := func(i, j int) float32 {
		if transB {
			return b[j+i*ldb]
		}
		return b[i+j*ldb]
	}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			var sum float32
			for l := 0; l < k; l++ {
				sum += at(i, l) * bt(l, j)
			}
			c[i+j*ldc] = alpha*sum + beta*c[i+j*ldc]
		}
	}
	return StatusSuccess
}

// failingBackend reports the same status for every call.
type failingBackend struct {
	status Status
}

func (f failingBackend) Axpy(context.Context, int, float32, []float32, int, []float32, int) Status {
	return f.status
}

func (f failingBackend) Gemm(context.Context, bool, bool, int, int, int, float32, []float32, int, []float32, int, float32, []float32, int) Status {
	return f.status
}

func newRegistry(t *testing.T, backend Backend) *exec.Registry {
	t.Helper()
	reg := exec.NewRegistry()
	require.NoError(t, RegisterKernels(reg, backend))
	return reg
}

func encodeView(t *testing.T, p *graph.Program) graph.View {
	t.Helper()
	buf, root, err := graph.Encode(p)
	require.NoError(t, err)
	return graph.At(buf.Bytes(), root)
}

func bits(f float32) uint64 {
	return uint64(math.Float32bits(f))
}

func TestRegisterKernels(t *testing.T) {
	reg := newRegistry(t, fakeBackend{})
	assert.Equal(t, []string{KernelAxpyF32, KernelGemmF32}, reg.Names())

	err := RegisterKernels(reg, fakeBackend{})
	assert.ErrorIs(t, err, exec.ErrDuplicateKernel)
}

func TestAxpyProgram(t *testing.T) {
	view := encodeView(t, &graph.Program{
		Kernels: []string{KernelAxpyF32},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0, 1}, Results: []uint32{1}, Attrs: []uint64{3, bits(2)}},
		},
	})

	frame := exec.NewFrame(2)
	require.NoError(t, frame.Set(0, []float32{1, 2, 3}))
	require.NoError(t, frame.Set(1, []float32{10, 20, 30}))

	runner := exec.NewRunner(newRegistry(t, fakeBackend{}))
	require.NoError(t, runner.Run(context.Background(), view, frame))

	y, err := frame.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{12, 24, 36}, y)
}

func TestGemmProgram(t *testing.T) {
	// C = A*B for 2x2 column-major matrices.
	view := encodeView(t, &graph.Program{
		Kernels: []string{KernelGemmF32},
		Nodes: []graph.Node{
			{
				Kernel:   0,
				Operands: []uint32{0, 1, 2},
				Results:  []uint32{2},
				Attrs:    []uint64{2, 2, 2, bits(1), bits(0), 0, 0},
			},
		},
	})

	frame := exec.NewFrame(3)
	require.NoError(t, frame.Set(0, []float32{1, 3, 2, 4})) // [[1 2] [3 4]]
	require.NoError(t, frame.Set(1, []float32{5, 7, 6, 8})) // [[5 6] [7 8]]
	require.NoError(t, frame.Set(2, make([]float32, 4)))

	runner := exec.NewRunner(newRegistry(t, fakeBackend{}))
	require.NoError(t, runner.Run(context.Background(), view, frame))

	c, err := frame.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{19, 43, 22, 50}, c)
}

func TestBackendStatusBecomesError(t *testing.T) {
	view := encodeView(t, &graph.Program{
		Kernels: []string{KernelAxpyF32},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0, 1}, Results: []uint32{1}, Attrs: []uint64{1, bits(1)}},
		},
	})

	frame := exec.NewFrame(2)
	require.NoError(t, frame.Set(0, []float32{1}))
	require.NoError(t, frame.Set(1, []float32{1}))

	runner := exec.NewRunner(newRegistry(t, failingBackend{status: StatusExecutionFailed}))
	err := runner.Run(context.Background(), view, frame)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "axpy", statusErr.Op)
	assert.Equal(t, StatusExecutionFailed, statusErr.Status)
	assert.Contains(t, err.Error(), "execution failed")
}

func TestAxpyRejectsBadAttrCount(t *testing.T) {
	view := encodeView(t, &graph.Program{
		Kernels: []string{KernelAxpyF32},
		Nodes: []graph.Node{
			{Kernel: 0, Operands: []uint32{0, 1}, Results: []uint32{1}, Attrs: []uint64{1}},
		},
	})

	frame := exec.NewFrame(2)
	require.NoError(t, frame.Set(0, []float32{1}))
	require.NoError(t, frame.Set(1, []float32{1}))

	err := exec.NewRunner(newRegistry(t, fakeBackend{})).Run(context.Background(), view, frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attrs")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "execution failed", StatusExecutionFailed.String())
	assert.Equal(t, "status(99)", Status(99).String())
}
