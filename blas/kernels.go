package blas

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/flatvec/exec"
	"github.com/hupe1980/flatvec/graph"
)

// Backend is the vendor library surface the kernels call into. Buffers are
// already materialized; implementations translate them into device calls
// and report a vendor status.
type Backend interface {
	// Axpy computes y = alpha*x + y over n elements with the given strides.
	Axpy(ctx context.Context, n int, alpha float32, x []float32, incx int, y []float32, incy int) Status

	// Gemm computes C = alpha*op(A)*op(B) + beta*C for column-major
	// m-by-k A, k-by-n B and m-by-n C, where op transposes when the
	// corresponding flag is set.
	Gemm(ctx context.Context, transA, transB bool, m, n, k int, alpha float32,
		a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) Status
}

// Kernel names registered by RegisterKernels.
const (
	KernelAxpyF32 = "blas.axpy.f32"
	KernelGemmF32 = "blas.gemm.f32"
)

// Axpy node encoding: operands [x, y], results [y],
// attrs [n, bits(alpha)].
const (
	axpyAttrN = iota
	axpyAttrAlpha
	axpyNumAttrs
)

// Gemm node encoding: operands [a, b, c], results [c],
// attrs [m, n, k, bits(alpha), bits(beta), transA, transB].
const (
	gemmAttrM = iota
	gemmAttrN
	gemmAttrK
	gemmAttrAlpha
	gemmAttrBeta
	gemmAttrTransA
	gemmAttrTransB
	gemmNumAttrs
)

// RegisterKernels adds the BLAS bridge kernels to reg, bound to backend.
func RegisterKernels(reg *exec.Registry, backend Backend) error {
	if err := reg.Register(KernelAxpyF32, axpyKernel(backend)); err != nil {
		return err
	}
	return reg.Register(KernelGemmF32, gemmKernel(backend))
}

func attrFloat(a uint64) float32 {
	return math.Float32frombits(uint32(a))
}

func axpyKernel(backend Backend) exec.Kernel {
	return func(ctx context.Context, frame *exec.Frame, node graph.NodeView) error {
		attrs := node.Attrs()
		if attrs.Len() != axpyNumAttrs {
			return fmt.Errorf("axpy: %d attrs, want %d", attrs.Len(), axpyNumAttrs)
		}
		x, err := frame.Get(node.Operands().Index(0))
		if err != nil {
			return err
		}
		y, err := frame.Get(node.Operands().Index(1))
		if err != nil {
			return err
		}

		n := int(attrs.Index(axpyAttrN))
		alpha := attrFloat(attrs.Index(axpyAttrAlpha))
		return statusToError("axpy", backend.Axpy(ctx, n, alpha, x, 1, y, 1))
	}
}

func gemmKernel(backend Backend) exec.Kernel {
	return func(ctx context.Context, frame *exec.Frame, node graph.NodeView) error {
		attrs := node.Attrs()
		if attrs.Len() != gemmNumAttrs {
			return fmt.Errorf("gemm: %d attrs, want %d", attrs.Len(), gemmNumAttrs)
		}
		a, err := frame.Get(node.Operands().Index(0))
		if err != nil {
			return err
		}
		b, err := frame.Get(node.Operands().Index(1))
		if err != nil {
			return err
		}
		c, err := frame.Get(node.Operands().Index(2))
		if err != nil {
			return err
		}

		m := int(attrs.Index(gemmAttrM))
		n := int(attrs.Index(gemmAttrN))
		k := int(attrs.Index(gemmAttrK))
		alpha := attrFloat(attrs.Index(gemmAttrAlpha))
		beta := attrFloat(attrs.Index(gemmAttrBeta))
		transA := attrs.Index(gemmAttrTransA) != 0
		transB := attrs.Index(gemmAttrTransB) != 0

		lda, ldb, ldc := m, k, m
		if transA {
			lda = k
		}
		if transB {
			ldb = n
		}
		return statusToError("gemm", backend.Gemm(ctx, transA, transB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc))
	}
}
