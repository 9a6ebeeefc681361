package flatvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T Scalar](t *testing.T, values []T) {
	t.Helper()

	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewVectorCtor[T](alloc, len(values))
	for i, v := range values {
		ctor.ConstructAt(i, v)
	}

	vec := VectorAt[T](buf.Bytes(), ctor.Address())
	require.Equal(t, len(values), vec.Len())
	for i, want := range values {
		got, err := vec.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	if len(values) == 0 {
		assert.Nil(t, vec.Span().Collect())
	} else {
		assert.Equal(t, values, vec.Span().Collect())
	}
}

func TestVectorRoundTripScalars(t *testing.T) {
	roundTrip(t, []uint8{0, 1, 255})
	roundTrip(t, []uint16{0, 65535})
	roundTrip(t, []uint32{0, 1, 2, 3})
	roundTrip(t, []uint64{1 << 40, 0, 1<<64 - 1})
	roundTrip(t, []int8{-128, 0, 127})
	roundTrip(t, []int32{-1, 0, 1})
	roundTrip(t, []int64{-1 << 40, 1 << 40})
	roundTrip(t, []float32{-1.5, 0, 3.25})
	roundTrip(t, []float64{-1.5e100, 0, 3.25e-100})
	roundTrip(t, []uint32{})
}

func TestVectorRoundTripLong(t *testing.T) {
	// Long enough to force buffer growth mid-construction.
	values := make([]uint64, 1000)
	for i := range values {
		values[i] = uint64(i) * 3
	}
	roundTrip(t, values)
}

func TestVectorRaw(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewVectorCtor[float64](alloc, 3)
	ctor.ConstructAt(0, 1.5)
	ctor.ConstructAt(1, 2.5)
	ctor.ConstructAt(2, 3.5)

	vec := VectorAt[float64](buf.Bytes(), ctor.Address())
	raw, err := vec.Raw()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, raw)
}

func TestVectorRawEmpty(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewVectorCtor[uint32](alloc, 0)
	vec := VectorAt[uint32](buf.Bytes(), ctor.Address())

	raw, err := vec.Raw()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestNestedVectorDepthThree(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	// vector<vector<vector<uint32>>> with shape [[ [1,2], [] ], [ [3] ]].
	root := NewNestedCtor(alloc, 2, Nested(NewVectorCtor[uint32]))

	{
		mid := root.ConstructAt(0, 2)
		leaf := mid.ConstructAt(0, 2)
		leaf.ConstructAt(0, 1)
		leaf.ConstructAt(1, 2)
		mid.ConstructAt(1, 0)
	}
	{
		mid := root.ConstructAt(1, 1)
		leaf := mid.ConstructAt(0, 1)
		leaf.ConstructAt(0, 3)
	}

	v := NestedVectorAt(buf.Bytes(), root.Address(), NestedOf(VectorAt[uint32]))
	require.Equal(t, 2, v.Len())

	m0 := v.Index(0)
	require.Equal(t, 2, m0.Len())
	assert.Equal(t, []uint32{1, 2}, m0.Index(0).Span().Collect())
	assert.Equal(t, 0, m0.Index(1).Len())

	m1 := v.Index(1)
	require.Equal(t, 1, m1.Len())
	assert.Equal(t, []uint32{3}, m1.Index(0).Span().Collect())
}

func TestNestedVectorCheckedAccess(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewNestedCtor(alloc, 1, NewVectorCtor[uint32])
	ctor.ConstructAt(0, 0)

	v := NestedVectorAt(buf.Bytes(), ctor.Address(), VectorAt[uint32])

	_, err := v.At(0)
	require.NoError(t, err)
	_, err = v.At(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConstructAtOutOfRangePanics(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewVectorCtor[uint32](alloc, 1)
	assert.Panics(t, func() { ctor.ConstructAt(1, 0) })
	assert.Panics(t, func() { ctor.ConstructAt(-1, 0) })

	nested := NewNestedCtor(alloc, 1, NewVectorCtor[uint32])
	assert.Panics(t, func() { nested.ConstructAt(2, 0) })
}

func TestVectorAtErrorMessageCarriesBounds(t *testing.T) {
	buf := NewBuffer()
	alloc := NewAllocator(buf)

	ctor := NewVectorCtor[uint8](alloc, 2)
	ctor.ConstructAt(0, 1)
	ctor.ConstructAt(1, 2)

	vec := VectorAt[uint8](buf.Bytes(), ctor.Address())
	_, err := vec.At(5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 5")
	assert.Contains(t, err.Error(), "len 2")
}
