package exec

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSlotRange is returned for a slot index outside the frame.
	ErrSlotRange = errors.New("slot out of range")
	// ErrSlotUnset is returned when reading a slot no one has produced.
	ErrSlotUnset = errors.New("slot not set")
)

// Frame holds the materialized value slots a program reads and writes:
// fixed-shape float32 buffers, indexed by the slot ids the encoded nodes
// carry. Inputs are set by the caller before Run; kernels produce the
// rest.
//
// Set and Get are guarded so kernels of independent nodes may touch
// disjoint slots concurrently.
type Frame struct {
	mu    sync.RWMutex
	slots [][]float32
}

// NewFrame creates a frame with n empty slots.
func NewFrame(n int) *Frame {
	return &Frame{slots: make([][]float32, n)}
}

// Len returns the number of slots.
func (f *Frame) Len() int {
	return len(f.slots)
}

// Set stores v in the given slot.
func (f *Frame) Set(slot uint32, v []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(slot) >= len(f.slots) {
		return fmt.Errorf("%w: slot %d of %d", ErrSlotRange, slot, len(f.slots))
	}
	f.slots[slot] = v
	return nil
}

// Get returns the buffer in the given slot.
func (f *Frame) Get(slot uint32) ([]float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if int(slot) >= len(f.slots) {
		return nil, fmt.Errorf("%w: slot %d of %d", ErrSlotRange, slot, len(f.slots))
	}
	v := f.slots[slot]
	if v == nil {
		return nil, fmt.Errorf("%w: slot %d", ErrSlotUnset, slot)
	}
	return v, nil
}
