package flatvec

import (
	"fmt"
	"iter"
)

// Span is a lightweight, read-only projection of a vector view: bounds-
// known random access plus forward iteration, without copying the
// underlying bytes. For scalar elements it is effectively a typed window;
// for nested elements it materializes child views on demand per access.
//
// A Span borrows from the Buffer it was read from and must not outlive it.
type Span[E any] struct {
	n     int
	index func(int) E
}

// Len returns the number of elements.
func (s Span[E]) Len() int { return s.n }

// At returns element i, or ErrOutOfRange if i is outside the span's
// bounds.
func (s Span[E]) At(i int) (E, error) {
	if i < 0 || i >= s.n {
		var zero E
		return zero, fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, s.n)
	}
	return s.index(i), nil
}

// Index returns element i without bounds checking. The caller guarantees
// 0 <= i < Len().
func (s Span[E]) Index(i int) E { return s.index(i) }

// All iterates the span front to back. The span is a pure view over
// immutable storage, so re-iterating yields the same elements.
func (s Span[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(s.index(i)) {
				return
			}
		}
	}
}

// Collect copies the elements into a fresh slice, mainly for comparisons
// against literal sequences. An empty span collects to nil.
func (s Span[E]) Collect() []E {
	if s.n == 0 {
		return nil
	}
	out := make([]E, s.n)
	for i := range out {
		out[i] = s.index(i)
	}
	return out
}
