// Package exec looks up kernels by name and drives them over an encoded
// program view, with already-materialized arguments held in a Frame. It is
// the call surface between the persisted graph format and whatever backend
// implements the kernels.
package exec

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/flatvec/graph"
)

var (
	// ErrKernelNotFound is returned by Lookup for an unregistered name.
	ErrKernelNotFound = errors.New("kernel not found")
	// ErrDuplicateKernel is returned when registering a name twice.
	ErrDuplicateKernel = errors.New("kernel already registered")
)

// Kernel executes one node of a program against the frame's materialized
// values. Kernels read their immediates from the node's attributes and
// their inputs/outputs from the frame slots the node names.
type Kernel func(ctx context.Context, frame *Frame, node graph.NodeView) error

// Registry maps kernel names to callables. Safe for concurrent use;
// registration typically happens once at startup.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]Kernel
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]Kernel)}
}

// Register adds a kernel under name.
func (r *Registry) Register(name string, k Kernel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kernels[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKernel, name)
	}
	r.kernels[name] = k
	return nil
}

// MustRegister is Register for static registration paths where a duplicate
// is a programming error.
func (r *Registry) MustRegister(name string, k Kernel) {
	if err := r.Register(name, k); err != nil {
		panic(fmt.Sprintf("exec: %v", err))
	}
}

// Lookup resolves name to its kernel.
func (r *Registry) Lookup(name string) (Kernel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kernels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKernelNotFound, name)
	}
	return k, nil
}

// Names returns the registered kernel names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
