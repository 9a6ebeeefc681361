package exec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/flatvec/graph"
)

var (
	// ErrSlotConflict indicates two nodes producing the same result slot.
	ErrSlotConflict = errors.New("result slot produced twice")
	// ErrCycle indicates a dependency cycle between nodes.
	ErrCycle = errors.New("dependency cycle")
)

// Runner walks an encoded program and invokes its kernels. Nodes are
// grouped into dependency waves; nodes within a wave are independent and
// run concurrently. The first kernel failure cancels the wave and
// short-circuits the run.
type Runner struct {
	reg         *Registry
	logger      *slog.Logger
	maxParallel int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the structured logger. Logging is off by default.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxParallelism caps the number of kernels running at once within a
// wave. Zero means unlimited.
func WithMaxParallelism(n int) RunnerOption {
	return func(r *Runner) { r.maxParallel = n }
}

// NewRunner creates a Runner resolving kernels from reg.
func NewRunner(reg *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		reg:    reg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the program in v against frame. Every kernel name is
// resolved before any node runs, so a program referencing an unregistered
// kernel fails without side effects.
func (r *Runner) Run(ctx context.Context, v graph.View, frame *Frame) error {
	n := v.NumNodes()
	kernels := make([]Kernel, n)
	for i := 0; i < n; i++ {
		k, err := r.reg.Lookup(v.Node(i).KernelName())
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		kernels[i] = k
	}

	waves, err := schedule(v)
	if err != nil {
		return err
	}

	for wi, wave := range waves {
		g, gctx := errgroup.WithContext(ctx)
		if r.maxParallel > 0 {
			g.SetLimit(r.maxParallel)
		}
		for _, idx := range wave {
			node := v.Node(idx)
			kernel := kernels[idx]
			g.Go(func() error {
				if err := kernel(gctx, frame, node); err != nil {
					return fmt.Errorf("node %d (%s): %w", node.Index(), node.KernelName(), err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		r.logger.DebugContext(ctx, "wave completed", "wave", wi, "nodes", len(wave))
	}
	return nil
}

// schedule groups nodes into dependency waves. A node depends on the node
// producing each of its operand slots; operand slots without a producer
// are frame inputs. A node reading a slot it also writes (in-place update)
// does not depend on itself.
func schedule(v graph.View) ([][]int, error) {
	n := v.NumNodes()

	producer := make(map[uint32]int)
	for i := 0; i < n; i++ {
		for slot := range v.Node(i).Results().All() {
			if prev, ok := producer[slot]; ok {
				return nil, fmt.Errorf("%w: slot %d by nodes %d and %d", ErrSlotConflict, slot, prev, i)
			}
			producer[slot] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, n)
	level := make([]int, n)
	maxLevel := 0

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: node %d", ErrCycle, i)
		}
		state[i] = visiting

		lvl := 0
		for slot := range v.Node(i).Operands().All() {
			dep, ok := producer[slot]
			if !ok || dep == i {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
			if level[dep]+1 > lvl {
				lvl = level[dep] + 1
			}
		}

		state[i] = done
		level[i] = lvl
		if lvl > maxLevel {
			maxLevel = lvl
		}
		return nil
	}
	for i := 0; i < n; i++ {
		if err := visit(i); err != nil {
			return nil, err
		}
	}

	if n == 0 {
		return nil, nil
	}
	waves := make([][]int, maxLevel+1)
	for i := 0; i < n; i++ {
		waves[level[i]] = append(waves[level[i]], i)
	}
	return waves, nil
}
