package provider

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of outstanding leases. Acquisition waits for a free
// slot until the caller's context is done.
type Gate struct {
	sem    *semaphore.Weighted // nil => unbounded
	closed atomic.Bool
}

// NewGate returns a gate admitting size concurrent leases; size <= 0 means
// unbounded.
func NewGate(size int) *Gate {
	g := &Gate{}
	if size > 0 {
		g.sem = semaphore.NewWeighted(int64(size))
	}
	return g
}

// Enter takes a slot. A deadline hit while waiting is reported as
// ErrPoolExhausted; cancellation is returned as is.
func (g *Gate) Enter(ctx context.Context) error {
	if g.closed.Load() {
		return ErrPoolClosed
	}
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
			}
			return err
		}
	}
	if g.closed.Load() {
		g.Leave()
		return ErrPoolClosed
	}
	return nil
}

// Leave frees a slot taken by Enter.
func (g *Gate) Leave() {
	if g.sem != nil {
		g.sem.Release(1)
	}
}

// Close makes every later Enter fail. Outstanding leases stay valid.
func (g *Gate) Close() { g.closed.Store(true) }

func (g *Gate) Closed() bool { return g.closed.Load() }
