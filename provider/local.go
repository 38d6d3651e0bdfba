package provider

import (
	"context"
	"sync/atomic"
	"time"
)

// LocalStore is an in-process byte store. It has no connections of its own;
// Local wraps it so leases are still bounded by a Gate.
type LocalStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Close() error
}

// Local adapts a LocalStore into a Provider.
type Local struct {
	store LocalStore
	gate  *Gate
}

var _ Provider = (*Local)(nil)

// NewLocal wraps store; poolSize <= 0 leaves leases unbounded.
func NewLocal(store LocalStore, poolSize int) *Local {
	return &Local{store: store, gate: NewGate(poolSize)}
}

func (l *Local) Acquire(ctx context.Context) (Conn, error) {
	if err := l.gate.Enter(ctx); err != nil {
		return nil, err
	}
	return &localConn{l: l}, nil
}

func (l *Local) Close(context.Context) error {
	if l.gate.Closed() {
		return nil
	}
	l.gate.Close()
	return l.store.Close()
}

type localConn struct {
	l        *Local
	released atomic.Bool
}

func (c *localConn) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.released.Load() {
		return nil, false, ErrReleased
	}
	return c.l.store.Get(key)
}

func (c *localConn) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.released.Load() {
		return ErrReleased
	}
	return c.l.store.Set(key, value, ttl)
}

func (c *localConn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.l.gate.Leave()
	}
}
