// Package asynchook moves Hooks calls off the request path:
//
//	cache, _ := archcache.New(archcache.Options{Provider: p, Hooks: asynchook.New(inner, 1, 1000)})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/archcache"
)

// Hooks forwards events to inner on worker goroutines. When the queue is full
// events are dropped rather than blocking the cache.
type Hooks struct {
	inner   archcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ archcache.Hooks = (*Hooks)(nil)

func New(inner archcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost the race with Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(kind string)  { h.try(func() { h.inner.Hit(kind) }) }
func (h *Hooks) Miss(kind string) { h.try(func() { h.inner.Miss(kind) }) }
func (h *Hooks) Rejected(kind, k string, err error) {
	h.try(func() { h.inner.Rejected(kind, k, err) })
}
func (h *Hooks) WriteFailed(kind, k string, err error) {
	h.try(func() { h.inner.WriteFailed(kind, k, err) })
}
func (h *Hooks) Latency(kind, op string, d time.Duration) {
	h.try(func() { h.inner.Latency(kind, op, d) })
}
