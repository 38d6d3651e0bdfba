package archcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/archcache/archive"
	"github.com/unkn0wn-root/archcache/codec"
	pr "github.com/unkn0wn-root/archcache/provider"
)

// Cache fronts one provider pool. It is safe for concurrent use; the typed
// operations are the package functions Fetch, Store and Load.
type Cache struct {
	provider       pr.Provider
	log            Logger
	hooks          Hooks
	enabled        bool
	acquireTimeout time.Duration
	maxSize        int
}

func (c *Cache) Enabled() bool { return c.enabled }

func (c *Cache) Close(ctx context.Context) error {
	return c.provider.Close(ctx)
}

// Lease is exclusive ownership of one pooled connection. Release it on every
// path, typically with defer; Release is idempotent and safe on nil.
type Lease struct {
	c        *Cache
	conn     pr.Conn // nil when the cache is disabled
	released bool
}

func (l *Lease) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	if l.conn != nil {
		l.conn.Release()
	}
}

// Acquire leases a connection, waiting at most AcquireTimeout (or until ctx
// is done).
func (c *Cache) Acquire(ctx context.Context) (*Lease, error) {
	if !c.enabled {
		return &Lease{c: c}, nil
	}
	actx, cancel := context.WithTimeout(ctx, c.acquireTimeout)
	defer cancel()
	conn, err := c.provider.Acquire(actx)
	if err != nil {
		return nil, newError(KindPool, "acquire", "", err)
	}
	return &Lease{c: c, conn: conn}, nil
}

// Fetch leases a connection and reads key. A hit is validated before it is
// returned; a miss returns a nil archive and no error. Whenever a connection
// was leased the lease is returned, also alongside store and validation
// errors, so the caller can compute and Store on it without another trip to
// the pool. The caller must Release it.
func Fetch[T any, A codec.View[T]](ctx context.Context, c *Cache, p Policy[T, A], key Key) (*Archived[T, A], *Lease, error) {
	if err := p.check(); err != nil {
		return nil, nil, newError(KindValidation, "fetch", "", err)
	}
	lease, err := c.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	if lease.conn == nil {
		c.hooks.Miss(p.Kind)
		return nil, lease, nil
	}

	sk := p.StorageKey(key)
	start := time.Now()
	raw, ok, err := lease.conn.Get(ctx, sk)
	c.hooks.Latency(p.Kind, "get", time.Since(start))
	if err != nil {
		return nil, lease, storeError("fetch", sk, err)
	}
	if !ok {
		c.hooks.Miss(p.Kind)
		c.log.Debug("cache miss", Fields{"kind": p.Kind, "key": sk})
		return nil, lease, nil
	}

	if c.maxSize > 0 && len(raw) > c.maxSize {
		err := &archive.ValidationError{
			Reason: fmt.Sprintf("%d bytes exceed the %d byte limit", len(raw), c.maxSize),
			Err:    archive.ErrTooLarge,
		}
		return nil, lease, c.reject(p.Kind, sk, err)
	}
	a, err := validated(p.Codec, raw)
	if err != nil {
		return nil, lease, c.reject(p.Kind, sk, err)
	}
	c.hooks.Hit(p.Kind)
	c.log.Debug("cache hit", Fields{"kind": p.Kind, "key": sk, "bytes": len(raw)})
	return a, lease, nil
}

func (c *Cache) reject(kind, sk string, err error) error {
	c.hooks.Rejected(kind, sk, err)
	c.log.Warn("rejected cached archive", Fields{"kind": kind, "key": sk, "err": err})
	return newError(KindValidation, "fetch", sk, err)
}

// Store encodes v, writes it under key with the policy's TTL on the leased
// connection and returns the freshly encoded archive, trusted since this call
// produced it. The archive is returned even when the write fails; the error
// then reports the failed write. Nothing is retried or rolled back.
func Store[T any, A codec.View[T]](ctx context.Context, lease *Lease, p Policy[T, A], key Key, v *T) (*Archived[T, A], error) {
	if lease == nil || lease.c == nil {
		return nil, newError(KindPool, "store", "", pr.ErrReleased)
	}
	c := lease.c
	sk := p.StorageKey(key)
	buf, err := p.serialize(v, c.maxSize, sk)
	if err != nil {
		c.log.Error("encode failed", Fields{"kind": p.Kind, "key": sk, "err": err})
		return nil, err
	}
	a := Trusted(p.Codec, buf)

	if lease.released {
		return a, newError(KindPool, "store", sk, pr.ErrReleased)
	}
	if lease.conn == nil {
		return a, nil
	}

	start := time.Now()
	err = lease.conn.Set(ctx, sk, buf, p.TTL)
	c.hooks.Latency(p.Kind, "set", time.Since(start))
	if err != nil {
		c.hooks.WriteFailed(p.Kind, sk, err)
		c.log.Error("write-through failed", Fields{"kind": p.Kind, "key": sk, "err": err})
		return a, storeError("store", sk, err)
	}
	return a, nil
}
