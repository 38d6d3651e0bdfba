package archcache

import (
	"context"

	"github.com/unkn0wn-root/archcache/codec"
)

// Load is the cache-aside read: fetch key, and on a miss (or any cache error)
// call compute and write its result back on the same lease. Cache failures
// never fail the call; they are logged and the value is recomputed. Only
// compute's own error is returned.
//
// Concurrent callers missing the same key each compute and each write; the
// store keeps the last write.
func Load[T any, A codec.View[T]](ctx context.Context, c *Cache, p Policy[T, A], key Key, compute func(context.Context) (T, error)) (T, error) {
	a, lease, err := Fetch(ctx, c, p, key)
	defer lease.Release()
	if err != nil {
		c.log.Warn("cache fetch failed; recomputing", Fields{"kind": p.Kind, "key": key.String(), "err": err})
	}
	if a != nil {
		v, err := a.Deserialize()
		if err == nil {
			return v, nil
		}
		c.log.Warn("cached value unreadable; recomputing", Fields{"kind": p.Kind, "key": key.String(), "err": err})
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if lease != nil {
		// failures are already logged by Store
		_, _ = Store(ctx, lease, p, key, &v)
	}
	return v, nil
}
