// Package provider defines the store abstraction used by archcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// The cache only ever issues GET and SET-with-expiry. Payloads are opaque; a
// provider knows nothing about the archive layout.
package provider

import (
	"context"
	"time"
)

// Provider hands out connections to a byte store with TTLs. A Provider is the
// process-wide pool; it must be safe for concurrent use.
type Provider interface {
	// Acquire leases one connection. It waits at most until ctx is done and
	// reports ErrPoolExhausted if no connection became free in time.
	Acquire(ctx context.Context) (Conn, error)

	// Close stops handing out leases and releases resources.
	Close(ctx context.Context) error
}

// Conn is an exclusively owned lease on one store connection. It is not safe
// for concurrent use.
type Conn interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Release returns the connection to the pool. Repeated calls are no-ops.
	Release()
}
