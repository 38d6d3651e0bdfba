// Package archcache caches typed values in an external key/value store as
// compact, self-describing binary archives.
//
// Bytes read back from the store are untrusted: they are validated against the
// kind's shape before any typed access, then read in place through a zero-copy
// view or materialized into an owned value.
//
// Components:
//   - Policy[T, A]: per-kind declaration of namespace, TTL and codec. No registry.
//   - codec: binds T to its archived view A, natively or through an adapter.
//   - archive: the arena-backed encoder, validator and bounds-checked views.
//   - provider: byte store with TTL and leased connections (Redis, Ristretto, BigCache).
//
// Keys:
//
//	<kind>:<key>  - one entry per logical key
//
// Fetch/compute/store pattern:
//
//	a, lease, err := archcache.Fetch(ctx, c, kinds.UserProfile, key)
//	defer lease.Release()
//	if a == nil {
//		v := compute()
//		a, err = archcache.Store(ctx, lease, kinds.UserProfile, key, &v)
//	}
//
// Load wraps the same pattern and treats cache errors as misses.
package archcache
