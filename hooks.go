package archcache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A fetch found a valid archive.
	Hit(kind string)

	// A fetch found nothing (or the cache is disabled).
	Miss(kind string)

	// Stored bytes failed validation or exceeded MaxArchiveSize.
	Rejected(kind, storageKey string, err error)

	// A write-through SET failed. The freshly encoded archive was still
	// returned to the caller.
	WriteFailed(kind, storageKey string, err error)

	// Round trip time of one store operation; op ∈ {"get", "set"}.
	Latency(kind, op string, d time.Duration)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                            {}
func (NopHooks) Miss(string)                           {}
func (NopHooks) Rejected(string, string, error)        {}
func (NopHooks) WriteFailed(string, string, error)     {}
func (NopHooks) Latency(string, string, time.Duration) {}
