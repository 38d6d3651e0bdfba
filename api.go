package archcache

import (
	"time"

	"github.com/cockroachdb/errors"

	pr "github.com/unkn0wn-root/archcache/provider"
)

// DefaultAcquireTimeout bounds the wait for a pooled connection when
// Options.AcquireTimeout is zero.
const DefaultAcquireTimeout = 5 * time.Second

// Options tune the cache. Only Provider is required; others have sensible defaults.
type Options struct {
	// Required
	Provider pr.Provider

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	AcquireTimeout time.Duration // 0 => DefaultAcquireTimeout
	MaxArchiveSize int           // bytes; <= 0 disables the limit on encode and fetch
	Disabled       bool          // fetches miss, stores only encode
}

// New builds the process-wide cache. Share one Cache per process; it owns the
// provider's pool.
func New(opts Options) (*Cache, error) {
	if opts.Provider == nil {
		return nil, errors.New("archcache: provider is required")
	}
	if opts.AcquireTimeout < 0 {
		return nil, errors.Newf("archcache: negative acquire timeout %s", opts.AcquireTimeout)
	}
	c := &Cache{
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		maxSize:  opts.MaxArchiveSize,
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.acquireTimeout = coalesce(opts.AcquireTimeout, DefaultAcquireTimeout)
	return c, nil
}
