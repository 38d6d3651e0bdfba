// Package ristretto implements provider.Provider on an in-process ristretto
// cache. Entries carry their own TTL; cost is the payload length.
package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/archcache/provider"
)

type Provider struct {
	*pr.Local
	c *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // total payload bytes
	BufferItems int64
	Metrics     bool
	PoolSize    int // outstanding leases; <= 0 is unbounded
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{Local: pr.NewLocal(store{c}, cfg.PoolSize), c: c}, nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

type store struct{ c *rc.Cache }

func (s store) Get(key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s store) Set(key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	// The store keeps the slice; callers may reuse theirs.
	v := append([]byte(nil), value...)
	if !s.c.SetWithTTL(key, v, int64(len(v)), ttl) {
		return pr.ErrRejected
	}
	// Sets are buffered; make the write visible to the next Get.
	s.c.Wait()
	return nil
}

func (s store) Close() error {
	s.c.Wait()
	s.c.Close()
	return nil
}
