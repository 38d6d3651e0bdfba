// Package bigcache implements provider.Provider on an in-process BigCache.
//
// BigCache has no per-entry TTL: every entry lives for the configured
// LifeWindow and the ttl passed to Set is ignored. Pick a LifeWindow no longer
// than the shortest TTL of the kinds stored here.
package bigcache

import (
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/archcache/provider"
)

type Provider struct {
	*pr.Local
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
	PoolSize           int // outstanding leases; <= 0 is unbounded
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{Local: pr.NewLocal(store{c}, cfg.PoolSize), c: c}, nil
}

// Len reports the number of stored entries.
func (p *Provider) Len() int { return p.c.Len() }

type store struct{ c *bc.BigCache }

func (s store) Get(key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s store) Set(key string, value []byte, _ time.Duration) error {
	return s.c.Set(key, value)
}

func (s store) Close() error { return s.c.Close() }
