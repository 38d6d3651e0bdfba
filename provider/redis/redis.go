// Package redis implements provider.Provider on go-redis v9.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/archcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis leases connections out of a go-redis client. When the client can hand
// out dedicated connections (*goredis.Client) every lease pins one; otherwise
// (cluster/ring clients) leases share the client's own pool and only count
// against the gate.
type Redis struct {
	rdb         goredis.UniversalClient
	gate        *pr.Gate
	closeClient bool
	closed      atomic.Bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client

	// PoolSize caps outstanding leases. Zero takes the client's PoolSize when
	// known, otherwise leases are unbounded.
	PoolSize int
}

type conner interface {
	Conn() *goredis.Conn
}

// commander is the slice of go-redis commands a lease issues; both clients and
// dedicated connections provide it.
type commander interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	size := cfg.PoolSize
	if size <= 0 {
		if c, ok := cfg.Client.(*goredis.Client); ok {
			size = c.Options().PoolSize
		}
	}
	return &Redis{rdb: cfg.Client, gate: pr.NewGate(size), closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Acquire(ctx context.Context) (pr.Conn, error) {
	if err := p.gate.Enter(ctx); err != nil {
		return nil, err
	}
	c := &conn{p: p, cmd: p.rdb}
	if cc, ok := p.rdb.(conner); ok {
		dc := cc.Conn()
		c.cmd, c.dedicated = dc, dc
	}
	return c, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.gate.Close()
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type conn struct {
	p         *Redis
	cmd       commander
	dedicated *goredis.Conn
	released  atomic.Bool
}

func (c *conn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.released.Load() {
		return nil, false, pr.ErrReleased
	}
	b, err := c.cmd.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return b, true, nil
}

func (c *conn) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.released.Load() {
		return pr.ErrReleased
	}
	if ttl <= 0 {
		ttl = 0 // no expiry
	}
	if err := c.cmd.Set(ctx, key, value, ttl).Err(); err != nil {
		return classify(err)
	}
	return nil
}

func (c *conn) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	if c.dedicated != nil {
		_ = c.dedicated.Close() // hands the connection back to the client pool
	}
	c.p.gate.Leave()
}

// classify maps go-redis failures onto provider sentinels. Server error
// replies (WRONGTYPE and friends) are protocol errors; everything else is
// transport and passed through.
func classify(err error) error {
	var rerr goredis.Error
	switch {
	case errors.Is(err, goredis.ErrClosed):
		return fmt.Errorf("%w: %v", pr.ErrPoolClosed, err)
	case errors.As(err, &rerr):
		return fmt.Errorf("%w: %v", pr.ErrProtocol, err)
	default:
		return err
	}
}
