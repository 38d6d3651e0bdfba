// Package sloghooks logs cache events through log/slog with sampling and key
// redaction.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/archcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Store round trips slower than this are logged; 0 disables.
	SlowOp time.Duration
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ archcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(kind string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("archcache.hit", "kind", kind)
}

func (h *Hooks) Miss(kind string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("archcache.miss", "kind", kind)
}

func (h *Hooks) Rejected(kind, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("archcache.rejected",
		"kind", kind,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) WriteFailed(kind, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("archcache.write_failed",
		"kind", kind,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) Latency(kind, op string, d time.Duration) {
	if h.l == nil || h.opts.SlowOp <= 0 || d < h.opts.SlowOp {
		return
	}
	h.l.Warn("archcache.slow_op",
		"kind", kind,
		"op", op,
		"took", d)
}
