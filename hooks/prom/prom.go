// Package promhook exports cache events as Prometheus metrics.
package promhook

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/archcache"
	"github.com/unkn0wn-root/archcache/archive"
	pr "github.com/unkn0wn-root/archcache/provider"
)

// Config names the metrics. Namespace defaults to "archcache".
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Buckets     []float64 // latency buckets in seconds; nil => DefBuckets
}

// Hooks counts lookups by kind and result, write failures by reason and
// store latency by kind and op.
type Hooks struct {
	lookups  *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ archcache.Hooks = (*Hooks)(nil)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer, cfg Config) (*Hooks, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "archcache"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "lookups_total",
			Help:        "Cache lookups by kind and result (hit, miss, rejected).",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "result", "reason"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "write_failures_total",
			Help:        "Failed write-through SETs by kind and reason.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "reason"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "store_duration_seconds",
			Help:        "Store round trip time by kind and operation.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"kind", "op"}),
	}
	for _, c := range []prometheus.Collector{h.lookups, h.failures, h.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("promhook: register: %w", err)
		}
	}
	return h, nil
}

func (h *Hooks) Hit(kind string)  { h.lookups.WithLabelValues(kind, "hit", "").Inc() }
func (h *Hooks) Miss(kind string) { h.lookups.WithLabelValues(kind, "miss", "").Inc() }

func (h *Hooks) Rejected(kind, _ string, err error) {
	reason := "invalid"
	if errors.Is(err, archive.ErrTooLarge) {
		reason = "too_large"
	}
	h.lookups.WithLabelValues(kind, "rejected", reason).Inc()
}

func (h *Hooks) WriteFailed(kind, _ string, err error) {
	h.failures.WithLabelValues(kind, writeReason(err)).Inc()
}

func (h *Hooks) Latency(kind, op string, d time.Duration) {
	h.latency.WithLabelValues(kind, op).Observe(d.Seconds())
}

func writeReason(err error) string {
	switch {
	case errors.Is(err, pr.ErrProtocol):
		return "protocol"
	case errors.Is(err, pr.ErrRejected):
		return "rejected"
	case errors.Is(err, pr.ErrPoolExhausted), errors.Is(err, pr.ErrPoolClosed), errors.Is(err, pr.ErrReleased):
		return "pool"
	default:
		return "transport"
	}
}
