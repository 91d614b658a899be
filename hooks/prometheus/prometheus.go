// Package promhooks exports cache events as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/codec"
)

// Hooks holds the cache metrics.
type Hooks struct {
	remoteErrors   *prometheus.CounterVec
	partialWrites  *prometheus.CounterVec
	typeMismatches *prometheus.CounterVec
	gateWait       *prometheus.HistogramVec
}

var _ entitycache.Hooks = (*Hooks)(nil)

// New registers the metrics with reg (prometheus.DefaultRegisterer when nil).
// namespace prefixes every metric name.
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		remoteErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entitycache_remote_errors_total",
				Help:      "Store round trips that failed, by operation",
			},
			[]string{"op"},
		),
		partialWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entitycache_partial_writes_total",
				Help:      "Writes that failed after some round trips were applied",
			},
			[]string{"op"},
		),
		typeMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entitycache_type_mismatches_total",
				Help:      "Stored fields that could not be decoded as the requested kind",
			},
			[]string{"kind"},
		),
		gateWait: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "entitycache_gate_wait_seconds",
				Help:      "Time operations spent waiting for the access gate",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"op"},
		),
	}
}

func (h *Hooks) RemoteError(op, _ string, _ error) {
	h.remoteErrors.WithLabelValues(op).Inc()
}

func (h *Hooks) PartialWrite(op, _ string, _ int, _ error) {
	h.partialWrites.WithLabelValues(op).Inc()
}

func (h *Hooks) TypeMismatch(_, _ string, want codec.Kind) {
	h.typeMismatches.WithLabelValues(want.String()).Inc()
}

func (h *Hooks) GateWait(op string, waited time.Duration) {
	h.gateWait.WithLabelValues(op).Observe(waited.Seconds())
}
