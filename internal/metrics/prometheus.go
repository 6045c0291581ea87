// Package metrics exposes Prometheus metrics for iptx invocations.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all iptx metrics.
type Registry struct {
	// InvocationsTotal counts tool invocations by tool, serialization
	// mode (wait|flock) and outcome (ok|failed|spawn_error).
	InvocationsTotal *prometheus.CounterVec

	// LockWaitSeconds observes how long advisory-lock acquisitions
	// blocked before succeeding.
	LockWaitSeconds prometheus.Histogram

	// LockFailuresTotal counts lock acquisitions that failed outright.
	LockFailuresTotal prometheus.Counter

	// ProbeFailuresTotal counts failed version probes by tool.
	ProbeFailuresTotal *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.InvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptx_invocations_total",
		Help: "Total xtables invocations",
	}, []string{"tool", "mode", "outcome"})

	r.LockWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "iptx_lock_wait_seconds",
		Help:    "Time spent waiting for the advisory lock",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	r.LockFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptx_lock_failures_total",
		Help: "Advisory lock acquisitions that failed",
	})

	r.ProbeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptx_probe_failures_total",
		Help: "Failed version probes",
	}, []string{"tool"})

	return r
}
