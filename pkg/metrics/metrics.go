// Package metrics exposes Prometheus counters and histograms describing
// the reconciler's tick activity, mounted at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "couchdb_idp_updater"

// Metrics holds the counters and histograms the reconciler updates once
// per tick and once per node/key operation.
type Metrics struct {
	TicksTotal        prometheus.Counter
	TicksFailed       prometheus.Counter
	PutsIssued        prometheus.Counter
	PutsSucceeded     prometheus.Counter
	RestartsIssued    prometheus.Counter
	RestartsSucceeded prometheus.Counter
	TickDuration      prometheus.Histogram

	registry *prometheus.Registry
}

// New registers a fresh metric set against a private registry, so tests
// can construct multiple independent Metrics instances without colliding
// on the default global registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of reconciliation ticks started.",
		}),
		TicksFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_failed_total",
			Help:      "Total number of reconciliation ticks that failed outright (e.g. no keys retrieved).",
		}),
		PutsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jwt_key_puts_issued_total",
			Help:      "Total number of jwt_keys PUT requests issued to CouchDB nodes.",
		}),
		PutsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jwt_key_puts_succeeded_total",
			Help:      "Total number of jwt_keys PUT requests that returned 2xx.",
		}),
		RestartsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_restarts_issued_total",
			Help:      "Total number of node restarts requested.",
		}),
		RestartsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_restarts_succeeded_total",
			Help:      "Total number of node restarts that returned 2xx.",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of a full reconciliation tick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the /metrics HTTP handler for this Metrics instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
