package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for profile operations.
type Metrics struct {
	registry *prometheus.Registry

	ProfileMutations *prometheus.CounterVec
	StoreFailures    *prometheus.CounterVec
	LockWaits        prometheus.Histogram
}

// New creates the collectors on a dedicated registry so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProfileMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devlink_profile_mutations_total",
			Help: "Successful profile mutations by operation",
		}, []string{"op"}),
		StoreFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devlink_profile_store_failures_total",
			Help: "Profile operations that failed in the persistence layer",
		}, []string{"op"}),
		LockWaits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "devlink_profile_lock_wait_seconds",
			Help:    "Time spent waiting for the per-owner mutation lock",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

func (m *Metrics) IncMutation(op string) {
	m.ProfileMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) IncStoreFailure(op string) {
	m.StoreFailures.WithLabelValues(op).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
