package connector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exports connector execution outcomes and durations as
// Prometheus metrics, registered under the orchestration server's /metrics
// endpoint.
type MetricsCollector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsCollector creates a collector and registers its metrics with reg.
// Pass prometheus.NewRegistry() (or nil for the default registerer). If reg
// already holds these metrics, the registered ones are reused.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &MetricsCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deskbridge_connector_requests_total",
			Help: "Outbound connector calls by connector name and terminal outcome.",
		}, []string{"connector", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deskbridge_connector_request_duration_seconds",
			Help:    "Outbound connector call latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"connector"}),
	}

	if err := reg.Register(c.requests); err != nil {
		existing, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		c.requests = existing.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(c.duration); err != nil {
		existing, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		c.duration = existing.ExistingCollector.(*prometheus.HistogramVec)
	}
	return c
}

// RecordRequest records one connector call's terminal outcome and latency.
func (m *MetricsCollector) RecordRequest(connectorName, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(connectorName, outcome).Inc()
	m.duration.WithLabelValues(connectorName).Observe(d.Seconds())
}
