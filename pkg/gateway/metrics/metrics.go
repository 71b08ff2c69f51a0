// Package metrics exposes Prometheus instrumentation for the config
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the config service's Prometheus collectors.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ConfigServed        prometheus.Counter
}

// New creates and registers the collectors against reg. Pass a fresh
// registry in tests to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vai_voice_http_requests_total",
			Help: "Total HTTP requests by path and status code",
		}, []string{"path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vai_voice_http_request_duration_seconds",
			Help:    "HTTP request latency by path",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		ConfigServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "vai_voice_config_served_total",
			Help: "Total successful config responses",
		}),
	}
}
