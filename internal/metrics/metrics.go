// Package metrics counts auth operations and exposes them for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Operation names recorded by the session client.
const (
	OpLogin          = "login"
	OpGoogleLogin    = "google_login"
	OpGoogleCallback = "google_callback"
	OpLogout         = "logout"
	OpRefresh        = "refresh"
	OpVerify         = "verify"
)

// Recorder holds the auth counters on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authclient",
			Name:      "operations_total",
			Help:      "Session client operations by name and result.",
		}, []string{"operation", "result"}),
	}
	r.registry.MustRegister(r.operations)
	return r
}

// Observe records one operation outcome.
func (r *Recorder) Observe(operation string, ok bool) {
	if r == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	r.operations.WithLabelValues(operation, result).Inc()
}

// Count returns the current value of one operation counter.
func (r *Recorder) Count(operation string, ok bool) float64 {
	if r == nil {
		return 0
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	var m dto.Metric
	if err := r.operations.WithLabelValues(operation, result).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
