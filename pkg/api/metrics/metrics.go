// Package metrics exposes n8n-backup metrics over the HTTP API in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicholas-fedor/n8n-backup/pkg/metrics"
)

// Path is the endpoint serving metrics.
const Path = "/v1/metrics"

// Handler is an HTTP handle for serving metric data.
type Handler struct {
	Path    string
	Handle  http.Handler
	Metrics *metrics.Metrics
}

// New creates a handler serving the default registry.
func New() *Handler {
	return NewWithGatherer(metrics.Default(), prometheus.DefaultGatherer)
}

// NewWithGatherer creates a handler serving the given gatherer.
func NewWithGatherer(m *metrics.Metrics, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		Path:    Path,
		Handle:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		Metrics: m,
	}
}
