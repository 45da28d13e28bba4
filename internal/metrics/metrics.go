package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the application's Prometheus collectors. The registry is
// owned here and exposed through Handler, so tests can construct isolated
// instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	PaperFetches    *prometheus.CounterVec
}

// New creates a Metrics instance with a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geneexplorer_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geneexplorer_loader_cache_hits_total",
			Help: "Spreadsheet loader cache hits by cache name.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geneexplorer_loader_cache_misses_total",
			Help: "Spreadsheet loader cache misses by cache name.",
		}, []string{"cache"}),
		PaperFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geneexplorer_paper_fetches_total",
			Help: "Literature lookups by outcome (ok, empty, timeout, error).",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.RequestDuration, m.CacheHits, m.CacheMisses, m.PaperFetches)
	return m
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
