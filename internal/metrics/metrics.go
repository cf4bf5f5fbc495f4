// Package metrics exports Prometheus metrics for uploads and LLM calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/notebook/internal/summarizer"
)

const namespace = "notebook"

// Exporter owns a private registry with the service's collectors.
type Exporter struct {
	registry *prometheus.Registry

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	uploads     *prometheus.CounterVec
	sources     prometheus.Gauge
}

// New creates an Exporter with its collectors registered.
func New() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}

	e.llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM calls by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)
	e.llmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_seconds",
			Help:      "LLM call latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"purpose"},
	)
	e.uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests by result",
		},
		[]string{"status"},
	)
	e.sources = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sources",
			Help:      "Number of sources currently stored",
		},
	)

	e.registry.MustRegister(e.llmRequests, e.llmLatency, e.uploads, e.sources)
	return e
}

// ObserveLLM implements summarizer.Recorder.
func (e *Exporter) ObserveLLM(purpose string, failure summarizer.Failure, elapsed time.Duration) {
	e.llmRequests.WithLabelValues(purpose, failure.String()).Inc()
	e.llmLatency.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

// ObserveUpload counts an upload with the given status ("ok", "rejected", "error").
func (e *Exporter) ObserveUpload(status string) {
	e.uploads.WithLabelValues(status).Inc()
}

// SetSources records the current number of stored sources.
func (e *Exporter) SetSources(n int) {
	e.sources.Set(float64(n))
}

// WatchClients exports the number of connected event stream clients,
// read from count at scrape time.
func (e *Exporter) WatchClients(count func() int) {
	e.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_clients",
			Help:      "Connected event stream clients",
		},
		func() float64 { return float64(count()) },
	))
}

// WatchIndex exports the number of indexed documents per kind. A failed
// count reports zero.
func (e *Exporter) WatchIndex(count func(kind string) (int, error), kinds ...string) {
	for _, kind := range kinds {
		e.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "indexed_documents",
				Help:        "Documents in the search index by kind",
				ConstLabels: prometheus.Labels{"kind": kind},
			},
			func() float64 {
				n, err := count(kind)
				if err != nil {
					return 0
				}
				return float64(n)
			},
		))
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
