// Package metrics exports programmer activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eeprom"

// Recorder implements programmer.Metrics with its own registry, so several
// recorders can coexist (tests, simulated and real sessions).
type Recorder struct {
	registry *prometheus.Registry

	chunks        *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	verifyFailure *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		chunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chunk",
				Name:      "requests_total",
				Help:      "Chunk requests sent to the programmer firmware.",
			},
			[]string{"op", "result"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chunk",
				Name:      "bytes_total",
				Help:      "Bytes moved by successful chunk requests.",
			},
			[]string{"op"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "chunk",
				Name:      "duration_seconds",
				Help:      "Chunk request round trip in seconds.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 4},
			},
			[]string{"op"},
		),
		verifyFailure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "failures_total",
				Help:      "Bulk operations that failed readback verification.",
			},
			[]string{"op"},
		),
	}

	r.registry.MustRegister(r.chunks, r.bytes, r.latency, r.verifyFailure)
	return r
}

// ObserveChunk records one request/response exchange.
func (r *Recorder) ObserveChunk(op string, size int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.chunks.WithLabelValues(op, result).Inc()
	r.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	if err == nil {
		r.bytes.WithLabelValues(op).Add(float64(size))
	}
}

// ObserveVerificationFailure records a readback mismatch.
func (r *Recorder) ObserveVerificationFailure(op string) {
	r.verifyFailure.WithLabelValues(op).Inc()
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
