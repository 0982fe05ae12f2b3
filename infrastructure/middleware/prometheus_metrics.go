// Package middleware provides cross-cutting concerns for the annotation
// pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-concord/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of annotation throughput,
// latency, and failure modes during batch labeling runs.
type PrometheusMetrics struct {
	callLatency *prometheus.HistogramVec
	callCounter *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		callLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "annotation_call_duration_seconds",
				Help:    "Latency of annotation service calls, including retries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model", "status"},
		),
		callCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotation_calls_total",
				Help: "Total annotation service calls by outcome.",
			},
			[]string{"metric", "model", "status"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// call latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.callLatency.WithLabelValues(operation, labelOr(labels, "model"), labelOr(labels, "status")).
		Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing a Prometheus counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.callCounter.WithLabelValues(metric, labelOr(labels, "model"), labelOr(labels, "status")).
		Add(value)
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok {
		return v
	}
	return "unknown"
}
