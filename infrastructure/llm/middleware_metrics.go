package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/ports"
)

// metricsAnnotator collects per-call metrics.
// This provides observability into call latency, failure modes, and
// retry exhaustion for operational monitoring.
type metricsAnnotator struct {
	next      ports.Annotator
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that records annotation metrics
// through the given collector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.Annotator) ports.Annotator {
		return &metricsAnnotator{next: next, collector: collector}
	}
}

// Annotate executes the call while recording latency and outcome.
func (m *metricsAnnotator) Annotate(ctx context.Context, sentence string) (domain.AnnotationResult, error) {
	start := time.Now()
	result, err := m.next.Annotate(ctx, sentence)

	labels := map[string]string{
		"model":  m.next.Model(),
		"status": statusLabel(ctx, err),
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		labels["transient"] = strconv.FormatBool(pe.Transient())
	}

	if m.collector != nil {
		m.collector.RecordLatency("annotate", time.Since(start), labels)
		m.collector.RecordCounter("annotations_total", 1, labels)
	}
	return result, err
}

// Model returns the model name from the wrapped implementation.
func (m *metricsAnnotator) Model() string { return m.next.Model() }

// statusLabel maps a call outcome to a low-cardinality metric label.
func statusLabel(ctx context.Context, err error) string {
	if err == nil {
		return "success"
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "timeout"
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		if ts := pe.typeString(); ts != "" {
			return ts
		}
	}
	return "error"
}
