// Package ports defines the interfaces that connect the core engines to
// infrastructure implementations.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-concord/internal/domain"
)

// Annotator obtains one binary causal judgment with confidence for a
// single sentence. Implementations own transport, retry, and response
// normalization; a returned error is final for that sentence and the
// caller must not substitute a default label.
//
// Calls are independent and carry no cross-call state, so a batch of
// sentences may be processed concurrently, bounded only by the external
// service's rate limits.
type Annotator interface {
	// Annotate judges one sentence. On success the result's label is
	// exactly 0 or 1 and its confidence lies in [0, 1].
	Annotate(ctx context.Context, sentence string) (domain.AnnotationResult, error)

	// Model returns the model identifier being used by this annotator.
	// This is useful for logging and debugging purposes.
	Model() string
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like retries and failures.
	RecordCounter(metric string, value float64, labels map[string]string)
}
