package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/ports"
)

// tracedAnnotator adds a span per annotation call for request-level
// observability across batch runs.
type tracedAnnotator struct {
	next   ports.Annotator
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that wraps each annotation call
// in an OpenTelemetry span.
func TracingMiddleware(serviceName string) Middleware {
	return func(next ports.Annotator) ports.Annotator {
		return &tracedAnnotator{
			next:   next,
			tracer: otel.Tracer(serviceName),
		}
	}
}

// Annotate executes the call within a span carrying the model, sentence
// length, and on success the normalized label and confidence.
func (t *tracedAnnotator) Annotate(ctx context.Context, sentence string) (domain.AnnotationResult, error) {
	ctx, span := t.tracer.Start(ctx, "Annotator.Annotate",
		trace.WithAttributes(
			attribute.String("annotation.model", t.next.Model()),
			attribute.Int("annotation.sentence_length", len(sentence)),
		),
	)
	defer span.End()

	result, err := t.next.Annotate(ctx, sentence)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	span.SetAttributes(
		attribute.Int("annotation.label", int(result.Label)),
		attribute.Float64("annotation.confidence", result.Confidence),
	)
	return result, nil
}

// Model returns the model name from the wrapped implementation.
func (t *tracedAnnotator) Model() string { return t.next.Model() }
