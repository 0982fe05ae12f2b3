// Package application wires configuration and the batch labeling driver
// around the core engines.
package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/ports"
)

// DefaultWorkers processes sentences sequentially, matching the
// reference batch behavior; callers opt in to a bounded pool.
const DefaultWorkers = 1

// Failure records a terminal annotation failure for one sentence. The
// sentence produced no result; the error carries the diagnostics needed
// to reproduce the call.
type Failure struct {
	Text string
	Err  error
}

// Labeler drives annotation over a batch of sentences. Failures are
// isolated per sentence: one terminal failure never aborts the rest of
// the batch and never fabricates a default label. The only run-level
// abort is context cancellation.
type Labeler struct {
	annotator ports.Annotator
	limiter   *rate.Limiter
	workers   int
}

// LabelerOption customizes a Labeler.
type LabelerOption func(*Labeler)

// WithWorkers bounds the concurrent annotation calls. Values below 1
// fall back to sequential processing.
func WithWorkers(n int) LabelerOption {
	return func(l *Labeler) {
		if n >= 1 {
			l.workers = n
		}
	}
}

// WithCallDelay paces calls so that at most one starts per interval,
// the generalized form of a fixed inter-call sleep.
func WithCallDelay(d time.Duration) LabelerOption {
	return func(l *Labeler) {
		if d > 0 {
			l.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewLabeler creates a batch driver around the given annotator.
func NewLabeler(annotator ports.Annotator, opts ...LabelerOption) *Labeler {
	l := &Labeler{
		annotator: annotator,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run annotates every non-blank sentence and returns the successful
// results in input order plus the per-sentence failures. The inputs are
// read-only; results and failures are newly allocated.
//
// Run returns an error only when the context is cancelled; annotation
// failures are reported through the failure slice instead.
func (l *Labeler) Run(ctx context.Context, sentences []string) ([]domain.AnnotationResult, []Failure, error) {
	slots := make([]*domain.AnnotationResult, len(sentences))

	var mu sync.Mutex
	var failures []Failure

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, raw := range sentences {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		i := i
		g.Go(func() error {
			if err := l.limiter.Wait(gctx); err != nil {
				// Context cancellation is the only way Wait fails here;
				// it aborts the run, not just the sentence.
				return err
			}

			result, err := l.annotator.Annotate(gctx, text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				failures = append(failures, Failure{Text: text, Err: err})
				mu.Unlock()
				return nil
			}

			slots[i] = &result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]domain.AnnotationResult, 0, len(sentences))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, failures, nil
}
