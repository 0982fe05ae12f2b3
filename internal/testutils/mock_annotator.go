// Package testutils provides test doubles shared across packages.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/ports"
)

var _ ports.Annotator = (*ScriptedAnnotator)(nil)

// AnnotateResponse is one scripted outcome for a ScriptedAnnotator.
type AnnotateResponse struct {
	Result domain.AnnotationResult
	Err    error
}

// ScriptedAnnotator is a test double for ports.Annotator that returns
// per-sentence scripted outcomes. It is safe for concurrent use so batch
// driver tests can run with multiple workers.
type ScriptedAnnotator struct {
	mu sync.Mutex

	// ByText maps sentence text to its scripted outcome.
	ByText map[string]AnnotateResponse

	// ModelName is returned from Model.
	ModelName string

	// calls records the sentences in arrival order.
	calls []string
}

// Annotate returns the scripted outcome for the sentence, or an error
// when no outcome was scripted.
func (s *ScriptedAnnotator) Annotate(_ context.Context, sentence string) (domain.AnnotationResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, sentence)
	resp, ok := s.ByText[sentence]
	s.mu.Unlock()

	if !ok {
		return domain.AnnotationResult{}, errors.New("no scripted response for sentence")
	}
	return resp.Result, resp.Err
}

// Model returns the configured model name.
func (s *ScriptedAnnotator) Model() string {
	if s.ModelName == "" {
		return "scripted-model"
	}
	return s.ModelName
}

// Calls returns a copy of the sentences seen so far.
func (s *ScriptedAnnotator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
