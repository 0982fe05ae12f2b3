package llm

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/testutils"
)

// spyCollector records every metric call with its labels.
type spyCollector struct {
	mu        sync.Mutex
	latencies []map[string]string
	counters  []map[string]string
}

func (s *spyCollector) RecordLatency(_ string, _ time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, labels)
}

func (s *spyCollector) RecordCounter(_ string, _ float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = append(s.counters, labels)
}

func TestMetricsMiddleware_RecordsOutcomeLabels(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    string
		wantTransient string
	}{
		{
			name:       "success",
			wantStatus: "success",
		},
		{
			name:          "server error is transient",
			err:           NewProviderError(ProviderName, ErrorTypeServerError, 502, "server error", nil),
			wantStatus:    "server_error",
			wantTransient: "true",
		},
		{
			name:          "auth failure is not transient",
			err:           NewProviderError(ProviderName, ErrorTypeAuthentication, 401, "authentication failed", nil),
			wantStatus:    "authentication",
			wantTransient: "false",
		},
		{
			name:          "malformed reply is transient",
			err:           NewProviderError(ProviderName, ErrorTypeMalformed, 200, "unparseable reply", ErrMalformedReply),
			wantStatus:    "malformed_reply",
			wantTransient: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &testutils.ScriptedAnnotator{
				ModelName: "test-model",
				ByText: map[string]testutils.AnnotateResponse{
					"s": {Result: domain.AnnotationResult{Text: "s", Label: 1, Confidence: 0.9}, Err: tt.err},
				},
			}
			collector := &spyCollector{}
			annotator := MetricsMiddleware(collector)(inner)

			_, err := annotator.Annotate(context.Background(), "s")
			if tt.err != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			require.Len(t, collector.counters, 1)
			labels := collector.counters[0]
			assert.Equal(t, "test-model", labels["model"])
			assert.Equal(t, tt.wantStatus, labels["status"])
			if tt.wantTransient == "" {
				assert.NotContains(t, labels, "transient")
			} else {
				assert.Equal(t, tt.wantTransient, labels["transient"])
			}

			require.Len(t, collector.latencies, 1)
			assert.Equal(t, labels, collector.latencies[0])
		})
	}
}

func TestProviderError_Transient(t *testing.T) {
	// Every failure is retried regardless; Transient only classifies
	// whether a retry can plausibly change the outcome.
	tests := []struct {
		errType ErrorType
		want    bool
	}{
		{ErrorTypeAuthentication, false},
		{ErrorTypeBadRequest, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeNetwork, true},
		{ErrorTypeTimeout, true},
		{ErrorTypeMalformed, true},
		{ErrorTypeUnknown, true},
	}

	for _, tt := range tests {
		pe := &ProviderError{Type: tt.errType}
		assert.Equal(t, tt.want, pe.Transient(), "type %d", tt.errType)
	}
}

func TestAnnotate_RetriesNonTransientFailures(t *testing.T) {
	// The retry loop does not consult the transient classification: an
	// authentication failure is retried the full schedule like any other.
	var calls int
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.Annotate(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, recorder.delays, 2)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorTypeAuthentication, pe.Type)
	assert.False(t, pe.Transient())
}
