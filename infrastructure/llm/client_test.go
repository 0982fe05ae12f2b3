package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-concord/internal/domain"
)

// sleepRecorder captures backoff delays instead of waiting them out.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

// chatEnvelope wraps a reply payload in the completion envelope.
func chatEnvelope(payload string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": payload}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...func(*ClientConfig)) (*Client, *sleepRecorder) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := DefaultClientConfig()
	config.APIKey = "test-key"
	config.Model = "test-model"
	config.BaseURL = srv.URL
	for _, opt := range opts {
		opt(&config)
	}

	recorder := &sleepRecorder{}
	client, err := NewClient(config, WithSleepFunc(recorder.sleep))
	require.NoError(t, err)
	return client, recorder
}

func TestAnnotate_WellFormedChatReply(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatEnvelope(`{"label": 1, "confidence": 0.9}`))
	})

	result, err := client.Annotate(context.Background(), "This change caused a crash.")
	require.NoError(t, err)
	assert.Equal(t, domain.Causal, result.Label)
	assert.InDelta(t, 0.9, result.Confidence, 1e-12)
	assert.Equal(t, "This change caused a crash.", result.Text)
}

func TestAnnotate_AllEnvelopeShapes(t *testing.T) {
	// A well-formed reply parses regardless of which known envelope
	// shape carries it.
	bodies := []string{
		chatEnvelope(`{"label": 1, "confidence": 0.8}`),
		`{"output_text":"{\"label\": 1, \"confidence\": 0.8}"}`,
		`{"output":{"text":"{\"label\": 1, \"confidence\": 0.8}"}}`,
		`{"output":{"choices":[{"message":{"content":[{"text":"{\"label\": 1, \"confidence\": 0.8}"}]}}]}}`,
		`{"output":[{"type":"message","content":[{"type":"output_text","text":"{\"label\": 1, \"confidence\": 0.8}"}]}]}`,
	}

	for i, body := range bodies {
		t.Run(fmt.Sprintf("shape_%d", i), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			})

			result, err := client.Annotate(context.Background(), "s")
			require.NoError(t, err)
			assert.Equal(t, domain.Causal, result.Label)
			assert.InDelta(t, 0.8, result.Confidence, 1e-12)
		})
	}
}

func TestAnnotate_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chatEnvelope(`{"label": 0, "confidence": 0.7}`))
	})

	result, err := client.Annotate(context.Background(), "We updated the documentation.")
	require.NoError(t, err)
	assert.Equal(t, domain.NotCausal, result.Label)
	assert.Equal(t, int32(3), calls.Load())

	// Linear backoff: unit after the first failure, 2*unit after the second.
	unit := DefaultClientConfig().BackoffUnit
	assert.Equal(t, []time.Duration{unit, 2 * unit}, recorder.delays)
}

func TestAnnotate_ExhaustedRetriesCarryDiagnostics(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.Annotate(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "upstream exploded")

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
}

func TestAnnotate_TruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("x", 5000)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, long, http.StatusInternalServerError)
	})

	_, err := client.Annotate(context.Background(), "s")
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Body, maxBodyDiagnostic)
}

func TestAnnotate_MalformedBodyIsRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	_, err := client.Annotate(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestAnnotate_MissingLabelIsMalformed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatEnvelope(`{"confidence": 0.9}`))
	})

	_, err := client.Annotate(context.Background(), "s")
	assert.ErrorIs(t, err, ErrMissingLabel)
}

func TestAnnotate_LabelAndConfidenceNormalization(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		wantLabel      domain.Label
		wantConfidence float64
	}{
		{"label one", `{"label": 1, "confidence": 0.9}`, domain.Causal, 0.9},
		{"label zero", `{"label": 0, "confidence": 0.4}`, domain.NotCausal, 0.4},
		{"out of range maps to zero", `{"label": 3, "confidence": 0.9}`, domain.NotCausal, 0.9},
		{"negative maps to zero", `{"label": -1, "confidence": 0.9}`, domain.NotCausal, 0.9},
		{"float one is one", `{"label": 1.0, "confidence": 0.9}`, domain.Causal, 0.9},
		{"absent confidence defaults", `{"label": 1}`, domain.Causal, DefaultConfidence},
		{"confidence clamped high", `{"label": 1, "confidence": 1.7}`, domain.Causal, 1.0},
		{"confidence clamped low", `{"label": 1, "confidence": -0.2}`, domain.Causal, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, chatEnvelope(tt.payload))
			})

			result, err := client.Annotate(context.Background(), "s")
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, result.Label)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 1e-12)
		})
	}
}

func TestAnnotate_ChatRequestShape(t *testing.T) {
	var captured openai.ChatCompletionRequest
	var path, auth string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, chatEnvelope(`{"label": 0, "confidence": 0.5}`))
	})

	_, err := client.Annotate(context.Background(), `She said "go".`)
	require.NoError(t, err)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "test-model", captured.Model)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, captured.ResponseFormat.Type)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, `She said \"go\".`)
	assert.Contains(t, captured.Messages[1].Content, "Return JSON only.")
}

func TestAnnotate_ResponsesRequestShape(t *testing.T) {
	var captured map[string]string
	var path string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"output_text":"{\"label\": 1, \"confidence\": 0.8}"}`)
	}, func(c *ClientConfig) { c.Style = APIResponses })

	_, err := client.Annotate(context.Background(), "If the token is missing, the API rejects the request.")
	require.NoError(t, err)

	assert.Equal(t, "/v1/responses", path)
	assert.Equal(t, "test-model", captured["model"])
	assert.Contains(t, captured["input"], "If the token is missing")
	assert.Contains(t, captured["input"], "Return ONLY JSON")
}

func TestAnnotate_ContextCancellationStopsRetries(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Annotate(ctx, "s")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// The terminal error reports attempts actually made, not the
	// configured maximum.
	assert.Contains(t, err.Error(), "after 1 attempts")
	assert.NotContains(t, err.Error(), "after 3 attempts")
}

func TestAnnotate_CancellationMidRetriesReportsActualAttempts(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			cancel()
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Annotate(ctx, "s")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestBackoffDelay(t *testing.T) {
	unit := 250 * time.Millisecond
	assert.Equal(t, time.Duration(0), BackoffDelay(unit, 0))
	assert.Equal(t, unit, BackoffDelay(unit, 1))
	assert.Equal(t, 2*unit, BackoffDelay(unit, 2))
	assert.Equal(t, 3*unit, BackoffDelay(unit, 3))
}

func TestNewClient_Validation(t *testing.T) {
	config := DefaultClientConfig()
	_, err := NewClient(config)
	assert.ErrorIs(t, err, ErrEmptyAPIKey)

	config.APIKey = "k"
	config.Style = "grpc"
	_, err = NewClient(config)
	assert.Error(t, err)
}
