package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ahrav/go-concord/internal/domain"
	"github.com/ahrav/go-concord/internal/ports"
)

// ProviderName identifies the provider family in errors and metrics.
const ProviderName = "openai"

// DefaultConfidence is recorded when the model omits the confidence field.
const DefaultConfidence = 0.5

// SleepFunc performs the delay between retry attempts. It is injectable
// so tests can exercise exhausted retries without real time elapsing;
// the retry decision and the delay computation stay pure.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepWithContext is the production SleepFunc. It aborts the delay when
// the context is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffDelay returns the linear backoff delay after the given number
// of completed attempts: unit after the first failure, 2*unit after the
// second, and so on.
func BackoffDelay(unit time.Duration, completedAttempts int) time.Duration {
	if completedAttempts < 1 {
		return 0
	}
	return unit * time.Duration(completedAttempts)
}

var _ ports.Annotator = (*Client)(nil)

// Client obtains one binary causal judgment with confidence per sentence
// from the structured-annotation service. It speaks both known envelope
// styles of the provider family over plain HTTP so that reply bytes stay
// available for shape sniffing and for status/body diagnostics.
//
// The client holds no cross-call state: calls are independent and safe
// to run concurrently.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	classifier *ErrorClassifier
	sleep      SleepFunc
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, typically for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleepFunc replaces the retry delay mechanism, typically for tests.
func WithSleepFunc(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates an annotation client from validated configuration.
func NewClient(config ClientConfig, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		classifier: &ErrorClassifier{Provider: ProviderName},
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.config.Model }

// Annotate judges one sentence, retrying transient failures with linear
// backoff. A non-success status and an unextractable body are both
// retried; after MaxAttempts the call fails terminally with an error
// carrying the number of attempts actually made, the last observed
// status code, and a truncated reply body. Cancellation stops the loop
// early, so the reported count can be below MaxAttempts.
// A failed call never fabricates a default label.
func (c *Client) Annotate(ctx context.Context, sentence string) (domain.AnnotationResult, error) {
	payload, endpoint, err := c.buildRequest(sentence)
	if err != nil {
		return domain.AnnotationResult{}, err
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, BackoffDelay(c.config.BackoffUnit, attempt-1)); err != nil {
				return domain.AnnotationResult{}, fmt.Errorf("context cancelled during retry: %w", err)
			}
		}

		result, err := c.attempt(ctx, endpoint, payload, sentence)
		attempts = attempt
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return domain.AnnotationResult{}, fmt.Errorf("annotation failed after %d attempts: %w", attempts, lastErr)
}

// buildRequest renders the endpoint URL and JSON payload for the
// configured API style. The payload is identical across attempts.
func (c *Client) buildRequest(sentence string) (payload []byte, endpoint string, err error) {
	switch c.config.Style {
	case APIResponses:
		endpoint = c.config.BaseURL + "/v1/responses"
		payload, err = json.Marshal(map[string]string{
			"model": c.config.Model,
			"input": SystemPromptResponses + "\n\n" + UserMessage(sentence),
		})
	default:
		endpoint = c.config.BaseURL + "/v1/chat/completions"
		req := openai.ChatCompletionRequest{
			Model: c.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: SystemPromptChat},
				{Role: openai.ChatMessageRoleUser, Content: UserMessage(sentence)},
			},
			Temperature: float32(c.config.Temperature),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		}
		payload, err = json.Marshal(req)
	}
	if err != nil {
		return nil, "", fmt.Errorf("marshaling request payload: %w", err)
	}
	return payload, endpoint, nil
}

// attempt performs one HTTP round trip and full reply normalization.
func (c *Client) attempt(ctx context.Context, endpoint string, payload []byte, sentence string) (domain.AnnotationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.AnnotationResult{}, NewProviderError(ProviderName, ErrorTypeUnknown, 0, "building request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AnnotationResult{}, c.classifier.ClassifyContextError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AnnotationResult{}, NewProviderError(ProviderName, ErrorTypeNetwork, resp.StatusCode, "reading response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.AnnotationResult{}, c.classifier.ClassifyHTTPError(resp.StatusCode, string(body), nil)
	}
	if len(body) == 0 {
		return domain.AnnotationResult{}, c.classifier.ClassifyMalformedBody(resp.StatusCode, "", ErrEmptyResponse)
	}

	content, _, err := ExtractReply(body)
	if err != nil {
		return domain.AnnotationResult{}, c.classifier.ClassifyMalformedBody(resp.StatusCode, string(body), err)
	}

	return c.normalize(sentence, content, resp.StatusCode, body)
}

// annotationReply is the JSON object the model is instructed to return.
// Pointer fields distinguish absent from zero.
type annotationReply struct {
	Label      *float64 `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// normalize parses the extracted reply text and applies label and
// confidence normalization. The label is 1 exactly when the reply's
// integer value equals 1; anything else, including out-of-range values,
// maps to 0. Confidence is clamped into [0, 1] and defaults to
// DefaultConfidence when absent.
func (c *Client) normalize(sentence, content string, status int, body []byte) (domain.AnnotationResult, error) {
	var reply annotationReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return domain.AnnotationResult{}, c.classifier.ClassifyMalformedBody(status, string(body), err)
	}
	if reply.Label == nil {
		return domain.AnnotationResult{}, c.classifier.ClassifyMalformedBody(status, string(body), ErrMissingLabel)
	}

	label := domain.NotCausal
	if int(*reply.Label) == 1 {
		label = domain.Causal
	}

	confidence := DefaultConfidence
	if reply.Confidence != nil {
		confidence = ClampFloat64(*reply.Confidence, 0, 1)
	}

	return domain.AnnotationResult{Text: sentence, Label: label, Confidence: confidence}, nil
}
