package llm

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

// APIStyle selects which endpoint of the provider family the client
// talks to. Both styles carry the same JSON annotation object; they
// differ only in the reply envelope.
type APIStyle string

const (
	// APIChatCompletions uses the chat-completions endpoint, whose reply
	// nests the payload under a list of choices.
	APIChatCompletions APIStyle = "chat_completions"

	// APIResponses uses the structured-output endpoint, whose reply has
	// several known nesting forms.
	APIResponses APIStyle = "responses"
)

// Default configuration values for the annotation client.
const (
	// DefaultBaseURL is the provider endpoint root.
	DefaultBaseURL = "https://api.openai.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"
	// DefaultMaxAttempts is the total number of call attempts, including
	// the first.
	DefaultMaxAttempts = 3
	// DefaultBackoffUnit is the linear backoff unit: the delay before
	// retry k is DefaultBackoffUnit * k.
	DefaultBackoffUnit = 1 * time.Second
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 60 * time.Second
	// DefaultTemperature keeps judgments near-deterministic.
	DefaultTemperature = 0.2
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// ClientConfig holds everything the annotation client needs for a run.
// It is constructed once at the process boundary and passed in; the
// client reads no environment and holds no global state.
type ClientConfig struct {
	// APIKey is the bearer credential for the service.
	APIKey string `validate:"required"`

	// Model is the model identifier sent with every request.
	Model string `validate:"required"`

	// BaseURL is the endpoint root, overridable for tests and proxies.
	BaseURL string `validate:"required,url"`

	// Style selects the request/reply envelope family.
	Style APIStyle `validate:"required,oneof=chat_completions responses"`

	// MaxAttempts is the total number of attempts per sentence.
	MaxAttempts int `validate:"required,min=1,max=10"`

	// BackoffUnit is the linear backoff unit between attempts.
	BackoffUnit time.Duration `validate:"min=0"`

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration `validate:"min=0"`

	// Temperature is forwarded on chat-completions requests.
	Temperature float64 `validate:"min=0,max=2"`
}

// DefaultClientConfig returns a ClientConfig with the package defaults.
// The API key must still be supplied by the caller.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:       DefaultModel,
		BaseURL:     DefaultBaseURL,
		Style:       APIChatCompletions,
		MaxAttempts: DefaultMaxAttempts,
		BackoffUnit: DefaultBackoffUnit,
		Timeout:     DefaultTimeout,
		Temperature: DefaultTemperature,
	}
}

// Validate checks the configuration, including that BaseURL parses as an
// absolute HTTP(S) URL.
func (c ClientConfig) Validate() error {
	if c.APIKey == "" {
		return ErrEmptyAPIKey
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("client configuration validation failed: %w", err)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BaseURL %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BaseURL scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// ClampFloat64 clamps a value into [min, max].
func ClampFloat64(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
