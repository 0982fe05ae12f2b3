package application

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-concord/infrastructure/llm"
)

// EnvAPIKey is the environment variable holding the service credential.
// It is read exactly once, inside Load, at the process boundary.
const EnvAPIKey = "OPENAI_API_KEY"

// DefaultGoldLabelColumn is the gold file column scored against
// predictions when none is configured.
const DefaultGoldLabelColumn = "Causal"

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config is the run configuration for annotation and scoring. It is
// loaded once at startup and passed by reference; no package reads the
// environment on its own.
type Config struct {
	// Model is the model identifier used for annotation requests.
	Model string `yaml:"model" validate:"required"`

	// API selects the request/reply envelope family.
	API string `yaml:"api" validate:"required,oneof=chat_completions responses"`

	// BaseURL overrides the provider endpoint root, e.g. for proxies.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// MaxAttempts is the total number of call attempts per sentence.
	MaxAttempts int `yaml:"max_attempts" validate:"required,min=1,max=10"`

	// BackoffUnitMS is the linear backoff unit in milliseconds.
	BackoffUnitMS int `yaml:"backoff_unit_ms" validate:"min=0,max=60000"`

	// TimeoutSeconds bounds each individual HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=1,max=600"`

	// Workers bounds concurrent annotation calls; 1 means sequential.
	Workers int `yaml:"workers" validate:"min=1,max=64"`

	// CallDelayMS paces annotation calls; 0 disables pacing.
	CallDelayMS int `yaml:"call_delay_ms" validate:"min=0,max=600000"`

	// Limit caps the number of sentences annotated; 0 means no cap.
	Limit int `yaml:"limit" validate:"min=0"`

	// GoldLabelColumn names the gold file column to score against.
	GoldLabelColumn string `yaml:"gold_label_column" validate:"required"`

	// APIKey is the service credential, environment-supplied and never
	// read from the configuration file.
	APIKey string `yaml:"-" validate:"required"`
}

// DefaultConfig returns the built-in configuration. The credential is
// left empty; Load fills it from the environment.
func DefaultConfig() Config {
	return Config{
		Model:           llm.DefaultModel,
		API:             string(llm.APIChatCompletions),
		BaseURL:         llm.DefaultBaseURL,
		MaxAttempts:     llm.DefaultMaxAttempts,
		BackoffUnitMS:   int(llm.DefaultBackoffUnit / time.Millisecond),
		TimeoutSeconds:  int(llm.DefaultTimeout / time.Second),
		Workers:         DefaultWorkers,
		GoldLabelColumn: DefaultGoldLabelColumn,
	}
}

// Load builds the run configuration: defaults, then the optional YAML
// file, then the environment credential, then validation. A missing
// credential or an invalid file is a configuration error and terminal
// before any processing begins.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.APIKey = os.Getenv(EnvAPIKey)
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("missing credential: set %s", EnvAPIKey)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ClientConfig converts the run configuration into the annotation
// client's configuration.
func (c Config) ClientConfig() llm.ClientConfig {
	return llm.ClientConfig{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Style:       llm.APIStyle(c.API),
		MaxAttempts: c.MaxAttempts,
		BackoffUnit: time.Duration(c.BackoffUnitMS) * time.Millisecond,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
		Temperature: llm.DefaultTemperature,
	}
}

// LabelerOptions converts the run configuration into batch driver options.
func (c Config) LabelerOptions() []LabelerOption {
	return []LabelerOption{
		WithWorkers(c.Workers),
		WithCallDelay(time.Duration(c.CallDelayMS) * time.Millisecond),
	}
}
