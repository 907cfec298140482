// Package config loads and validates engine configuration.
//
// Configuration problems are reported as hard failures at setup time only;
// steady-state operation never consults the loader again except through the
// live-reload watcher.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Engine holds prediction engine tunables.
type Engine struct {
	// DebounceMs is the quiet period after an edit before a request fires.
	DebounceMs int `toml:"debounce_ms"`

	// IdleMs is the quiet period after cursor movement before an idle
	// (non-edit) request fires.
	IdleMs int `toml:"idle_ms"`

	// RequestTimeoutMs bounds time spent in flight; the late response is
	// treated as stale.
	RequestTimeoutMs int `toml:"request_timeout_ms"`

	// HistoryLimit caps per-document edit history used as context.
	HistoryLimit int `toml:"history_limit"`

	// SelectionContext includes captured selections in request payloads.
	SelectionContext bool `toml:"selection_context"`

	// IgnoreWhitespace treats whitespace-only diffs as no prediction.
	IgnoreWhitespace bool `toml:"ignore_whitespace"`
}

// Backend holds transport settings.
type Backend struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Path       string `toml:"path"`
	CacheTTLMs int    `toml:"cache_ttl_ms"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
}

// Config is the full configuration tree.
type Config struct {
	Engine  Engine  `toml:"engine"`
	Backend Backend `toml:"backend"`
	Log     Log     `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			DebounceMs:       250,
			IdleMs:           1500,
			RequestTimeoutMs: 10000,
			HistoryLimit:     20,
			SelectionContext: true,
		},
		Backend: Backend{
			BaseURL:    "http://localhost:8080",
			Path:       "/v1/predict",
			CacheTTLMs: 30000,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path and merges it over the defaults. A missing file yields the
// defaults without error; a malformed file is a *ParseError.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges. Returns a *ValidationError on the first
// problem found.
func (c Config) Validate() error {
	if c.Engine.DebounceMs < 0 {
		return &ValidationError{Field: "engine.debounce_ms", Message: "must not be negative"}
	}
	if c.Engine.IdleMs < 0 {
		return &ValidationError{Field: "engine.idle_ms", Message: "must not be negative"}
	}
	if c.Engine.RequestTimeoutMs <= 0 {
		return &ValidationError{Field: "engine.request_timeout_ms", Message: "must be positive"}
	}
	if c.Engine.HistoryLimit <= 0 {
		return &ValidationError{Field: "engine.history_limit", Message: "must be positive"}
	}
	if c.Backend.BaseURL == "" {
		return &ValidationError{Field: "backend.base_url", Message: "must not be empty"}
	}
	return nil
}

// DebounceDelay returns the edit debounce as a duration.
func (e Engine) DebounceDelay() time.Duration {
	return time.Duration(e.DebounceMs) * time.Millisecond
}

// IdleDelay returns the idle trigger delay as a duration.
func (e Engine) IdleDelay() time.Duration {
	return time.Duration(e.IdleMs) * time.Millisecond
}

// RequestTimeout returns the in-flight bound as a duration.
func (e Engine) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutMs) * time.Millisecond
}

// CacheTTL returns the backend cache TTL as a duration.
func (b Backend) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLMs) * time.Millisecond
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports an out-of-range configuration value.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Message)
}
