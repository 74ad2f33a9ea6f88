// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "femcite/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the semantic search service.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the full URL of the search service's search route.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey is an optional bearer token for the search service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// TopK is the number of entries requested per question (default 10).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// MaxRetries is the number of times the orchestrator retries a failed
	// retrieval (default 0).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GenerationProvider identifies the generation service backend.
type GenerationProvider string

const (
	ProviderOpenAI    GenerationProvider = "openai"
	ProviderAnthropic GenerationProvider = "anthropic"
)

// GenerationConfig holds settings for the text generation service.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: openai or anthropic.
	Provider GenerationProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider's default API base URL.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the length of each generated payload (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// RequestsPerMinute throttles outbound generation calls; 0 disables throttling.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ExportConfig holds settings for the persisted session artifacts.
type ExportConfig struct {
	// Dir is the base directory for artifacts.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// PerSession places each session's artifacts under Dir/<session-id>/.
	// When false every session writes to Dir directly.
	PerSession bool `json:"per_session" yaml:"per_session" mapstructure:"per_session"`

	// CSL also writes a CSL-YAML reference file.
	CSL bool `json:"csl" yaml:"csl" mapstructure:"csl"`
}

// ServerConfig holds settings for the HTTP session surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// DBPath is the SQLite file for session snapshots; empty keeps sessions in memory only.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// VerifyConfig controls the post-generation citation check.
type VerifyConfig struct {
	// Enabled runs the citation check on every synthesized narrative.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// Config groups all settings.
type Config struct {
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Verify     VerifyConfig     `json:"verify" yaml:"verify" mapstructure:"verify"`
}
