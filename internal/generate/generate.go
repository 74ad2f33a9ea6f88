// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate sends a single free-text prompt to a text generation
// service and returns the generated payload. Backends implement Generator so
// the synthesizer and formatter can be tested with a fake.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/femcite/internal/httputil"
	"github.com/pdiddy/femcite/pkg/types"
)

// Generator turns one prompt into one generated text payload.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("generation service returned empty content")

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("generation API key is not configured")

const (
	defaultMaxTokens      = 4096
	defaultOpenAIModel    = "gpt-4"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultTimeout        = 3 * time.Minute
)

// New builds the backend selected by cfg.Provider (openai when empty).
func New(cfg types.GenerationConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIBackend(OpenAIOptions{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     model,
			MaxTokens: maxTokens,
			Timeout:   timeout,
			Limiter:   httputil.NewLimiter(cfg.RequestsPerMinute),
		}), nil
	case types.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return &ClaudeBackend{
			APIKey:    cfg.APIKey,
			Model:     model,
			BaseURL:   cfg.BaseURL,
			MaxTokens: maxTokens,
			UserAgent: cfg.UserAgent,
			Client:    httputil.NewLimitedClient(&http.Client{Timeout: timeout}, cfg.RequestsPerMinute),
		}, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q: want openai or anthropic", cfg.Provider)
	}
}

// wait blocks on lim when it is set.
func wait(ctx context.Context, lim *rate.Limiter) error {
	if lim == nil {
		return nil
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}
