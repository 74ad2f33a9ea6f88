// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"
)

// OpenAIOptions configures an OpenAIBackend.
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration

	// HTTPClient overrides the SDK's default client (tests use httptest clients).
	HTTPClient *http.Client

	// Limiter throttles calls; nil disables throttling.
	Limiter *rate.Limiter

	// MaxRetries is passed to the SDK's own retry policy for transient errors.
	MaxRetries int
}

// OpenAIBackend calls an OpenAI-compatible chat completions API.
type OpenAIBackend struct {
	client    openai.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
}

// NewOpenAIBackend builds a backend from opts.
func NewOpenAIBackend(opts OpenAIOptions) *OpenAIBackend {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIBackend{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
		limiter:   opts.Limiter,
	}
}

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if err := wait(ctx, b.limiter); err != nil {
		return "", err
	}

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(b.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("calling chat completions API: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
