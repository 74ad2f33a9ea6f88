// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth produces the narrative answer to a research question from
// the retrieved source entries. The answer is grounded only in those
// entries and follows the in-text citation grammar of package cite.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/generate"
	"github.com/pdiddy/femcite/pkg/types"
)

// ErrNoSources is returned when Synthesize is called without entries.
var ErrNoSources = errors.New("no source entries to ground the answer")

// Synthesizer turns a question and its entries into a narrative answer.
type Synthesizer struct {
	Gen    generate.Generator
	Logger *zap.Logger
}

// New returns a Synthesizer using gen. A nil logger discards output.
func New(gen generate.Generator, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{Gen: gen, Logger: logger}
}

// Synthesize renders the answer prompt and returns the generated narrative.
// Errors from the generator are returned as is; an all-whitespace answer is
// reported as generate.ErrEmptyResponse.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, entries []types.SourceEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoSources
	}

	prompt, err := RenderPrompt(question, entries)
	if err != nil {
		return "", fmt.Errorf("rendering answer prompt: %w", err)
	}

	s.logger().Debug("synthesizing answer",
		zap.Int("entries", len(entries)),
		zap.Int("prompt_bytes", len(prompt)))

	answer, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", generate.ErrEmptyResponse
	}
	return answer, nil
}

func (s *Synthesizer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
