// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one research question through retrieval, answer
// synthesis, reference formatting, memory, and export. A question is
// processed at most once per session: resubmitting the last question is a
// no-op.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/cite"
	"github.com/pdiddy/femcite/internal/search"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/pkg/types"
)

// NoResultNotice is shown when the library has nothing for a question.
const NoResultNotice = "I couldn't locate anything in the library that connects to that topic. Try rephrasing your question or narrowing the focus."

// retryBaseDelay is the first wait between retrieval attempts. Tests
// override it.
var retryBaseDelay = time.Second

// Status describes what Submit did with a question.
type Status string

const (
	// StatusIgnored means the question was blank.
	StatusIgnored Status = "ignored"

	// StatusUnchanged means the question repeats the last one; nothing ran.
	StatusUnchanged Status = "unchanged"

	// StatusNoResult means retrieval found no entries.
	StatusNoResult Status = "no_result"

	// StatusAnswered means a new exchange was recorded and exported.
	StatusAnswered Status = "answered"
)

// Result is the outcome of one submission.
type Result struct {
	Status             Status              `json:"status"`
	Notice             string              `json:"notice,omitempty"`
	Question           string              `json:"question,omitempty"`
	Answer             string              `json:"answer,omitempty"`
	Style              types.Style         `json:"style,omitempty"`
	FormattedCitations string              `json:"formatted_citations,omitempty"`
	Turns              []types.ChatTurn    `json:"turns,omitempty"`
	Entries            []types.SourceEntry `json:"entries,omitempty"`
	Warnings           []cite.Finding      `json:"warnings,omitempty"`
}

// Synthesizer writes the narrative answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, entries []types.SourceEntry) (string, error)
}

// Formatter renders the reference list.
type Formatter interface {
	Format(ctx context.Context, entries []types.SourceEntry, style types.Style) (string, error)
}

// Exporter persists the artifacts of an exchange.
type Exporter interface {
	Persist(sessionID string, turns []types.ChatTurn, entries []types.SourceEntry) error
}

// Options tunes an Orchestrator.
type Options struct {
	// TopK is the number of entries requested per question.
	TopK int

	// MaxRetries is how many times a failed retrieval is retried.
	MaxRetries int

	// Verify runs cite.Verify on every answer and reports findings as warnings.
	Verify bool
}

// OptionsFromConfig derives Options from cfg.
func OptionsFromConfig(cfg types.Config) Options {
	return Options{
		TopK:       cfg.Search.TopK,
		MaxRetries: cfg.Search.MaxRetries,
		Verify:     cfg.Verify.Enabled,
	}
}

// Orchestrator sequences the stages for one question. It holds no session
// state of its own; callers serialize submissions per session.
type Orchestrator struct {
	retriever search.Retriever
	synth     Synthesizer
	formatter Formatter
	exporter  Exporter
	opts      Options
	logger    *zap.Logger
}

// New returns an Orchestrator. exporter may be nil to skip artifacts; a nil
// logger discards output.
func New(r search.Retriever, s Synthesizer, f Formatter, e Exporter, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK <= 0 {
		opts.TopK = search.DefaultTopK
	}
	return &Orchestrator{retriever: r, synth: s, formatter: f, exporter: e, opts: opts, logger: logger}
}

// Submit processes question for state in style. An empty style means APA.
//
// On success state holds exactly the new exchange. When a stage fails Submit
// returns a *QueryError and state is unchanged.
func (o *Orchestrator) Submit(ctx context.Context, state *session.State, question string, style types.Style) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{Status: StatusIgnored}, nil
	}
	if style == "" {
		style = types.StyleAPA
	}
	style, err := types.ParseStyle(string(style))
	if err != nil {
		return Result{}, err
	}

	log := o.logger.With(zap.String("session_id", state.ID))

	if question == state.LastQuestion {
		log.Debug("question unchanged, skipping")
		return memoryResult(StatusUnchanged, state), nil
	}

	start := time.Now()
	entries, err := o.retrieve(ctx, question)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return Result{}, &QueryError{Kind: KindRetrieval, Err: err}
	}
	log.Info("retrieved entries", zap.Int("count", len(entries)), zap.Duration("elapsed", time.Since(start)))

	if len(entries) == 0 {
		return Result{Status: StatusNoResult, Notice: NoResultNotice, Question: question}, nil
	}

	answer, err := o.synth.Synthesize(ctx, question, entries)
	if err != nil {
		log.Error("synthesis failed", zap.Error(err))
		return Result{}, &QueryError{Kind: KindSynthesis, Err: err}
	}

	formatted, err := o.formatter.Format(ctx, entries, style)
	if err != nil {
		log.Error("formatting failed", zap.Error(err))
		return Result{}, &QueryError{Kind: KindFormatting, Err: err}
	}

	var warnings []cite.Finding
	if o.opts.Verify {
		warnings = cite.Verify(answer, entries)
		for _, w := range warnings {
			log.Warn("citation check", zap.String("kind", string(w.Kind)), zap.String("text", w.Text), zap.String("message", w.Message))
		}
	}

	prev := state.Clone()
	session.Record(state, question, answer, style, formatted, entries)

	if o.exporter != nil {
		if err := o.exporter.Persist(state.ID, state.Turns, state.Entries); err != nil {
			*state = *prev
			log.Error("export failed", zap.Error(err))
			return Result{}, &QueryError{Kind: KindExport, Err: err}
		}
	}

	log.Info("question answered",
		zap.String("style", string(style)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", time.Since(start)))

	res := memoryResult(StatusAnswered, state)
	res.Warnings = warnings
	return res, nil
}

// retrieve calls the retriever, retrying failures with exponential backoff
// up to MaxRetries times.
func (o *Orchestrator) retrieve(ctx context.Context, question string) ([]types.SourceEntry, error) {
	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * retryBaseDelay
			o.logger.Warn("retrying retrieval", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		entries, err := o.retriever.Retrieve(ctx, question, o.opts.TopK)
		if err == nil {
			return entries, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
	}
	if o.opts.MaxRetries > 0 {
		return nil, fmt.Errorf("after %d attempts: %w", o.opts.MaxRetries+1, lastErr)
	}
	return nil, lastErr
}

func memoryResult(status Status, state *session.State) Result {
	res := Result{
		Status:             status,
		Question:           state.LastQuestion,
		Style:              state.Style,
		FormattedCitations: state.FormattedCitations,
		Turns:              append([]types.ChatTurn(nil), state.Turns...),
		Entries:            append([]types.SourceEntry(nil), state.Entries...),
	}
	if len(state.Turns) > 1 {
		res.Answer = state.Turns[1].Message
	}
	return res
}
