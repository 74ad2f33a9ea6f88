// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders a reference list for a set of source entries in a
// requested style. Results are memoized for the lifetime of the process,
// keyed by the content of the entries and the style, so repeating a request
// never costs a second generation call.
package format

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/generate"
	"github.com/pdiddy/femcite/pkg/types"
)

var formatPromptTmpl = template.Must(template.New("format").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`Format the following references in {{.Style}} style. Do not add any references. Only return formatted references.
Do not omit or reorder any references.

References:
{{range $i, $e := .Entries}}{{if $i}}
{{end}}{{inc $i}}. {{$e.Citation}}{{end}}
`))

// Formatter produces style-specific reference lists through a generator and
// caches them by content. It is safe for concurrent use.
type Formatter struct {
	gen    generate.Generator
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]string
	calls atomic.Int64
}

// New returns a Formatter using gen. A nil logger discards output.
func New(gen generate.Generator, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{gen: gen, logger: logger, cache: make(map[string]string)}
}

// Format returns the reference list for entries in style. Value-equal
// arguments return the cached text without calling the generator. The lock
// is not held during generation, so concurrent misses on one key may each
// call the generator; the first successful result is kept. Failures are not
// cached.
func (f *Formatter) Format(ctx context.Context, entries []types.SourceEntry, style types.Style) (string, error) {
	key := CacheKey(entries, style)

	f.mu.Lock()
	cached, ok := f.cache[key]
	f.mu.Unlock()
	if ok {
		f.logger.Debug("format cache hit", zap.String("key", key[:12]), zap.String("style", string(style)))
		return cached, nil
	}

	prompt, err := RenderPrompt(entries, style)
	if err != nil {
		return "", fmt.Errorf("rendering format prompt: %w", err)
	}

	f.calls.Add(1)
	text, err := f.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", generate.ErrEmptyResponse
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.cache[key]; ok {
		return prev, nil
	}
	f.cache[key] = text
	return text, nil
}

// Calls reports how many generation calls Format has made.
func (f *Formatter) Calls() int64 {
	return f.calls.Load()
}

// Len reports the number of cached reference lists.
func (f *Formatter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}

// CacheKey returns the hex SHA-256 of style and every entry field in order.
// Each field is length-prefixed so that no two distinct inputs share an
// encoding.
func CacheKey(entries []types.SourceEntry, style types.Style) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}
	write(string(style))
	write(strconv.Itoa(len(entries)))
	for _, e := range entries {
		write(e.Title)
		write(e.Authors)
		write(strconv.Itoa(e.Year))
		write(e.DOI)
		write(e.Abstract)
		write(e.Citation)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RenderPrompt builds the formatting prompt: one "{n}. {citation}" line per
// entry in order.
func RenderPrompt(entries []types.SourceEntry, style types.Style) (string, error) {
	var b strings.Builder
	err := formatPromptTmpl.Execute(&b, struct {
		Style   types.Style
		Entries []types.SourceEntry
	}{style, entries})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
