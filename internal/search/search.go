// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves scholarly source entries from the semantic search
// service. Relevance ranking belongs to the service; results are consumed in
// the order returned.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/femcite/pkg/types"
)

// Retriever fetches the entries most relevant to a query. The pipeline
// depends on this interface so tests can supply a fake.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]types.SourceEntry, error)
}

// RetrieverFunc adapts an ordinary function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, query string, topK int) ([]types.SourceEntry, error)

// Retrieve calls f.
func (f RetrieverFunc) Retrieve(ctx context.Context, query string, topK int) ([]types.SourceEntry, error) {
	return f(ctx, query, topK)
}

// FormatTable writes entries as a human-readable table to w.
func FormatTable(entries []types.SourceEntry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-28s  %-4s  %s\n",
		"Rank", "Title", "Authors", "Year", "DOI")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, e := range entries {
		year := ""
		if e.Year > 0 {
			year = fmt.Sprintf("%d", e.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-28s  %-4s  %s\n",
			i+1, truncate(e.Title, 60), truncate(e.Authors, 28), year, e.DOI)
	}

	fmt.Fprintf(w, "\n%d results\n", len(entries))
}

// FormatJSON writes entries as indented JSON to w.
func FormatJSON(entries []types.SourceEntry, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
