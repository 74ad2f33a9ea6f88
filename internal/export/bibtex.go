// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/pdiddy/femcite/internal/cite"
	"github.com/pdiddy/femcite/pkg/types"
)

// CitationKey returns the key of the entry at index i: femcite1, femcite2, ...
func CitationKey(i int) string {
	return fmt.Sprintf("femcite%d", i+1)
}

// Bibliography renders one @article record per entry that has a DOI. Keys
// keep the entry's position in the full list, so with entries 1 and 3
// carrying DOIs the keys are femcite1 and femcite3.
func Bibliography(entries []types.SourceEntry) string {
	var records []string
	for i, e := range entries {
		if !e.HasDOI() {
			continue
		}
		records = append(records, bibRecord(CitationKey(i), e))
	}
	if len(records) == 0 {
		return ""
	}
	return strings.Join(records, "\n")
}

func bibRecord(key string, e types.SourceEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@article{%s,\n", key)
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(e.Title))
	if authors := bibAuthors(e.Authors); authors != "" {
		fmt.Fprintf(&b, "  author = {%s},\n", authors)
	}
	if e.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", e.Year)
	}
	fmt.Fprintf(&b, "  doi = {%s},\n", strings.TrimSpace(e.DOI))
	b.WriteString("}\n")
	return b.String()
}

// bibAuthors joins the parsed names with " and " as BibTeX requires.
func bibAuthors(authors string) string {
	parsed := cite.SplitAuthors(authors)
	names := make([]string, len(parsed))
	for i, a := range parsed {
		names[i] = escapeLatex(a.Name)
	}
	return strings.Join(names, " and ")
}

// escapeLatex escapes characters with special meaning in LaTeX.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
