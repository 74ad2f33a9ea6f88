// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/femcite/pkg/types"
)

// FindingKind classifies a verification finding.
type FindingKind string

const (
	// FindingUnknownSource marks a citation with no matching supplied entry.
	FindingUnknownSource FindingKind = "unknown_source"

	// FindingAuthorGrammar marks a citation whose author part does not
	// follow the ampersand and et al. rules.
	FindingAuthorGrammar FindingKind = "author_grammar"

	// FindingTerminology marks a forbidden term.
	FindingTerminology FindingKind = "terminology"

	// FindingSourceReference marks references to sources by number or to
	// "the provided sources" instead of authors and years.
	FindingSourceReference FindingKind = "source_reference"
)

// Finding is one problem detected in a narrative answer.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Text    string      `json:"text"`
	Message string      `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %q: %s", f.Kind, f.Text, f.Message)
}

var (
	// parenRe matches parenthetical groups that contain a four-digit year.
	parenRe = regexp.MustCompile(`\(([^()]*\d{4}[a-z]?)\)`)

	// citeRe splits one citation into its author part and year.
	citeRe = regexp.MustCompile(`^(.+?),\s*(\d{4})[a-z]?$`)

	// leadRe strips signal phrases such as "see" or "e.g.," from a citation.
	leadRe = regexp.MustCompile(`^(?i:(?:see also|see|e\.g\.,?|cf\.|i\.e\.,?)\s+)`)

	termRe   = regexp.MustCompile(`(?i)\bfeminicit(?:y|ies)\b`)
	sourceRe = regexp.MustCompile(`(?i)\bthe provided sources?\b|\bsources? \d+\b`)
)

// Verify checks a narrative answer against the entries it was generated
// from. It reports parenthetical citations that match no entry, author
// parts that break the two-author ampersand or et al. rules, the term
// "feminicity", and references to sources by number. Findings are in text
// order within each category.
func Verify(narrative string, entries []types.SourceEntry) []Finding {
	var findings []Finding

	for _, m := range parenRe.FindAllStringSubmatch(narrative, -1) {
		for _, part := range strings.Split(m[1], ";") {
			part = leadRe.ReplaceAllString(strings.TrimSpace(part), "")
			cm := citeRe.FindStringSubmatch(part)
			if cm == nil {
				continue
			}
			year, _ := strconv.Atoi(cm[2])
			findings = append(findings, checkCitation(part, strings.TrimSpace(cm[1]), year, entries)...)
		}
	}

	for _, m := range termRe.FindAllString(narrative, -1) {
		findings = append(findings, Finding{
			Kind:    FindingTerminology,
			Text:    m,
			Message: `use "femininity"`,
		})
	}

	for _, m := range sourceRe.FindAllString(narrative, -1) {
		findings = append(findings, Finding{
			Kind:    FindingSourceReference,
			Text:    m,
			Message: "refer to authors and years",
		})
	}

	return findings
}

func checkCitation(text, authorPart string, year int, entries []types.SourceEntry) []Finding {
	first := firstSurname(authorPart)

	var expected []string
	for _, e := range entries {
		if e.Year != year {
			continue
		}
		names := Surnames(e.Authors)
		if len(names) == 0 || !strings.EqualFold(names[0], first) {
			continue
		}
		want := AuthorPart(e.Authors)
		if normalize(want) == normalize(authorPart) {
			return nil
		}
		expected = append(expected, want)
	}

	if len(expected) == 0 {
		return []Finding{{
			Kind:    FindingUnknownSource,
			Text:    text,
			Message: "no supplied source matches this author and year",
		}}
	}

	msg := fmt.Sprintf("want (%s, %d)", expected[0], year)
	if strings.Contains(authorPart, " and ") {
		msg = `use "&" between two authors; ` + msg
	}
	return []Finding{{Kind: FindingAuthorGrammar, Text: text, Message: msg}}
}

// firstSurname returns the leading surname of a citation author part such
// as "Blair & Hoskin" or "Blair et al.".
func firstSurname(authorPart string) string {
	s := strings.TrimSuffix(strings.TrimSpace(authorPart), "et al.")
	if i := strings.IndexAny(s, "&,"); i >= 0 {
		s = s[:i]
	}
	if before, _, ok := strings.Cut(s, " and "); ok {
		s = before
	}
	return strings.Trim(strings.TrimSpace(s), ".,")
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
