// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite implements the in-text citation grammar used in every
// narrative answer: (Surname, Year) for one author, (A & B, Year) for two,
// and (A et al., Year) for more than two. The grammar is independent of the
// reference-list style.
package cite

import (
	"fmt"
	"regexp"
	"strings"
)

// Author is one name parsed from a pre-joined author string.
type Author struct {
	// Name is the name as it appeared (e.g. "Blair, K. L." or "Karen Blair").
	Name string

	// Surname is the family name used for in-text citations.
	Surname string
}

// initialsRe matches a token made only of initials, such as "K. L." or "R.A.".
var initialsRe = regexp.MustCompile(`^(?:\p{Lu}\.?[\s-]*)+$`)

// connectorRe matches the conjunctions used between the last two names.
var connectorRe = regexp.MustCompile(`\s*(?:,\s*)?(?:&|\band\b)\s*`)

// SplitAuthors parses an author string into ordered names. It understands
// "Surname, Initials" lists ("Blair, K. L., & Hoskin, R. A."), plain
// comma-separated full names ("Karen Blair, Rhea Hoskin"), a single
// "Surname, Given" name ("Hoskin, Rhea Ashley"), and semicolon-separated
// lists ("Blair, Karen; Hoskin, Rhea").
func SplitAuthors(s string) []Author {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.Contains(s, ";") {
		var authors []Author
		for _, part := range strings.Split(connectorRe.ReplaceAllString(s, ";"), ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			surname := lastWord(part)
			if before, _, ok := strings.Cut(part, ","); ok {
				surname = strings.TrimSpace(before)
			}
			authors = append(authors, Author{Name: part, Surname: surname})
		}
		return authors
	}

	var tokens []string
	for _, tok := range strings.Split(connectorRe.ReplaceAllString(s, ","), ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	// "Hoskin, Rhea Ashley" is one author written surname first.
	if len(tokens) == 2 && !connectorRe.MatchString(s) && !strings.Contains(tokens[0], " ") {
		return []Author{{Name: tokens[0] + ", " + tokens[1], Surname: tokens[0]}}
	}

	var authors []Author
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if i+1 < len(tokens) && initialsRe.MatchString(tokens[i+1]) && !initialsRe.MatchString(tok) {
			authors = append(authors, Author{Name: tok + ", " + tokens[i+1], Surname: tok})
			i++
			continue
		}
		authors = append(authors, Author{Name: tok, Surname: lastWord(tok)})
	}
	return authors
}

// Surnames returns the surnames of SplitAuthors(s) in order.
func Surnames(s string) []string {
	authors := SplitAuthors(s)
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Surname
	}
	return names
}

// AuthorPart returns the author portion of an in-text citation for the
// given author string, without the year.
func AuthorPart(authors string) string {
	names := Surnames(authors)
	switch len(names) {
	case 0:
		return "Anonymous"
	case 1:
		return names[0]
	case 2:
		return names[0] + " & " + names[1]
	default:
		return names[0] + " et al."
	}
}

// InText returns the body of a parenthetical citation, e.g.
// "Blair & Hoskin, 2019". A zero year renders as "n.d.".
func InText(authors string, year int) string {
	y := "n.d."
	if year > 0 {
		y = fmt.Sprintf("%d", year)
	}
	return AuthorPart(authors) + ", " + y
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,")
}
