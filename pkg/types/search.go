// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the femcite pipeline:
// scholarly source entries, conversation turns, reference-list styles, and
// configuration.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// DOIResolver is the URL prefix that DOIs are appended to for display links.
const DOIResolver = "https://doi.org/"

// SourceEntry is one scholarly work returned by the search service.
// Entries are treated as immutable once fetched.
type SourceEntry struct {
	// Title is the work's title as returned by the search service.
	Title string `json:"title" yaml:"title"`

	// Authors is the pre-joined, ordered author list (e.g. "Blair, A. & Hoskin, R.").
	Authors string `json:"authors" yaml:"authors"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// DOI is the bare DOI (e.g. "10.1177/1363460718"); empty when the
	// service returned none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the work's abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Citation is the derived display string; see DisplayCitation.
	Citation string `json:"citation" yaml:"citation"`
}

// HasDOI reports whether the entry carries a DOI.
func (e SourceEntry) HasDOI() bool {
	return strings.TrimSpace(e.DOI) != ""
}

// DOIURL returns the resolver link for the entry's DOI, or "" without one.
func (e SourceEntry) DOIURL() string {
	if !e.HasDOI() {
		return ""
	}
	return DOIResolver + strings.TrimSpace(e.DOI)
}

// DisplayCitation renders "{title} ({year}) by {authors}", followed by a
// DOI link when the entry has a DOI.
func (e SourceEntry) DisplayCitation() string {
	c := fmt.Sprintf("%s (%d) by %s", e.Title, e.Year, e.Authors)
	if e.HasDOI() {
		c += fmt.Sprintf(" — [DOI link](%s)", e.DOIURL())
	}
	return c
}

// WithCitation returns a copy of e with Citation populated.
func (e SourceEntry) WithCitation() SourceEntry {
	e.Citation = e.DisplayCitation()
	return e
}

// Style is a reference-list formatting convention. It governs the
// standalone reference list only; in-text citations always follow the
// author/ampersand/et-al convention.
type Style string

const (
	StyleAPA     Style = "APA"
	StyleMLA     Style = "MLA"
	StyleChicago Style = "Chicago"
)

// Styles lists the supported reference-list styles in display order.
var Styles = []Style{StyleAPA, StyleMLA, StyleChicago}

// ErrUnknownStyle is returned by ParseStyle for unsupported style names.
var ErrUnknownStyle = errors.New("unknown citation style")

// ParseStyle maps a case-insensitive style name to a Style.
func ParseStyle(s string) (Style, error) {
	for _, st := range Styles {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q: want one of APA, MLA, Chicago", ErrUnknownStyle, s)
}

// Label returns the speaker label used for the citation block of a turn set.
func (s Style) Label() string {
	return string(s) + citationsSuffix
}
