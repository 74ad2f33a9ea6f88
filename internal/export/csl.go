// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/femcite/internal/cite"
	"github.com/pdiddy/femcite/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML form, readable by Pandoc and
// reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL encodes every entry as a CSL-YAML list. Ids match the BibTeX keys.
func CSL(entries []types.SourceEntry) ([]byte, error) {
	items := make([]CSLItem, len(entries))
	for i, e := range entries {
		items[i] = toCSLItem(CitationKey(i), e)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toCSLItem(id string, e types.SourceEntry) CSLItem {
	item := CSLItem{
		ID:       id,
		Type:     "article-journal",
		Title:    e.Title,
		Abstract: e.Abstract,
		DOI:      strings.TrimSpace(e.DOI),
		URL:      e.DOIURL(),
	}
	for _, a := range cite.SplitAuthors(e.Authors) {
		item.Author = append(item.Author, cslName(a))
	}
	if e.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{e.Year}}}
	}
	return item
}

// cslName splits an author into family and given parts. "Surname, Given"
// names split at the comma; "Given Surname" names split at the surname.
// Single-token names use the literal field.
func cslName(a cite.Author) CSLName {
	if family, given, ok := strings.Cut(a.Name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	given := strings.TrimSpace(strings.TrimSuffix(a.Name, a.Surname))
	if given == "" || given == a.Name {
		return CSLName{Literal: a.Name}
	}
	return CSLName{Family: a.Surname, Given: given}
}
