// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/femcite/pkg/types"
)

func TestSurnames(t *testing.T) {
	tests := []struct {
		name    string
		authors string
		want    []string
	}{
		{"empty", "", []string{}},
		{"single initials", "Hoskin, R. A.", []string{"Hoskin"}},
		{"two with ampersand", "Blair, K. L., & Hoskin, R. A.", []string{"Blair", "Hoskin"}},
		{"three with ampersand", "Blair, K. L., Hoskin, R. A., & Courtice, E. L.", []string{"Blair", "Hoskin", "Courtice"}},
		{"full names", "Karen Blair, Rhea Ashley Hoskin", []string{"Blair", "Hoskin"}},
		{"full names with and", "Karen Blair and Rhea Hoskin", []string{"Blair", "Hoskin"}},
		{"semicolons", "Blair, Karen; Hoskin, Rhea; Courtice, Eden", []string{"Blair", "Hoskin", "Courtice"}},
		{"single full name", "Rhea Ashley Hoskin", []string{"Hoskin"}},
		{"compact initials", "Serano, J., Hoskin, R.A.", []string{"Serano", "Hoskin"}},
		{"surname then given names", "Hoskin, Rhea Ashley", []string{"Hoskin"}},
		{"surname then given name", "Serano, Julia", []string{"Serano"}},
		{"two full names", "Karen Blair, Rhea Hoskin", []string{"Blair", "Hoskin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Surnames(tt.authors))
		})
	}
}

func TestSplitAuthorsKeepsNames(t *testing.T) {
	got := SplitAuthors("Blair, K. L., & Hoskin, R. A.")
	require.Len(t, got, 2)
	assert.Equal(t, Author{Name: "Blair, K. L.", Surname: "Blair"}, got[0])
	assert.Equal(t, Author{Name: "Hoskin, R. A.", Surname: "Hoskin"}, got[1])
}

func TestInText(t *testing.T) {
	tests := []struct {
		name    string
		authors string
		year    int
		want    string
	}{
		{"one author", "Hoskin, R. A.", 2017, "Hoskin, 2017"},
		{"two authors use ampersand", "Blair, K. L., & Hoskin, R. A.", 2019, "Blair & Hoskin, 2019"},
		{"three authors use et al", "Blair, K. L., Hoskin, R. A., & Courtice, E. L.", 2020, "Blair et al., 2020"},
		{"two full names", "Karen Blair and Rhea Hoskin", 2019, "Blair & Hoskin, 2019"},
		{"no authors", "", 2015, "Anonymous, 2015"},
		{"no year", "Hoskin, R. A.", 0, "Hoskin, n.d."},
		{"surname first full given name", "Hoskin, Rhea Ashley", 2017, "Hoskin, 2017"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InText(tt.authors, tt.year))
		})
	}
}

func verifyEntries() []types.SourceEntry {
	return []types.SourceEntry{
		{Title: "Femme theory", Authors: "Blair, K. L., & Hoskin, R. A.", Year: 2019},
		{Title: "Femmephobia", Authors: "Hoskin, R. A.", Year: 2017},
		{Title: "Femme identities", Authors: "Blair, K. L., Hoskin, R. A., & Courtice, E. L.", Year: 2020},
	}
}

func TestVerifyClean(t *testing.T) {
	narrative := "Femininity is devalued across contexts (Hoskin, 2017; Blair & Hoskin, 2019). " +
		"Femme identities are varied (see Blair et al., 2020). Blair and Hoskin (2019) extend this."
	assert.Empty(t, Verify(narrative, verifyEntries()))
}

func TestVerifyFindings(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		wantKind  FindingKind
		wantText  string
		wantMsg   string
	}{
		{"and instead of ampersand", "as argued (Blair and Hoskin, 2019).", FindingAuthorGrammar, "Blair and Hoskin, 2019", "&"},
		{"three names instead of et al", "(Blair, Hoskin, & Courtice, 2020)", FindingAuthorGrammar, "Blair, Hoskin, & Courtice, 2020", "Blair et al., 2020"},
		{"et al for two authors", "(Blair et al., 2019)", FindingAuthorGrammar, "Blair et al., 2019", "Blair & Hoskin, 2019"},
		{"unknown source", "(Butler, 1990)", FindingUnknownSource, "Butler, 1990", "no supplied source"},
		{"wrong year", "(Hoskin, 2018)", FindingUnknownSource, "Hoskin, 2018", "no supplied source"},
		{"forbidden term", "Feminicity is often misread.", FindingTerminology, "Feminicity", "femininity"},
		{"source numbering", "As Source 2 shows, femininity is devalued.", FindingSourceReference, "Source 2", "authors and years"},
		{"provided sources", "The provided sources suggest otherwise.", FindingSourceReference, "The provided sources", "authors and years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Verify(tt.narrative, verifyEntries())
			require.Len(t, got, 1, "findings: %v", got)
			assert.Equal(t, tt.wantKind, got[0].Kind)
			assert.Equal(t, tt.wantText, got[0].Text)
			assert.Contains(t, got[0].Message, tt.wantMsg)
		})
	}
}

func TestVerifySurnameFirstAuthor(t *testing.T) {
	entries := []types.SourceEntry{{Title: "Femmephobia", Authors: "Hoskin, Rhea Ashley", Year: 2017}}
	assert.Empty(t, Verify("Femininity is devalued (Hoskin, 2017).", entries))

	got := Verify("Femininity is devalued (Hoskin & Ashley, 2017).", entries)
	require.Len(t, got, 1)
	assert.Equal(t, FindingAuthorGrammar, got[0].Kind)
}

func TestVerifyIgnoresNonCitationParentheses(t *testing.T) {
	narrative := "Femininity (as a category) was theorised in 2019 (2019) and (n = 2000 participants)."
	assert.Empty(t, Verify(narrative, verifyEntries()))
}

func TestFindingString(t *testing.T) {
	f := Finding{Kind: FindingTerminology, Text: "feminicity", Message: `use "femininity"`}
	assert.Equal(t, `terminology: "feminicity": use "femininity"`, f.String())
}
