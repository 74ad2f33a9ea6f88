// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the per-user conversation memory. Each State keeps
// only the most recent exchange: recording a new answer replaces the
// previous turns instead of appending to them.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/femcite/pkg/types"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// State is the conversation memory of one session.
type State struct {
	ID                 string              `json:"session_id" yaml:"session_id"`
	LastQuestion       string              `json:"last_question" yaml:"last_question"`
	Style              types.Style         `json:"style,omitempty" yaml:"style,omitempty"`
	Turns              []types.ChatTurn    `json:"turns" yaml:"turns"`
	FormattedCitations string              `json:"formatted_citations" yaml:"formatted_citations"`
	Entries            []types.SourceEntry `json:"entries" yaml:"entries"`
	UpdatedAt          time.Time           `json:"updated_at" yaml:"updated_at"`
}

// NewState returns an empty state with a fresh ID.
func NewState() *State {
	return &State{ID: uuid.New().String(), Turns: []types.ChatTurn{}}
}

// Empty reports whether nothing has been recorded yet.
func (s *State) Empty() bool {
	return len(s.Turns) == 0
}

// Record replaces the memory with the exchange for question: the question,
// the answer, and the formatted reference list, in that order.
func Record(state *State, question, answer string, style types.Style, formatted string, entries []types.SourceEntry) {
	state.Turns = []types.ChatTurn{
		types.UserTurn(question),
		types.AssistantTurn(answer),
		types.CitationTurn(style, formatted),
	}
	state.LastQuestion = question
	state.Style = style
	state.FormattedCitations = formatted
	state.Entries = append([]types.SourceEntry(nil), entries...)
	state.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.Turns = append([]types.ChatTurn{}, s.Turns...)
	c.Entries = append([]types.SourceEntry(nil), s.Entries...)
	return &c
}
