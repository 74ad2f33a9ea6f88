// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/femcite/pkg/types"
)

// Store persists session snapshots in SQLite. Each save replaces the whole
// row for the session.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the session database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			last_question TEXT NOT NULL DEFAULT '',
			style TEXT NOT NULL DEFAULT '',
			formatted_citations TEXT NOT NULL DEFAULT '',
			turns TEXT NOT NULL DEFAULT '[]',
			entries TEXT NOT NULL DEFAULT '[]',
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save writes a snapshot of state, overwriting any previous snapshot.
func (s *Store) Save(ctx context.Context, state *State) error {
	turns, err := json.Marshal(state.Turns)
	if err != nil {
		return fmt.Errorf("encoding turns: %w", err)
	}
	entries, err := json.Marshal(state.Entries)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, last_question, style, formatted_citations, turns, entries, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_question = excluded.last_question,
			style = excluded.style,
			formatted_citations = excluded.formatted_citations,
			turns = excluded.turns,
			entries = excluded.entries,
			updated_at = excluded.updated_at
	`, state.ID, state.LastQuestion, string(state.Style), state.FormattedCitations,
		string(turns), string(entries), state.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving session %s: %w", state.ID, err)
	}
	return nil
}

// Load returns the snapshot for id, or ErrSessionNotFound.
func (s *Store) Load(ctx context.Context, id string) (*State, error) {
	var (
		st                 State
		style, turns, ents string
		updatedAt          string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, last_question, style, formatted_citations, turns, entries, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&st.ID, &st.LastQuestion, &style, &st.FormattedCitations, &turns, &ents, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	st.Style = types.Style(style)
	if err := json.Unmarshal([]byte(turns), &st.Turns); err != nil {
		return nil, fmt.Errorf("decoding turns: %w", err)
	}
	if err := json.Unmarshal([]byte(ents), &st.Entries); err != nil {
		return nil, fmt.Errorf("decoding entries: %w", err)
	}
	if st.Turns == nil {
		st.Turns = []types.ChatTurn{}
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		st.UpdatedAt = t
	}
	return &st, nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
