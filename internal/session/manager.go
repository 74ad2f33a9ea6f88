// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Persister saves and loads session snapshots. *Store implements it.
type Persister interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, id string) (*State, error)
}

// Manager owns the live sessions of a process. Work on one session is
// serialized through a per-session lock; different sessions proceed in
// parallel.
type Manager struct {
	store  Persister
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	mu    sync.Mutex
	state *State
}

// NewManager returns a Manager. store may be nil to keep sessions in memory
// only; a nil logger discards output.
func NewManager(store Persister, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		logger:   logger,
		sessions: make(map[string]*liveSession),
	}
}

// Create starts a new empty session and returns a snapshot of it.
func (m *Manager) Create(ctx context.Context) (*State, error) {
	st := NewState()
	if m.store != nil {
		if err := m.store.Save(ctx, st); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[st.ID] = &liveSession{state: st}
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", st.ID))
	return st.Clone(), nil
}

// Get returns a snapshot of the session with id.
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	ls, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.state.Clone(), nil
}

// With runs fn on a copy of session id's state while holding its lock. The
// copy replaces the live state only when fn succeeds and, with a store
// configured, the copy has been saved. On any error the session is left as
// it was.
func (m *Manager) With(ctx context.Context, id string, fn func(*State) error) error {
	ls, err := m.lookup(ctx, id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	next := ls.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if m.store != nil {
		if err := m.store.Save(ctx, next); err != nil {
			return fmt.Errorf("persisting session: %w", err)
		}
	}
	ls.state = next
	return nil
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// lookup finds id in memory, falling back to the store.
func (m *Manager) lookup(ctx context.Context, id string) (*liveSession, error) {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return ls, nil
	}
	if m.store == nil {
		return nil, ErrSessionNotFound
	}

	st, err := m.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.logger.Error("loading session", zap.String("session_id", id), zap.Error(err))
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have restored it while we were loading.
	if ls, ok := m.sessions[id]; ok {
		return ls, nil
	}
	ls = &liveSession{state: st}
	m.sessions[id] = ls
	m.logger.Debug("session restored", zap.String("session_id", id))
	return ls, nil
}
