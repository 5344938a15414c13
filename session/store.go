package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound reports a session id with no stored session.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Implementations must be safe for concurrent
// use.
type Store interface {
	// Put stores or replaces a session.
	Put(ctx context.Context, s *Session) error

	// Get loads a session by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all stored session ids, sorted.
	List(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-process Store for single-run CLI use and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Put stores a copy-by-reference of the session.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get loads a session by id.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// List returns stored session ids in sorted order.
func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
