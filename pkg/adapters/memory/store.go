package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SelectionSession
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SelectionSession),
	}
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, userID string, session *domain.SelectionSession) error {
	// Deep copy to ensure isolation, similar to serialization
	cp := session.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = cp
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, userID string) (*domain.SelectionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return session.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

// List returns the IDs of stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
