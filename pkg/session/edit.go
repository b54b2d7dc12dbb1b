package session

import (
	"context"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Edit sessions live in process memory only and are never swept: they are
// created by an explicit command and end on save or cancel.

// Edit returns a copy of the user's edit session, if any.
func (m *Manager) Edit(userID string) (*domain.GroupEditSession, bool) {
	m.editMu.Lock()
	defer m.editMu.Unlock()
	es, ok := m.edits[userID]
	return es.Snapshot(), ok
}

// BeginEdit starts (or restarts) editing group for the user.
func (m *Manager) BeginEdit(ctx context.Context, userID, group string, members []string) (*domain.GroupEditSession, error) {
	var out *domain.GroupEditSession
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		es := domain.NewGroupEditSession(userID, group, members)
		m.editMu.Lock()
		m.edits[userID] = es
		m.editMu.Unlock()
		out = es.Snapshot()
		return nil
	})
	return out, err
}

// UpdateEdit applies fn to the user's edit session atomically.
// Returns domain.ErrNoEditSession when the user is not editing.
func (m *Manager) UpdateEdit(ctx context.Context, userID string, fn func(*domain.GroupEditSession) error) (*domain.GroupEditSession, error) {
	var out *domain.GroupEditSession
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		current, ok := m.Edit(userID)
		if !ok {
			return domain.ErrNoEditSession
		}
		out = current
		working := current.Snapshot()
		if err := fn(working); err != nil {
			return err
		}
		m.editMu.Lock()
		m.edits[userID] = working
		m.editMu.Unlock()
		out = working.Snapshot()
		return nil
	})
	return out, err
}

// EndEdit destroys the user's edit session and returns its final state.
func (m *Manager) EndEdit(ctx context.Context, userID string) (*domain.GroupEditSession, error) {
	var out *domain.GroupEditSession
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		m.editMu.Lock()
		defer m.editMu.Unlock()
		es, ok := m.edits[userID]
		if !ok {
			return domain.ErrNoEditSession
		}
		delete(m.edits, userID)
		out = es
		return nil
	})
	return out, err
}
