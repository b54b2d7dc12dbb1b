package ports

import (
	"context"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// SessionStore defines the interface for persisting selection sessions.
type SessionStore interface {
	// Save persists the session under its user ID.
	Save(ctx context.Context, userID string, session *domain.SelectionSession) error

	// Load retrieves the session for a user.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, userID string) (*domain.SelectionSession, error)

	// Delete removes the session for a user. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns the user IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// GroupStore durably persists the category group table (group name -> ordered members).
type GroupStore interface {
	// Load reads the whole table. Callers treat a failure as "no groups defined".
	Load(ctx context.Context) (map[string][]string, error)

	// Save replaces the whole table. It must not return before the write is durable.
	Save(ctx context.Context, groups map[string][]string) error
}
