package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// DefaultSessionsDir is used when no directory is configured.
var DefaultSessionsDir = filepath.Join(".rulecraft", "sessions")

// SessionStore implements ports.SessionStore with one JSON file per user.
// It lets a local chat resume its selection after a restart.
type SessionStore struct {
	BasePath string
}

// NewSessionStore creates a store rooted at basePath.
func NewSessionStore(basePath string) *SessionStore {
	if basePath == "" {
		basePath = DefaultSessionsDir
	}
	return &SessionStore{BasePath: basePath}
}

func (s *SessionStore) path(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}
	if strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return "", fmt.Errorf("invalid user ID %q", userID)
	}
	return filepath.Join(s.BasePath, userID+".json"), nil
}

// Save writes the session atomically.
func (s *SessionStore) Save(ctx context.Context, userID string, session *domain.SelectionSession) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return writeAtomic(path, data)
}

// Load reads the session file.
func (s *SessionStore) Load(ctx context.Context, userID string) (*domain.SelectionSession, error) {
	path, err := s.path(userID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session domain.SelectionSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal session %s: %w", domain.ErrCorruptSession, userID, err)
	}
	return &session, nil
}

// Delete removes the session file.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns the user IDs that have a session file.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
