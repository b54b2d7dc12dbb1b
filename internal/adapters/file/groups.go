package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultGroupsPath is used when no path is configured.
const DefaultGroupsPath = "groups.json"

// GroupStore implements ports.GroupStore as a single JSON file.
type GroupStore struct {
	Path string
}

// NewGroupStore creates a store backed by path.
// If path is empty, it defaults to DefaultGroupsPath.
func NewGroupStore(path string) *GroupStore {
	if path == "" {
		path = DefaultGroupsPath
	}
	return &GroupStore{Path: path}
}

// Load reads the group table. A missing file is an empty table.
func (s *GroupStore) Load(ctx context.Context) (map[string][]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}

	groups := map[string][]string{}
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups file %s: %w", s.Path, err)
	}
	for name, members := range groups {
		if members == nil {
			groups[name] = []string{}
		}
	}
	return groups, nil
}

// Save writes the whole table atomically.
func (s *GroupStore) Save(ctx context.Context, groups map[string][]string) error {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}
	return writeAtomic(s.Path, data)
}

// writeAtomic writes data to a temp file in the destination directory,
// fsyncs it, then renames it over path. Readers see the old or the new
// content, never a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
