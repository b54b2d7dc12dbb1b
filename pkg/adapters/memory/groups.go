package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// GroupStore implements ports.GroupStore in memory. Useful for tests and
// deployments that do not need groups to survive a restart.
type GroupStore struct {
	mu     sync.Mutex
	groups map[string][]string

	// FailSave, when set, is returned by Save without storing anything.
	FailSave error
}

// NewGroupStore creates an empty group store.
func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[string][]string)}
}

// Load returns a copy of the table.
func (s *GroupStore) Load(ctx context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTable(s.groups), nil
}

// Save replaces the table.
func (s *GroupStore) Save(ctx context.Context, groups map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.groups = cloneTable(groups)
	return nil
}

func cloneTable(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range maps.All(in) {
		members := slices.Clone(v)
		if members == nil {
			members = []string{}
		}
		out[k] = members
	}
	return out
}
