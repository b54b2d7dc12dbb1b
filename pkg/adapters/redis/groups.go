package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultGroupsKey holds the whole group table as one JSON object.
const DefaultGroupsKey = "rulecraft:groups"

// GroupStore implements ports.GroupStore on a single Redis key.
// SET is atomic, so readers never observe a partially written table.
type GroupStore struct {
	client *backend.Client
	key    string
}

// NewGroupStore creates a group store. An empty key selects DefaultGroupsKey.
func NewGroupStore(client *backend.Client, key string) *GroupStore {
	if key == "" {
		key = DefaultGroupsKey
	}
	return &GroupStore{client: client, key: key}
}

// Load reads the table. A missing key is an empty table.
func (g *GroupStore) Load(ctx context.Context) (map[string][]string, error) {
	val, err := g.client.Get(ctx, g.key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("failed to get groups from redis: %w", err)
	}

	groups := map[string][]string{}
	if err := json.Unmarshal(val, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	for name, members := range groups {
		if members == nil {
			groups[name] = []string{}
		}
	}
	return groups, nil
}

// Save replaces the table.
func (g *GroupStore) Save(ctx context.Context, groups map[string][]string) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}
	if err := g.client.Set(ctx, g.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save groups to redis: %w", err)
	}
	return nil
}
