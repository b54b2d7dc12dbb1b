// Package groups holds the process-wide table of named category groups.
//
// Mutations persist the whole table first and only then swap it into memory,
// so a failed write leaves both the durable copy and the in-memory view as
// they were.
package groups

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
)

// Table is the category group table. Safe for concurrent use.
type Table struct {
	store  ports.GroupStore
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	mu     sync.RWMutex
	groups map[string][]string
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// WithHooks registers lifecycle hooks. Only OnGroup is used here.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(t *Table) {
		t.hooks = h
	}
}

// New creates an empty table persisted through store.
func New(store ports.GroupStore, opts ...Option) *Table {
	t := &Table{
		store:  store,
		logger: logging.NewNop(),
		groups: map[string][]string{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load replaces the in-memory table with the durable one. A read failure is
// logged and leaves the table empty.
func (t *Table) Load(ctx context.Context) error {
	loaded, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("Failed to load groups, starting with none", "err", err)
		loaded = map[string][]string{}
	}
	clean := make(map[string][]string, len(loaded))
	for name, members := range loaded {
		clean[name] = domain.Union(nil, members)
	}

	t.mu.Lock()
	t.groups = clean
	t.mu.Unlock()
	return err
}

// Names returns the group names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.groups))
}

// List returns every group, sorted by name.
func (t *Table) List() []domain.CategoryGroup {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.CategoryGroup, 0, len(t.groups))
	for _, name := range slices.Sorted(maps.Keys(t.groups)) {
		out = append(out, domain.CategoryGroup{Name: name, Members: slices.Clone(t.groups[name])})
	}
	return out
}

// Get returns one group.
func (t *Table) Get(name string) (domain.CategoryGroup, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members, ok := t.groups[name]
	if !ok {
		return domain.CategoryGroup{}, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, name)
	}
	return domain.CategoryGroup{Name: name, Members: slices.Clone(members)}, nil
}

// Create defines a new group.
func (t *Table) Create(ctx context.Context, name string, members []string) error {
	return t.mutate(ctx, "create", name, func(groups map[string][]string, name string) error {
		if _, ok := groups[name]; ok {
			return fmt.Errorf("%w: %s", domain.ErrGroupExists, name)
		}
		groups[name] = domain.Union(nil, members)
		return nil
	})
}

// AddRules appends members not yet in the group, creating the group if needed.
func (t *Table) AddRules(ctx context.Context, name string, members []string) error {
	return t.mutate(ctx, "add", name, func(groups map[string][]string, name string) error {
		groups[name] = domain.Union(groups[name], members)
		return nil
	})
}

// RemoveRules drops the given members from the group.
func (t *Table) RemoveRules(ctx context.Context, name string, members []string) error {
	return t.mutate(ctx, "remove", name, func(groups map[string][]string, name string) error {
		current, ok := groups[name]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, name)
		}
		groups[name] = domain.Without(current, members)
		return nil
	})
}

// Replace sets the group's members, creating the group if needed.
// Concurrent replaces of the same group are last-writer-wins.
func (t *Table) Replace(ctx context.Context, name string, members []string) error {
	return t.mutate(ctx, "replace", name, func(groups map[string][]string, name string) error {
		groups[name] = domain.Union(nil, members)
		return nil
	})
}

// Delete removes a group.
func (t *Table) Delete(ctx context.Context, name string) error {
	return t.mutate(ctx, "delete", name, func(groups map[string][]string, name string) error {
		if _, ok := groups[name]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, name)
		}
		delete(groups, name)
		return nil
	})
}

// mutate applies fn to a copy of the table, persists the copy, then swaps it in.
// The write lock is held across the save so mutations are totally ordered.
func (t *Table) mutate(ctx context.Context, op, name string, fn func(map[string][]string, string) error) (err error) {
	defer func() { t.emit(ctx, op, name, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty group name", domain.ErrGroupNotFound)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[string][]string, len(t.groups)+1)
	for k, v := range t.groups {
		next[k] = slices.Clone(v)
	}
	if err := fn(next, name); err != nil {
		return err
	}
	if err := t.store.Save(ctx, next); err != nil {
		t.logger.Error("Failed to persist groups", "group", name, "op", op, "err", err)
		return &domain.PersistenceError{Group: name, Cause: err}
	}
	t.groups = next
	return nil
}

func (t *Table) emit(ctx context.Context, op, name string, err error) {
	if t.hooks.OnGroup == nil {
		return
	}
	t.hooks.OnGroup(ctx, &domain.GroupEvent{
		EventBase: domain.EventBase{Type: domain.EventGroup},
		Group:     name,
		Op:        op,
		Err:       err,
	})
}
