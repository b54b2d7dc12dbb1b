package groups_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/rulecraft/pkg/adapters/memory"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/groups"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_CreateAddRemove(t *testing.T) {
	store := memory.NewGroupStore()
	table := groups.New(store)
	ctx := context.Background()

	require.NoError(t, table.Create(ctx, "streaming", []string{"YouTube", "Netflix", "YouTube"}))
	require.NoError(t, table.AddRules(ctx, "streaming", []string{"Netflix", "Spotify"}))
	require.NoError(t, table.RemoveRules(ctx, "streaming", []string{"YouTube"}))

	g, err := table.Get("streaming")
	require.NoError(t, err)
	assert.Equal(t, []string{"Netflix", "Spotify"}, g.Members)

	durable, _ := store.Load(ctx)
	assert.Equal(t, []string{"Netflix", "Spotify"}, durable["streaming"])
}

func TestTable_Errors(t *testing.T) {
	table := groups.New(memory.NewGroupStore())
	ctx := context.Background()

	require.NoError(t, table.Create(ctx, "g", nil))
	assert.ErrorIs(t, table.Create(ctx, "g", nil), domain.ErrGroupExists)
	assert.ErrorIs(t, table.RemoveRules(ctx, "missing", []string{"A"}), domain.ErrGroupNotFound)
	assert.ErrorIs(t, table.Delete(ctx, "missing"), domain.ErrGroupNotFound)

	_, err := table.Get("missing")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestTable_PersistenceFailureKeepsOldState(t *testing.T) {
	store := memory.NewGroupStore()
	table := groups.New(store)
	ctx := context.Background()
	require.NoError(t, table.Create(ctx, "ai", []string{"OpenAI"}))

	var events []*domain.GroupEvent
	table = groups.New(store, groups.WithHooks(domain.LifecycleHooks{
		OnGroup: func(_ context.Context, e *domain.GroupEvent) { events = append(events, e) },
	}))
	require.NoError(t, table.Load(ctx))

	store.FailSave = errors.New("disk full")
	err := table.Replace(ctx, "ai", []string{"Claude"})

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "ai", pe.Group)

	g, err := table.Get("ai")
	require.NoError(t, err)
	assert.Equal(t, []string{"OpenAI"}, g.Members, "in-memory table is unchanged")

	durable, _ := store.Load(ctx)
	assert.Equal(t, []string{"OpenAI"}, durable["ai"], "durable table is unchanged")

	require.Len(t, events, 1)
	assert.Equal(t, "replace", events[0].Op)
	assert.Error(t, events[0].Err)
}

func TestTable_LoadFailureStartsEmpty(t *testing.T) {
	table := groups.New(failingLoadStore{})
	err := table.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, table.Names())
}

func TestTable_AddRulesCreates(t *testing.T) {
	table := groups.New(memory.NewGroupStore())
	require.NoError(t, table.AddRules(context.Background(), "new", []string{"A", "B"}))

	g, err := table.Get("new")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, g.Members)
}

func TestTable_ListSorted(t *testing.T) {
	table := groups.New(memory.NewGroupStore())
	ctx := context.Background()
	require.NoError(t, table.Create(ctx, "zeta", []string{"Z"}))
	require.NoError(t, table.Create(ctx, "alpha", nil))

	assert.Equal(t, []string{"alpha", "zeta"}, table.Names())
	list := table.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Empty(t, list[0].Members)
}

func TestTable_ConcurrentMutations(t *testing.T) {
	store := memory.NewGroupStore()
	table := groups.New(store)
	ctx := context.Background()
	require.NoError(t, table.Create(ctx, "g", nil))

	var wg sync.WaitGroup
	for _, item := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		wg.Add(1)
		go func(item string) {
			defer wg.Done()
			assert.NoError(t, table.AddRules(ctx, "g", []string{item}))
		}(item)
	}
	wg.Wait()

	g, _ := table.Get("g")
	assert.Len(t, g.Members, 8)

	durable, _ := store.Load(ctx)
	assert.ElementsMatch(t, g.Members, durable["g"])
}

type failingLoadStore struct{}

func (failingLoadStore) Load(context.Context) (map[string][]string, error) {
	return nil, errors.New("corrupt")
}

func (failingLoadStore) Save(context.Context, map[string][]string) error { return nil }
