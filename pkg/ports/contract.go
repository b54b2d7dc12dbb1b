package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSelectionSession(userID, time.Unix(1700000000, 0).UTC())
		s.Source = "https://gist.github.com/u/abc"
		s.Chosen = []string{"YouTube", "Netflix"}
		s.Page = 2
		s.Phase = domain.Browsing(domain.PrefixFilter("N"))

		require.NoError(t, store.Save(ctx, userID, s), "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.Source, loaded.Source)
		assert.Equal(t, s.Chosen, loaded.Chosen)
		assert.Equal(t, 2, loaded.Page)
		assert.Equal(t, s.Phase, loaded.Phase)
		assert.True(t, s.LastActive.Equal(loaded.LastActive))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Chosen = append(loaded.Chosen, "mutated")

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.NotContains(t, again.Chosen, "mutated")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewSelectionSession(userID, time.Now())))
		require.NoError(t, store.Delete(ctx, userID), "Delete should not return error")

		_, err := store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, userID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewSelectionSession(id1, time.Now()))
		_ = store.Save(ctx, id2, domain.NewSelectionSession(id2, time.Now()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunGroupStoreContract verifies a GroupStore implementation.
func RunGroupStoreContract(t *testing.T, store GroupStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		in := map[string][]string{
			"streaming": {"YouTube", "Netflix"},
			"empty":     {},
		}
		require.NoError(t, store.Save(ctx, in))

		out, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"YouTube", "Netflix"}, out["streaming"], "member order is preserved")
		assert.Contains(t, out, "empty")
		assert.Empty(t, out["empty"])
	})

	t.Run("Save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, map[string][]string{"ai": {"OpenAI"}}))

		out, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"ai": {"OpenAI"}}, out)
	})
}
