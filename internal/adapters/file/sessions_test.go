package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/rulecraft/internal/adapters/file"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewSessionStore(t.TempDir()))
}

func TestSessionStore_RejectsPathIDs(t *testing.T) {
	store := file.NewSessionStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		err := store.Save(ctx, id, domain.NewSelectionSession(id, time.Now()))
		assert.Error(t, err, "id %q", id)
	}
}

func TestSessionStore_ListIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.NewSessionStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", domain.NewSelectionSession("alice", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-bob.json-123"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)
}

func TestSessionStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := file.NewSessionStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eve.json"), []byte("{not json"), 0644))

	_, err := store.Load(context.Background(), "eve")
	assert.ErrorIs(t, err, domain.ErrCorruptSession)
}

func TestSessionStore_MissingDir(t *testing.T) {
	store := file.NewSessionStore(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
