package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/rulecraft/internal/adapters/file"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStore_Contract(t *testing.T) {
	store := file.NewGroupStore(filepath.Join(t.TempDir(), "groups.json"))
	ports.RunGroupStoreContract(t, store)
}

func TestGroupStore_MissingFile(t *testing.T) {
	store := file.NewGroupStore(filepath.Join(t.TempDir(), "nope.json"))

	groups, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := file.NewGroupStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestGroupStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.NewGroupStore(filepath.Join(dir, "nested", "groups.json"))

	require.NoError(t, store.Save(context.Background(), map[string][]string{"ai": {"OpenAI"}}))
	require.NoError(t, store.Save(context.Background(), map[string][]string{"ai": {"OpenAI", "Claude"}}))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "groups.json", entries[0].Name())
}

func TestGroupStore_DefaultPath(t *testing.T) {
	assert.Equal(t, file.DefaultGroupsPath, file.NewGroupStore("").Path)
}
