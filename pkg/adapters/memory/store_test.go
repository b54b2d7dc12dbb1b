package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/rulecraft/pkg/adapters/memory"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryGroupStore_Contract(t *testing.T) {
	ports.RunGroupStoreContract(t, memory.NewGroupStore())
}

func TestMemoryGroupStore_FailSave(t *testing.T) {
	store := memory.NewGroupStore()
	store.FailSave = errors.New("disk full")

	err := store.Save(context.Background(), map[string][]string{"g": {"A"}})
	assert.EqualError(t, err, "disk full")

	out, _ := store.Load(context.Background())
	assert.Empty(t, out)
}
