package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/rulecraft/pkg/adapters/memory"
	"github.com/aretw0/rulecraft/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("user-%d", i)
		_, _ = mgr.Update(ctx, id, func(s *domain.SelectionSession) error { return nil })
		_ = mgr.Delete(ctx, id)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
