package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
)

const (
	// DefaultTTL is how long a session may stay idle before the sweeper evicts it.
	DefaultTTL = time.Hour

	// distributedLockTTL bounds how long a crashed replica can hold a user's lock.
	distributedLockTTL = 30 * time.Second
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	editMu sync.Mutex
	edits  map[string]*domain.GroupEditSession

	ttl    time.Duration
	now    func() time.Time
	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithTTL sets the idle timeout. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Only OnSweep is used here.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		edits:  make(map[string]*domain.GroupEditSession),
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured idle timeout.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// WithLock executes fn while holding the lock for the user.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, distributedLockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// loadOrNew must be called with the user's lock held. Store failures other
// than a miss are logged and answered with a fresh session.
func (m *Manager) loadOrNew(ctx context.Context, userID string) *domain.SelectionSession {
	s, err := m.store.Load(ctx, userID)
	if err == nil {
		return s
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.Warn("Failed to load session, starting fresh", "user_id", userID, "err", err)
	}
	return domain.NewSelectionSession(userID, m.now())
}

// Get returns the user's session, creating it when absent, and marks it active.
func (m *Manager) Get(ctx context.Context, userID string) (*domain.SelectionSession, error) {
	var out *domain.SelectionSession
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		s := m.loadOrNew(ctx, userID)
		s.LastActive = m.now()
		if err := m.store.Save(ctx, userID, s); err != nil {
			m.logger.Error("Failed to save session", "user_id", userID, "err", err)
		}
		out = s.Snapshot()
		return nil
	})
	return out, err
}

// Update runs fn against the user's session as one atomic read-modify-write.
// The session is stored, with LastActive refreshed, only when fn succeeds.
// The returned session is a copy of the stored one.
func (m *Manager) Update(ctx context.Context, userID string, fn func(*domain.SelectionSession) error) (*domain.SelectionSession, error) {
	var out *domain.SelectionSession
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		s := m.loadOrNew(ctx, userID)
		working := s.Snapshot()
		if err := fn(working); err != nil {
			out = s
			return err
		}
		working.UserID = userID
		working.LastActive = m.now()
		if err := m.store.Save(ctx, userID, working); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		out = working.Snapshot()
		return nil
	})
	return out, err
}

// Delete removes the user's session.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, userID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Sweep evicts every session idle for longer than the TTL and returns how
// many were evicted. Failures on single entries are logged and skipped.
func (m *Manager) Sweep(ctx context.Context) int {
	ids, err := m.store.List(ctx)
	if err != nil {
		m.logger.Warn("Sweep could not list sessions", "err", err)
		return 0
	}

	evicted := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			s, err := m.store.Load(ctx, id)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil
			}
			if errors.Is(err, domain.ErrCorruptSession) {
				m.logger.Warn("Sweep removing unreadable session", "user_id", id, "err", err)
				if err := m.store.Delete(ctx, id); err != nil {
					return err
				}
				evicted++
				return nil
			}
			if err != nil {
				return err
			}
			if m.now().Sub(s.LastActive) <= m.ttl {
				return nil
			}
			if err := m.store.Delete(ctx, id); err != nil {
				return err
			}
			evicted++
			return nil
		})
		if err != nil {
			m.logger.Warn("Sweep skipped session", "user_id", id, "err", err)
		}
	}

	if evicted > 0 {
		m.logger.Info("Evicted idle sessions", "count", evicted)
	}
	if m.hooks.OnSweep != nil {
		m.hooks.OnSweep(ctx, &domain.SweepEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventSweep},
			Evicted:   evicted,
			Remaining: len(ids) - evicted,
		})
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
