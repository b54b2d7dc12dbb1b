package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "rulecraft:session:"

// farFuture scores index entries of sessions saved without a TTL.
const farFuture = 4102444800 // 2100-01-01

// SessionStore implements ports.SessionStore using Redis.
// Each session is one JSON value; a ZSET index scored by expiry backs List.
type SessionStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*SessionStore)

// WithTTL sets a Redis-side expiration for sessions. The session manager
// sweeps idle sessions on its own; this is a backstop for abandoned replicas.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

// New creates a Redis session store connected to address.
func New(address, password string, db int, opts ...Option) *SessionStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis session store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *SessionStore {
	store := &SessionStore{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *SessionStore) key(userID string) string {
	return s.prefix + userID
}

func (s *SessionStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the session to Redis.
func (s *SessionStore) Save(ctx context.Context, userID string, session *domain.SelectionSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(userID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: userID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *SessionStore) Load(ctx context.Context, userID string) (*domain.SelectionSession, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session domain.SelectionSession
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal session: %w", domain.ErrCorruptSession, err)
	}

	return &session, nil
}

// Delete removes the session and its index entry.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(userID))
	pipe.ZRem(ctx, s.indexKey(), userID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored user IDs, pruning index entries whose key expired.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}
