// Package redis keeps replays in Redis so Repeat works across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/easel/pkg/domain"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "easel:replay:"

// ReplayStore implements ports.ReplayStore using Redis.
type ReplayStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*ReplayStore)

// WithTTL sets the expiration for replays.
func WithTTL(ttl time.Duration) Option {
	return func(s *ReplayStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for replays.
func WithPrefix(prefix string) Option {
	return func(s *ReplayStore) {
		s.prefix = prefix
	}
}

// New creates a Redis replay store with options.
func New(address, password string, db int, opts ...Option) *ReplayStore {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a replay store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ReplayStore {
	store := &ReplayStore{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *ReplayStore) key(key string) string {
	return s.prefix + key
}

func (s *ReplayStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the replay, replacing any previous one under key.
func (s *ReplayStore) Save(ctx context.Context, key string, replay domain.Replay) error {
	data, err := json.Marshal(replay)
	if err != nil {
		return fmt.Errorf("failed to marshal replay: %w", err)
	}

	// Index score is the expiry time; 0 TTL never expires.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the replay for key.
func (s *ReplayStore) Load(ctx context.Context, key string) (*domain.Replay, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrReplayNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var replay domain.Replay
	if err := json.Unmarshal(val, &replay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replay: %w", err)
	}
	return &replay, nil
}

// Delete removes the replay for key.
func (s *ReplayStore) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// Keys lists stored replay keys, pruning expired entries from the index.
func (s *ReplayStore) Keys(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired replays: %w", err)
	}
	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list replays: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *ReplayStore) Close() error {
	return s.client.Close()
}
