package memory

import (
	"context"
	"sync"

	"github.com/aretw0/easel/pkg/domain"
)

// ReplayStore implements ports.ReplayStore in memory.
// Safe for concurrent use.
type ReplayStore struct {
	data map[string]domain.Replay
	mu   sync.RWMutex
}

// NewReplayStore creates a new in-memory replay store.
func NewReplayStore() *ReplayStore {
	return &ReplayStore{
		data: make(map[string]domain.Replay),
	}
}

// Save stores a copy of the replay.
func (s *ReplayStore) Save(ctx context.Context, key string, replay domain.Replay) error {
	replay.Changes = domain.CloneChanges(replay.Changes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = replay
	return nil
}

// Load returns a copy so callers can't mutate stored changes.
func (s *ReplayStore) Load(ctx context.Context, key string) (*domain.Replay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replay, ok := s.data[key]
	if !ok {
		return nil, domain.ErrReplayNotFound
	}
	replay.Changes = domain.CloneChanges(replay.Changes)
	return &replay, nil
}

// Delete removes the replay.
func (s *ReplayStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
