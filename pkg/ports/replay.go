package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/domain"
)

// ReplayStore persists the last successful run so it can be repeated.
type ReplayStore interface {
	// Save stores the replay under key, replacing any previous one.
	Save(ctx context.Context, key string, replay domain.Replay) error

	// Load retrieves the replay for key.
	// Returns domain.ErrReplayNotFound if nothing was saved.
	Load(ctx context.Context, key string) (*domain.Replay, error)

	// Delete removes the replay for key.
	Delete(ctx context.Context, key string) error
}
