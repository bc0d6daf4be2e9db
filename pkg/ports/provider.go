package ports

import (
	"context"
	"iter"

	"github.com/aretw0/easel/pkg/domain"
)

// GenerateFunc asks a model for a full batch of changes.
// Changes are expressed in transform space.
type GenerateFunc func(ctx context.Context, prompt domain.Prompt) ([]domain.Change, error)

// StreamFunc asks a model for changes one at a time.
// The sequence ends after yielding a non-nil error; cancelling ctx must abort
// the underlying network call.
type StreamFunc func(ctx context.Context, prompt domain.Prompt) iter.Seq2[domain.Change, error]

// Provider bundles both provider shapes. Adapters that support both modes
// implement it so callers can wire them with a single value.
type Provider interface {
	Generate(ctx context.Context, prompt domain.Prompt) ([]domain.Change, error)
	Stream(ctx context.Context, prompt domain.Prompt) iter.Seq2[domain.Change, error]
}
