package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

type redactMiddleware struct {
	next     ports.ReplayStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks matches of patterns in
// the stored prompt text. Changes are stored as given, so Repeat is
// unaffected.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ReplayStore) ports.ReplayStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, key string, replay domain.Replay) error {
	// Copy the parts so the caller's input is left alone.
	message := make([]domain.MessagePart, len(replay.Input.Message))
	for i, part := range replay.Input.Message {
		if part.Type == domain.PartText {
			for _, p := range m.patterns {
				part.Text = p.ReplaceAllString(part.Text, Mask)
			}
		}
		message[i] = part
	}
	replay.Input.Message = message
	return m.next.Save(ctx, key, replay)
}

func (m *redactMiddleware) Load(ctx context.Context, key string) (*domain.Replay, error) {
	return m.next.Load(ctx, key)
}

func (m *redactMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}
