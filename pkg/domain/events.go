package domain

import (
	"context"
	"time"
)

// RunEvent describes a run transition.
type RunEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Mode      Mode          `json:"mode"`
	Outcome   Outcome       `json:"outcome,omitempty"`
	Changes   int           `json:"changes"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// ChangeEvent describes a change applied to the document.
type ChangeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Index     int       `json:"index"`
	Change    Change    `json:"change"`
}

// LifecycleHooks defines callbacks for controller observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnRunStart      func(context.Context, *RunEvent)
	OnChangeApplied func(context.Context, *ChangeEvent)
	OnRunSettled    func(context.Context, *RunEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart:      chainRun(h.OnRunStart, other.OnRunStart),
		OnChangeApplied: chainChange(h.OnChangeApplied, other.OnChangeApplied),
		OnRunSettled:    chainRun(h.OnRunSettled, other.OnRunSettled),
	}
}

func chainRun(a, b func(context.Context, *RunEvent)) func(context.Context, *RunEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RunEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainChange(a, b func(context.Context, *ChangeEvent)) func(context.Context, *ChangeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ChangeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
