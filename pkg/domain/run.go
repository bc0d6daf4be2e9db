package domain

import (
	"fmt"
	"time"
)

// Mode selects how the provider is invoked.
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeStream Mode = "stream"
	// ModeRepeat marks runs that replay stored changes without a provider.
	ModeRepeat Mode = "repeat"
)

// ParseMode maps a user-facing string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBatch, "":
		return ModeBatch, nil
	case ModeStream:
		return ModeStream, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusIdle      RunStatus = "idle"
	StatusRunning   RunStatus = "running"
	StatusSettled   RunStatus = "settled"
	StatusCancelled RunStatus = "cancelled"
)

// Outcome describes how a run settled.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTimeout   Outcome = "timeout"
)

// Result is the settled state of a run.
type Result struct {
	RunID    string        `json:"run_id"`
	Mode     Mode          `json:"mode"`
	Outcome  Outcome       `json:"outcome"`
	Changes  []Change      `json:"changes"`
	Duration time.Duration `json:"duration"`
}

// Replay is the last successful run, kept in document space.
type Replay struct {
	Input   PromptInput `json:"input"`
	Changes []Change    `json:"changes"`
	SavedAt time.Time   `json:"saved_at"`
	// Sealed carries the whole replay encrypted, with Input and Changes
	// left empty. Set only by encrypting stores.
	Sealed string `json:"sealed,omitempty"`
}
