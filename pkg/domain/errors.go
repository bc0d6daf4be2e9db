package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotFound is returned when a change references an unknown entity.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrRelationNotFound is returned when a change references an unknown relation.
	ErrRelationNotFound = errors.New("relation not found")
	// ErrInvalidPatch is returned when a change cannot be applied as written.
	ErrInvalidPatch = errors.New("invalid patch")
	// ErrCheckpointNotFound is returned when rolling back to an unknown token.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	// ErrNothingToRepeat is returned by Repeat before any run has succeeded.
	ErrNothingToRepeat = errors.New("nothing to repeat")
	// ErrReplayNotFound is returned by replay stores for unknown keys.
	ErrReplayNotFound = errors.New("replay not found")
	// ErrTimeout is returned when a run exceeds its deadline.
	ErrTimeout = errors.New("run timed out")
)

// ConfigError reports a run requested in a mode that has no provider.
type ConfigError struct {
	Mode Mode
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no %s provider configured", e.Mode)
}

// ApplyError reports a change the document refused. The run that produced it
// has been rolled back.
type ApplyError struct {
	Index  int
	Change Change
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply change %d (%s %s): %v", e.Index, e.Change.Type, e.Change.TargetID(), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
