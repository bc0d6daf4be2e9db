package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// Pipeline applies changes to a document inside checkpoint scopes.
// Only one scope is open at a time, so each rollback covers exactly the
// changes of the run that opened it.
type Pipeline struct {
	doc    ports.Document
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	slot   chan struct{}
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithHooks registers change hooks.
func WithHooks(hooks domain.LifecycleHooks) PipelineOption {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// NewPipeline creates a pipeline over doc.
func NewPipeline(doc ports.Document, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		doc:    doc,
		logger: logging.NewNop(),
		slot:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document returns the document the pipeline writes to.
func (p *Pipeline) Document() ports.Document { return p.doc }

// Begin waits for exclusive write access and records a checkpoint.
func (p *Pipeline) Begin(ctx context.Context, runID string) (*Scope, error) {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}

	token, err := p.doc.MarkCheckpoint()
	if err != nil {
		<-p.slot
		return nil, fmt.Errorf("mark checkpoint: %w", err)
	}
	p.logger.DebugContext(ctx, "checkpoint marked", "run_id", runID, "checkpoint", token)
	return &Scope{p: p, runID: runID, token: token}, nil
}

// Scope is one run's checkpoint scope.
type Scope struct {
	p       *Pipeline
	runID   string
	token   string
	applied []domain.Change
	closed  bool
}

// Token is the checkpoint the scope rolls back to.
func (s *Scope) Token() string { return s.token }

// Applied returns the changes applied so far.
func (s *Scope) Applied() []domain.Change { return s.applied }

// Apply writes one change to the document.
// A refused change is reported as *domain.ApplyError; the scope stays open so
// the caller can roll back.
func (s *Scope) Apply(ctx context.Context, change domain.Change) error {
	if s.closed {
		return errors.New("scope already closed")
	}
	index := len(s.applied)
	if err := ports.Apply(s.p.doc, change); err != nil {
		return &domain.ApplyError{Index: index, Change: change, Err: err}
	}
	s.applied = append(s.applied, change)

	s.p.logger.DebugContext(ctx, "change applied", "run_id", s.runID, "index", index, "type", change.Type, "target", change.TargetID())
	if s.p.hooks.OnChangeApplied != nil {
		s.p.hooks.OnChangeApplied(ctx, &domain.ChangeEvent{
			Timestamp: time.Now(),
			RunID:     s.runID,
			Index:     index,
			Change:    change,
		})
	}
	return nil
}

// checkpointReleaser is implemented by documents that keep an undo journal
// and can drop it once no scope needs it.
type checkpointReleaser interface {
	ReleaseCheckpoints()
}

// Commit closes the scope keeping every applied change.
func (s *Scope) Commit() []domain.Change {
	if !s.closed {
		s.closed = true
		if r, ok := s.p.doc.(checkpointReleaser); ok {
			r.ReleaseCheckpoints()
		}
		<-s.p.slot
	}
	return s.applied
}

// Rollback discards every change applied in the scope and closes it.
func (s *Scope) Rollback(ctx context.Context, reason string) error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer func() { <-s.p.slot }()

	s.p.logger.InfoContext(ctx, "rolling back run", "run_id", s.runID, "reason", reason, "applied", len(s.applied))
	if err := s.p.doc.RollbackToCheckpoint(s.token); err != nil {
		return fmt.Errorf("rollback to checkpoint %s: %w", s.token, err)
	}
	s.applied = nil
	return nil
}
