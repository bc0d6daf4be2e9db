package easel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/runtime"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/transform"
)

// DefaultReplayKey is the replay store key used when none is configured.
const DefaultReplayKey = "last"

// Controller runs prompts against a document, one committed run at a time.
type Controller struct {
	doc        ports.Document
	pipeline   *runtime.Pipeline
	generate   ports.GenerateFunc
	stream     ports.StreamFunc
	transforms []transform.Factory
	timeout    time.Duration
	replays    ports.ReplayStore
	replayKey  string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	mu      sync.Mutex
	current *Run
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithGenerator sets the provider used for batch runs.
func WithGenerator(fn ports.GenerateFunc) Option {
	return func(c *Controller) {
		c.generate = fn
	}
}

// WithStreamer sets the provider used for stream runs.
func WithStreamer(fn ports.StreamFunc) Option {
	return func(c *Controller) {
		c.stream = fn
	}
}

// WithProvider wires both modes from a single provider.
func WithProvider(p ports.Provider) Option {
	return func(c *Controller) {
		c.generate = p.Generate
		c.stream = p.Stream
	}
}

// WithTransforms replaces the default transform stack. Factories run in order
// for prompts and in the same order for changes.
func WithTransforms(factories ...transform.Factory) Option {
	return func(c *Controller) {
		c.transforms = factories
	}
}

// WithTimeout bounds each run. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets a custom structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithReplayStore sets where the last successful run is kept for Repeat.
func WithReplayStore(store ports.ReplayStore) Option {
	return func(c *Controller) {
		c.replays = store
	}
}

// WithReplayKey namespaces the stored replay, so several controllers can
// share one store.
func WithReplayKey(key string) Option {
	return func(c *Controller) {
		c.replayKey = key
	}
}

// New creates a controller over doc.
func New(doc ports.Document, opts ...Option) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	c := &Controller{
		doc:        doc,
		transforms: transform.Defaults(),
		replayKey:  DefaultReplayKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.replays == nil {
		c.replays = memory.NewReplayStore()
	}
	if c.timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", c.timeout)
	}
	c.pipeline = runtime.NewPipeline(doc,
		runtime.WithLogger(c.logger),
		runtime.WithHooks(c.hooks),
	)
	return c, nil
}

// Document returns the document the controller edits.
func (c *Controller) Document() ports.Document { return c.doc }

// Current returns the most recently started run, or nil.
func (c *Controller) Current() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start launches a run and returns immediately. A run already in flight is
// cancelled and rolled back.
func (c *Controller) Start(ctx context.Context, input domain.PromptInput, mode domain.Mode) *Run {
	if err := c.checkMode(mode); err != nil {
		run := newRun(ctx, mode, 0)
		c.logger.WarnContext(ctx, "run rejected", "run_id", run.ID, "mode", mode, "err", err)
		run.settle(domain.Result{RunID: run.ID, Mode: mode, Outcome: domain.OutcomeError}, err)
		run.release()
		return run
	}

	run := c.begin(ctx, mode)
	go c.execute(run, input, func(open opener) error {
		return c.runProvider(run, input, open)
	})
	return run
}

// Generate runs a prompt and waits for it to settle. A cancelled run returns
// a result with OutcomeCancelled and a nil error.
func (c *Controller) Generate(ctx context.Context, input domain.PromptInput, mode domain.Mode) (domain.Result, error) {
	return c.Start(ctx, input, mode).Wait()
}

// Cancel aborts the current run, if any.
func (c *Controller) Cancel() {
	if run := c.Current(); run != nil {
		run.Cancel()
	}
}

// Repeat applies the changes of the last successful run again, without
// calling the provider.
func (c *Controller) Repeat(ctx context.Context) (domain.Result, error) {
	replay, err := c.replays.Load(ctx, c.replayKey)
	if errors.Is(err, domain.ErrReplayNotFound) {
		return domain.Result{Mode: domain.ModeRepeat, Outcome: domain.OutcomeError}, domain.ErrNothingToRepeat
	}
	if err != nil {
		return domain.Result{Mode: domain.ModeRepeat, Outcome: domain.OutcomeError}, fmt.Errorf("load replay: %w", err)
	}

	run := c.begin(ctx, domain.ModeRepeat)
	go c.execute(run, replay.Input, func(open opener) error {
		scope, err := open()
		if err != nil {
			return err
		}
		for _, change := range replay.Changes {
			if run.ctx.Err() != nil {
				return context.Cause(run.ctx)
			}
			if err := scope.Apply(run.ctx, change.Clone()); err != nil {
				return err
			}
		}
		return nil
	})
	return run.Wait()
}

func (c *Controller) checkMode(mode domain.Mode) error {
	switch mode {
	case domain.ModeBatch:
		if c.generate == nil {
			return &domain.ConfigError{Mode: mode}
		}
	case domain.ModeStream:
		if c.stream == nil {
			return &domain.ConfigError{Mode: mode}
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

// begin registers a new run as current and cancels its predecessor.
func (c *Controller) begin(ctx context.Context, mode domain.Mode) *Run {
	run := newRun(ctx, mode, c.timeout)

	c.mu.Lock()
	prev := c.current
	c.current = run
	c.mu.Unlock()

	if prev != nil && !prev.settled() {
		c.logger.InfoContext(ctx, "superseding run", "run_id", prev.ID, "by", run.ID)
		prev.abort(errSuperseded)
	}
	return run
}

// opener takes the run's checkpoint on first call and returns the same scope
// afterwards.
type opener func() (*runtime.Scope, error)

// execute drives a run from checkpoint to settlement. body applies the run's
// changes inside the scope it opens.
func (c *Controller) execute(run *Run, input domain.PromptInput, body func(opener) error) {
	defer run.release()
	ctx := run.ctx
	run.setStatus(domain.StatusRunning)

	c.logger.InfoContext(ctx, "run started", "run_id", run.ID, "mode", run.Mode)
	if c.hooks.OnRunStart != nil {
		c.hooks.OnRunStart(ctx, &domain.RunEvent{Timestamp: run.started, RunID: run.ID, Mode: run.Mode})
	}

	var scope *runtime.Scope
	err := body(func() (*runtime.Scope, error) {
		if scope != nil {
			return scope, nil
		}
		s, err := c.pipeline.Begin(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		scope = s
		return scope, nil
	})
	if err == nil && ctx.Err() != nil {
		err = context.Cause(ctx)
	}

	res := domain.Result{RunID: run.ID, Mode: run.Mode}
	switch {
	case err == nil:
		res.Outcome = domain.OutcomeSuccess
		if scope != nil {
			res.Changes = domain.CloneChanges(scope.Commit())
		}
		c.saveReplay(ctx, run, input, res.Changes)
	case ctx.Err() != nil:
		// Cancellation and timeout share this path; only the reason differs.
		cause := context.Cause(ctx)
		reason := "cancelled"
		res.Outcome = domain.OutcomeCancelled
		err = nil
		if errors.Is(cause, domain.ErrTimeout) || errors.Is(cause, context.DeadlineExceeded) {
			reason = "timeout"
			res.Outcome = domain.OutcomeTimeout
			err = domain.ErrTimeout
		} else if errors.Is(cause, errSuperseded) {
			reason = "superseded"
		}
		c.rollback(scope, run, reason)
	default:
		res.Outcome = domain.OutcomeError
		c.rollback(scope, run, "error")
	}

	res.Duration = time.Since(run.started)
	c.logSettled(run, res, err)
	if c.hooks.OnRunSettled != nil {
		c.hooks.OnRunSettled(context.WithoutCancel(ctx), &domain.RunEvent{
			Timestamp: time.Now(),
			RunID:     run.ID,
			Mode:      run.Mode,
			Outcome:   res.Outcome,
			Changes:   len(res.Changes),
			Duration:  res.Duration,
			Err:       err,
		})
	}
	run.settle(res, err)
}

// runProvider builds the prompt, calls the provider for run.Mode and applies
// each change it returns. No checkpoint exists until the first change.
func (c *Controller) runProvider(run *Run, input domain.PromptInput, open opener) error {
	ctx := run.ctx

	prompt, err := runtime.BuildPrompt(ctx, c.doc, input)
	if err != nil {
		return err
	}
	stack := transform.NewStack(c.transforms...)
	if err := stack.TransformPrompt(&prompt); err != nil {
		return fmt.Errorf("transform prompt: %w", err)
	}

	// The checkpoint is taken at the first change, so edits made by others
	// while the provider works survive a rollback.
	apply := func(change domain.Change) error {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		scope, err := open()
		if err != nil {
			return err
		}
		out, err := stack.TransformChange(change)
		if err != nil {
			return &domain.ApplyError{Index: len(scope.Applied()), Change: change, Err: err}
		}
		return scope.Apply(ctx, out)
	}

	if run.Mode == domain.ModeBatch {
		changes, err := c.generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		for _, change := range changes {
			if err := apply(change); err != nil {
				return err
			}
		}
		return nil
	}

	for change, err := range c.stream(ctx, prompt) {
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		if err := apply(change); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) rollback(scope *runtime.Scope, run *Run, reason string) {
	if scope == nil {
		return
	}
	ctx := context.WithoutCancel(run.ctx)
	if err := scope.Rollback(ctx, reason); err != nil {
		c.logger.ErrorContext(ctx, "rollback failed", "run_id", run.ID, "err", err)
	}
}

func (c *Controller) saveReplay(ctx context.Context, run *Run, input domain.PromptInput, changes []domain.Change) {
	replay := domain.Replay{Input: input, Changes: changes, SavedAt: time.Now()}
	if err := c.replays.Save(context.WithoutCancel(ctx), c.replayKey, replay); err != nil {
		// The run itself succeeded; a lost replay only disables Repeat.
		c.logger.WarnContext(ctx, "failed to save replay", "run_id", run.ID, "err", err)
	}
}

func (c *Controller) logSettled(run *Run, res domain.Result, err error) {
	ctx := context.WithoutCancel(run.ctx)
	attrs := []any{
		"run_id", run.ID,
		"mode", run.Mode,
		"outcome", res.Outcome,
		"changes", len(res.Changes),
		"duration", res.Duration,
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "run failed", append(attrs, "err", err)...)
		return
	}
	c.logger.InfoContext(ctx, "run settled", attrs...)
}
