package easel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/easel/pkg/domain"
)

var (
	errCancelled  = errors.New("run cancelled")
	errSuperseded = errors.New("run superseded")
)

// Run is the handle of one controller run.
type Run struct {
	ID   string
	Mode domain.Mode

	ctx     context.Context
	cancel  context.CancelCauseFunc
	stop    context.CancelFunc
	started time.Time
	done    chan struct{}

	mu     sync.Mutex
	status domain.RunStatus
	result domain.Result
	err    error
}

func newRun(parent context.Context, mode domain.Mode, timeout time.Duration) *Run {
	ctx, cancel := context.WithCancelCause(parent)
	stop := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, stop = context.WithTimeoutCause(ctx, timeout, domain.ErrTimeout)
	}
	return &Run{
		ID:      uuid.NewString(),
		Mode:    mode,
		ctx:     ctx,
		cancel:  cancel,
		stop:    stop,
		started: time.Now(),
		done:    make(chan struct{}),
		status:  domain.StatusIdle,
	}
}

// Status reports where the run is in its lifecycle.
func (r *Run) Status() domain.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done is closed once the run has settled.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run settles. A cancelled run reports
// OutcomeCancelled with a nil error.
func (r *Run) Wait() (domain.Result, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// Cancel aborts the run. Changes it already applied are rolled back.
// Cancelling a settled run does nothing.
func (r *Run) Cancel() {
	r.abort(errCancelled)
}

func (r *Run) abort(cause error) {
	r.cancel(cause)
}

func (r *Run) settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Run) setStatus(s domain.RunStatus) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *Run) settle(res domain.Result, err error) {
	r.mu.Lock()
	r.result = res
	r.err = err
	if res.Outcome == domain.OutcomeCancelled {
		r.status = domain.StatusCancelled
	} else {
		r.status = domain.StatusSettled
	}
	r.mu.Unlock()
	close(r.done)
}

func (r *Run) release() {
	r.stop()
	r.cancel(nil)
}
