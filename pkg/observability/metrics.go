package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/easel/pkg/domain"
)

// Metrics holds the run collectors.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Changes  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Active   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easel_runs_total",
				Help: "Total number of settled runs",
			},
			[]string{"mode", "outcome"},
		),
		Changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easel_changes_applied_total",
				Help: "Total number of changes applied to the document",
			},
			[]string{"type"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "easel_run_duration_seconds",
				Help:    "Duration of runs from start to settlement",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"mode"},
		),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "easel_runs_active",
			Help: "Runs started but not yet settled",
		}),
	}
	var err error
	if m.Runs, err = register(reg, m.Runs); err != nil {
		return nil, err
	}
	if m.Changes, err = register(reg, m.Changes); err != nil {
		return nil, err
	}
	if m.Duration, err = register(reg, m.Duration); err != nil {
		return nil, err
	}
	if m.Active, err = register(reg, m.Active); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the collector already registered under the same
// descriptor, so several controllers in one process share metrics.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks records run and change events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.Active.Inc()
		},
		OnChangeApplied: func(_ context.Context, e *domain.ChangeEvent) {
			m.Changes.WithLabelValues(string(e.Change.Type)).Inc()
		},
		OnRunSettled: func(_ context.Context, e *domain.RunEvent) {
			m.Active.Dec()
			m.Runs.WithLabelValues(string(e.Mode), string(e.Outcome)).Inc()
			m.Duration.WithLabelValues(string(e.Mode)).Observe(e.Duration.Seconds())
		},
	}
}

// LoggingHooks logs every lifecycle event at debug level, and failed runs at
// warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run_start", "run_id", e.RunID, "mode", e.Mode)
		},
		OnChangeApplied: func(ctx context.Context, e *domain.ChangeEvent) {
			logger.DebugContext(ctx, "change_applied",
				"run_id", e.RunID,
				"index", e.Index,
				"type", e.Change.Type,
				"description", e.Change.Description,
			)
		},
		OnRunSettled: func(ctx context.Context, e *domain.RunEvent) {
			level := slog.LevelDebug
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "run_settled",
				"run_id", e.RunID,
				"outcome", e.Outcome,
				"changes", e.Changes,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
	}
}
