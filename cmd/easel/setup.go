package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/config"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/presentation/tui"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	loamAdapter "github.com/aretw0/easel/pkg/adapters/loam"
	"github.com/aretw0/easel/pkg/adapters/memory"
	openaiAdapter "github.com/aretw0/easel/pkg/adapters/openai"
	redisAdapter "github.com/aretw0/easel/pkg/adapters/redis"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
	"github.com/aretw0/easel/pkg/persistence/middleware"
	"github.com/aretw0/easel/pkg/ports"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("canvas") {
		cfg.Canvas.Name, _ = flags.GetString("canvas")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, logging.Format(cfg.LogFormat)), nil
}

func newProvider(cfg config.Config, logger *slog.Logger) (ports.Provider, error) {
	switch cfg.Provider.Kind {
	case "openai":
		p, err := openaiAdapter.New(openaiAdapter.ClientOptions{
			APIKey:  cfg.Provider.APIKey,
			BaseURL: cfg.Provider.BaseURL,
		},
			openaiAdapter.WithModel(cfg.Provider.Model),
			openaiAdapter.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "http":
		if cfg.Provider.Endpoint == "" {
			return nil, errors.New("provider.endpoint is required for the http provider")
		}
		return httpAdapter.NewClient(cfg.Provider.Endpoint, httpAdapter.WithClientLogger(logger)), nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
}

// newReplayStore returns the configured store, wrapped with redaction and
// encryption when configured, and a function releasing it.
func newReplayStore(cfg config.Config) (ports.ReplayStore, func() error, error) {
	var (
		store   ports.ReplayStore = memory.NewReplayStore()
		closeFn                   = func() error { return nil }
	)
	if cfg.Replay.Backend == "redis" {
		r := cfg.Replay.Redis
		opts := []redisAdapter.Option{}
		if r.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(r.Prefix))
		}
		if r.TTL > 0 {
			opts = append(opts, redisAdapter.WithTTL(r.TTL))
		}
		rs := redisAdapter.New(r.Addr, r.Password, r.DB, opts...)
		store, closeFn = rs, rs.Close
	}

	var mws []middleware.Middleware
	if len(cfg.Replay.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Replay.Redact)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.Replay.EncryptionKey != "" {
		key, err := middleware.DecodeKey(cfg.Replay.EncryptionKey)
		if err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("replay.encryption_key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), closeFn, nil
}

// session is one canvas opened for editing.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	store  *loamAdapter.CanvasStore
	doc    *memory.Document
	ctrl   *easel.Controller
	close  func() error
}

type sessionOptions struct {
	provider bool
	hooks    domain.LifecycleHooks
}

func openSession(ctx context.Context, cfg config.Config, logger *slog.Logger, so sessionOptions) (*session, error) {
	store, err := loamAdapter.Open(cfg.Canvas.Dir)
	if err != nil {
		return nil, err
	}
	doc, err := store.LoadOrCreate(ctx, cfg.Canvas.Name)
	if err != nil {
		return nil, err
	}

	replays, closeReplays, err := newReplayStore(cfg)
	if err != nil {
		return nil, err
	}
	opts := []easel.Option{
		easel.WithLogger(logger),
		easel.WithTimeout(cfg.Timeout),
		easel.WithReplayStore(replays),
		// Replays are per canvas.
		easel.WithReplayKey(cfg.Canvas.Name + "/" + cfg.Replay.Key),
		easel.WithLifecycleHooks(observability.LoggingHooks(logger).Merge(so.hooks)),
	}
	if so.provider {
		provider, err := newProvider(cfg, logger)
		if err != nil {
			_ = closeReplays()
			return nil, err
		}
		opts = append(opts, easel.WithProvider(provider))
	}

	ctrl, err := easel.New(doc, opts...)
	if err != nil {
		_ = closeReplays()
		return nil, err
	}
	return &session{
		cfg:    cfg,
		logger: logger,
		store:  store,
		doc:    doc,
		ctrl:   ctrl,
		close:  closeReplays,
	}, nil
}

// save persists the canvas after a successful run.
func (s *session) save(ctx context.Context, res domain.Result) error {
	if res.Outcome != domain.OutcomeSuccess {
		return nil
	}
	if err := s.store.Save(context.WithoutCancel(ctx), s.cfg.Canvas.Name, s.doc); err != nil {
		return fmt.Errorf("save canvas %s: %w", s.cfg.Canvas.Name, err)
	}
	s.logger.Debug("canvas saved", "canvas", s.cfg.Canvas.Name, "shapes", len(s.doc.Content().Entities))
	return nil
}

// printReport renders a run report, styled when stdout is a terminal.
func printReport(w io.Writer, res domain.Result, runErr error) {
	render := tui.NewRenderer(tui.IsTerminal(os.Stdout))
	out, err := render(tui.Report(res, runErr))
	if err != nil {
		out = tui.Report(res, runErr)
	}
	fmt.Fprint(w, strings.TrimLeft(out, "\n"))
}
