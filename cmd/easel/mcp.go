package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/easel/pkg/adapters/mcp"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts easel as an MCP Server so agents can draw on the canvas through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Logs must never reach stdout: it carries JSON-RPC in stdio mode.
		log.SetOutput(os.Stderr)
		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}
		mode, err := domain.ParseMode(cfg.Mode)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		s, err := openSession(ctx, cfg, logger, sessionOptions{provider: true, hooks: metrics.Hooks()})
		if err != nil {
			return err
		}
		defer s.close()

		if metricsAddr != "" {
			go serveMetrics(ctx, metricsAddr, reg, s)
		}

		srv := mcp.NewServer(s.ctrl,
			mcp.WithMode(mode),
			mcp.WithLogger(logger),
			mcp.WithAfterRun(s.save),
		)

		switch transport {
		case "stdio":
			logger.Info("starting easel MCP server (stdio)", "canvas", cfg.Canvas.Name)
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting easel MCP server (SSE)", "port", port, "canvas", cfg.Canvas.Name)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, s *session) {
	srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("metrics server failed", "err", err)
	}
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (disabled when empty)")
}
