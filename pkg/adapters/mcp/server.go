// Package mcp exposes the controller as MCP tools so agents can draw.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/sanitize"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
	"github.com/aretw0/easel/pkg/ports"
)

// CanvasURI is the resource holding the visible canvas.
const CanvasURI = "easel://canvas"

// RunResponse is the structured result of draw and repeat.
type RunResponse struct {
	RunID    string  `json:"run_id" jsonschema_description:"Identifier of the run"`
	Outcome  string  `json:"outcome" jsonschema_description:"success, error, cancelled or timeout"`
	Changes  int     `json:"changes" jsonschema_description:"Number of changes applied to the canvas"`
	Duration float64 `json:"duration_seconds" jsonschema_description:"Run duration in seconds"`
}

// Controller is what the MCP server needs from easel.Controller.
type Controller interface {
	Generate(ctx context.Context, input domain.PromptInput, mode domain.Mode) (domain.Result, error)
	Repeat(ctx context.Context) (domain.Result, error)
	Cancel()
	Document() ports.Document
}

// AfterRun is called after every successful draw or repeat, e.g. to persist
// the canvas.
type AfterRun func(ctx context.Context, res domain.Result) error

// Server wraps a Controller and exposes it as an MCP Server.
type Server struct {
	ctrl      Controller
	mode      domain.Mode
	afterRun  AfterRun
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithMode sets the mode used when draw is called without one.
func WithMode(mode domain.Mode) Option {
	return func(s *Server) {
		s.mode = mode
	}
}

// WithAfterRun registers a callback for successful runs.
func WithAfterRun(fn AfterRun) Option {
	return func(s *Server) {
		s.afterRun = fn
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ctrl Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		mode:      domain.ModeStream,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("easel-mcp", strings.TrimSpace(easel.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("draw",
		mcp.WithDescription("Ask the model to edit the canvas. Changes appear as they are generated; a failed or cancelled run leaves the canvas untouched."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("What to draw or change")),
		mcp.WithString("mode", mcp.Description("batch or stream (optional)")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleDraw))

	s.mcpServer.AddTool(mcp.NewTool("repeat",
		mcp.WithDescription("Apply the changes of the last successful run again without calling the model."),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRepeat))

	s.mcpServer.AddTool(mcp.NewTool("cancel",
		mcp.WithDescription("Cancel the run in progress and roll back its changes."),
	), s.handleCancel)

	s.mcpServer.AddTool(mcp.NewTool("get_canvas",
		mcp.WithDescription("Describe the shapes currently visible on the canvas."),
	), s.handleGetCanvas)
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctrl.Cancel()
	return mcp.NewToolResultText("cancelled"), nil
}

func (s *Server) handleGetCanvas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.canvasJSON(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CanvasURI, "Visible canvas",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.canvasJSON(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: CanvasURI, MIMEType: "application/json", Text: text},
		}, nil
	})
}

func (s *Server) canvasJSON(ctx context.Context) (string, error) {
	doc := s.ctrl.Document()
	content, err := doc.SnapshotContent(ctx, doc.ViewportBounds())
	if err != nil {
		return "", fmt.Errorf("snapshot failed: %w", err)
	}
	data, err := json.Marshal(map[string]any{
		"viewport": doc.ViewportBounds(),
		"shapes":   events.FromContent(content),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) handleDraw(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	raw, _ := args["prompt"].(string)
	prompt, err := sanitize.Input(raw)
	if err != nil {
		s.logger.Warn("MCP draw: input rejected", "err", err, "size", len(raw))
		return RunResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	mode := s.mode
	if m, ok := args["mode"].(string); ok && m != "" {
		if mode, err = domain.ParseMode(m); err != nil {
			return RunResponse{}, err
		}
	}

	res, err := s.ctrl.Generate(ctx, domain.PromptInput{Message: domain.TextMessage(prompt)}, mode)
	return s.finish(ctx, res, err)
}

func (s *Server) handleRepeat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	res, err := s.ctrl.Repeat(ctx)
	if errors.Is(err, domain.ErrNothingToRepeat) {
		return RunResponse{}, errors.New("nothing to repeat yet: call draw first")
	}
	return s.finish(ctx, res, err)
}

func (s *Server) finish(ctx context.Context, res domain.Result, err error) (RunResponse, error) {
	if err != nil {
		return RunResponse{}, fmt.Errorf("run %s failed: %w", res.RunID, err)
	}
	if res.Outcome == domain.OutcomeSuccess && s.afterRun != nil {
		if err := s.afterRun(ctx, res); err != nil {
			s.logger.Error("MCP: after-run hook failed", "run_id", res.RunID, "err", err)
		}
	}
	return RunResponse{
		RunID:    res.RunID,
		Outcome:  string(res.Outcome),
		Changes:  len(res.Changes),
		Duration: res.Duration.Seconds(),
	}, nil
}
