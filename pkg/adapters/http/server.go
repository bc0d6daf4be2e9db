// Package http exposes a provider over HTTP and consumes one as a client.
//
// Routes:
//
//	POST /generate  prompt in, {"changes": [...]} out
//	POST /stream    prompt in, one SSE unit per change
//	GET  /health
//	GET  /info
//	GET  /metrics   when a metrics handler is configured
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// SSE event names besides the default change payload.
const (
	EventError = "error"
	EventDone  = "done"
)

// GenerateResponse is the body of POST /generate.
type GenerateResponse struct {
	Changes []domain.Change `json:"changes"`
}

// ErrorResponse is the body of failed requests and of SSE error units.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves a provider.
type Server struct {
	provider ports.Provider
	logger   *slog.Logger
	metrics  http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for provider.
func NewHandler(provider ports.Provider, opts ...Option) http.Handler {
	s := &Server{provider: provider, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/generate", s.Generate)
	r.Post("/stream", s.Stream)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) decodePrompt(w http.ResponseWriter, r *http.Request) (domain.Prompt, bool) {
	var prompt domain.Prompt
	if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
		s.logger.WarnContext(r.Context(), "invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return prompt, false
	}
	return prompt, true
}

// Generate handles POST /generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	prompt, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}

	changes, err := s.provider.Generate(r.Context(), prompt)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "generate failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}
	if changes == nil {
		changes = []domain.Change{}
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Changes: changes})
}

// Stream handles POST /stream. Each change is written as its own SSE unit
// as soon as the provider yields it.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}
	prompt, ok := s.decodePrompt(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	count := 0
	for change, err := range s.provider.Stream(r.Context(), prompt) {
		if err != nil {
			if r.Context().Err() != nil {
				s.logger.InfoContext(r.Context(), "stream client disconnected", "changes", count)
				return
			}
			s.logger.ErrorContext(r.Context(), "stream failed", "changes", count, "err", err)
			writeUnit(w, EventError, ErrorResponse{Error: err.Error()})
			flusher.Flush()
			return
		}
		if err := writeUnit(w, "", change); err != nil {
			s.logger.WarnContext(r.Context(), "failed to write change", "err", err)
			return
		}
		flusher.Flush()
		count++
	}
	writeUnit(w, EventDone, struct{}{})
	flusher.Flush()
	s.logger.DebugContext(r.Context(), "stream finished", "changes", count)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "easel-http",
		"version": strings.TrimSpace(easel.Version),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeUnit writes one SSE unit: an optional event line and a single data line.
func writeUnit(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
