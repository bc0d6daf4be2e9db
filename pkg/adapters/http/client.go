package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
)

// ErrStreamIncomplete is returned when a stream ends without its done unit.
var ErrStreamIncomplete = errors.New("stream ended before completion")

// Client is a provider backed by a remote easel server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClientLogger sets the logger for dropped units.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) post(ctx context.Context, path string, prompt domain.Prompt) (*http.Response, error) {
	body, err := json.Marshal(prompt)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var e ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&e)
		return nil, fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, e.Error)
	}
	return resp, nil
}

// Generate calls POST /generate.
func (c *Client) Generate(ctx context.Context, prompt domain.Prompt) ([]domain.Change, error) {
	resp, err := c.post(ctx, "/generate", prompt)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Changes, nil
}

// Stream calls POST /stream and yields each change as its unit arrives.
// Units with malformed JSON are logged and skipped.
func (c *Client) Stream(ctx context.Context, prompt domain.Prompt) iter.Seq2[domain.Change, error] {
	return func(yield func(domain.Change, error) bool) {
		resp, err := c.post(ctx, "/stream", prompt)
		if err != nil {
			yield(domain.Change{}, err)
			return
		}
		defer resp.Body.Close()

		var (
			done    bool
			stopped bool
			failure error
		)
		err = ReadUnits(resp.Body, func(u Unit) bool {
			switch u.Event {
			case EventDone:
				done = true
				return false
			case EventError:
				var e ErrorResponse
				if json.Unmarshal([]byte(u.Data), &e) != nil || e.Error == "" {
					e.Error = u.Data
				}
				failure = errors.New(e.Error)
				return false
			}

			var change domain.Change
			if err := json.Unmarshal([]byte(u.Data), &change); err != nil {
				c.logger.WarnContext(ctx, "dropping malformed unit", "err", err, "data", u.Data)
				return true
			}
			if !yield(change, nil) {
				stopped = true
				return false
			}
			return true
		})

		switch {
		case stopped:
		case failure != nil:
			yield(domain.Change{}, fmt.Errorf("remote stream: %w", failure))
		case err != nil:
			yield(domain.Change{}, fmt.Errorf("read stream: %w", err))
		case !done:
			yield(domain.Change{}, ErrStreamIncomplete)
		}
	}
}
