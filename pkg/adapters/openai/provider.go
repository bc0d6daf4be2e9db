// Package openai implements ports.Provider on the OpenAI chat completions API.
// Model output is decoded into events and translated into changes.
package openai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/decoder"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
	"github.com/aretw0/easel/pkg/translate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4o

// Provider calls a chat completions endpoint.
type Provider struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	validator   *events.Validator
	logger      *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(p *Provider) {
		p.temperature = t
	}
}

// WithMaxTokens caps the completion length. Zero leaves it to the server.
func WithMaxTokens(n int) Option {
	return func(p *Provider) {
		p.maxTokens = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// ClientOptions configures the underlying HTTP client.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a provider talking to the OpenAI API or any compatible server.
func New(copts ClientOptions, opts ...Option) (*Provider, error) {
	if copts.APIKey == "" && copts.BaseURL == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(copts.APIKey)
	if copts.BaseURL != "" {
		cfg.BaseURL = copts.BaseURL
	}
	if copts.HTTPClient != nil {
		cfg.HTTPClient = copts.HTTPClient
	}
	return NewFromClient(openai.NewClientWithConfig(cfg), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *openai.Client, opts ...Option) (*Provider, error) {
	v, err := events.NewValidator()
	if err != nil {
		return nil, err
	}
	p := &Provider{
		client:      client,
		model:       DefaultModel,
		temperature: 0.2,
		validator:   v,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) request(prompt domain.Prompt) (openai.ChatCompletionRequest, error) {
	msgs, err := messages(prompt)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	return openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}, nil
}

// Generate requests a complete response and translates every valid event.
func (p *Provider) Generate(ctx context.Context, prompt domain.Prompt) ([]domain.Change, error) {
	req, err := p.request(prompt)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: empty response")
	}

	parsed, err := decoder.DecodeAll(resp.Choices[0].Message.Content, p.validator, p.logger)
	if err != nil {
		return nil, err
	}
	if parsed.LongDescription != "" {
		p.logger.InfoContext(ctx, "model plan", "description", parsed.LongDescription)
	}

	tr := translate.New(prompt.Content, p.logger)
	var changes []domain.Change
	for _, ev := range parsed.Events {
		changes = append(changes, tr.Translate(ev)...)
	}
	return changes, nil
}

// Stream requests a streamed response and yields changes as soon as the
// decoder confirms each event. Cancelling ctx closes the HTTP stream.
func (p *Provider) Stream(ctx context.Context, prompt domain.Prompt) iter.Seq2[domain.Change, error] {
	return func(yield func(domain.Change, error) bool) {
		req, err := p.request(prompt)
		if err != nil {
			yield(domain.Change{}, err)
			return
		}
		stream, err := p.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			yield(domain.Change{}, fmt.Errorf("chat completion stream: %w", err))
			return
		}
		defer stream.Close()

		dec, err := decoder.New(decoder.WithValidator(p.validator), decoder.WithLogger(p.logger))
		if err != nil {
			yield(domain.Change{}, err)
			return
		}
		src := decoder.SourceFunc(func(ctx context.Context) (string, error) {
			for {
				resp, err := stream.Recv()
				if err != nil {
					return "", err
				}
				if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
					return resp.Choices[0].Delta.Content, nil
				}
			}
		})

		tr := translate.New(prompt.Content, p.logger)
		for ev, err := range dec.Events(ctx, src) {
			if err != nil {
				yield(domain.Change{}, fmt.Errorf("chat completion stream: %w", err))
				return
			}
			for _, c := range tr.Translate(ev) {
				if !yield(c, nil) {
					return
				}
			}
		}
		if d := dec.LongDescription(); d != "" {
			p.logger.InfoContext(ctx, "model plan", "description", d)
		}
	}
}
