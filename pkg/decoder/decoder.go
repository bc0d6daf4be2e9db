package decoder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/internal/partialjson"
	"github.com/aretw0/easel/pkg/events"
)

const (
	eventsKey      = "events"
	descriptionKey = "long_description"
)

// Decoder turns response chunks into events. It is not safe for concurrent use.
type Decoder struct {
	validator *events.Validator
	logger    *slog.Logger

	buf         strings.Builder
	cursor      int
	candidate   *events.Event
	description string
	closed      bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithValidator shares a compiled validator between decoders.
func WithValidator(v *events.Validator) Option {
	return func(d *Decoder) {
		d.validator = v
	}
}

// New creates a Decoder.
func New(opts ...Option) (*Decoder, error) {
	d := &Decoder{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.validator == nil {
		v, err := events.NewValidator()
		if err != nil {
			return nil, err
		}
		d.validator = v
	}
	return d, nil
}

// Write appends a chunk and returns the events it confirmed.
func (d *Decoder) Write(chunk string) []events.Event {
	if d.closed {
		return nil
	}
	d.buf.WriteString(chunk)

	items, ok := d.parse()
	if !ok {
		return nil
	}

	var out []events.Event
	for d.cursor < len(items) {
		ev, err := d.validator.Parse(items[d.cursor])
		if err != nil {
			// Still being written, or invalid in its latest form.
			d.candidate = nil
			break
		}
		if d.cursor == len(items)-1 {
			d.candidate = &ev
			break
		}
		out = append(out, ev)
		d.cursor++
		d.candidate = nil
	}
	return out
}

// Close ends the stream and returns the held candidate, if any.
func (d *Decoder) Close() []events.Event {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.candidate == nil {
		return nil
	}
	ev := *d.candidate
	d.candidate = nil
	d.cursor++
	return []events.Event{ev}
}

// Emitted is the number of events returned so far.
func (d *Decoder) Emitted() int { return d.cursor }

// LongDescription returns the model's strategy text once it is complete.
func (d *Decoder) LongDescription() string { return d.description }

// Text returns everything written so far.
func (d *Decoder) Text() string { return d.buf.String() }

func (d *Decoder) parse() ([]any, bool) {
	v, _, err := partialjson.Parse(d.buf.String())
	if err != nil {
		d.logger.Debug("response is not valid JSON yet", "err", err, "bytes", d.buf.Len())
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if s, ok := obj[descriptionKey].(string); ok && d.description == "" {
		d.description = s
	}
	items, ok := obj[eventsKey].([]any)
	return items, ok
}

// DecodeAll decodes a complete response. Events that fail validation are
// skipped and reported through logger. A nil v or logger uses the defaults.
func DecodeAll(text string, v *events.Validator, logger *slog.Logger) (events.Response, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if v == nil {
		var err error
		if v, err = events.NewValidator(); err != nil {
			return events.Response{}, err
		}
	}
	dec := json.NewDecoder(strings.NewReader(extractObject(text)))
	dec.UseNumber()

	var raw struct {
		LongDescription string `json:"long_description"`
		Events          []any  `json:"events"`
	}
	if err := dec.Decode(&raw); err != nil {
		return events.Response{}, fmt.Errorf("decode response: %w", err)
	}

	resp := events.Response{LongDescription: raw.LongDescription}
	for i, item := range raw.Events {
		ev, err := v.Parse(item)
		if err != nil {
			logger.Warn("skipping invalid event", "index", i, "err", err)
			continue
		}
		resp.Events = append(resp.Events, ev)
	}
	return resp, nil
}

// extractObject trims text around the outermost JSON object, tolerating code
// fences and prose around it.
func extractObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
