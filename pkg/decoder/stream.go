package decoder

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/aretw0/easel/pkg/events"
)

// Source yields response text chunk by chunk. Next returns io.EOF after the
// last chunk.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Next(ctx context.Context) (string, error) { return f(ctx) }

// Chunks is a Source over a fixed list of chunks.
func Chunks(chunks ...string) Source {
	i := 0
	return SourceFunc(func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if i >= len(chunks) {
			return "", io.EOF
		}
		i++
		return chunks[i-1], nil
	})
}

// Events reads src to the end and yields events as d confirms them.
// A transport error is yielded once and ends the sequence; the held
// candidate is dropped in that case.
func (d *Decoder) Events(ctx context.Context, src Source) iter.Seq2[events.Event, error] {
	return func(yield func(events.Event, error) bool) {
		for {
			chunk, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				for _, ev := range d.Close() {
					if !yield(ev, nil) {
						return
					}
				}
				return
			}
			if err != nil {
				d.closed = true
				yield(events.Event{}, err)
				return
			}
			for _, ev := range d.Write(chunk) {
				if !yield(ev, nil) {
					return
				}
			}
		}
	}
}
