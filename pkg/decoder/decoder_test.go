package decoder_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/decoder"
	"github.com/aretw0/easel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventA = `{"type":"create","intent":"box","shape":{"type":"rectangle","shapeId":"a","note":"","x":0,"y":0,"width":10,"height":10}}`
	eventB = `{"type":"label","intent":"name","shapeId":"a","text":"Box"}`
	eventC = `{"type":"delete","intent":"clean","shapeId":"old"}`
)

var response = `{"long_description":"draw then label","events":[` + eventA + `,` + eventB + `,` + eventC + `]}`

func newDecoder(t *testing.T) *decoder.Decoder {
	t.Helper()
	d, err := decoder.New(decoder.WithValidator(events.MustValidator()))
	require.NoError(t, err)
	return d
}

func TestDecoder_HoldsLastVisibleElement(t *testing.T) {
	d := newDecoder(t)

	got := d.Write(`{"events":[` + eventA)
	assert.Empty(t, got, "A is valid but still the last element")

	got = d.Write(`,` + eventB + `]}`)
	require.Len(t, got, 1)
	assert.Equal(t, "box", got[0].Intent)

	got = d.Close()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeLabel, got[0].Type)
	assert.Equal(t, "Box", got[0].Text)
	assert.Equal(t, 2, d.Emitted())
	assert.Empty(t, d.Close(), "closing twice emits nothing")
}

func TestDecoder_WaitsForIncompleteElement(t *testing.T) {
	d := newDecoder(t)

	// B is cut off inside its text value: it fails validation and blocks C.
	cut := strings.Index(eventB, `"Box"`)
	got := d.Write(`{"events":[` + eventA + `,` + eventB[:cut+2])
	require.Len(t, got, 1, "A now has a sibling")
	assert.Equal(t, events.TypeCreate, got[0].Type)

	got = d.Write(eventB[cut+2:] + `,` + eventC)
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeLabel, got[0].Type)

	got = d.Write(`]}`)
	assert.Empty(t, got)

	got = d.Close()
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ShapeID)
}

func TestDecoder_ByteByByte(t *testing.T) {
	d := newDecoder(t)

	var got []events.Event
	for i := range len(response) {
		got = append(got, d.Write(response[i:i+1])...)
	}
	got = append(got, d.Close()...)

	require.Len(t, got, 3)
	assert.Equal(t, events.TypeCreate, got[0].Type)
	assert.Equal(t, events.TypeLabel, got[1].Type)
	assert.Equal(t, events.TypeDelete, got[2].Type)
	assert.Equal(t, "draw then label", d.LongDescription())
}

func TestDecoder_InvalidTailIsDropped(t *testing.T) {
	d := newDecoder(t)

	got := d.Write(`{"events":[` + eventA + `,{"type":"move","intent":"half"}]}`)
	require.Len(t, got, 1)
	assert.Empty(t, d.Close())
}

func TestDecoder_HeldElementThatTurnsInvalidIsDropped(t *testing.T) {
	d := newDecoder(t)
	chunks := []string{
		`{"events":[{"type":"create","intent":"note","shape":{"type":"text","shapeId":"t","x":0,"y":0,"text":"hi"`,
		`,"textAlign":"cen`,
		`ter"}}]}`,
	}

	var got []events.Event
	for _, c := range chunks {
		got = append(got, d.Write(c)...)
	}
	got = append(got, d.Close()...)
	assert.Empty(t, got, "center is not a valid textAlign")
	assert.Equal(t, 0, d.Emitted())

	resp, err := decoder.DecodeAll(strings.Join(chunks, ""), events.MustValidator(), logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, resp.Events)
}

func TestDecoder_Events(t *testing.T) {
	d := newDecoder(t)
	src := decoder.Chunks(response[:40], response[40:200], response[200:])

	var got []events.Type
	for ev, err := range d.Events(context.Background(), src) {
		require.NoError(t, err)
		got = append(got, ev.Type)
	}

	assert.Equal(t, []events.Type{events.TypeCreate, events.TypeLabel, events.TypeDelete}, got)
}

func TestDecoder_EventsTransportErrorAbortsImmediately(t *testing.T) {
	d := newDecoder(t)
	boom := errors.New("connection reset")
	calls := 0
	src := decoder.SourceFunc(func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return `{"events":[` + eventA, nil
		}
		return "", boom
	})

	var got []events.Event
	var gotErr error
	for ev, err := range d.Events(context.Background(), src) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, ev)
	}

	assert.ErrorIs(t, gotErr, boom)
	assert.Empty(t, got, "the held candidate is not salvaged")
}

func TestDecoder_EventsStopsWhenConsumerBreaks(t *testing.T) {
	d := newDecoder(t)

	n := 0
	for range d.Events(context.Background(), decoder.Chunks(response, "")) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestChunks_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := decoder.Chunks("x").Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = decoder.Chunks().Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeAll(t *testing.T) {
	text := "```json\n" + `{"long_description":"plan","events":[` + eventA + `,{"type":"move","intent":"bad"},` + eventC + `]}` + "\n```"

	resp, err := decoder.DecodeAll(text, events.MustValidator(), logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "plan", resp.LongDescription)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, events.TypeDelete, resp.Events[1].Type)

	_, err = decoder.DecodeAll("no json here", events.MustValidator(), logging.NewNop())
	assert.Error(t, err)
}

func TestDecodeAll_NilDefaults(t *testing.T) {
	text := `{"events":[{"type":"move","intent":"bad"},` + eventC + `]}`

	resp, err := decoder.DecodeAll(text, nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "old", resp.Events[0].ShapeID)
}
