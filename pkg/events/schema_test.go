package events_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/easel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonValue decodes s the way the decoder sees elements: numbers as json.Number.
func jsonValue(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestValidator_Valid(t *testing.T) {
	v, err := events.NewValidator()
	require.NoError(t, err)

	valid := []string{
		`{"type":"think","intent":"plan","text":"first a box"}`,
		`{"type":"create","intent":"box","shape":{"type":"rectangle","shapeId":"b","note":"n","x":1,"y":2,"width":3,"height":4,"fill":"sparkly"}}`,
		`{"type":"update","intent":"grow","shape":{"type":"ellipse","shapeId":"e","x":1,"y":2,"width":3,"height":4}}`,
		`{"type":"create","intent":"link","shape":{"type":"arrow","shapeId":"a","fromId":null,"toId":"b","x1":0,"y1":0,"x2":5,"y2":5}}`,
		`{"type":"create","intent":"say","shape":{"type":"text","shapeId":"t","x":0,"y":0,"text":"hi","textAlign":"start"}}`,
		`{"type":"create","intent":"keep","shape":{"type":"unknown","shapeId":"u","x":0,"y":0}}`,
		`{"type":"move","intent":"nudge","shapeId":"b","x":10,"y":20}`,
		`{"type":"label","intent":"name","shapeId":"b","text":"Box"}`,
		`{"type":"delete","intent":"clean","shapeId":"b"}`,
	}
	for _, s := range valid {
		assert.NoError(t, v.Validate(jsonValue(t, s)), s)
	}
}

func TestValidator_Invalid(t *testing.T) {
	v := events.MustValidator()

	invalid := []string{
		`{"type":"think","text":"no intent"}`,
		`{"type":"create","intent":"box","shape":{"type":"rectangle","shapeId":"b","x":1,"y":2,"width":3}}`,
		`{"type":"create","intent":"box","shape":{"type":"hexagon","shapeId":"b","x":1,"y":2}}`,
		`{"type":"move","intent":"nudge","shapeId":"b","x":10}`,
		`{"type":"delete","intent":"clean","shapeId":""}`,
		`{"type":"dance","intent":"?"}`,
		`{"type":"create","intent":"say","shape":{"type":"text","shapeId":"t","x":0,"y":0,"textAlign":"justify"}}`,
	}
	for _, s := range invalid {
		assert.Error(t, v.Validate(jsonValue(t, s)), s)
	}
}

func TestValidator_Parse(t *testing.T) {
	v := events.MustValidator()

	ev, err := v.Parse(jsonValue(t, `{"type":"create","intent":"link","shape":{"type":"arrow","shapeId":"a","fromId":null,"toId":"b","x1":0,"y1":1.5,"x2":5,"y2":5,"text":"uses"}}`))
	require.NoError(t, err)

	assert.Equal(t, events.TypeCreate, ev.Type)
	require.NotNil(t, ev.Shape)
	assert.Equal(t, events.ShapeArrow, ev.Shape.Type)
	assert.Equal(t, 1.5, ev.Shape.Y1)
	assert.Nil(t, ev.Shape.FromID)
	require.NotNil(t, ev.Shape.ToID)
	assert.Equal(t, "b", *ev.Shape.ToID)
	assert.Equal(t, "uses", ev.Shape.Text)

	_, err = v.Parse(jsonValue(t, `{"type":"move","intent":"x"}`))
	assert.Error(t, err)
}
