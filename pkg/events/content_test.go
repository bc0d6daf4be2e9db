package events_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContent(t *testing.T) {
	content := domain.Content{
		Entities: []domain.Entity{
			{ID: "0", Type: "geo", X: 10, Y: 20, Props: map[string]any{"geo": "ellipse", "w": 30.0, "h": 40.0, "fill": "fill", "color": "red"}, Meta: map[string]any{"description": "sun"}},
			{ID: "1", Type: "text", X: 0, Y: 88, Props: map[string]any{"text": "hello", "textAlign": "start"}},
			{ID: "2", Type: "line", X: 5, Y: 5, Props: map[string]any{"points": map[string]any{
				"a1": map[string]any{"id": "a1", "x": 0.0, "y": 0.0},
				"a2": map[string]any{"id": "a2", "x": 10.0, "y": 20.0},
			}}},
			{ID: "3", Type: "arrow", X: 100, Y: 100, Props: map[string]any{
				"start": map[string]any{"x": 0.0, "y": 0.0},
				"end":   map[string]any{"x": 50.0, "y": 0.0},
			}},
			{ID: "4", Type: "frame", X: 7, Y: 8},
		},
		Relations: []domain.Relation{
			{ID: "5", Type: "arrow", FromID: "3", ToID: "0", Props: map[string]any{"terminal": "end"}},
		},
	}

	shapes := events.FromContent(content)
	require.Len(t, shapes, 5)

	assert.Equal(t, events.Shape{
		Type: events.ShapeEllipse, ShapeID: "0", Note: "sun", X: 10, Y: 20, Width: 30, Height: 40, Color: "red", Fill: "solid",
	}, shapes[0])

	assert.Equal(t, events.ShapeText, shapes[1].Type)
	assert.Equal(t, 100.0, shapes[1].Y, "text anchor moves down by the label offset")

	assert.Equal(t, [4]float64{5, 5, 15, 25}, [4]float64{shapes[2].X1, shapes[2].Y1, shapes[2].X2, shapes[2].Y2})

	assert.Equal(t, 150.0, shapes[3].X2)
	assert.Nil(t, shapes[3].FromID)
	require.NotNil(t, shapes[3].ToID)
	assert.Equal(t, "0", *shapes[3].ToID)

	assert.Equal(t, events.ShapeUnknown, shapes[4].Type)
}
