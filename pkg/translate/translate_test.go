package translate_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
	"github.com/aretw0/easel/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() domain.Content {
	return domain.Content{
		Entities: []domain.Entity{
			{ID: "0", Type: "geo", X: 0, Y: 0, Props: map[string]any{"geo": "rectangle", "w": 50.0, "h": 50.0}},
		},
	}
}

func create(s events.Shape) events.Event {
	return events.Event{Type: events.TypeCreate, Intent: "draw", Shape: &s}
}

func TestTranslate_Rectangle(t *testing.T) {
	tr := translate.New(snapshot(), nil)

	changes := tr.Translate(create(events.Shape{
		Type: events.ShapeEllipse, ShapeID: "sun", Note: "the sun", X: 10, Y: 20, Width: 30, Height: 40,
	}))

	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, domain.ChangeCreateEntity, c.Type)
	assert.Equal(t, "the sun", c.Description)
	assert.Equal(t, "geo", c.Entity.Type)
	assert.Equal(t, 10.0, *c.Entity.X)
	assert.Equal(t, map[string]any{
		"geo": "ellipse", "w": 30.0, "h": 40.0, "color": "black", "fill": "none", "text": "",
	}, c.Entity.Props)
}

func TestFill_TotalTable(t *testing.T) {
	cases := map[string]string{
		"none":    "none",
		"solid":   "fill",
		"semi":    "semi",
		"tint":    "solid",
		"pattern": "pattern",
		"":        "none",
		"sparkly": "none",
	}
	for in, want := range cases {
		assert.Equal(t, want, translate.Fill(in), in)
	}
	for _, f := range events.Fills {
		assert.NotEmpty(t, translate.Fill(f))
	}
}

func TestTranslate_Line(t *testing.T) {
	tr := translate.New(domain.Content{}, nil)

	changes := tr.Translate(create(events.Shape{Type: events.ShapeLine, ShapeID: "l", X1: 50, Y1: 10, X2: 20, Y2: 40, Color: "blue"}))

	require.Len(t, changes, 1)
	e := changes[0].Entity
	assert.Equal(t, 20.0, *e.X)
	assert.Equal(t, 10.0, *e.Y)
	points := e.Props["points"].(map[string]any)
	assert.Equal(t, 30.0, points["a1"].(map[string]any)["x"])
	assert.Equal(t, 0.0, points["a1"].(map[string]any)["y"])
	assert.Equal(t, 0.0, points["a2"].(map[string]any)["x"])
	assert.Equal(t, 30.0, points["a2"].(map[string]any)["y"])
	assert.Equal(t, "blue", e.Props["color"])
}

func TestTranslate_Text(t *testing.T) {
	tr := translate.New(domain.Content{}, nil)

	changes := tr.Translate(create(events.Shape{Type: events.ShapeText, ShapeID: "t", X: 5, Y: 100, Text: "hi", Color: "mauve"}))

	require.Len(t, changes, 1)
	e := changes[0].Entity
	assert.Equal(t, 88.0, *e.Y, "text is lifted by the label offset")
	assert.Equal(t, "middle", e.Props["textAlign"])
	assert.Equal(t, "black", e.Props["color"], "unknown colors fall back")
	assert.Equal(t, "draw", changes[0].Description, "intent is used when there is no note")
}

func TestTranslate_ArrowBindings(t *testing.T) {
	t.Run("both endpoints resolve", func(t *testing.T) {
		tr := translate.New(snapshot(), nil)
		tr.Translate(create(events.Shape{Type: events.ShapeRectangle, ShapeID: "new", Width: 1, Height: 1}))

		changes := tr.Translate(create(events.Shape{
			Type: events.ShapeArrow, ShapeID: "a", FromID: domain.Ptr("0"), ToID: domain.Ptr("new"), X2: 100,
		}))

		require.Len(t, changes, 3)
		assert.Equal(t, domain.ChangeCreateEntity, changes[0].Type, "arrow comes first")
		assert.Equal(t, "arrow", changes[0].Entity.Type)

		start, end := changes[1].Relation, changes[2].Relation
		assert.Equal(t, "a", start.FromID)
		assert.Equal(t, "0", start.ToID)
		assert.Equal(t, "start", start.Props["terminal"])
		assert.Equal(t, "new", end.ToID, "entities created earlier in the run resolve")
		assert.Equal(t, "end", end.Props["terminal"])
		assert.Equal(t, map[string]any{"x": 0.5, "y": 0.5}, end.Props["normalizedAnchor"])
		assert.Equal(t, false, end.Props["isPrecise"])
	})

	t.Run("unresolved endpoints", func(t *testing.T) {
		tr := translate.New(snapshot(), nil)

		changes := tr.Translate(create(events.Shape{
			Type: events.ShapeArrow, ShapeID: "a", FromID: domain.Ptr("ghost"), ToID: nil,
		}))

		require.Len(t, changes, 1)
		assert.Equal(t, "arrow", changes[0].Entity.Type)
	})
}

func TestTranslate_Edits(t *testing.T) {
	tr := translate.New(snapshot(), nil)

	move := tr.Translate(events.Event{Type: events.TypeMove, Intent: "nudge", ShapeID: "0", X: 7, Y: 8})
	require.Len(t, move, 1)
	assert.Equal(t, domain.EntityPatch{ID: "0", X: domain.Ptr(7.0), Y: domain.Ptr(8.0)}, *move[0].Entity)

	label := tr.Translate(events.Event{Type: events.TypeLabel, Intent: "name", ShapeID: "0", Text: "Box"})
	require.Len(t, label, 1)
	assert.Equal(t, map[string]any{"text": "Box"}, label[0].Entity.Props)
	assert.Nil(t, label[0].Entity.X)

	del := tr.Translate(events.Event{Type: events.TypeDelete, Intent: "clean", ShapeID: "0"})
	require.Len(t, del, 1)
	assert.Equal(t, domain.DeleteEntity("clean", "0"), del[0])

	assert.Empty(t, tr.Translate(events.Event{Type: events.TypeThink, Intent: "plan", Text: "hmm"}))
	assert.Empty(t, tr.View().Entities, "deletes are folded too")

	arrow := tr.Translate(create(events.Shape{Type: events.ShapeArrow, ShapeID: "a", ToID: domain.Ptr("0")}))
	assert.Len(t, arrow, 1, "deleted entities no longer resolve")
}

func TestTranslate_Unknown(t *testing.T) {
	tr := translate.New(snapshot(), nil)

	changes := tr.Translate(create(events.Shape{Type: events.ShapeUnknown, ShapeID: "0"}))
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeUpdateEntity, changes[0].Type)
	assert.Equal(t, "geo", changes[0].Entity.Type)
	assert.Equal(t, 50.0, changes[0].Entity.Props["w"])

	assert.Empty(t, tr.Translate(create(events.Shape{Type: events.ShapeUnknown, ShapeID: "missing"})))
}

func TestTranslate_UpdateEvent(t *testing.T) {
	tr := translate.New(snapshot(), nil)

	changes := tr.Translate(events.Event{
		Type:   events.TypeUpdate,
		Intent: "grow",
		Shape:  &events.Shape{Type: events.ShapeRectangle, ShapeID: "0", Width: 100, Height: 100},
	})

	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeUpdateEntity, changes[0].Type)
	e, ok := tr.View().Entity("0")
	require.True(t, ok)
	assert.Equal(t, 100.0, e.Props["w"])
}

func TestTranslate_EachChangeOnce(t *testing.T) {
	tr := translate.New(domain.Content{}, nil)

	var all []domain.Change
	for _, id := range []string{"a", "b", "c"} {
		all = append(all, tr.Translate(create(events.Shape{Type: events.ShapeNote, ShapeID: id}))...)
	}

	require.Len(t, all, 3)
	assert.Len(t, tr.View().Entities, 3)
	assert.Equal(t, "note", all[2].Entity.Type)
}
