package transform_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleCoordinates_Prompt(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleCoordinates)
	p := samplePrompt()
	p.PromptBounds = domain.Rect{X: 0, Y: 0, W: 1000, H: 1000}

	require.NoError(t, stack.TransformPrompt(p))

	ents := p.Content.Entities
	assert.Equal(t, 0.0, ents[0].X, "frame sits at the box origin")
	assert.Equal(t, 0.0, ents[0].Y)
	assert.Equal(t, 10.0, ents[1].X, "children are not shifted")
	assert.Equal(t, 10.0, ents[1].Y)
	assert.Equal(t, 200.0, ents[2].X, "positions are floored then shifted")
	assert.Equal(t, 50.0, ents[2].Y)
	assert.Equal(t, -100.0, p.PromptBounds.X)
}

func TestSimpleCoordinates_RoundTrip(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleCoordinates)
	p := samplePrompt()
	require.NoError(t, stack.TransformPrompt(p))

	line := p.Content.Entities[2]
	out, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{
		ID: line.ID,
		X:  domain.Ptr(line.X),
		Y:  domain.Ptr(line.Y),
	}))
	require.NoError(t, err)

	assert.Equal(t, 300.0, *out.Entity.X, "floor(300.5)")
	assert.Equal(t, 150.0, *out.Entity.Y, "floor(150.25)")
}

func TestSimpleCoordinates_Changes(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleCoordinates)
	require.NoError(t, stack.TransformPrompt(samplePrompt()))

	t.Run("create top-level", func(t *testing.T) {
		out, err := stack.TransformChange(domain.CreateEntity("", domain.EntityPatch{ID: "new", Type: "geo", X: domain.Ptr(5.0)}))
		require.NoError(t, err)
		assert.Equal(t, 105.0, *out.Entity.X)
		assert.Equal(t, 100.0, *out.Entity.Y, "absent position counts as zero")
	})

	t.Run("create child", func(t *testing.T) {
		out, err := stack.TransformChange(domain.CreateEntity("", domain.EntityPatch{
			ID: "kid", Type: "geo", ParentID: domain.Ptr("shape:frame"), X: domain.Ptr(5.0),
		}))
		require.NoError(t, err)
		assert.Equal(t, 5.0, *out.Entity.X)
		assert.Nil(t, out.Entity.Y)
	})

	t.Run("update child", func(t *testing.T) {
		out, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "shape:child", X: domain.Ptr(1.0)}))
		require.NoError(t, err)
		assert.Equal(t, 1.0, *out.Entity.X)
	})

	t.Run("update entity created in run", func(t *testing.T) {
		out, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "kid", X: domain.Ptr(2.0)}))
		require.NoError(t, err)
		assert.Equal(t, 2.0, *out.Entity.X)
	})

	t.Run("update without position", func(t *testing.T) {
		out, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "shape:frame", Props: map[string]any{"text": "hi"}}))
		require.NoError(t, err)
		assert.Nil(t, out.Entity.X)
	})
}

func TestSimpleCoordinates_RestoresEchoedFractions(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleCoordinates)
	p := &domain.Prompt{Content: domain.Content{Entities: []domain.Entity{
		{ID: "shape:a", Type: "geo", Props: map[string]any{"w": 10.75, "h": 4.0}},
	}}}
	require.NoError(t, stack.TransformPrompt(p))
	assert.Equal(t, 10.0, p.Content.Entities[0].Props["w"])

	out, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "shape:a", Props: map[string]any{"w": 10.0}}))
	require.NoError(t, err)
	assert.Equal(t, 10.75, out.Entity.Props["w"])

	out, err = stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "shape:a", Props: map[string]any{"w": 20.0}}))
	require.NoError(t, err)
	assert.Equal(t, 20.0, out.Entity.Props["w"], "new values are kept as sent")
}

func TestDefaultStack_IDsAndCoordinatesAgree(t *testing.T) {
	stack := transform.NewStack(transform.Defaults()...)
	p := samplePrompt()
	require.NoError(t, stack.TransformPrompt(p))

	// The model moves the child (token "1") and the line (token "2").
	child, err := stack.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "1", X: domain.Ptr(3.0)}))
	require.NoError(t, err)
	assert.Equal(t, "shape:child", child.Entity.ID)
	assert.Equal(t, 3.0, *child.Entity.X, "child stays parent-relative")

	line, err := stack.TransformChange(domain.UpdateEntity("nudge", domain.EntityPatch{ID: "2", X: domain.Ptr(0.0)}))
	require.NoError(t, err)
	assert.Equal(t, "shape:line", line.Entity.ID)
	assert.Equal(t, 100.0, *line.Entity.X)
	assert.Equal(t, "nudge", line.Entity.Meta[transform.DescriptionKey])
}
