package transform_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrompt() *domain.Prompt {
	return &domain.Prompt{
		Content: domain.Content{
			Entities: []domain.Entity{
				{ID: "shape:frame", Type: "frame", ParentID: "page:page", X: 100, Y: 100, Props: map[string]any{"w": 200.0, "h": 200.0}},
				{ID: "shape:child", Type: "geo", ParentID: "shape:frame", X: 10, Y: 10, Props: map[string]any{"w": 20.0, "h": 20.0}},
				{
					ID:       "shape:line",
					Type:     "line",
					ParentID: "page:page",
					X:        300.5,
					Y:        150.25,
					Props: map[string]any{
						"points": []any{
							map[string]any{"id": "pt-a", "x": 0.0},
							map[string]any{"id": "pt-b", "x": 10.0},
						},
					},
				},
			},
			Relations: []domain.Relation{
				{ID: "binding:1", Type: "arrow", FromID: "shape:line", ToID: "shape:frame"},
			},
		},
	}
}

func TestSimpleIDs_Prompt(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleIDs)
	p := samplePrompt()

	require.NoError(t, stack.TransformPrompt(p))

	ents := p.Content.Entities
	assert.Equal(t, "0", ents[0].ID)
	assert.Equal(t, "1", ents[1].ID)
	assert.Equal(t, "2", ents[2].ID)
	assert.Equal(t, "page:page", ents[0].ParentID, "page ids stay readable")
	assert.Equal(t, "0", ents[1].ParentID)

	points := ents[2].Props["points"].([]any)
	assert.Equal(t, "4", points[0].(map[string]any)["id"], "nested ids are tokenized")
	assert.Equal(t, "5", points[1].(map[string]any)["id"])

	rel := p.Content.Relations[0]
	assert.Equal(t, "3", rel.ID)
	assert.Equal(t, "2", rel.FromID)
	assert.Equal(t, "0", rel.ToID)
}

func TestSimpleIDs_RoundTrip(t *testing.T) {
	stack := transform.NewStack(transform.NewSimpleIDs)
	require.NoError(t, stack.TransformPrompt(samplePrompt()))

	tests := []struct {
		name   string
		change domain.Change
		check  func(t *testing.T, c domain.Change)
	}{
		{
			name:   "update",
			change: domain.UpdateEntity("", domain.EntityPatch{ID: "1", ParentID: domain.Ptr("0")}),
			check: func(t *testing.T, c domain.Change) {
				assert.Equal(t, "shape:child", c.Entity.ID)
				assert.Equal(t, "shape:frame", *c.Entity.ParentID)
			},
		},
		{
			name:   "delete",
			change: domain.DeleteEntity("", "2"),
			check: func(t *testing.T, c domain.Change) {
				assert.Equal(t, "shape:line", c.EntityID)
			},
		},
		{
			name:   "relation",
			change: domain.CreateRelation("", domain.RelationPatch{FromID: "new-arrow", ToID: "0"}),
			check: func(t *testing.T, c domain.Change) {
				assert.Equal(t, "new-arrow", c.Relation.FromID, "unknown tokens pass through")
				assert.Equal(t, "shape:frame", c.Relation.ToID)
			},
		},
		{
			name:   "delete relation",
			change: domain.DeleteRelation("", "3"),
			check: func(t *testing.T, c domain.Change) {
				assert.Equal(t, "binding:1", c.RelationID)
			},
		},
		{
			name:   "unmapped delete",
			change: domain.DeleteEntity("", "99"),
			check: func(t *testing.T, c domain.Change) {
				assert.Equal(t, "99", c.EntityID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := stack.TransformChange(tt.change)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}
