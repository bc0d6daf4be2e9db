package loam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/internal/testutils"
	"github.com/aretw0/easel/pkg/adapters/loam"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
)

func TestCanvasStore_RoundTrip(t *testing.T) {
	store, err := loam.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	viewport := domain.Rect{X: 10, Y: 10, W: 800, H: 600}
	doc := memory.NewDocument(
		memory.WithViewport(viewport),
		memory.WithContent(domain.Content{
			Entities: []domain.Entity{
				{ID: "a", Type: "geo", ParentID: memory.DefaultPage, X: 1, Y: 2, Props: map[string]any{"w": 10.0, "h": 20.0}},
				{ID: "b", Type: "text", ParentID: memory.DefaultPage, X: 50, Y: 60, Props: map[string]any{"text": "hi"}},
			},
			Relations: []domain.Relation{{ID: "r", Type: "arrow", FromID: "a", ToID: "b"}},
		}),
	)

	require.NoError(t, store.Save(ctx, "sketch", doc))

	loaded, err := store.Load(ctx, "sketch")
	require.NoError(t, err)
	assert.Equal(t, viewport, loaded.ViewportBounds())
	assert.Equal(t, doc.Content(), loaded.Content())

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sketch"}, names)
}

func TestCanvasStore_LoadOrCreate(t *testing.T) {
	store, err := loam.Open(t.TempDir())
	require.NoError(t, err)

	doc, err := store.LoadOrCreate(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Empty(t, doc.Content().Entities)

	_, err = store.Load(context.Background(), "fresh")
	assert.Error(t, err)
}

func TestCanvasStore_SaveReplaces(t *testing.T) {
	_, store := testutils.SetupCanvasStore(t)
	ctx := context.Background()

	doc := testutils.SampleDocument()
	require.NoError(t, store.Save(ctx, "sketch", doc))
	require.NoError(t, doc.DeleteEntity("shape:label"))
	require.NoError(t, store.Save(ctx, "sketch", doc))

	loaded, err := store.Load(ctx, "sketch")
	require.NoError(t, err)
	require.Len(t, loaded.Content().Entities, 1)
	assert.Equal(t, "shape:box", loaded.Content().Entities[0].ID)
	assert.Empty(t, loaded.Content().Relations, "relation went with its endpoint")

	meta, err := store.Repo.Get(ctx, "sketch")
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Data.Shapes)
}
