package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReplayStoreContract runs a suite of tests to verify that a ReplayStore
// implementation adheres to the defined interface contract.
func RunReplayStoreContract(t *testing.T, store ReplayStore) {
	ctx := context.Background()
	key := "contract-test-replay-" + time.Now().Format("20060102150405")

	replay := domain.Replay{
		Input: domain.PromptInput{Message: domain.TextMessage("draw a box")},
		Changes: []domain.Change{
			domain.CreateEntity("a box", domain.EntityPatch{
				ID:    "shape:box",
				Type:  "geo",
				X:     domain.Ptr(10.0),
				Y:     domain.Ptr(20.0),
				Props: map[string]any{"geo": "rectangle", "w": 100.0},
			}),
			domain.DeleteEntity("remove", "shape:old"),
		},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, key, replay)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Changes, 2)
		assert.Equal(t, "draw a box", domain.Text(loaded.Input.Message))
		assert.Equal(t, domain.ChangeCreateEntity, loaded.Changes[0].Type)
		assert.Equal(t, "shape:box", loaded.Changes[0].Entity.ID)
		assert.Equal(t, 10.0, *loaded.Changes[0].Entity.X)
		assert.Equal(t, "shape:old", loaded.Changes[1].EntityID)
		// JSON-backed stores turn numbers into float64; only check presence.
		assert.NotNil(t, loaded.Changes[0].Entity.Props["w"])
	})

	t.Run("Save Replaces", func(t *testing.T) {
		next := replay
		next.Changes = replay.Changes[:1]
		require.NoError(t, store.Save(ctx, key, next))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, loaded.Changes, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrReplayNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, replay))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrReplayNotFound, "Load after Delete should return ErrReplayNotFound")
	})
}

// RunDocumentContract verifies CRUD and checkpoint semantics of a Document.
// newDoc must return an empty document whose viewport covers (0,0)-(1000,1000).
func RunDocumentContract(t *testing.T, newDoc func() Document) {
	ctx := context.Background()
	everything := domain.Rect{X: -10000, Y: -10000, W: 20000, H: 20000}

	box := func(id string, x float64) domain.EntityPatch {
		return domain.EntityPatch{
			ID:    id,
			Type:  "geo",
			X:     domain.Ptr(x),
			Y:     domain.Ptr(0.0),
			Props: map[string]any{"w": 10.0, "h": 10.0},
		}
	}

	t.Run("Create Update Delete", func(t *testing.T) {
		doc := newDoc()
		require.NoError(t, doc.CreateEntity(box("shape:a", 0)))
		require.NoError(t, doc.UpdateEntity(domain.EntityPatch{ID: "shape:a", X: domain.Ptr(50.0)}))

		content, err := doc.SnapshotContent(ctx, everything)
		require.NoError(t, err)
		e, ok := content.Entity("shape:a")
		require.True(t, ok)
		assert.Equal(t, 50.0, e.X)

		require.NoError(t, doc.DeleteEntity("shape:a"))
		content, err = doc.SnapshotContent(ctx, everything)
		require.NoError(t, err)
		assert.Empty(t, content.Entities)
	})

	t.Run("Not Found", func(t *testing.T) {
		doc := newDoc()
		assert.ErrorIs(t, doc.UpdateEntity(domain.EntityPatch{ID: "shape:ghost", X: domain.Ptr(1.0)}), domain.ErrEntityNotFound)
		assert.ErrorIs(t, doc.DeleteEntity("shape:ghost"), domain.ErrEntityNotFound)
		assert.ErrorIs(t, doc.DeleteRelation("binding:ghost"), domain.ErrRelationNotFound)
		assert.ErrorIs(t, doc.CreateRelation(domain.RelationPatch{Type: "arrow", FromID: "shape:x", ToID: "shape:y"}), domain.ErrEntityNotFound)
	})

	t.Run("Duplicate Create", func(t *testing.T) {
		doc := newDoc()
		require.NoError(t, doc.CreateEntity(box("shape:a", 0)))
		assert.ErrorIs(t, doc.CreateEntity(box("shape:a", 0)), domain.ErrInvalidPatch)
	})

	t.Run("Rollback Restores Pre-Checkpoint State", func(t *testing.T) {
		doc := newDoc()
		require.NoError(t, doc.CreateEntity(box("shape:keep", 0)))
		require.NoError(t, doc.CreateEntity(box("shape:target", 100)))

		token, err := doc.MarkCheckpoint()
		require.NoError(t, err)

		require.NoError(t, doc.CreateEntity(box("shape:new", 200)))
		require.NoError(t, doc.UpdateEntity(domain.EntityPatch{ID: "shape:keep", Props: map[string]any{"text": "changed"}}))
		require.NoError(t, doc.CreateRelation(domain.RelationPatch{ID: "binding:1", Type: "arrow", FromID: "shape:new", ToID: "shape:target"}))
		require.NoError(t, doc.DeleteEntity("shape:target"))

		require.NoError(t, doc.RollbackToCheckpoint(token))

		content, err := doc.SnapshotContent(ctx, everything)
		require.NoError(t, err)
		assert.Len(t, content.Entities, 2)
		keep, ok := content.Entity("shape:keep")
		require.True(t, ok)
		assert.NotContains(t, keep.Props, "text")
		_, ok = content.Entity("shape:target")
		assert.True(t, ok, "deleted entity is restored")
		_, ok = content.Entity("shape:new")
		assert.False(t, ok, "created entity is removed")
		assert.Empty(t, content.Relations)
	})

	t.Run("Rollback Leaves Earlier Checkpoints Alone", func(t *testing.T) {
		doc := newDoc()
		first, err := doc.MarkCheckpoint()
		require.NoError(t, err)
		require.NoError(t, doc.CreateEntity(box("shape:first", 0)))

		second, err := doc.MarkCheckpoint()
		require.NoError(t, err)
		require.NoError(t, doc.CreateEntity(box("shape:second", 50)))

		require.NoError(t, doc.RollbackToCheckpoint(second))
		content, err := doc.SnapshotContent(ctx, everything)
		require.NoError(t, err)
		_, ok := content.Entity("shape:first")
		assert.True(t, ok)
		_, ok = content.Entity("shape:second")
		assert.False(t, ok)

		require.NoError(t, doc.RollbackToCheckpoint(first))
		content, err = doc.SnapshotContent(ctx, everything)
		require.NoError(t, err)
		assert.Empty(t, content.Entities)
	})

	t.Run("Unknown Checkpoint", func(t *testing.T) {
		doc := newDoc()
		assert.ErrorIs(t, doc.RollbackToCheckpoint("nope"), domain.ErrCheckpointNotFound)
	})
}
