package ports

import (
	"context"

	"github.com/aretw0/easel/pkg/domain"
)

// Document is the canvas host the controller edits.
//
// Mutations may fail with domain.ErrEntityNotFound, domain.ErrRelationNotFound
// or domain.ErrInvalidPatch. Checkpoints are scoped to the token that created
// them: rolling back one token never touches changes recorded before it.
type Document interface {
	// SnapshotContent returns the entities inside bounds, their descendants and
	// the relations between them.
	SnapshotContent(ctx context.Context, bounds domain.Rect) (domain.Content, error)

	// RenderImage rasterizes content to a data URL.
	// It returns an empty string when the host cannot render.
	RenderImage(ctx context.Context, content domain.Content) (string, error)

	// ViewportBounds returns the visible area in page coordinates.
	ViewportBounds() domain.Rect

	CreateEntity(patch domain.EntityPatch) error
	UpdateEntity(patch domain.EntityPatch) error
	DeleteEntity(id string) error
	CreateRelation(patch domain.RelationPatch) error
	UpdateRelation(patch domain.RelationPatch) error
	DeleteRelation(id string) error

	// MarkCheckpoint records a rollback point and returns its token.
	MarkCheckpoint() (string, error)

	// RollbackToCheckpoint discards every mutation since token was issued.
	// Returns domain.ErrCheckpointNotFound for unknown tokens.
	RollbackToCheckpoint(token string) error
}

// Apply dispatches a change to the matching document mutation.
func Apply(doc Document, change domain.Change) error {
	if err := change.Validate(); err != nil {
		return err
	}
	switch change.Type {
	case domain.ChangeCreateEntity:
		return doc.CreateEntity(*change.Entity)
	case domain.ChangeUpdateEntity:
		return doc.UpdateEntity(*change.Entity)
	case domain.ChangeDeleteEntity:
		return doc.DeleteEntity(change.EntityID)
	case domain.ChangeCreateRelation:
		return doc.CreateRelation(*change.Relation)
	case domain.ChangeUpdateRelation:
		return doc.UpdateRelation(*change.Relation)
	default:
		return doc.DeleteRelation(change.RelationID)
	}
}
