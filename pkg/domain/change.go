package domain

import "fmt"

// ChangeType discriminates the Change union.
type ChangeType string

const (
	ChangeCreateEntity   ChangeType = "createEntity"
	ChangeUpdateEntity   ChangeType = "updateEntity"
	ChangeDeleteEntity   ChangeType = "deleteEntity"
	ChangeCreateRelation ChangeType = "createRelation"
	ChangeUpdateRelation ChangeType = "updateRelation"
	ChangeDeleteRelation ChangeType = "deleteRelation"
)

// Change is one primitive edit to a document.
//
// Exactly one payload is set, selected by Type:
//   - createEntity, updateEntity: Entity
//   - deleteEntity: EntityID
//   - createRelation, updateRelation: Relation
//   - deleteRelation: RelationID
type Change struct {
	Type        ChangeType     `json:"type"`
	Description string         `json:"description"`
	Entity      *EntityPatch   `json:"shape,omitempty"`
	EntityID    string         `json:"shapeId,omitempty"`
	Relation    *RelationPatch `json:"binding,omitempty"`
	RelationID  string         `json:"bindingId,omitempty"`
}

// CreateEntity builds a createEntity change.
func CreateEntity(description string, e EntityPatch) Change {
	return Change{Type: ChangeCreateEntity, Description: description, Entity: &e}
}

// UpdateEntity builds an updateEntity change.
func UpdateEntity(description string, e EntityPatch) Change {
	return Change{Type: ChangeUpdateEntity, Description: description, Entity: &e}
}

// DeleteEntity builds a deleteEntity change.
func DeleteEntity(description, id string) Change {
	return Change{Type: ChangeDeleteEntity, Description: description, EntityID: id}
}

// CreateRelation builds a createRelation change.
func CreateRelation(description string, r RelationPatch) Change {
	return Change{Type: ChangeCreateRelation, Description: description, Relation: &r}
}

// UpdateRelation builds an updateRelation change.
func UpdateRelation(description string, r RelationPatch) Change {
	return Change{Type: ChangeUpdateRelation, Description: description, Relation: &r}
}

// DeleteRelation builds a deleteRelation change.
func DeleteRelation(description, id string) Change {
	return Change{Type: ChangeDeleteRelation, Description: description, RelationID: id}
}

// TargetID returns the identifier of the entity or relation the change touches.
// It is empty for creates that let the document assign an id.
func (c Change) TargetID() string {
	switch c.Type {
	case ChangeCreateEntity, ChangeUpdateEntity:
		if c.Entity != nil {
			return c.Entity.ID
		}
	case ChangeDeleteEntity:
		return c.EntityID
	case ChangeCreateRelation, ChangeUpdateRelation:
		if c.Relation != nil {
			return c.Relation.ID
		}
	case ChangeDeleteRelation:
		return c.RelationID
	}
	return ""
}

// Validate checks that the payload matches the change type.
func (c Change) Validate() error {
	switch c.Type {
	case ChangeCreateEntity:
		if c.Entity == nil {
			return fmt.Errorf("%w: %s without shape", ErrInvalidPatch, c.Type)
		}
		if c.Entity.Type == "" {
			return fmt.Errorf("%w: %s without shape type", ErrInvalidPatch, c.Type)
		}
	case ChangeUpdateEntity:
		if c.Entity == nil || c.Entity.ID == "" {
			return fmt.Errorf("%w: %s without shape id", ErrInvalidPatch, c.Type)
		}
	case ChangeDeleteEntity:
		if c.EntityID == "" {
			return fmt.Errorf("%w: %s without shape id", ErrInvalidPatch, c.Type)
		}
	case ChangeCreateRelation:
		if c.Relation == nil || c.Relation.FromID == "" || c.Relation.ToID == "" {
			return fmt.Errorf("%w: %s without endpoints", ErrInvalidPatch, c.Type)
		}
	case ChangeUpdateRelation:
		if c.Relation == nil || c.Relation.ID == "" {
			return fmt.Errorf("%w: %s without binding id", ErrInvalidPatch, c.Type)
		}
	case ChangeDeleteRelation:
		if c.RelationID == "" {
			return fmt.Errorf("%w: %s without binding id", ErrInvalidPatch, c.Type)
		}
	default:
		return fmt.Errorf("%w: unknown change type %q", ErrInvalidPatch, c.Type)
	}
	return nil
}

// Clone returns a deep copy of the change.
func (c Change) Clone() Change {
	if c.Entity != nil {
		e := c.Entity.Clone()
		c.Entity = &e
	}
	if c.Relation != nil {
		r := c.Relation.Clone()
		c.Relation = &r
	}
	return c
}

// CloneChanges deep-copies a change list.
func CloneChanges(changes []Change) []Change {
	if changes == nil {
		return nil
	}
	out := make([]Change, len(changes))
	for i, c := range changes {
		out[i] = c.Clone()
	}
	return out
}
