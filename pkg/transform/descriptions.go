package transform

import "github.com/aretw0/easel/pkg/domain"

// DescriptionKey is the meta key that carries a change's description.
const DescriptionKey = "description"

// ShapeDescriptions copies change descriptions into entity metadata so the
// model's intent stays attached to what it drew.
type ShapeDescriptions struct{}

// NewShapeDescriptions is a Factory for ShapeDescriptions.
func NewShapeDescriptions() Transform { return ShapeDescriptions{} }

func (ShapeDescriptions) Name() string { return "shape-descriptions" }

func (ShapeDescriptions) TransformChange(c domain.Change) (domain.Change, error) {
	if c.Description == "" || c.Entity == nil {
		return c, nil
	}
	if c.Type != domain.ChangeCreateEntity && c.Type != domain.ChangeUpdateEntity {
		return c, nil
	}
	if c.Entity.Meta == nil {
		c.Entity.Meta = make(map[string]any, 1)
	}
	c.Entity.Meta[DescriptionKey] = c.Description
	return c, nil
}
