package transform

import (
	"github.com/aretw0/easel/pkg/domain"
)

// adjustment is the fraction dropped when a prop was floored.
type adjustment struct {
	floored float64
	delta   float64
}

// SimpleCoordinates moves top-level entities so the prompt content starts at
// the origin and floors fractional numbers. Incoming creates and updates of
// top-level entities are shifted back by the same offset. Children keep
// parent-relative coordinates in both directions.
type SimpleCoordinates struct {
	scope       *Scope
	offset      domain.Point
	topLevel    map[string]bool
	adjustments map[string]map[string]adjustment
}

// NewSimpleCoordinates is a Factory for SimpleCoordinates.
func NewSimpleCoordinates() Transform {
	return &SimpleCoordinates{
		scope:       NewScope(),
		topLevel:    make(map[string]bool),
		adjustments: make(map[string]map[string]adjustment),
	}
}

func (t *SimpleCoordinates) Name() string { return "simple-coordinates" }

func (t *SimpleCoordinates) BindScope(s *Scope) { t.scope = s }

// Offset is the origin subtracted from top-level entities.
func (t *SimpleCoordinates) Offset() domain.Point { return t.offset }

func (t *SimpleCoordinates) TransformPrompt(p *domain.Prompt) error {
	entities := p.Content.Entities

	var boxes []domain.Rect
	for i := range entities {
		e := &entities[i]
		e.X = domain.Floor(e.X)
		e.Y = domain.Floor(e.Y)
		t.floorProps(e.ID, e.Props)
		if t.isTopLevel(e.ParentID) {
			boxes = append(boxes, e.Bounds())
		}
	}

	if box, ok := domain.Union(boxes...); ok {
		t.offset = domain.Point{X: box.X, Y: box.Y}
	}

	for i := range entities {
		e := &entities[i]
		id := t.scope.Canonical(e.ID)
		if !t.isTopLevel(e.ParentID) {
			t.topLevel[id] = false
			continue
		}
		t.topLevel[id] = true
		e.X -= t.offset.X
		e.Y -= t.offset.Y
	}

	p.PromptBounds.X -= t.offset.X
	p.PromptBounds.Y -= t.offset.Y
	p.ContextBounds.X -= t.offset.X
	p.ContextBounds.Y -= t.offset.Y
	return nil
}

func (t *SimpleCoordinates) TransformChange(c domain.Change) (domain.Change, error) {
	if c.Entity == nil {
		return c, nil
	}
	id := t.scope.Canonical(c.Entity.ID)

	switch c.Type {
	case domain.ChangeCreateEntity:
		top := c.Entity.ParentID == nil || t.isTopLevel(*c.Entity.ParentID)
		if id != "" {
			t.topLevel[id] = top
		}
		if !top {
			return c, nil
		}
		c.Entity.X = domain.Ptr(valueOr(c.Entity.X) + t.offset.X)
		c.Entity.Y = domain.Ptr(valueOr(c.Entity.Y) + t.offset.Y)

	case domain.ChangeUpdateEntity:
		top, known := t.topLevel[id]
		if c.Entity.ParentID != nil {
			top = t.isTopLevel(*c.Entity.ParentID)
			t.topLevel[id] = top
		} else if !known {
			top = true
		}
		if top {
			if c.Entity.X != nil {
				c.Entity.X = domain.Ptr(*c.Entity.X + t.offset.X)
			}
			if c.Entity.Y != nil {
				c.Entity.Y = domain.Ptr(*c.Entity.Y + t.offset.Y)
			}
		}
		t.restoreProps(id, c.Entity.Props)
	}
	return c, nil
}

func (t *SimpleCoordinates) isTopLevel(parentID string) bool {
	return parentID == "" || domain.IsPageID(t.scope.Canonical(parentID))
}

// floorProps floors top-level numeric props and remembers the dropped fraction.
func (t *SimpleCoordinates) floorProps(id string, props map[string]any) {
	for k, v := range props {
		n, ok := domain.Number(v)
		if !ok {
			continue
		}
		floored := domain.Floor(n)
		props[k] = floored
		if floored == n {
			continue
		}
		canonical := t.scope.Canonical(id)
		if t.adjustments[canonical] == nil {
			t.adjustments[canonical] = make(map[string]adjustment)
		}
		t.adjustments[canonical][k] = adjustment{floored: floored, delta: n - floored}
	}
}

// restoreProps gives back the dropped fraction for props echoed unchanged.
func (t *SimpleCoordinates) restoreProps(id string, props map[string]any) {
	adj := t.adjustments[id]
	if adj == nil {
		return
	}
	for k, v := range props {
		a, ok := adj[k]
		if !ok {
			continue
		}
		if n, ok := domain.Number(v); ok && n == a.floored {
			props[k] = n + a.delta
		}
	}
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
