package domain

import "strings"

// PagePrefix marks identifiers that refer to a page rather than an entity.
const PagePrefix = "page:"

// IsPageID reports whether id names a page.
func IsPageID(id string) bool {
	return strings.HasPrefix(id, PagePrefix)
}

// Entity is a shape on the canvas.
// Its position is expressed relative to its parent: page coordinates for
// top-level entities, parent-local coordinates for children.
type Entity struct {
	ID       string         `json:"id" mapstructure:"id"`
	Type     string         `json:"type" mapstructure:"type"`
	ParentID string         `json:"parentId,omitempty" mapstructure:"parentId"`
	X        float64        `json:"x" mapstructure:"x"`
	Y        float64        `json:"y" mapstructure:"y"`
	Rotation float64        `json:"rotation,omitempty" mapstructure:"rotation"`
	Props    map[string]any `json:"props,omitempty" mapstructure:"props"`
	Meta     map[string]any `json:"meta,omitempty" mapstructure:"meta"`
}

// TopLevel reports whether the entity is parented to a page.
func (e Entity) TopLevel() bool {
	return e.ParentID == "" || IsPageID(e.ParentID)
}

// Bounds returns the entity box in its parent's coordinate space.
// Entities without numeric w/h props are treated as points.
func (e Entity) Bounds() Rect {
	w, _ := Number(e.Props["w"])
	h, _ := Number(e.Props["h"])
	return Rect{X: e.X, Y: e.Y, W: w, H: h}
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	e.Props = CloneMap(e.Props)
	e.Meta = CloneMap(e.Meta)
	return e
}

// Relation binds two entities together.
type Relation struct {
	ID     string         `json:"id" mapstructure:"id"`
	Type   string         `json:"type" mapstructure:"type"`
	FromID string         `json:"fromId" mapstructure:"fromId"`
	ToID   string         `json:"toId" mapstructure:"toId"`
	Props  map[string]any `json:"props,omitempty" mapstructure:"props"`
	Meta   map[string]any `json:"meta,omitempty" mapstructure:"meta"`
}

// Clone returns a deep copy of the relation.
func (r Relation) Clone() Relation {
	r.Props = CloneMap(r.Props)
	r.Meta = CloneMap(r.Meta)
	return r
}

// Asset is auxiliary data referenced by entities (images, fonts).
type Asset struct {
	ID    string         `json:"id" mapstructure:"id"`
	Type  string         `json:"type" mapstructure:"type"`
	Props map[string]any `json:"props,omitempty" mapstructure:"props"`
}

// Content is an ordered snapshot of part of a document.
type Content struct {
	Entities  []Entity   `json:"shapes" mapstructure:"shapes"`
	Relations []Relation `json:"bindings" mapstructure:"bindings"`
	Assets    []Asset    `json:"assets" mapstructure:"assets"`
}

// Clone returns a deep copy of the snapshot.
func (c Content) Clone() Content {
	out := Content{
		Entities:  make([]Entity, len(c.Entities)),
		Relations: make([]Relation, len(c.Relations)),
		Assets:    make([]Asset, len(c.Assets)),
	}
	for i, e := range c.Entities {
		out.Entities[i] = e.Clone()
	}
	for i, r := range c.Relations {
		out.Relations[i] = r.Clone()
	}
	for i, a := range c.Assets {
		a.Props = CloneMap(a.Props)
		out.Assets[i] = a
	}
	return out
}

// Entity returns the entity with the given id.
func (c Content) Entity(id string) (Entity, bool) {
	for _, e := range c.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Relation returns the relation with the given id.
func (c Content) Relation(id string) (Relation, bool) {
	for _, r := range c.Relations {
		if r.ID == id {
			return r, true
		}
	}
	return Relation{}, false
}

// EntityPatch is the partial form of an entity carried by changes.
// Nil pointers and nil maps mean "leave as is".
type EntityPatch struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	ParentID *string        `json:"parentId,omitempty"`
	X        *float64       `json:"x,omitempty"`
	Y        *float64       `json:"y,omitempty"`
	Rotation *float64       `json:"rotation,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// PatchOf converts a full entity into a patch that sets every field.
func PatchOf(e Entity) EntityPatch {
	e = e.Clone()
	p := EntityPatch{
		ID:    e.ID,
		Type:  e.Type,
		X:     Ptr(e.X),
		Y:     Ptr(e.Y),
		Props: e.Props,
		Meta:  e.Meta,
	}
	if e.ParentID != "" {
		p.ParentID = Ptr(e.ParentID)
	}
	if e.Rotation != 0 {
		p.Rotation = Ptr(e.Rotation)
	}
	return p
}

// TopLevel reports whether the patch places the entity on a page.
// A patch without a parent is considered top-level.
func (p EntityPatch) TopLevel() bool {
	return p.ParentID == nil || *p.ParentID == "" || IsPageID(*p.ParentID)
}

// Clone returns a deep copy of the patch.
func (p EntityPatch) Clone() EntityPatch {
	if p.ParentID != nil {
		p.ParentID = Ptr(*p.ParentID)
	}
	if p.X != nil {
		p.X = Ptr(*p.X)
	}
	if p.Y != nil {
		p.Y = Ptr(*p.Y)
	}
	if p.Rotation != nil {
		p.Rotation = Ptr(*p.Rotation)
	}
	p.Props = CloneMap(p.Props)
	p.Meta = CloneMap(p.Meta)
	return p
}

// Apply merges the patch onto e and returns the result.
// Props and meta are merged key by key; a nil value removes the key.
func (p EntityPatch) Apply(e Entity) Entity {
	e = e.Clone()
	if p.Type != "" {
		e.Type = p.Type
	}
	if p.ParentID != nil {
		e.ParentID = *p.ParentID
	}
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	e.Props = mergeMap(e.Props, p.Props)
	e.Meta = mergeMap(e.Meta, p.Meta)
	return e
}

// RelationPatch is the partial form of a relation carried by changes.
type RelationPatch struct {
	ID     string         `json:"id"`
	Type   string         `json:"type,omitempty"`
	FromID string         `json:"fromId,omitempty"`
	ToID   string         `json:"toId,omitempty"`
	Props  map[string]any `json:"props,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Clone returns a deep copy of the patch.
func (p RelationPatch) Clone() RelationPatch {
	p.Props = CloneMap(p.Props)
	p.Meta = CloneMap(p.Meta)
	return p
}

// Apply merges the patch onto r and returns the result.
func (p RelationPatch) Apply(r Relation) Relation {
	r = r.Clone()
	if p.Type != "" {
		r.Type = p.Type
	}
	if p.FromID != "" {
		r.FromID = p.FromID
	}
	if p.ToID != "" {
		r.ToID = p.ToID
	}
	r.Props = mergeMap(r.Props, p.Props)
	r.Meta = mergeMap(r.Meta, p.Meta)
	return r
}

func mergeMap(dst, patch map[string]any) map[string]any {
	if len(patch) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(dst, k)
			continue
		}
		dst[k] = CloneValue(v)
	}
	return dst
}
