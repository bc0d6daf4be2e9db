package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/google/uuid"
)

// DefaultPage is the page new top-level entities are placed on.
const DefaultPage = "page:page"

// Document is an in-memory canvas implementing ports.Document.
// Safe for concurrent use.
//
// Every mutation made while a checkpoint is outstanding is journaled as an
// inverse operation; rolling back replays the journal backwards.
type Document struct {
	mu          sync.RWMutex
	entities    []domain.Entity
	relations   []domain.Relation
	assets      []domain.Asset
	viewport    domain.Rect
	journal     []func()
	checkpoints map[string]int
}

// DocOption configures a Document.
type DocOption func(*Document)

// WithViewport sets the visible area.
func WithViewport(r domain.Rect) DocOption {
	return func(d *Document) {
		d.viewport = r
	}
}

// WithContent seeds the document.
func WithContent(c domain.Content) DocOption {
	return func(d *Document) {
		c = c.Clone()
		d.entities, d.relations, d.assets = c.Entities, c.Relations, c.Assets
	}
}

// NewDocument creates an empty canvas with a 1080p viewport at the origin.
func NewDocument(opts ...DocOption) *Document {
	d := &Document{
		viewport:    domain.Rect{X: 0, Y: 0, W: 1920, H: 1080},
		checkpoints: make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Content returns a copy of the whole document.
func (d *Document) Content() domain.Content {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return domain.Content{Entities: d.entities, Relations: d.relations, Assets: d.assets}.Clone()
}

// ViewportBounds returns the visible area.
func (d *Document) ViewportBounds() domain.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// SetViewport moves the visible area.
func (d *Document) SetViewport(r domain.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = r
}

// SnapshotContent returns top-level entities intersecting bounds, all their
// descendants, and relations whose endpoints were both included.
func (d *Document) SnapshotContent(ctx context.Context, bounds domain.Rect) (domain.Content, error) {
	if err := ctx.Err(); err != nil {
		return domain.Content{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	included := make(map[string]bool)
	for _, e := range d.entities {
		if e.TopLevel() && bounds.Intersects(e.Bounds()) {
			included[e.ID] = true
		}
	}
	// Children are listed after parents in most documents, but not always.
	for grew := true; grew; {
		grew = false
		for _, e := range d.entities {
			if !included[e.ID] && included[e.ParentID] {
				included[e.ID] = true
				grew = true
			}
		}
	}

	var out domain.Content
	for _, e := range d.entities {
		if included[e.ID] {
			out.Entities = append(out.Entities, e.Clone())
		}
	}
	for _, r := range d.relations {
		if included[r.FromID] && included[r.ToID] {
			out.Relations = append(out.Relations, r.Clone())
		}
	}
	for _, a := range d.assets {
		a.Props = domain.CloneMap(a.Props)
		out.Assets = append(out.Assets, a)
	}
	return out, nil
}

// RenderImage rasterizes content as a PNG data URL.
func (d *Document) RenderImage(ctx context.Context, content domain.Content) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return RenderPNG(content)
}

// MarkCheckpoint records the current journal position.
func (d *Document) MarkCheckpoint() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	token := uuid.NewString()
	d.checkpoints[token] = len(d.journal)
	return token, nil
}

// RollbackToCheckpoint undoes every mutation recorded after token.
// Checkpoints issued after token are discarded; token itself stays valid.
func (d *Document) RollbackToCheckpoint(token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.checkpoints[token]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCheckpointNotFound, token)
	}
	for i := len(d.journal) - 1; i >= at; i-- {
		d.journal[i]()
	}
	d.journal = d.journal[:at]
	for t, pos := range d.checkpoints {
		if pos > at {
			delete(d.checkpoints, t)
		}
	}
	return nil
}

// ReleaseCheckpoints forgets every checkpoint and the journal behind them.
func (d *Document) ReleaseCheckpoints() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = nil
	clear(d.checkpoints)
}

func (d *Document) record(undo func()) {
	if len(d.checkpoints) > 0 {
		d.journal = append(d.journal, undo)
	}
}

func (d *Document) entityIndex(id string) int {
	return slices.IndexFunc(d.entities, func(e domain.Entity) bool { return e.ID == id })
}

func (d *Document) relationIndex(id string) int {
	return slices.IndexFunc(d.relations, func(r domain.Relation) bool { return r.ID == id })
}

func (d *Document) checkParent(parentID string) error {
	if parentID == "" || domain.IsPageID(parentID) {
		return nil
	}
	if d.entityIndex(parentID) < 0 {
		return fmt.Errorf("%w: parent %s", domain.ErrEntityNotFound, parentID)
	}
	return nil
}

// CreateEntity adds a new entity. An empty id is generated.
func (d *Document) CreateEntity(patch domain.EntityPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if patch.Type == "" {
		return fmt.Errorf("%w: entity without type", domain.ErrInvalidPatch)
	}
	if patch.ID == "" {
		patch.ID = "shape:" + uuid.NewString()
	}
	if d.entityIndex(patch.ID) >= 0 {
		return fmt.Errorf("%w: entity %s already exists", domain.ErrInvalidPatch, patch.ID)
	}
	e := patch.Apply(domain.Entity{ID: patch.ID, ParentID: DefaultPage})
	if err := d.checkParent(e.ParentID); err != nil {
		return err
	}

	d.entities = append(d.entities, e)
	d.record(func() {
		if i := d.entityIndex(e.ID); i >= 0 {
			d.entities = slices.Delete(d.entities, i, i+1)
		}
	})
	return nil
}

// UpdateEntity merges patch onto an existing entity.
func (d *Document) UpdateEntity(patch domain.EntityPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.entityIndex(patch.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntityNotFound, patch.ID)
	}
	prev := d.entities[i]
	next := patch.Apply(prev)
	if next.ParentID == next.ID {
		return fmt.Errorf("%w: entity %s cannot parent itself", domain.ErrInvalidPatch, next.ID)
	}
	if err := d.checkParent(next.ParentID); err != nil {
		return err
	}

	d.entities[i] = next
	d.record(func() {
		if j := d.entityIndex(prev.ID); j >= 0 {
			d.entities[j] = prev
		}
	})
	return nil
}

// DeleteEntity removes an entity, its descendants and every relation touching them.
func (d *Document) DeleteEntity(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.entityIndex(id) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntityNotFound, id)
	}

	removed := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for _, e := range d.entities {
			if !removed[e.ID] && removed[e.ParentID] {
				removed[e.ID] = true
				grew = true
			}
		}
	}

	prevEntities, prevRelations := d.entities, d.relations
	d.entities = slices.DeleteFunc(slices.Clone(d.entities), func(e domain.Entity) bool { return removed[e.ID] })
	d.relations = slices.DeleteFunc(slices.Clone(d.relations), func(r domain.Relation) bool {
		return removed[r.FromID] || removed[r.ToID]
	})
	d.record(func() {
		d.entities, d.relations = prevEntities, prevRelations
	})
	return nil
}

// CreateRelation binds two existing entities. An empty id is generated.
func (d *Document) CreateRelation(patch domain.RelationPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if patch.ID == "" {
		patch.ID = "binding:" + uuid.NewString()
	}
	if d.relationIndex(patch.ID) >= 0 {
		return fmt.Errorf("%w: relation %s already exists", domain.ErrInvalidPatch, patch.ID)
	}
	r := patch.Apply(domain.Relation{ID: patch.ID})
	if err := d.checkEndpoints(r); err != nil {
		return err
	}

	d.relations = append(d.relations, r)
	d.record(func() {
		if i := d.relationIndex(r.ID); i >= 0 {
			d.relations = slices.Delete(d.relations, i, i+1)
		}
	})
	return nil
}

// UpdateRelation merges patch onto an existing relation.
func (d *Document) UpdateRelation(patch domain.RelationPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.relationIndex(patch.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, patch.ID)
	}
	prev := d.relations[i]
	next := patch.Apply(prev)
	if err := d.checkEndpoints(next); err != nil {
		return err
	}

	d.relations[i] = next
	d.record(func() {
		if j := d.relationIndex(prev.ID); j >= 0 {
			d.relations[j] = prev
		}
	})
	return nil
}

// DeleteRelation removes a relation.
func (d *Document) DeleteRelation(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.relationIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRelationNotFound, id)
	}
	prev := d.relations[i]
	d.relations = slices.Delete(d.relations, i, i+1)
	d.record(func() {
		d.relations = slices.Insert(d.relations, min(i, len(d.relations)), prev)
	})
	return nil
}

func (d *Document) checkEndpoints(r domain.Relation) error {
	if r.FromID == "" || r.ToID == "" {
		return fmt.Errorf("%w: relation %s needs two endpoints", domain.ErrInvalidPatch, r.ID)
	}
	for _, id := range []string{r.FromID, r.ToID} {
		if d.entityIndex(id) < 0 {
			return fmt.Errorf("%w: endpoint %s", domain.ErrEntityNotFound, id)
		}
	}
	return nil
}
