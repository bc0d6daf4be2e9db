// Package translate turns simple events into document changes.
//
// A Translator keeps a provisional view of the document for one run: every
// entity or relation it creates is folded into the view before the next event
// is translated, so later events can reference shapes that exist only in this
// run so far.
package translate

import (
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
)

const (
	defaultColor     = "black"
	defaultFill      = "none"
	defaultTextAlign = "middle"
)

// fills maps the simple fill vocabulary onto native fills.
// Values missing from the table fall back to defaultFill.
var fills = map[string]string{
	"none":    "none",
	"solid":   "fill",
	"semi":    "semi",
	"tint":    "solid",
	"pattern": "pattern",
}

// Fill returns the native fill for a simple fill value.
func Fill(simple string) string {
	if f, ok := fills[simple]; ok {
		return f
	}
	return defaultFill
}

func color(c string) string {
	if slices.Contains(events.Colors, c) {
		return c
	}
	return defaultColor
}

// Translator maps events onto changes against a folded snapshot view.
type Translator struct {
	view   domain.Content
	logger *slog.Logger
}

// New creates a Translator over a copy of view. A nil logger discards output.
func New(view domain.Content, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Translator{view: view.Clone(), logger: logger}
}

// View returns the folded snapshot.
func (t *Translator) View() domain.Content { return t.view }

// Translate returns the changes for ev and folds them into the view.
// Each change is returned exactly once.
func (t *Translator) Translate(ev events.Event) []domain.Change {
	var changes []domain.Change

	switch ev.Type {
	case events.TypeThink:
		return nil
	case events.TypeCreate, events.TypeUpdate:
		if ev.Shape == nil {
			return nil
		}
		changes = t.shape(ev)
	case events.TypeMove:
		changes = []domain.Change{domain.UpdateEntity(ev.Intent, domain.EntityPatch{
			ID: ev.ShapeID,
			X:  domain.Ptr(ev.X),
			Y:  domain.Ptr(ev.Y),
		})}
	case events.TypeLabel:
		changes = []domain.Change{domain.UpdateEntity(ev.Intent, domain.EntityPatch{
			ID:    ev.ShapeID,
			Props: map[string]any{"text": ev.Text},
		})}
	case events.TypeDelete:
		changes = []domain.Change{domain.DeleteEntity(ev.Intent, ev.ShapeID)}
	default:
		t.logger.Warn("ignoring unknown event", "type", ev.Type)
		return nil
	}

	for _, c := range changes {
		t.fold(c)
	}
	return changes
}

func (t *Translator) shape(ev events.Event) []domain.Change {
	s := ev.Shape
	description := s.Note
	if description == "" {
		description = ev.Intent
	}
	wrap := domain.CreateEntity
	if ev.Type == events.TypeUpdate {
		wrap = domain.UpdateEntity
	}

	switch s.Type {
	case events.ShapeRectangle, events.ShapeEllipse:
		return []domain.Change{wrap(description, domain.EntityPatch{
			ID:   s.ShapeID,
			Type: "geo",
			X:    domain.Ptr(s.X),
			Y:    domain.Ptr(s.Y),
			Props: map[string]any{
				"geo":   string(s.Type),
				"w":     s.Width,
				"h":     s.Height,
				"color": color(s.Color),
				"fill":  Fill(s.Fill),
				"text":  s.Text,
			},
		})}

	case events.ShapeLine:
		minX, minY := min(s.X1, s.X2), min(s.Y1, s.Y2)
		return []domain.Change{wrap(description, domain.EntityPatch{
			ID:   s.ShapeID,
			Type: "line",
			X:    domain.Ptr(minX),
			Y:    domain.Ptr(minY),
			Props: map[string]any{
				"color": color(s.Color),
				"points": map[string]any{
					"a1": map[string]any{"id": "a1", "index": "a1", "x": s.X1 - minX, "y": s.Y1 - minY},
					"a2": map[string]any{"id": "a2", "index": "a2", "x": s.X2 - minX, "y": s.Y2 - minY},
				},
			},
		})}

	case events.ShapeText:
		align := s.TextAlign
		if align == "" {
			align = defaultTextAlign
		}
		return []domain.Change{wrap(description, domain.EntityPatch{
			ID:   s.ShapeID,
			Type: "text",
			X:    domain.Ptr(s.X),
			Y:    domain.Ptr(s.Y - events.TextOffset),
			Props: map[string]any{
				"text":      s.Text,
				"color":     color(s.Color),
				"textAlign": align,
			},
		})}

	case events.ShapeNote:
		return []domain.Change{wrap(description, domain.EntityPatch{
			ID:   s.ShapeID,
			Type: "note",
			X:    domain.Ptr(s.X),
			Y:    domain.Ptr(s.Y),
			Props: map[string]any{
				"text":  s.Text,
				"color": color(s.Color),
			},
		})}

	case events.ShapeArrow:
		return t.arrow(wrap, description, s)

	default:
		e, ok := t.view.Entity(s.ShapeID)
		if !ok {
			t.logger.Debug("unknown shape not in snapshot", "shape_id", s.ShapeID)
			return nil
		}
		// The entity already exists, so echoing it back is an update.
		return []domain.Change{domain.UpdateEntity(description, domain.PatchOf(e))}
	}
}

func (t *Translator) arrow(wrap func(string, domain.EntityPatch) domain.Change, description string, s *events.Shape) []domain.Change {
	changes := []domain.Change{wrap(description, domain.EntityPatch{
		ID:   s.ShapeID,
		Type: "arrow",
		X:    domain.Ptr(0.0),
		Y:    domain.Ptr(0.0),
		Props: map[string]any{
			"color": color(s.Color),
			"text":  s.Text,
			"start": map[string]any{"x": s.X1, "y": s.Y1},
			"end":   map[string]any{"x": s.X2, "y": s.Y2},
		},
	})}

	for _, end := range []struct {
		terminal string
		target   *string
	}{{"start", s.FromID}, {"end", s.ToID}} {
		if end.target == nil || *end.target == "" {
			continue
		}
		if _, ok := t.view.Entity(*end.target); !ok {
			t.logger.Debug("arrow endpoint not found", "shape_id", s.ShapeID, "target", *end.target)
			continue
		}
		changes = append(changes, domain.CreateRelation(description, domain.RelationPatch{
			Type:   "arrow",
			FromID: s.ShapeID,
			ToID:   *end.target,
			Props: map[string]any{
				"terminal":         end.terminal,
				"normalizedAnchor": map[string]any{"x": 0.5, "y": 0.5},
				"isExact":          false,
				"isPrecise":        false,
			},
		}))
	}
	return changes
}

// fold applies a produced change to the view.
func (t *Translator) fold(c domain.Change) {
	switch c.Type {
	case domain.ChangeCreateEntity:
		t.view.Entities = append(t.view.Entities, c.Entity.Apply(domain.Entity{ID: c.Entity.ID}))
	case domain.ChangeUpdateEntity:
		for i, e := range t.view.Entities {
			if e.ID == c.Entity.ID {
				t.view.Entities[i] = c.Entity.Apply(e)
			}
		}
	case domain.ChangeDeleteEntity:
		t.view.Entities = slices.DeleteFunc(t.view.Entities, func(e domain.Entity) bool { return e.ID == c.EntityID })
		t.view.Relations = slices.DeleteFunc(t.view.Relations, func(r domain.Relation) bool {
			return r.FromID == c.EntityID || r.ToID == c.EntityID
		})
	case domain.ChangeCreateRelation:
		r := c.Relation
		t.view.Relations = append(t.view.Relations, domain.Relation{
			ID:     r.ID,
			Type:   r.Type,
			FromID: r.FromID,
			ToID:   r.ToID,
			Props:  domain.CloneMap(r.Props),
			Meta:   domain.CloneMap(r.Meta),
		})
	}
}
