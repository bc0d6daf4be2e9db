package events

import (
	"github.com/aretw0/easel/pkg/domain"
)

// TextOffset is the distance between a simple text shape's anchor and the
// document's native text anchor.
const TextOffset = 12.0

// nativeFills maps document fills back to the simple vocabulary.
var nativeFills = map[string]string{
	"none":    "none",
	"fill":    "solid",
	"semi":    "semi",
	"solid":   "tint",
	"pattern": "pattern",
}

// FromContent describes document content as simple shapes, the form models
// are prompted with. Arrow endpoints come from the content's relations.
func FromContent(c domain.Content) []Shape {
	shapes := make([]Shape, 0, len(c.Entities))
	for _, e := range c.Entities {
		shapes = append(shapes, fromEntity(e, c.Relations))
	}
	return shapes
}

func fromEntity(e domain.Entity, relations []domain.Relation) Shape {
	s := Shape{
		ShapeID: e.ID,
		Color:   str(e.Props["color"]),
		Text:    str(e.Props["text"]),
	}
	if d, ok := e.Meta["description"].(string); ok {
		s.Note = d
	}

	switch e.Type {
	case "geo":
		s.Type = ShapeRectangle
		if str(e.Props["geo"]) == string(ShapeEllipse) {
			s.Type = ShapeEllipse
		}
		s.X, s.Y = e.X, e.Y
		s.Width = num(e.Props["w"])
		s.Height = num(e.Props["h"])
		s.Fill = nativeFills[str(e.Props["fill"])]
	case "text":
		s.Type = ShapeText
		s.X, s.Y = e.X, e.Y+TextOffset
		s.TextAlign = str(e.Props["textAlign"])
	case "note":
		s.Type = ShapeNote
		s.X, s.Y = e.X, e.Y
	case "line":
		s.Type = ShapeLine
		s.X1, s.Y1 = point(e, "a1")
		s.X2, s.Y2 = point(e, "a2")
	case "arrow":
		s.Type = ShapeArrow
		start, _ := e.Props["start"].(map[string]any)
		end, _ := e.Props["end"].(map[string]any)
		s.X1, s.Y1 = e.X+num(start["x"]), e.Y+num(start["y"])
		s.X2, s.Y2 = e.X+num(end["x"]), e.Y+num(end["y"])
		for _, r := range relations {
			if r.FromID != e.ID {
				continue
			}
			to := r.ToID
			switch r.Props["terminal"] {
			case "start":
				s.FromID = &to
			case "end":
				s.ToID = &to
			}
		}
	default:
		s.Type = ShapeUnknown
		s.X, s.Y = e.X, e.Y
	}
	return s
}

// point returns the absolute position of a line handle.
func point(e domain.Entity, key string) (float64, float64) {
	points, _ := e.Props["points"].(map[string]any)
	p, _ := points[key].(map[string]any)
	return e.X + num(p["x"]), e.Y + num(p["y"])
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	n, _ := domain.Number(v)
	return n
}
