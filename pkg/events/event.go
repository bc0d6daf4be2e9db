package events

// Type discriminates events.
type Type string

const (
	TypeThink  Type = "think"
	TypeCreate Type = "create"
	TypeUpdate Type = "update"
	TypeMove   Type = "move"
	TypeLabel  Type = "label"
	TypeDelete Type = "delete"
)

// ShapeType discriminates simple shapes.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeEllipse   ShapeType = "ellipse"
	ShapeLine      ShapeType = "line"
	ShapeArrow     ShapeType = "arrow"
	ShapeText      ShapeType = "text"
	ShapeNote      ShapeType = "note"
	ShapeUnknown   ShapeType = "unknown"
)

// Colors is the palette models may pick from.
var Colors = []string{
	"red", "light-red", "green", "light-green", "blue", "light-blue",
	"orange", "yellow", "black", "violet", "light-violet", "grey", "white",
}

// Fills is the fill vocabulary models may pick from.
var Fills = []string{"none", "tint", "semi", "solid", "pattern"}

// Shape is a flat, model-friendly description of one canvas shape.
// Which fields are meaningful depends on Type.
type Shape struct {
	Type      ShapeType `json:"type" mapstructure:"type"`
	ShapeID   string    `json:"shapeId" mapstructure:"shapeId"`
	Note      string    `json:"note,omitempty" mapstructure:"note"`
	X         float64   `json:"x,omitempty" mapstructure:"x"`
	Y         float64   `json:"y,omitempty" mapstructure:"y"`
	Width     float64   `json:"width,omitempty" mapstructure:"width"`
	Height    float64   `json:"height,omitempty" mapstructure:"height"`
	X1        float64   `json:"x1,omitempty" mapstructure:"x1"`
	Y1        float64   `json:"y1,omitempty" mapstructure:"y1"`
	X2        float64   `json:"x2,omitempty" mapstructure:"x2"`
	Y2        float64   `json:"y2,omitempty" mapstructure:"y2"`
	Color     string    `json:"color,omitempty" mapstructure:"color"`
	Fill      string    `json:"fill,omitempty" mapstructure:"fill"`
	Text      string    `json:"text,omitempty" mapstructure:"text"`
	TextAlign string    `json:"textAlign,omitempty" mapstructure:"textAlign"`
	FromID    *string   `json:"fromId,omitempty" mapstructure:"fromId"`
	ToID      *string   `json:"toId,omitempty" mapstructure:"toId"`
}

// Event is one step of a model response.
type Event struct {
	Type    Type    `json:"type" mapstructure:"type"`
	Intent  string  `json:"intent" mapstructure:"intent"`
	Text    string  `json:"text,omitempty" mapstructure:"text"`
	ShapeID string  `json:"shapeId,omitempty" mapstructure:"shapeId"`
	X       float64 `json:"x,omitempty" mapstructure:"x"`
	Y       float64 `json:"y,omitempty" mapstructure:"y"`
	Shape   *Shape  `json:"shape,omitempty" mapstructure:"shape"`
}

// Response is the full document a model returns.
type Response struct {
	LongDescription string  `json:"long_description"`
	Events          []Event `json:"events"`
}
