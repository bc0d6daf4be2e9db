package events

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://easel.dev/schemas/event.json"

// eventSchemaJSON validates one element of the events array.
// Colors and fills are left open; the translator maps unknown values to defaults.
const eventSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://easel.dev/schemas/event.json",
  "type": "object",
  "required": ["type", "intent"],
  "properties": {
    "intent": { "type": "string" }
  },
  "oneOf": [
    {
      "properties": {
        "type": { "const": "think" },
        "text": { "type": "string" }
      },
      "required": ["text"]
    },
    {
      "properties": {
        "type": { "enum": ["create", "update"] },
        "shape": { "$ref": "#/$defs/shape" }
      },
      "required": ["shape"]
    },
    {
      "properties": {
        "type": { "const": "move" },
        "shapeId": { "type": "string", "minLength": 1 },
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "required": ["shapeId", "x", "y"]
    },
    {
      "properties": {
        "type": { "const": "label" },
        "shapeId": { "type": "string", "minLength": 1 },
        "text": { "type": "string" }
      },
      "required": ["shapeId", "text"]
    },
    {
      "properties": {
        "type": { "const": "delete" },
        "shapeId": { "type": "string", "minLength": 1 }
      },
      "required": ["shapeId"]
    }
  ],
  "$defs": {
    "shape": {
      "type": "object",
      "required": ["type", "shapeId"],
      "properties": {
        "shapeId": { "type": "string", "minLength": 1 },
        "note": { "type": "string" },
        "color": { "type": "string" },
        "fill": { "type": "string" },
        "text": { "type": "string" }
      },
      "oneOf": [
        {
          "properties": {
            "type": { "enum": ["rectangle", "ellipse"] },
            "x": { "type": "number" },
            "y": { "type": "number" },
            "width": { "type": "number" },
            "height": { "type": "number" }
          },
          "required": ["x", "y", "width", "height"]
        },
        {
          "properties": {
            "type": { "const": "line" },
            "x1": { "type": "number" },
            "y1": { "type": "number" },
            "x2": { "type": "number" },
            "y2": { "type": "number" }
          },
          "required": ["x1", "y1", "x2", "y2"]
        },
        {
          "properties": {
            "type": { "const": "arrow" },
            "fromId": { "type": ["string", "null"] },
            "toId": { "type": ["string", "null"] },
            "x1": { "type": "number" },
            "y1": { "type": "number" },
            "x2": { "type": "number" },
            "y2": { "type": "number" }
          },
          "required": ["x1", "y1", "x2", "y2"]
        },
        {
          "properties": {
            "type": { "const": "text" },
            "x": { "type": "number" },
            "y": { "type": "number" },
            "textAlign": { "enum": ["start", "middle", "end"] }
          },
          "required": ["x", "y"]
        },
        {
          "properties": {
            "type": { "enum": ["note", "unknown"] },
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "required": ["x", "y"]
        }
      ]
    }
  }
}`

// Validator checks decoded JSON values against the event schema.
// It is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded event schema.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(eventSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal event schema: %w", err)
	}
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add event schema resource: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// MustValidator is NewValidator for package-level initialization.
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports whether raw is a complete event.
// raw must be a JSON value as produced by encoding/json with UseNumber or by
// the partialjson package.
func (v *Validator) Validate(raw any) error {
	if err := v.schema.Validate(raw); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	return nil
}

// Parse validates raw and decodes it into an Event.
func (v *Validator) Parse(raw any) (Event, error) {
	if err := v.Validate(raw); err != nil {
		return Event{}, err
	}
	return Decode(raw)
}

// Decode converts a JSON value into an Event without validating it.
func Decode(raw any) (Event, error) {
	var ev Event
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ev,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Event{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
