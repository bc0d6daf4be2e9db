/*
Package events defines the simple event vocabulary a model speaks.

Models answer with a JSON object shaped like

	{"long_description": "...", "events": [{"type": "create", "intent": "...", "shape": {...}}]}

Each event is validated against an embedded JSON Schema before it is decoded,
so downstream code never sees a half-written event. Shapes are flat and use
transform-space ids; the translate package maps them onto document changes.
*/
package events
