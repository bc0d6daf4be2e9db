package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/events"
)

// SystemPrompt tells the model the response format. Shape and event fields
// mirror package events.
const SystemPrompt = `You edit a whiteboard. Reply with a single JSON object:
{"long_description": "<what you will draw>", "events": [<event>, ...]}

Events, applied in order:
- {"type":"think","intent":"...","text":"..."}
- {"type":"create","intent":"...","shape":<shape>}
- {"type":"update","intent":"...","shape":<shape with an existing shapeId>}
- {"type":"move","intent":"...","shapeId":"...","x":0,"y":0}
- {"type":"label","intent":"...","shapeId":"...","text":"..."}
- {"type":"delete","intent":"...","shapeId":"..."}

Shapes all carry "type", "shapeId" and an optional "note":
- rectangle, ellipse: x, y, width, height, color, fill, text
- line: x1, y1, x2, y2, color
- arrow: x1, y1, x2, y2, fromId, toId, color, text
- text: x, y, text, color, textAlign (start, middle or end)
- note: x, y, text, color

Colors: %s. Fills: %s.
Coordinates are integers; y grows downwards. Keep shapes inside the prompt bounds.`

func systemPrompt() string {
	return fmt.Sprintf(SystemPrompt, strings.Join(events.Colors, ", "), strings.Join(events.Fills, ", "))
}

// canvasState is the user-visible description of the canvas.
type canvasState struct {
	PromptBounds  domain.Rect    `json:"promptBounds"`
	ContextBounds domain.Rect    `json:"contextBounds"`
	Shapes        []events.Shape `json:"shapes"`
}

// messages builds the chat for one prompt.
func messages(prompt domain.Prompt) ([]openai.ChatCompletionMessage, error) {
	state, err := json.Marshal(canvasState{
		PromptBounds:  prompt.PromptBounds,
		ContextBounds: prompt.ContextBounds,
		Shapes:        events.FromContent(prompt.Content),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal canvas: %w", err)
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: "Current canvas:\n" + string(state),
	}}
	if supportedImage(prompt.Image) {
		parts = append(parts, imagePart(prompt.Image))
	}
	for _, p := range prompt.Message {
		switch p.Type {
		case domain.PartText:
			parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: p.Text})
		case domain.PartImage:
			if supportedImage(p.Src) || strings.HasPrefix(p.Src, "http") {
				parts = append(parts, imagePart(p.Src))
			}
		}
	}

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	}, nil
}

func imagePart(url string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type:     openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{URL: url, Detail: openai.ImageURLDetailAuto},
	}
}

// supportedImage reports whether a data URL is in a raster format vision
// models accept.
func supportedImage(src string) bool {
	for _, mime := range []string{"image/png", "image/jpeg", "image/webp", "image/gif"} {
		if strings.HasPrefix(src, "data:"+mime) {
			return true
		}
	}
	return false
}
