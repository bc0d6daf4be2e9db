package domain

// PartType discriminates message parts.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// MessagePart is one piece of a user message.
type MessagePart struct {
	Type     PartType `json:"type"`
	Text     string   `json:"text,omitempty"`
	Src      string   `json:"src,omitempty"`
	MimeType string   `json:"mimeType,omitempty"`
}

// TextMessage wraps plain text as a single-part message.
func TextMessage(text string) []MessagePart {
	return []MessagePart{{Type: PartText, Text: text}}
}

// Text concatenates the text parts of a message.
func Text(parts []MessagePart) string {
	var out string
	for _, p := range parts {
		if p.Type != PartText || p.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// Prompt is the payload handed to a model provider.
type Prompt struct {
	Message       []MessagePart `json:"message"`
	Image         string        `json:"image,omitempty"`
	Content       Content       `json:"canvasContent"`
	ContextBounds Rect          `json:"contextBounds"`
	PromptBounds  Rect          `json:"promptBounds"`
	Meta          any           `json:"meta,omitempty"`
}

// PromptInput is what a caller supplies to start a run.
// Missing bounds default to the document viewport.
type PromptInput struct {
	Message       []MessagePart `json:"message"`
	ContextBounds *Rect         `json:"contextBounds,omitempty"`
	PromptBounds  *Rect         `json:"promptBounds,omitempty"`
	Meta          any           `json:"meta,omitempty"`
}
