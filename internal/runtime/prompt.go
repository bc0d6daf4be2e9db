package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// BuildPrompt snapshots the document under the prompt bounds and renders it.
// Bounds missing from input default to the viewport.
func BuildPrompt(ctx context.Context, doc ports.Document, input domain.PromptInput) (domain.Prompt, error) {
	viewport := doc.ViewportBounds()
	promptBounds, contextBounds := viewport, viewport
	if input.PromptBounds != nil {
		promptBounds = *input.PromptBounds
	}
	if input.ContextBounds != nil {
		contextBounds = *input.ContextBounds
	}

	content, err := doc.SnapshotContent(ctx, promptBounds)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("snapshot content: %w", err)
	}
	image, err := doc.RenderImage(ctx, content)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("render image: %w", err)
	}

	return domain.Prompt{
		Message:       append([]domain.MessagePart(nil), input.Message...),
		Image:         image,
		Content:       content,
		ContextBounds: contextBounds,
		PromptBounds:  promptBounds,
		Meta:          input.Meta,
	}, nil
}
