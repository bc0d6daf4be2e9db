/*
Package easel drives LLM-generated edits onto a canvas document.

A Controller takes a user prompt, snapshots the relevant part of the document,
hands it to a model provider and applies the changes the model returns. Every
run is transactional: the document is checkpointed before the first change and
rolled back if the run fails, is cancelled or runs out of time.

# Modes

Batch mode asks the provider for the whole change list at once. Stream mode
applies each change as soon as the provider yields it, so the canvas updates
while the model is still writing.

# Transforms

Providers work on a simplified view of the document: short ids, integer
coordinates relative to the content origin and per-shape descriptions. The
transform stack produces that view for the prompt and maps every change the
model returns back into document space before it is applied.

# Usage

	doc := memory.NewDocument()
	ctrl, err := easel.New(doc,
		easel.WithStreamer(provider.Stream),
		easel.WithTimeout(2*time.Minute),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := ctrl.Generate(ctx, domain.PromptInput{
		Message: domain.TextMessage("draw a cat"),
	}, domain.ModeStream)

Repeat re-applies the last successful run without calling the model again.
*/
package easel
