/*
Package domain contains the core models of the easel change pipeline.

It defines the canvas document vocabulary (entities, relations, content snapshots),
the prompt sent to a model, the change union applied back to the document, and the
run outcome types shared by the controller and its adapters. This package is kept
pure and free of I/O so that transforms, translators and adapters can depend on it
without pulling in each other.

# Key Types

  - Entity: a shape on the canvas, identified by ID and positioned relative to its parent.
  - Relation: a binding between two entities (for example an arrow endpoint).
  - Content: an ordered snapshot of entities, relations and assets.
  - Change: one primitive edit (create/update/delete of an entity or relation).
  - Prompt: the payload handed to a model provider.
  - Replay: the last successful run, kept in document space so it can be re-applied.
*/
package domain
