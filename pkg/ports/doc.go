/*
Package ports defines the driven ports (interfaces) of the easel pipeline.

These interfaces decouple the controller from the canvas host, the model
provider and replay persistence, so the same pipeline runs against an in-memory
canvas in tests, a file-backed canvas in the CLI, or a remote editor.

# Key Interfaces

  - Document: the canvas host (snapshot, render, CRUD, checkpoint/rollback).
  - GenerateFunc / StreamFunc: the model provider boundary, batch or streaming.
  - ReplayStore: persistence for the last successful run.
*/
package ports
