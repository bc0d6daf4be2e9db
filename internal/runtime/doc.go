// Package runtime holds the document-facing mechanics of a run: building the
// prompt from a document and applying changes inside a checkpoint scope.
package runtime
