/*
Package transform rewrites outgoing prompts and incoming changes in lockstep.

A Stack is built fresh for every run from a list of Factories. TransformPrompt
runs each transform left to right once, then TransformChange runs every change
through the same transforms in the same left-to-right order. Transforms keep
private state between the two phases (id tables, offsets), so a stack must not
be shared between runs.

Transforms opt into each phase by implementing PromptTransformer and/or
ChangeTransformer. Transforms that need to correlate ids across the two phases
can implement ScopeBinder to receive the run's shared alias table.
*/
package transform
