package transform

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// Transform is one entry of a stack.
type Transform interface {
	Name() string
}

// PromptTransformer rewrites the outgoing prompt in place.
type PromptTransformer interface {
	TransformPrompt(p *domain.Prompt) error
}

// ChangeTransformer rewrites one incoming change.
type ChangeTransformer interface {
	TransformChange(c domain.Change) (domain.Change, error)
}

// ScopeBinder receives the run scope before the prompt phase.
type ScopeBinder interface {
	BindScope(s *Scope)
}

// Factory builds a fresh transform for one run.
type Factory func() Transform

// Defaults returns the stack used when none is configured.
func Defaults() []Factory {
	return []Factory{NewSimpleIDs, NewShapeDescriptions, NewSimpleCoordinates}
}

// Stack is the per-run instance of a transform list.
type Stack struct {
	scope      *Scope
	transforms []Transform
}

// NewStack instantiates every factory in order.
func NewStack(factories ...Factory) *Stack {
	s := &Stack{scope: NewScope()}
	for _, f := range factories {
		t := f()
		if b, ok := t.(ScopeBinder); ok {
			b.BindScope(s.scope)
		}
		s.transforms = append(s.transforms, t)
	}
	return s
}

// Names lists the transforms in application order.
func (s *Stack) Names() []string {
	names := make([]string, len(s.transforms))
	for i, t := range s.transforms {
		names[i] = t.Name()
	}
	return names
}

// TransformPrompt runs the prompt phase left to right.
func (s *Stack) TransformPrompt(p *domain.Prompt) error {
	for _, t := range s.transforms {
		pt, ok := t.(PromptTransformer)
		if !ok {
			continue
		}
		if err := pt.TransformPrompt(p); err != nil {
			return fmt.Errorf("transform %s: %w", t.Name(), err)
		}
	}
	return nil
}

// TransformChange runs the change phase in the same left-to-right order.
// The input change is not mutated.
func (s *Stack) TransformChange(c domain.Change) (domain.Change, error) {
	out := c.Clone()
	for _, t := range s.transforms {
		ct, ok := t.(ChangeTransformer)
		if !ok {
			continue
		}
		var err error
		if out, err = ct.TransformChange(out); err != nil {
			return domain.Change{}, fmt.Errorf("transform %s: %w", t.Name(), err)
		}
	}
	return out, nil
}

// Scope is the run-wide alias table shared by a stack's transforms.
// It maps every alias handed to the model back to the document id it stands for.
type Scope struct {
	canonical map[string]string
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{canonical: make(map[string]string)}
}

// Alias records that alias stands for id.
func (s *Scope) Alias(id, alias string) {
	if id == alias {
		return
	}
	s.canonical[alias] = id
}

// Canonical returns the document id for id, which may be an alias or already
// a document id.
func (s *Scope) Canonical(id string) string {
	if c, ok := s.canonical[id]; ok {
		return c
	}
	return id
}
