package transform_test

import (
	"errors"
	"testing"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs the order in which each phase reaches it.
type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) TransformPrompt(p *domain.Prompt) error {
	*r.log = append(*r.log, "prompt:"+r.name)
	return nil
}

func (r *recorder) TransformChange(c domain.Change) (domain.Change, error) {
	*r.log = append(*r.log, "change:"+r.name)
	c.Description += r.name
	return c, nil
}

// promptOnly only implements the prompt phase.
type promptOnly struct{}

func (promptOnly) Name() string                           { return "prompt-only" }
func (promptOnly) TransformPrompt(p *domain.Prompt) error { return nil }

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) TransformChange(domain.Change) (domain.Change, error) {
	return domain.Change{}, errors.New("boom")
}

func TestStack_SameOrderInBothPhases(t *testing.T) {
	var log []string
	factory := func(name string) transform.Factory {
		return func() transform.Transform { return &recorder{name: name, log: &log} }
	}

	stack := transform.NewStack(factory("a"), func() transform.Transform { return promptOnly{} }, factory("b"))
	require.NoError(t, stack.TransformPrompt(&domain.Prompt{}))

	out, err := stack.TransformChange(domain.DeleteEntity("", "x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"prompt:a", "prompt:b", "change:a", "change:b"}, log)
	assert.Equal(t, "ab", out.Description)
	assert.Equal(t, []string{"a", "prompt-only", "b"}, stack.Names())
}

func TestStack_ChangeErrorNamesTransform(t *testing.T) {
	stack := transform.NewStack(func() transform.Transform { return failing{} })

	_, err := stack.TransformChange(domain.DeleteEntity("", "x"))

	assert.ErrorContains(t, err, "transform failing: boom")
}

func TestStack_FreshStatePerRun(t *testing.T) {
	prompt := func() *domain.Prompt {
		return &domain.Prompt{Content: domain.Content{Entities: []domain.Entity{{ID: "shape:b"}}}}
	}

	first := transform.NewStack(transform.NewSimpleIDs)
	p1 := prompt()
	p1.Content.Entities = append([]domain.Entity{{ID: "shape:a"}}, p1.Content.Entities...)
	require.NoError(t, first.TransformPrompt(p1))

	second := transform.NewStack(transform.NewSimpleIDs)
	p2 := prompt()
	require.NoError(t, second.TransformPrompt(p2))

	assert.Equal(t, "1", p1.Content.Entities[1].ID)
	assert.Equal(t, "0", p2.Content.Entities[0].ID, "a new stack starts a new id table")

	out, err := second.TransformChange(domain.DeleteEntity("", "1"))
	require.NoError(t, err)
	assert.Equal(t, "1", out.EntityID, "tokens from another run are not resolved")
}

func TestStack_DoesNotMutateInput(t *testing.T) {
	stack := transform.NewStack(transform.NewShapeDescriptions)
	in := domain.CreateEntity("note", domain.EntityPatch{Type: "geo"})

	out, err := stack.TransformChange(in)
	require.NoError(t, err)

	assert.Nil(t, in.Entity.Meta)
	assert.Equal(t, "note", out.Entity.Meta[transform.DescriptionKey])
}

func TestShapeDescriptions(t *testing.T) {
	d := transform.NewShapeDescriptions().(transform.ChangeTransformer)

	out, err := d.TransformChange(domain.UpdateEntity("moved it", domain.EntityPatch{ID: "a", Meta: map[string]any{"k": "v"}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v", "description": "moved it"}, out.Entity.Meta)

	out, err = d.TransformChange(domain.UpdateEntity("", domain.EntityPatch{ID: "a"}))
	require.NoError(t, err)
	assert.Nil(t, out.Entity.Meta, "no description leaves meta untouched")

	out, err = d.TransformChange(domain.DeleteEntity("gone", "a"))
	require.NoError(t, err)
	assert.Nil(t, out.Entity)
}
