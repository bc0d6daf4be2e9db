package transform

import (
	"strconv"

	"github.com/aretw0/easel/pkg/domain"
)

// SimpleIDs replaces document ids with short sequential tokens ("0", "1", ...)
// in the prompt and maps them back on incoming changes.
type SimpleIDs struct {
	scope      *Scope
	toToken    map[string]string
	toOriginal map[string]string
	next       int
}

// NewSimpleIDs is a Factory for SimpleIDs.
func NewSimpleIDs() Transform {
	return &SimpleIDs{
		scope:      NewScope(),
		toToken:    make(map[string]string),
		toOriginal: make(map[string]string),
	}
}

func (t *SimpleIDs) Name() string { return "simple-ids" }

func (t *SimpleIDs) BindScope(s *Scope) { t.scope = s }

// TransformPrompt tokenizes entity, relation and nested prop ids.
// Parent and endpoint references are rewritten when they point at something
// already tokenized; page ids are left readable.
func (t *SimpleIDs) TransformPrompt(p *domain.Prompt) error {
	c := &p.Content
	for i := range c.Entities {
		c.Entities[i].ID = t.tokenize(c.Entities[i].ID)
	}
	for i := range c.Relations {
		c.Relations[i].ID = t.tokenize(c.Relations[i].ID)
	}
	for i := range c.Entities {
		e := &c.Entities[i]
		e.ParentID = t.lookup(e.ParentID)
		e.Props = t.walk(e.Props, t.tokenize).(map[string]any)
	}
	for i := range c.Relations {
		r := &c.Relations[i]
		r.FromID = t.lookup(r.FromID)
		r.ToID = t.lookup(r.ToID)
		r.Props = t.walk(r.Props, t.tokenize).(map[string]any)
	}
	return nil
}

// TransformChange maps tokens back to document ids.
// Tokens this run never issued pass through unchanged.
func (t *SimpleIDs) TransformChange(c domain.Change) (domain.Change, error) {
	switch c.Type {
	case domain.ChangeCreateEntity, domain.ChangeUpdateEntity:
		if c.Entity == nil {
			break
		}
		c.Entity.ID = t.original(c.Entity.ID)
		if c.Entity.ParentID != nil {
			c.Entity.ParentID = domain.Ptr(t.original(*c.Entity.ParentID))
		}
		c.Entity.Props = t.walk(c.Entity.Props, t.original).(map[string]any)
	case domain.ChangeDeleteEntity:
		c.EntityID = t.original(c.EntityID)
	case domain.ChangeCreateRelation, domain.ChangeUpdateRelation:
		if c.Relation == nil {
			break
		}
		c.Relation.ID = t.original(c.Relation.ID)
		c.Relation.FromID = t.original(c.Relation.FromID)
		c.Relation.ToID = t.original(c.Relation.ToID)
		c.Relation.Props = t.walk(c.Relation.Props, t.original).(map[string]any)
	case domain.ChangeDeleteRelation:
		c.RelationID = t.original(c.RelationID)
	}
	return c, nil
}

func (t *SimpleIDs) tokenize(id string) string {
	if id == "" {
		return id
	}
	if tok, ok := t.toToken[id]; ok {
		return tok
	}
	tok := strconv.Itoa(t.next)
	t.next++
	t.toToken[id] = tok
	t.toOriginal[tok] = id
	t.scope.Alias(id, tok)
	return tok
}

func (t *SimpleIDs) lookup(id string) string {
	if tok, ok := t.toToken[id]; ok {
		return tok
	}
	return id
}

func (t *SimpleIDs) original(id string) string {
	if orig, ok := t.toOriginal[id]; ok {
		return orig
	}
	return id
}

// walk rewrites the "id" field of every object reachable from v.
// A nil map stays nil so the type assertion at call sites always holds.
func (t *SimpleIDs) walk(v any, rewrite func(string) string) any {
	switch n := v.(type) {
	case map[string]any:
		if n == nil {
			return n
		}
		for k, child := range n {
			if k == "id" {
				if s, ok := child.(string); ok {
					n[k] = rewrite(s)
					continue
				}
			}
			n[k] = t.walk(child, rewrite)
		}
		return n
	case []any:
		for i, child := range n {
			n[i] = t.walk(child, rewrite)
		}
		return n
	default:
		return v
	}
}
