// Package loam persists canvases as Loam documents: frontmatter for the
// metadata and a JSON body for the content.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
)

// CanvasMetadata is the frontmatter of a stored canvas.
type CanvasMetadata struct {
	Name    string `json:"name" mapstructure:"name"`
	Shapes  int    `json:"shapes" mapstructure:"shapes"`
	Updated string `json:"updated" mapstructure:"updated"`
}

// snapshot is the document body.
type snapshot struct {
	Viewport domain.Rect    `json:"viewport"`
	Content  domain.Content `json:"content"`
}

// CanvasStore reads and writes canvases in a Loam repository.
type CanvasStore struct {
	Repo *loam.TypedRepository[CanvasMetadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[CanvasMetadata]) *CanvasStore {
	return &CanvasStore{Repo: repo}
}

// Open initializes a repository in dir without versioning.
func Open(dir string) (*CanvasStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create canvas dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := loam.Init(abs, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("init loam repo: %w", err)
	}
	return New(loam.NewTypedRepository[CanvasMetadata](repo)), nil
}

// Save writes the whole document under name, replacing any previous version.
func (s *CanvasStore) Save(ctx context.Context, name string, doc *memory.Document) error {
	content := doc.Content()
	body, err := json.MarshalIndent(snapshot{Viewport: doc.ViewportBounds(), Content: content}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal canvas: %w", err)
	}
	err = s.Repo.Save(ctx, &loam.DocumentModel[CanvasMetadata]{
		ID:      name,
		Content: string(body),
		Data: CanvasMetadata{
			Name:    name,
			Shapes:  len(content.Entities),
			Updated: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", name, err)
	}
	return nil
}

// Load reads the canvas stored under name into a fresh document.
func (s *CanvasStore) Load(ctx context.Context, name string) (*memory.Document, error) {
	doc, err := s.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(strings.TrimSpace(doc.Content)), &snap); err != nil {
		return nil, fmt.Errorf("decode canvas %s: %w", name, err)
	}
	opts := []memory.DocOption{memory.WithContent(snap.Content)}
	if snap.Viewport.W > 0 && snap.Viewport.H > 0 {
		opts = append(opts, memory.WithViewport(snap.Viewport))
	}
	return memory.NewDocument(opts...), nil
}

// LoadOrCreate loads name, or returns an empty document when it does not
// exist yet.
func (s *CanvasStore) LoadOrCreate(ctx context.Context, name string) (*memory.Document, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n == name {
			return s.Load(ctx, name)
		}
	}
	return memory.NewDocument(), nil
}

// List returns the names of stored canvases.
func (s *CanvasStore) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = strings.TrimSuffix(doc.ID, filepath.Ext(doc.ID))
		}
		names = append(names, filepath.ToSlash(name))
	}
	return names, nil
}
