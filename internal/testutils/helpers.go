package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/require"

	loamAdapter "github.com/aretw0/easel/pkg/adapters/loam"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
)

// SetupCanvasStore creates a temporary directory and initializes a canvas
// store in it. Versioning is off unless opts turn it on.
// It fails the test immediately on error.
func SetupCanvasStore(t *testing.T, opts ...loam.Option) (string, *loamAdapter.CanvasStore) {
	t.Helper()

	// Loam sometimes prefers absolute paths, though t.TempDir usually returns one.
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, append([]loam.Option{loam.WithVersioning(false)}, opts...)...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, loamAdapter.New(loam.NewTypedRepository[loamAdapter.CanvasMetadata](repo))
}

// SampleDocument returns a document holding a box and a label joined by an
// arrow relation.
func SampleDocument() *memory.Document {
	return memory.NewDocument(
		memory.WithContent(domain.Content{
			Entities: []domain.Entity{
				{ID: "shape:box", Type: "geo", ParentID: memory.DefaultPage, X: 100, Y: 100,
					Props: map[string]any{"geo": "rectangle", "w": 200.0, "h": 100.0, "color": "blue", "fill": "solid"}},
				{ID: "shape:label", Type: "text", ParentID: memory.DefaultPage, X: 100, Y: 250,
					Props: map[string]any{"text": "hello", "color": "black"}},
			},
			Relations: []domain.Relation{
				{ID: "binding:1", Type: "arrow", FromID: "shape:box", ToID: "shape:label"},
			},
		}),
	)
}
