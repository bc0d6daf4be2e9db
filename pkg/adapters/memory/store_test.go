package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayStore_Contract(t *testing.T) {
	ports.RunReplayStoreContract(t, memory.NewReplayStore())
}

func TestReplayStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReplayStore()
	changes := []domain.Change{domain.UpdateEntity("", domain.EntityPatch{ID: "a", X: domain.Ptr(1.0)})}

	require.NoError(t, store.Save(ctx, "k", domain.Replay{Changes: changes}))
	*changes[0].Entity.X = 42

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1.0, *loaded.Changes[0].Entity.X)
}
