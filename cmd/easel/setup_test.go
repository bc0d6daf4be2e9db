package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/easel/internal/config"
	"github.com/aretw0/easel/internal/logging"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/aretw0/easel/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/easel/pkg/adapters/redis"
	"github.com/aretw0/easel/pkg/domain"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	pf := cmd.PersistentFlags()
	pf.String("config", filepath.Join(t.TempDir(), "missing.yaml"), "")
	pf.String("log-level", "", "")
	pf.String("mode", "", "")
	pf.Duration("timeout", 0, "")
	pf.String("canvas", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cmd := testCommand(t, "--mode", "batch", "--timeout", "5s", "--canvas", "sketch", "--log-level", "debug")

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "batch", cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "sketch", cfg.Canvas.Name)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_RejectsBadMode(t *testing.T) {
	_, err := loadConfig(testCommand(t, "--mode", "sideways"))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider.Kind = "http"
	_, err := newProvider(cfg, logging.NewNop())
	assert.Error(t, err, "endpoint is required")

	cfg.Provider.Endpoint = "http://localhost:9999"
	p, err := newProvider(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &httpAdapter.Client{}, p)

	cfg.Provider.Kind = "carrier-pigeon"
	_, err = newProvider(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestNewReplayStore(t *testing.T) {
	cfg := config.Default()
	store, closeFn, err := newReplayStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.ReplayStore{}, store)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	cfg.Replay.Backend = "redis"
	cfg.Replay.Redis.Addr = mr.Addr()
	store, closeFn, err = newReplayStore(cfg)
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &redisAdapter.ReplayStore{}, store)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "k", domain.Replay{}))
	assert.True(t, mr.Exists(cfg.Replay.Redis.Prefix+"k"))
}

func TestNewReplayStore_Encrypted(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Replay.Backend = "redis"
	cfg.Replay.Redis.Addr = mr.Addr()
	cfg.Replay.Redact = []string{`secret`}
	cfg.Replay.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	store, closeFn, err := newReplayStore(cfg)
	require.NoError(t, err)
	defer closeFn()

	ctx := context.Background()
	replay := domain.Replay{Input: domain.PromptInput{Message: domain.TextMessage("my secret box")}}
	require.NoError(t, store.Save(ctx, "k", replay))

	raw, err := mr.Get(cfg.Replay.Redis.Prefix + "k")
	require.NoError(t, err)
	assert.NotContains(t, raw, "box")

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "my *** box", domain.Text(got.Input.Message))

	cfg.Replay.EncryptionKey = "too-short"
	_, _, err = newReplayStore(cfg)
	assert.Error(t, err)
}

func TestSession_RepeatAcrossInvocations(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Canvas.Dir = t.TempDir()
	cfg.Replay.Backend = "redis"
	cfg.Replay.Redis.Addr = mr.Addr()
	ctx := context.Background()

	s, err := openSession(ctx, cfg, logging.NewNop(), sessionOptions{})
	require.NoError(t, err)
	defer s.close()

	res, err := s.ctrl.Repeat(ctx)
	assert.ErrorIs(t, err, domain.ErrNothingToRepeat)

	var out bytes.Buffer
	printReport(&out, res, err)
	assert.Contains(t, out.String(), "Nothing to repeat")
}
