package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
)

func TestLoadReconcileDefaults(t *testing.T) {
	cfg, err := LoadReconcile("", nil)
	require.NoError(t, err)

	assert.Equal(t, dex.DefaultProgramID, cfg.Program)
	assert.Equal(t, dex.DefaultStablecoins(), cfg.Stablecoins)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, "reconciler", cfg.StateName)
	assert.Equal(t, 24*time.Hour, cfg.MetadataTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReconcileFlagsAndEnv(t *testing.T) {
	t.Setenv("INDEXER_PG_DSN", "postgres://indexer@localhost/clmm")
	t.Setenv("INDEXER_REDIS_ADDR", "localhost:6379")

	flags := pflag.NewFlagSet("reconcile", pflag.ContinueOnError)
	flags.String("stablecoins", "", "")
	flags.Int("batch-size", 100, "")
	flags.Bool("dry-run", false, "")
	require.NoError(t, flags.Parse([]string{"--stablecoins", " a, b,,c ", "--batch-size", "25", "--dry-run"}))

	cfg, err := LoadReconcile("", flags)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, cfg.Stablecoins)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "postgres://indexer@localhost/clmm", cfg.PGDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadFetchConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.yaml")
	content := "rpc: https://rpc.example\nfrom: 250000000\nto: 250000100\nbatch-size: 10\ncheckpoint-enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFetch(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example", cfg.RPCURL)
	assert.Equal(t, uint64(250000000), cfg.FromSlot)
	assert.Equal(t, uint64(250000100), cfg.ToSlot)
	assert.Equal(t, uint64(10), cfg.BatchSize)
	assert.False(t, cfg.CheckpointEnabled)
	assert.Equal(t, "finalized", cfg.Commitment)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := LoadDecode(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestSplitAndClean(t *testing.T) {
	assert.Nil(t, splitAndClean(""))
	assert.Equal(t, []string{"x", "y"}, splitAndClean(" x ,, y,"))
}
