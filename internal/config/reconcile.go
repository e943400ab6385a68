package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
)

// ReconcileConfig holds configuration for the reconcile command.
type ReconcileConfig struct {
	RPCURL        string
	Commitment    string
	In            string
	FromSlot      uint64
	ToSlot        uint64
	Program       string
	Stablecoins   []string
	PGDSN         string
	DryRun        bool
	BatchSize     int
	StateFile     string
	StateName     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MetadataTTL   time.Duration
	MetricsAddr   string
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
}

// LoadReconcile merges config file, environment variables, and flags into ReconcileConfig.
func LoadReconcile(cfgFile string, flags *pflag.FlagSet) (ReconcileConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"commitment":    "finalized",
		"program":       dex.DefaultProgramID,
		"batch-size":    100,
		"state-name":    "reconciler",
		"metadata-ttl":  24 * time.Hour,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return ReconcileConfig{}, err
	}

	stablecoins := getStringSlice(v, "stablecoins")
	if len(stablecoins) == 0 {
		stablecoins = dex.DefaultStablecoins()
	}

	cfg := ReconcileConfig{
		RPCURL:        v.GetString("rpc"),
		Commitment:    v.GetString("commitment"),
		In:            v.GetString("in"),
		FromSlot:      v.GetUint64("from"),
		ToSlot:        v.GetUint64("to"),
		Program:       v.GetString("program"),
		Stablecoins:   stablecoins,
		PGDSN:         v.GetString("pg-dsn"),
		DryRun:        v.GetBool("dry-run"),
		BatchSize:     v.GetInt("batch-size"),
		StateFile:     v.GetString("state-file"),
		StateName:     v.GetString("state-name"),
		RedisAddr:     v.GetString("redis-addr"),
		RedisPassword: v.GetString("redis-password"),
		RedisDB:       v.GetInt("redis-db"),
		MetadataTTL:   v.GetDuration("metadata-ttl"),
		MetricsAddr:   v.GetString("metrics-addr"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// MigrateConfig holds configuration for the migrate command.
type MigrateConfig struct {
	PGDSN    string
	LogLevel string
}

// LoadMigrate merges config file, environment variables, and flags into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return MigrateConfig{}, err
	}
	return MigrateConfig{
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
