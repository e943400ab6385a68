package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/config"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/indexer"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Raydium concentrated liquidity indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch program blocks into a JSONL file",
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("rpc", "", "Solana RPC URL")
	fetchCmd.Flags().String("commitment", "finalized", "RPC commitment (confirmed, finalized)")
	fetchCmd.Flags().Uint64("from", 0, "start slot (inclusive)")
	fetchCmd.Flags().Uint64("to", 0, "end slot (inclusive), 0 means latest")
	fetchCmd.Flags().String("program", dex.DefaultProgramID, "CLMM program id")
	fetchCmd.Flags().Uint64("batch-size", 100, "slots per batch")
	fetchCmd.Flags().String("out", "./data/blocks.jsonl", "output JSONL path")
	fetchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	fetchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	fetchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	fetchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode program instructions and logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input blocks JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("program", dex.DefaultProgramID, "CLMM program id")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile blocks into pool, position and token state",
		RunE:  runReconcile,
	}

	reconcileCmd.Flags().String("rpc", "", "Solana RPC URL (block source when --in is empty, metadata and fee configs)")
	reconcileCmd.Flags().String("commitment", "finalized", "RPC commitment (confirmed, finalized)")
	reconcileCmd.Flags().String("in", "", "input blocks JSONL")
	reconcileCmd.Flags().Uint64("from", 0, "start slot when reading from RPC")
	reconcileCmd.Flags().Uint64("to", 0, "end slot when reading from RPC, 0 means latest")
	reconcileCmd.Flags().String("program", dex.DefaultProgramID, "CLMM program id")
	reconcileCmd.Flags().StringSlice("stablecoins", nil, "stablecoin mints priced at 1 USD (comma-separated)")
	reconcileCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	reconcileCmd.Flags().Bool("dry-run", false, "reconcile into memory without Postgres")
	reconcileCmd.Flags().Int("batch-size", 100, "blocks per epoch")
	reconcileCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	reconcileCmd.Flags().String("state-name", "reconciler", "state row name in indexer_state")
	reconcileCmd.Flags().String("redis-addr", "", "Redis address for the token metadata cache")
	reconcileCmd.Flags().String("redis-password", "", "Redis password")
	reconcileCmd.Flags().Int("redis-db", 0, "Redis database")
	reconcileCmd.Flags().Duration("metadata-ttl", 24*time.Hour, "token metadata cache TTL")
	reconcileCmd.Flags().String("metrics-addr", "", "address serving /metrics, empty disables")
	reconcileCmd.Flags().Int("max-retries", 5, "maximum RPC retry attempts")
	reconcileCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	reconcileCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reconcileCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		RunE:  runMigrate,
	}

	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	program, err := indexer.ParsePubkey(cfg.Program)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(cfg.RPCURL, cfg.Commitment)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromSlot:          cfg.FromSlot,
		ToSlot:            cfg.ToSlot,
		ProgramID:         program.String(),
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storageSink, logger)

	logger.Info("fetch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("commitment", cfg.Commitment),
		zap.Uint64("from", cfg.FromSlot),
		zap.Uint64("to", cfg.ToSlot),
		zap.String("program", program.String()),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
