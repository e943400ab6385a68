package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/cache"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/config"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/indexer"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/reconcile"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage/memory"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage/postgres"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReconcile(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" && cfg.RPCURL == "" {
		return fmt.Errorf("input path or rpc url is required")
	}
	if cfg.PGDSN == "" && !cfg.DryRun {
		return fmt.Errorf("pg dsn is required unless --dry-run is set")
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	program, err := indexer.ParsePubkey(cfg.Program)
	if err != nil {
		return err
	}
	stablecoins, err := indexer.ParsePubkeys(cfg.Stablecoins)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := reconcile.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	var (
		store      storage.Store
		stateStore reconcile.StateStore
	)
	if cfg.DryRun {
		mem := memory.NewStore()
		store = mem
		stateStore = &reconcile.DBStateStore{Store: mem, Name: cfg.StateName}
	} else {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		store = pg
		stateStore = &reconcile.DBStateStore{Store: pg, Name: cfg.StateName}
	}
	if cfg.StateFile != "" {
		stateStore = &reconcile.FileStateStore{Path: cfg.StateFile}
	}

	var (
		metadata reconcile.MetadataResolver
		configs  reconcile.AMMConfigFetcher
		source   reconcile.BlockSource
	)
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(cfg.RPCURL, cfg.Commitment)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		metaCache := cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.MetadataTTL,
		}, dex.NewMintMetadataResolver(chainClient, logger), logger)
		defer metaCache.Close()
		if err := metaCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, metadata cache degraded", zap.Error(err))
		}
		metadata = metaCache
		configs = dex.AMMConfigFetcher{Accounts: chainClient}

		if cfg.In == "" {
			source = indexer.NewRPCBlockSource(indexer.SourceConfig{
				FromSlot:     cfg.FromSlot,
				ToSlot:       cfg.ToSlot,
				ProgramID:    program.String(),
				BatchSize:    uint64(cfg.BatchSize),
				MaxRetries:   cfg.MaxRetries,
				RetryBackoff: cfg.RetryBackoff,
			}, chainClient, logger)
		}
	} else {
		logger.Warn("no rpc url, token metadata and fee configs use defaults")
	}
	if cfg.In != "" {
		jsonl := indexer.NewJSONLBlockSource(cfg.In, cfg.BatchSize)
		defer jsonl.Close()
		source = jsonl
	}

	reconciler := reconcile.New(reconcile.Config{
		ProgramID:   program.String(),
		Stablecoins: stablecoins,
	}, store, metadata, configs, metrics, logger)
	driver := reconcile.NewDriver(reconciler, stateStore, logger)

	logger.Info("reconcile start",
		zap.String("in", cfg.In),
		zap.String("rpc", cfg.RPCURL),
		zap.String("program", program.String()),
		zap.Int("stablecoins", len(stablecoins)),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("state_file", cfg.StateFile),
		zap.String("redis", cfg.RedisAddr),
	)

	return driver.Run(ctx, source)
}

// serveMetrics exposes reg on addr/metrics and returns a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
