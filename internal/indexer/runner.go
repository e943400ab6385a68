package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// RunConfig holds runtime settings for the fetcher.
type RunConfig struct {
	FromSlot          uint64
	ToSlot            uint64
	ProgramID         string
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams program blocks from the chain and writes them to storage.
type Runner struct {
	cfg        RunConfig
	chain      BlockFetcher
	storage    storage.BlockSink
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient BlockFetcher, sink storage.BlockSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    sink,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the fetch loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	source := NewRPCBlockSource(SourceConfig{
		FromSlot:     r.cfg.FromSlot,
		ToSlot:       r.cfg.ToSlot,
		ProgramID:    r.cfg.ProgramID,
		BatchSize:    r.cfg.BatchSize,
		MaxRetries:   r.cfg.MaxRetries,
		RetryBackoff: r.cfg.RetryBackoff,
	}, r.chain, r.logger)

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok && !cp.Covers(r.cfg.ProgramID) {
			r.logger.Warn("checkpoint belongs to another program, ignoring",
				zap.String("checkpoint_program", cp.ProgramID), zap.String("program", r.cfg.ProgramID))
		} else if ok && cp.LastProcessedSlot >= r.cfg.FromSlot {
			if err := source.Skip(ctx, cp.LastProcessedSlot); err != nil {
				return err
			}
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedSlot))
		}
	}

	for {
		slotRange, blocks, err := source.NextRange(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch blocks: %w", err)
		}

		if err := r.storage.PutBlockBatch(blocks); err != nil {
			return fmt.Errorf("store blocks: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(r.cfg.ProgramID, slotRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("blocks", len(blocks)), zap.Uint64("from", slotRange.From), zap.Uint64("to", slotRange.To))
	}
}
