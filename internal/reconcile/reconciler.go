package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// MetadataResolver resolves SPL mint metadata. Implementations return
// dex.ErrNotFound for unknown mints.
type MetadataResolver interface {
	Resolve(ctx context.Context, mint string) (model.TokenMeta, error)
}

// AMMConfigFetcher loads a pool's fee configuration account.
type AMMConfigFetcher interface {
	FetchAMMConfig(ctx context.Context, address string) (*model.AMMConfig, error)
}

// Config controls reconciliation behavior.
type Config struct {
	ProgramID   string
	Stablecoins []string
}

// EpochStats summarizes one committed epoch.
type EpochStats struct {
	FromHeight   uint64
	ToHeight     uint64
	Blocks       int
	// Instructions counts the instructions dispatched to a handler.
	Instructions int
	Logs         int
	Flushed      int
}

// Reconciler folds blocks of program instructions and events into entity state.
type Reconciler struct {
	store     storage.Store
	codec     *dex.Codec
	metadata  MetadataResolver
	configs   AMMConfigFetcher
	logger    *zap.Logger
	metrics   *Metrics
	programID string
	stable    map[string]struct{}
	hookReady bool
}

func New(cfg Config, store storage.Store, metadata MetadataResolver, configs AMMConfigFetcher, metrics *Metrics, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	codec := dex.NewCodec(cfg.ProgramID)
	stable := make(map[string]struct{}, len(cfg.Stablecoins))
	for _, mint := range cfg.Stablecoins {
		stable[mint] = struct{}{}
	}
	return &Reconciler{
		store:     store,
		codec:     codec,
		metadata:  metadata,
		configs:   configs,
		logger:    logger,
		metrics:   metrics,
		programID: codec.ProgramID(),
		stable:    stable,
	}
}

// RunEpoch processes blocks in order and flushes every touched entity once.
// On error nothing is flushed and the returned error is an *EpochError.
func (r *Reconciler) RunEpoch(ctx context.Context, blocks []model.Block) (EpochStats, error) {
	stats := EpochStats{Blocks: len(blocks)}
	if len(blocks) == 0 {
		return stats, nil
	}
	stats.FromHeight = blocks[0].Height
	stats.ToHeight = blocks[len(blocks)-1].Height

	if err := r.runEpoch(ctx, blocks, &stats); err != nil {
		r.metrics.EpochsFailed.Inc()
		return stats, &EpochError{FromHeight: stats.FromHeight, ToHeight: stats.ToHeight, Err: err}
	}

	r.metrics.EpochsProcessed.Inc()
	r.metrics.BlocksProcessed.Add(float64(len(blocks)))
	r.logger.Info("epoch complete",
		zap.Uint64("from", stats.FromHeight),
		zap.Uint64("to", stats.ToHeight),
		zap.Int("blocks", stats.Blocks),
		zap.Int("instructions", stats.Instructions),
		zap.Int("logs", stats.Logs),
		zap.Int("flushed", stats.Flushed),
	)
	return stats, nil
}

func (r *Reconciler) runEpoch(ctx context.Context, blocks []model.Block, stats *EpochStats) error {
	if err := r.ensureHook(ctx); err != nil {
		return err
	}

	e := newEpoch(r)
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.block = block
		e.pairOrdinal = 0
		e.logs = e.decodeLogs(block)

		for _, ix := range block.Instructions {
			dispatched, err := e.handleInstruction(ctx, ix)
			if err != nil {
				return &BlockError{Height: block.Height, TxSignature: ix.TxSignature, Err: err}
			}
			if dispatched {
				stats.Instructions++
			}
		}
		for _, l := range e.logs {
			if err := e.handleLog(ctx, l); err != nil {
				return &BlockError{Height: block.Height, TxSignature: l.log.TxSignature, Err: err}
			}
			stats.Logs++
		}
	}

	n, err := e.flush(ctx)
	if err != nil {
		return err
	}
	stats.Flushed = n
	return nil
}

// ensureHook writes the placeholder hook row the first time it succeeds.
func (r *Reconciler) ensureHook(ctx context.Context) error {
	if r.hookReady {
		return nil
	}
	hooks := r.store.Hooks()
	existing, err := hooks.FindOne(ctx, model.PlaceholderHookID)
	if err != nil {
		return fmt.Errorf("find hook: %w", err)
	}
	if existing == nil {
		hook := &model.Hook{ID: model.PlaceholderHookID, Address: model.PlaceholderHookID}
		if err := hooks.Upsert(ctx, []*model.Hook{hook}); err != nil {
			return fmt.Errorf("upsert hook: %w", err)
		}
	}
	r.hookReady = true
	return nil
}
