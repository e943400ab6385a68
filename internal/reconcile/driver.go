package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// BlockSource yields ordered batches of blocks and io.EOF once exhausted.
type BlockSource interface {
	Next(ctx context.Context) ([]model.Block, error)
}

// Driver pulls batches from a BlockSource and reconciles each as one epoch.
type Driver struct {
	reconciler *Reconciler
	state      StateStore
	logger     *zap.Logger
}

func NewDriver(reconciler *Reconciler, state StateStore, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{reconciler: reconciler, state: state, logger: logger}
}

// Run reconciles until the source is exhausted. Blocks at or below the
// committed height are dropped, so a restarted run never applies a block twice.
func (d *Driver) Run(ctx context.Context, source BlockSource) error {
	if d.reconciler == nil {
		return fmt.Errorf("reconciler is nil")
	}
	if source == nil {
		return fmt.Errorf("block source is nil")
	}

	committed, hasState, err := d.loadState(ctx)
	if err != nil {
		return err
	}
	if hasState {
		d.logger.Info("resume from state", zap.Uint64("committed_height", committed))
		d.reconciler.metrics.CommittedHeight.Set(float64(committed))
	}

	var epochs, blocks int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("next blocks: %w", err)
		}

		pending := batch[:0:0]
		for _, block := range batch {
			if hasState && block.Height <= committed {
				continue
			}
			pending = append(pending, block)
		}
		if len(pending) == 0 {
			continue
		}

		stats, err := d.reconciler.RunEpoch(ctx, pending)
		if err != nil {
			return err
		}
		epochs++
		blocks += len(pending)

		committed, hasState = stats.ToHeight, true
		if d.state != nil {
			if err := d.state.Save(ctx, committed); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
		d.reconciler.metrics.CommittedHeight.Set(float64(committed))
	}

	d.logger.Info("reconcile complete",
		zap.Int("epochs", epochs),
		zap.Int("blocks", blocks),
		zap.Uint64("committed_height", committed),
	)
	return nil
}

func (d *Driver) loadState(ctx context.Context) (uint64, bool, error) {
	if d.state == nil {
		return 0, false, nil
	}
	height, ok, err := d.state.Load(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load state: %w", err)
	}
	return height, ok, nil
}
