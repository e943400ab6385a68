package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// epoch holds the caches of one reconciliation pass over a batch of blocks.
type epoch struct {
	r *Reconciler

	wallets      *entityCache[model.Wallet]
	tokens       *entityCache[model.Token]
	ammConfigs   *entityCache[model.AMMConfig]
	pools        *entityCache[model.Pool]
	positions    *entityCache[model.Position]
	managers     *entityCache[model.Manager]
	poolManagers *entityCache[model.PoolManager]

	pairs     *recordLog[model.PairRecord]
	swaps     *recordLog[model.SwapRecord]
	liquidity *recordLog[model.LiquidityRecord]

	tokenHours *entityCache[model.TokenBucket]
	tokenDays  *entityCache[model.TokenBucket]
	poolHours  *entityCache[model.PoolBucket]
	poolDays   *entityCache[model.PoolBucket]

	ticks *tickTracker

	// per block state
	block       model.Block
	logs        []decodedLog
	pairOrdinal int
}

func newEpoch(r *Reconciler) *epoch {
	s := r.store
	return &epoch{
		r:            r,
		wallets:      newEntityCache("wallet", s.Wallets(), func(w *model.Wallet) string { return w.ID }),
		tokens:       newEntityCache("token", s.Tokens(), func(t *model.Token) string { return t.ID }),
		ammConfigs:   newEntityCache("amm config", s.AMMConfigs(), func(c *model.AMMConfig) string { return c.ID }),
		pools:        newEntityCache("pool", s.Pools(), func(p *model.Pool) string { return p.ID }),
		positions:    newEntityCache("position", s.Positions(), func(p *model.Position) string { return p.ID }),
		managers:     newEntityCache("manager", s.Managers(), func(m *model.Manager) string { return m.ID }),
		poolManagers: newEntityCache("pool manager", s.PoolManagers(), func(m *model.PoolManager) string { return m.ID }),
		pairs:        newRecordLog[model.PairRecord]("pair records"),
		swaps:        newRecordLog[model.SwapRecord]("swap records"),
		liquidity:    newRecordLog[model.LiquidityRecord]("liquidity records"),
		tokenHours:   newEntityCache("token hour data", s.TokenHours(), func(b *model.TokenBucket) string { return b.ID }),
		tokenDays:    newEntityCache("token day data", s.TokenDays(), func(b *model.TokenBucket) string { return b.ID }),
		poolHours:    newEntityCache("pool hour data", s.PoolHours(), func(b *model.PoolBucket) string { return b.ID }),
		poolDays:     newEntityCache("pool day data", s.PoolDays(), func(b *model.PoolBucket) string { return b.ID }),
		ticks:        newTickTracker(),
	}
}

// flush writes every cache once, referenced entities before their
// dependents, in one transaction when the store supports it.
func (e *epoch) flush(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { e.r.metrics.FlushDuration.Observe(time.Since(start).Seconds()) }()

	total := 0
	err := storage.Atomic(ctx, e.r.store, func(s storage.Store) error {
		steps := []func() (int, error){
			func() (int, error) { return e.wallets.Flush(ctx, s.Wallets()) },
			func() (int, error) { return e.tokens.Flush(ctx, s.Tokens()) },
			func() (int, error) { return e.ammConfigs.Flush(ctx, s.AMMConfigs()) },
			func() (int, error) { return e.pools.Flush(ctx, s.Pools()) },
			func() (int, error) { return e.positions.Flush(ctx, s.Positions()) },
			func() (int, error) { return e.managers.Flush(ctx, s.Managers()) },
			func() (int, error) { return e.poolManagers.Flush(ctx, s.PoolManagers()) },
			func() (int, error) { return e.pairs.Flush(ctx, s.PairRecords()) },
			func() (int, error) { return e.swaps.Flush(ctx, s.SwapRecords()) },
			func() (int, error) { return e.liquidity.Flush(ctx, s.LiquidityRecords()) },
			func() (int, error) { return e.tokenHours.Flush(ctx, s.TokenHours()) },
			func() (int, error) { return e.tokenDays.Flush(ctx, s.TokenDays()) },
			func() (int, error) { return e.poolHours.Flush(ctx, s.PoolHours()) },
			func() (int, error) { return e.poolDays.Flush(ctx, s.PoolDays()) },
		}
		for _, step := range steps {
			n, err := step()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (e *epoch) isStable(mint string) bool {
	_, ok := e.r.stable[mint]
	return ok
}

// ensureToken returns the token, resolving metadata for unseen mints.
func (e *epoch) ensureToken(ctx context.Context, mint string) (*model.Token, error) {
	token, _, err := e.tokens.Ensure(ctx, mint, func() (*model.Token, error) {
		meta, err := e.resolveMetadata(ctx, mint)
		if err != nil {
			return nil, err
		}
		token := &model.Token{
			ID:          mint,
			Name:        meta.Name,
			Symbol:      meta.Symbol,
			Decimals:    meta.Decimals,
			BlockHeight: e.block.Height,
			Timestamp:   e.block.Timestamp,
		}
		if e.isStable(mint) {
			token.Price = 1
		}
		return token, nil
	})
	return token, err
}

func (e *epoch) resolveMetadata(ctx context.Context, mint string) (model.TokenMeta, error) {
	fallback := model.TokenMeta{Address: mint, Decimals: model.DefaultTokenDecimals}
	if e.r.metadata == nil {
		return fallback, nil
	}
	meta, err := e.r.metadata.Resolve(ctx, mint)
	if errors.Is(err, dex.ErrNotFound) {
		e.r.logger.Warn("token metadata not found, using defaults", zap.String("mint", mint))
		return fallback, nil
	}
	if err != nil {
		return model.TokenMeta{}, err
	}
	return meta, nil
}

func (e *epoch) ensureWallet(ctx context.Context, address string) error {
	if address == "" {
		return nil
	}
	_, _, err := e.wallets.Ensure(ctx, address, func() (*model.Wallet, error) {
		return &model.Wallet{ID: address, Address: address}, nil
	})
	return err
}

func (e *epoch) manager(ctx context.Context) (*model.Manager, error) {
	id := e.r.programID
	m, _, err := e.managers.Ensure(ctx, id, func() (*model.Manager, error) {
		return &model.Manager{ID: id, Address: id}, nil
	})
	return m, err
}

func (e *epoch) poolManager(ctx context.Context) (*model.PoolManager, error) {
	id := e.r.programID
	m, _, err := e.poolManagers.Ensure(ctx, id, func() (*model.PoolManager, error) {
		return &model.PoolManager{ID: id, Address: id}, nil
	})
	return m, err
}

// ammConfig returns the fee configuration of a pool, fetching it on first use.
// A missing account yields a zero configuration.
func (e *epoch) ammConfig(ctx context.Context, address string) (*model.AMMConfig, error) {
	cfg, err := e.ammConfigs.Get(ctx, address)
	if err != nil || cfg != nil {
		return cfg, err
	}
	cfg = &model.AMMConfig{ID: address}
	if e.r.configs != nil {
		fetched, err := e.r.configs.FetchAMMConfig(ctx, address)
		switch {
		case errors.Is(err, dex.ErrNotFound):
			e.r.logger.Warn("amm config account not found, using zero fee", zap.String("amm_config", address))
		case err != nil:
			return nil, err
		default:
			cfg = fetched
		}
	}
	e.ammConfigs.Save(cfg)
	return cfg, nil
}

func (e *epoch) skip(reason string, fields ...zap.Field) {
	e.r.metrics.SkippedEvents.WithLabelValues(reason).Inc()
	e.r.logger.Debug("skip", append(fields, zap.String("reason", reason), zap.Uint64("block", e.block.Height))...)
}
