package storage

import (
	"context"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// BlockSink defines a sink for normalized blocks.
type BlockSink interface {
	PutBlockBatch(blocks []model.Block) error
}

// Repository persists one entity kind keyed by its id.
type Repository[T any] interface {
	// FindOne returns nil and no error when id is absent.
	FindOne(ctx context.Context, id string) (*T, error)
	// Upsert inserts or replaces items by primary key in one batch.
	Upsert(ctx context.Context, items []*T) error
}

// PairRepository adds the price discovery queries over pair records.
type PairRepository interface {
	Repository[model.PairRecord]
	// LatestStablePair returns the newest stable-based record quoting token1.
	LatestStablePair(ctx context.Context, token1 string) (*model.PairRecord, error)
	// LatestPairsByQuote returns the newest record quoting token1 for each
	// distinct counter token, newest first.
	LatestPairsByQuote(ctx context.Context, token1 string) ([]*model.PairRecord, error)
}

// Store exposes one repository per entity kind.
type Store interface {
	Pools() Repository[model.Pool]
	Positions() Repository[model.Position]
	Tokens() Repository[model.Token]
	Wallets() Repository[model.Wallet]
	Managers() Repository[model.Manager]
	PoolManagers() Repository[model.PoolManager]
	Hooks() Repository[model.Hook]
	AMMConfigs() Repository[model.AMMConfig]
	PairRecords() PairRepository
	SwapRecords() Repository[model.SwapRecord]
	LiquidityRecords() Repository[model.LiquidityRecord]
	TokenHours() Repository[model.TokenBucket]
	TokenDays() Repository[model.TokenBucket]
	PoolHours() Repository[model.PoolBucket]
	PoolDays() Repository[model.PoolBucket]
}

// TxStore is a Store whose writes can be grouped into one transaction.
type TxStore interface {
	Store
	// WithTx runs fn against a Store bound to a transaction. The writes
	// commit when fn returns nil and roll back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Atomic runs fn in a transaction when s supports one, else directly.
func Atomic(ctx context.Context, s Store, fn func(Store) error) error {
	if tx, ok := s.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(s)
}

// LatestPerCounter keeps the first record per Token0 of pairs sorted
// newest first.
func LatestPerCounter(pairs []*model.PairRecord) []*model.PairRecord {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]*model.PairRecord, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p.Token0]; ok {
			continue
		}
		seen[p.Token0] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NewerPair reports whether a sorts before b in newest-first pair order.
func NewerPair(a, b *model.PairRecord) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	if a.BlockHeight != b.BlockHeight {
		return a.BlockHeight > b.BlockHeight
	}
	return a.Ordinal > b.Ordinal
}
