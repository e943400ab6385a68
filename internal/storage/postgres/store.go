package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for reconciled entities.
type Store struct {
	pool *pgxpool.Pool

	pools            *table[model.Pool]
	positions        *table[model.Position]
	tokens           *table[model.Token]
	wallets          *table[model.Wallet]
	managers         *table[model.Manager]
	poolManagers     *table[model.PoolManager]
	hooks            *table[model.Hook]
	ammConfigs       *table[model.AMMConfig]
	pairRecords      *pairTable
	swapRecords      *table[model.SwapRecord]
	liquidityRecords *table[model.LiquidityRecord]
	tokenHours       *table[model.TokenBucket]
	tokenDays        *table[model.TokenBucket]
	poolHours        *table[model.PoolBucket]
	poolDays         *table[model.PoolBucket]
}

var _ storage.TxStore = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return newStore(pool), nil
}

func newStore(pool *pgxpool.Pool) *Store {
	s := bindTables(pool)
	s.pool = pool
	return s
}

// bindTables maps every table onto db, a pool or an open transaction.
func bindTables(db querier) *Store {
	return &Store{
		pools:            newTable(db, "pools", poolColumns, poolFields),
		positions:        newTable(db, "positions", positionColumns, positionFields),
		tokens:           newTable(db, "tokens", tokenColumns, tokenFields),
		wallets:          newTable(db, "wallets", walletColumns, walletFields),
		managers:         newTable(db, "managers", managerColumns, managerFields),
		poolManagers:     newTable(db, "pool_managers", poolManagerColumns, poolManagerFields),
		hooks:            newTable(db, "hooks", hookColumns, hookFields),
		ammConfigs:       newTable(db, "amm_configs", ammConfigColumns, ammConfigFields),
		pairRecords:      &pairTable{newTable(db, "pair_records", pairColumns, pairFields)},
		swapRecords:      newTable(db, "swap_records", swapColumns, swapFields),
		liquidityRecords: newTable(db, "liquidity_records", liquidityColumns, liquidityFields),
		tokenHours:       newTable(db, "token_hour_data", tokenBucketColumns, tokenBucketFields),
		tokenDays:        newTable(db, "token_day_data", tokenBucketColumns, tokenBucketFields),
		poolHours:        newTable(db, "pool_hour_data", poolBucketColumns, poolBucketFields),
		poolDays:         newTable(db, "pool_day_data", poolBucketColumns, poolBucketFields),
	}
}

// WithTx runs fn against a Store whose tables share one transaction.
func (s *Store) WithTx(ctx context.Context, fn func(storage.Store) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(bindTables(tx))
	})
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Pools() storage.Repository[model.Pool]               { return s.pools }
func (s *Store) Positions() storage.Repository[model.Position]       { return s.positions }
func (s *Store) Tokens() storage.Repository[model.Token]             { return s.tokens }
func (s *Store) Wallets() storage.Repository[model.Wallet]           { return s.wallets }
func (s *Store) Managers() storage.Repository[model.Manager]         { return s.managers }
func (s *Store) PoolManagers() storage.Repository[model.PoolManager] { return s.poolManagers }
func (s *Store) Hooks() storage.Repository[model.Hook]               { return s.hooks }
func (s *Store) AMMConfigs() storage.Repository[model.AMMConfig]     { return s.ammConfigs }
func (s *Store) PairRecords() storage.PairRepository                 { return s.pairRecords }
func (s *Store) SwapRecords() storage.Repository[model.SwapRecord]   { return s.swapRecords }
func (s *Store) LiquidityRecords() storage.Repository[model.LiquidityRecord] {
	return s.liquidityRecords
}
func (s *Store) TokenHours() storage.Repository[model.TokenBucket] { return s.tokenHours }
func (s *Store) TokenDays() storage.Repository[model.TokenBucket]  { return s.tokenDays }
func (s *Store) PoolHours() storage.Repository[model.PoolBucket]   { return s.poolHours }
func (s *Store) PoolDays() storage.Repository[model.PoolBucket]    { return s.poolDays }

type pairTable struct {
	*table[model.PairRecord]
}

const pairOrder = "ORDER BY block_time DESC, block_height DESC, ordinal DESC"

func (t *pairTable) LatestStablePair(ctx context.Context, token1 string) (*model.PairRecord, error) {
	rows, err := t.query(ctx, "token1 = $1 AND base_stable", pairOrder+" LIMIT 1", token1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// latestByQuoteSQL keeps the newest row per counter token. DISTINCT ON
// needs its column first in ORDER BY, so the result is re-sorted after.
func (t *pairTable) latestByQuoteSQL() string {
	return t.selectSQL("token0", "token1 = $1", "ORDER BY token0, block_time DESC, block_height DESC, ordinal DESC")
}

func (t *pairTable) LatestPairsByQuote(ctx context.Context, token1 string) ([]*model.PairRecord, error) {
	pairs, err := t.queryRows(ctx, t.latestByQuoteSQL(), token1)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pairs, func(i, j int) bool { return storage.NewerPair(pairs[i], pairs[j]) })
	return pairs, nil
}

// LoadState returns the last committed block height for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var height int64
	row := s.pool.QueryRow(ctx, `SELECT last_committed_height FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&height); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(height), true, nil
}

// SaveState upserts the last committed block height for a name.
func (s *Store) SaveState(ctx context.Context, name string, height uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_committed_height, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_committed_height = EXCLUDED.last_committed_height, updated_at = now()
	`, name, int64(height))
	return err
}
