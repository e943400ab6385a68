package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

func TestLatestPairsByQuoteKeepsNewestPerCounter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.PairRecords().Upsert(ctx, []*model.PairRecord{
		{ID: "a-old", Token0: "A", Token1: "Q", Timestamp: 1},
		{ID: "a-new", Token0: "A", Token1: "Q", Timestamp: 9},
		{ID: "b", Token0: "B", Token1: "Q", Timestamp: 5},
		{ID: "b-same-block", Token0: "B", Token1: "Q", Timestamp: 5, Ordinal: 1},
		{ID: "other", Token0: "A", Token1: "Z", Timestamp: 20},
	}))

	pairs, err := s.PairRecords().LatestPairsByQuote(ctx, "Q")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a-new", pairs[0].ID)
	assert.Equal(t, "b-same-block", pairs[1].ID)
}

func TestWithTxRestoresTablesOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Pools().Upsert(ctx, []*model.Pool{{ID: "kept"}}))

	boom := errors.New("boom")
	err := storage.Atomic(ctx, s, func(tx storage.Store) error {
		if err := tx.Pools().Upsert(ctx, []*model.Pool{{ID: "dropped"}}); err != nil {
			return err
		}
		if err := tx.Wallets().Upsert(ctx, []*model.Wallet{{ID: "w"}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.PoolTable.Len())
	assert.Equal(t, 1, s.PoolTable.UpsertCalls())
	assert.Zero(t, s.WalletTable.Len())

	require.NoError(t, storage.Atomic(ctx, s, func(tx storage.Store) error {
		return tx.Wallets().Upsert(ctx, []*model.Wallet{{ID: "w"}})
	}))
	assert.Equal(t, 1, s.WalletTable.Len())
}

func TestFailNextUpsertFailsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.TokenTable.FailNextUpsert(errors.New("down"))

	require.Error(t, s.Tokens().Upsert(ctx, []*model.Token{{ID: "t"}}))
	assert.Zero(t, s.TokenTable.Len())
	require.NoError(t, s.Tokens().Upsert(ctx, []*model.Token{{ID: "t"}}))
	assert.Equal(t, 1, s.TokenTable.Len())
}
