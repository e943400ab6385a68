package reconcile

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex/dextest"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

func newTestEpoch(t *testing.T, height uint64) (*epoch, *Reconciler) {
	t.Helper()
	r, _ := newTestReconciler(t)
	e := newEpoch(r)
	e.block = testBlock(height, testTimestamp)
	return e, r
}

func q64() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 64)
}

func TestRecordPairOrientation(t *testing.T) {
	e, _ := newTestEpoch(t, 200)
	sqrt := new(big.Int).Lsh(big.NewInt(3), 64)

	pool := model.NewPool(poolID)
	pool.Token0ID, pool.Token1ID = tokenX, usdc
	pool.Token0Decimals, pool.Token1Decimals = 9, 6
	pool.SqrtPriceX64 = sqrt
	require.NoError(t, e.recordPair(pool))

	records := e.pairs.Records()
	require.Len(t, records, 1)
	record := records[0]
	inverted, err := fixedpoint.InvertSqrtPriceX64(sqrt)
	require.NoError(t, err)
	assert.Equal(t, usdc, record.Token0)
	assert.Equal(t, tokenX, record.Token1)
	assert.Equal(t, uint8(6), record.Token0Decimals)
	assert.Equal(t, uint8(9), record.Token1Decimals)
	assert.True(t, record.BaseStable)
	assert.Zero(t, record.SqrtPriceX64.Cmp(inverted))
	assert.Equal(t, poolID+"-200-0", record.ID)

	pool.Token0ID, pool.Token1ID = tokenX, tokenY
	require.NoError(t, e.recordPair(pool))
	record = e.pairs.Records()[1]
	assert.Equal(t, tokenX, record.Token0)
	assert.False(t, record.BaseStable)
	assert.Zero(t, record.SqrtPriceX64.Cmp(sqrt))
	assert.Equal(t, poolID+"-200-1", record.ID)

	pool.SqrtPriceX64 = new(big.Int)
	require.NoError(t, e.recordPair(pool))
	assert.Len(t, e.pairs.Records(), 2)
}

func TestPriceOf(t *testing.T) {
	ctx := context.Background()

	t.Run("stable", func(t *testing.T) {
		e, _ := newTestEpoch(t, 1)
		price, err := e.priceOf(ctx, usdc)
		require.NoError(t, err)
		assert.Equal(t, 1.0, price)
	})

	t.Run("direct from unflushed pair", func(t *testing.T) {
		e, _ := newTestEpoch(t, 1)
		e.pairs.Append(&model.PairRecord{
			ID: "p-1-0", Token0: usdc, Token1: tokenX, Token0Decimals: 6, Token1Decimals: 9,
			BaseStable: true, SqrtPriceX64: priceTwoSqrt(), BlockHeight: 1,
		})
		_, err := e.ensureToken(ctx, tokenX)
		require.NoError(t, err)

		price, err := e.priceOf(ctx, tokenX)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, price, 1e-9)

		token, err := e.tokens.Get(ctx, tokenX)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, token.Price, 1e-9)
	})

	t.Run("newest stored pair wins", func(t *testing.T) {
		e, r := newTestEpoch(t, 10)
		require.NoError(t, r.store.PairRecords().Upsert(ctx, []*model.PairRecord{
			{ID: "old", Token0: usdc, Token1: tokenX, Token0Decimals: 6, Token1Decimals: 9, BaseStable: true, SqrtPriceX64: sqrtPriceX64(1000), Timestamp: 1, BlockHeight: 1},
			{ID: "new", Token0: usdc, Token1: tokenX, Token0Decimals: 6, Token1Decimals: 9, BaseStable: true, SqrtPriceX64: priceTwoSqrt(), Timestamp: 2, BlockHeight: 2},
		}))
		price, err := e.priceOf(ctx, tokenX)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, price, 1e-9)
	})

	t.Run("two hop", func(t *testing.T) {
		e, r := newTestEpoch(t, 10)
		require.NoError(t, r.store.PairRecords().Upsert(ctx, []*model.PairRecord{
			{ID: "xy", Token0: tokenX, Token1: tokenY, Token0Decimals: 9, Token1Decimals: 9, SqrtPriceX64: new(big.Int).Lsh(big.NewInt(2), 64), Timestamp: 5, BlockHeight: 5},
		}))
		e.pairs.Append(&model.PairRecord{
			ID: "ux", Token0: usdc, Token1: tokenX, Token0Decimals: 6, Token1Decimals: 9,
			BaseStable: true, SqrtPriceX64: priceTwoSqrt(), Timestamp: 6, BlockHeight: 6,
		})

		price, err := e.priceOf(ctx, tokenY)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, price, 1e-9)
	})

	t.Run("two hop behind many unpriced counters", func(t *testing.T) {
		e, r := newTestEpoch(t, 100)
		busy := dextest.Key(0x13).String()
		var stored []*model.PairRecord
		for i := 0; i < 30; i++ {
			stored = append(stored, &model.PairRecord{
				ID: fmt.Sprintf("busy-%d", i), Token0: busy, Token1: tokenY, Token0Decimals: 9, Token1Decimals: 9,
				SqrtPriceX64: q64(), Timestamp: int64(100 + i), BlockHeight: uint64(100 + i),
			})
		}
		stored = append(stored,
			&model.PairRecord{ID: "xy", Token0: tokenX, Token1: tokenY, Token0Decimals: 9, Token1Decimals: 9, SqrtPriceX64: new(big.Int).Lsh(big.NewInt(2), 64), Timestamp: 5, BlockHeight: 5},
			&model.PairRecord{ID: "ux", Token0: usdc, Token1: tokenX, Token0Decimals: 6, Token1Decimals: 9, BaseStable: true, SqrtPriceX64: priceTwoSqrt(), Timestamp: 4, BlockHeight: 4},
		)
		require.NoError(t, r.store.PairRecords().Upsert(ctx, stored))

		price, err := e.priceOf(ctx, tokenY)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, price, 1e-9)
	})

	t.Run("cycle without stable leg", func(t *testing.T) {
		e, _ := newTestEpoch(t, 10)
		e.pairs.Append(&model.PairRecord{ID: "xy", Token0: tokenX, Token1: tokenY, SqrtPriceX64: q64(), BlockHeight: 1})
		e.pairs.Append(&model.PairRecord{ID: "yx", Token0: tokenY, Token1: tokenX, SqrtPriceX64: q64(), BlockHeight: 1, Ordinal: 1})

		price, err := e.priceOf(ctx, tokenY)
		require.NoError(t, err)
		assert.Zero(t, price)
	})
}

func TestApplySwapAmounts(t *testing.T) {
	tests := []struct {
		name       string
		zeroForOne bool
		want0      string
		want1      string
	}{
		{name: "zero for one", zeroForOne: true, want0: "1100", want1: "905"},
		{name: "one for zero", zeroForOne: false, want0: "900", want1: "1095"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := model.NewPool(poolID)
			pool.Amount0 = big.NewInt(1000)
			pool.Amount1 = big.NewInt(1000)
			before := pool.Amount0

			applySwapAmounts(pool, big.NewInt(100), big.NewInt(95), tt.zeroForOne)
			assert.Equal(t, tt.want0, pool.Amount0.String())
			assert.Equal(t, tt.want1, pool.Amount1.String())
			assert.Equal(t, "1000", before.String())
		})
	}
}

func TestSwapVolumeUSDFallsBackToOutputSide(t *testing.T) {
	assert.InDelta(t, 2.0, swapVolumeUSD(2, big.NewInt(1_000_000_000), 9, 1, big.NewInt(5), 6), 1e-12)
	assert.InDelta(t, 3.0, swapVolumeUSD(0, big.NewInt(1_000_000_000), 9, 1, big.NewInt(3_000_000), 6), 1e-12)
}

func TestEntityCache(t *testing.T) {
	ctx := context.Background()
	_, store := newTestReconciler(t)
	require.NoError(t, store.Tokens().Upsert(ctx, []*model.Token{{ID: tokenX, Decimals: 9}}))
	cache := newEntityCache("token", store.Tokens(), func(tok *model.Token) string { return tok.ID })

	first, err := cache.Get(ctx, tokenX)
	require.NoError(t, err)
	second, err := cache.Get(ctx, tokenX)
	require.NoError(t, err)
	assert.Same(t, first, second)

	missing, err := cache.Get(ctx, tokenY)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, ok, err := cache.Ensure(ctx, tokenY, func() (*model.Token, error) {
		return &model.Token{ID: tokenY}, nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	again, ok, err := cache.Ensure(ctx, tokenY, func() (*model.Token, error) {
		t.Fatal("create called twice")
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Same(t, created, again)

	first.SwapCount = 3
	cache.Save(first)
	cache.Save(first)
	assert.Equal(t, 2, cache.Dirty())

	n, err := cache.Flush(ctx, store.Tokens())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.TokenTable.UpsertCalls())
	assert.Zero(t, cache.Dirty())

	stored := findOne(t, store.TokenTable, tokenX)
	assert.Equal(t, uint64(3), stored.SwapCount)
}

func TestTickTrackerSpansEpoch(t *testing.T) {
	tracker := newTickTracker()

	lo, hi := tracker.observe(poolID, 10)
	assert.Equal(t, [2]int32{10, 10}, [2]int32{lo, hi})
	lo, hi = tracker.observe(poolID, -5)
	assert.Equal(t, [2]int32{-5, 10}, [2]int32{lo, hi})
	lo, hi = tracker.observe("other", 3)
	assert.Equal(t, [2]int32{3, 3}, [2]int32{lo, hi})
	lo, hi = tracker.observe(poolID, 7)
	assert.Equal(t, [2]int32{-5, 10}, [2]int32{lo, hi})
}

func TestPoolBucketVolumeChange(t *testing.T) {
	ctx := context.Background()
	e, r := newTestEpoch(t, 1)
	hour := e.periods()[0]
	start := model.BucketStart(testTimestamp, model.HourSeconds)

	require.NoError(t, r.store.PoolHours().Upsert(ctx, []*model.PoolBucket{{
		ID:           model.BucketID(poolID, start-model.HourSeconds),
		PoolID:       poolID,
		PeriodStart:  start - model.HourSeconds,
		VolumeToken0: big.NewInt(100),
		VolumeToken1: big.NewInt(100),
	}}))

	pool := model.NewPool(poolID)
	pool.Price1 = 3
	flow := swapFlow{amount0: big.NewInt(100), amount1: big.NewInt(300), fee0: new(big.Int), fee1: new(big.Int)}
	require.NoError(t, e.updatePoolBucket(ctx, hour, start, pool, flow))

	pool.Price1 = 5
	require.NoError(t, e.updatePoolBucket(ctx, hour, start, pool, flow))
	pool.Price1 = 1
	require.NoError(t, e.updatePoolBucket(ctx, hour, start, pool, flow))

	bucket, err := e.poolHours.Get(ctx, model.BucketID(poolID, start))
	require.NoError(t, err)
	require.NotNil(t, bucket)
	assert.Equal(t, 3.0, bucket.Open)
	assert.Equal(t, 5.0, bucket.High)
	assert.Equal(t, 1.0, bucket.Low)
	assert.Equal(t, 1.0, bucket.Close)
	assert.Equal(t, uint64(3), bucket.SwapCount)
	assert.Equal(t, 6.0, bucket.VolumeChange)
}

func TestFirstEventJoinsByTransaction(t *testing.T) {
	inc := func(amount uint64) *dex.IncreaseLiquidityEvent {
		return &dex.IncreaseLiquidityEvent{Amount0: amount}
	}
	logs := []decodedLog{
		{log: model.LogMessage{TxSignature: "a"}, event: &dex.SwapEvent{}},
		{log: model.LogMessage{TxSignature: "a"}, event: inc(1)},
		{log: model.LogMessage{TxSignature: "b"}, event: inc(2)},
	}

	ev, ok := firstEvent[*dex.IncreaseLiquidityEvent](logs, "b")
	require.True(t, ok)
	assert.Equal(t, uint64(2), ev.Amount0)

	ev, ok = firstEvent[*dex.IncreaseLiquidityEvent](logs, "")
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.Amount0)

	_, ok = firstEvent[*dex.DecreaseLiquidityEvent](logs, "a")
	assert.False(t, ok)
}
