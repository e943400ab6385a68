package reconcile

import (
	"context"
	"math/big"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// swapFlow is what one swap contributes to the aggregation buckets.
type swapFlow struct {
	amount0, amount1 *big.Int
	fee0, fee1       *big.Int
	price0, price1   float64
	feeUSD0, feeUSD1 float64
	volumeUSD        float64
}

type bucketPeriod struct {
	width  int64
	tokens *entityCache[model.TokenBucket]
	pools  *entityCache[model.PoolBucket]
}

func (e *epoch) periods() []bucketPeriod {
	return []bucketPeriod{
		{width: model.HourSeconds, tokens: e.tokenHours, pools: e.poolHours},
		{width: model.DaySeconds, tokens: e.tokenDays, pools: e.poolDays},
	}
}

// recordSwapBuckets updates the hour and day buckets of the pool and both tokens.
func (e *epoch) recordSwapBuckets(ctx context.Context, pool *model.Pool, flow swapFlow) error {
	ts := e.block.Timestamp
	for _, period := range e.periods() {
		start := model.BucketStart(ts, period.width)
		if err := e.updateTokenBucket(ctx, period, start, pool.Token0ID, flow.price0, flow.amount0, flow.fee0, fixedpoint.AmountUSD(flow.price0, flow.amount0, pool.Token0Decimals), flow.feeUSD0); err != nil {
			return err
		}
		if err := e.updateTokenBucket(ctx, period, start, pool.Token1ID, flow.price1, flow.amount1, flow.fee1, fixedpoint.AmountUSD(flow.price1, flow.amount1, pool.Token1Decimals), flow.feeUSD1); err != nil {
			return err
		}
		if err := e.updatePoolBucket(ctx, period, start, pool, flow); err != nil {
			return err
		}
	}
	return nil
}

func (e *epoch) updateTokenBucket(ctx context.Context, period bucketPeriod, start int64, tokenID string, price float64, volume, fee *big.Int, volumeUSD, feeUSD float64) error {
	id := model.BucketID(tokenID, start)
	bucket, _, err := period.tokens.Ensure(ctx, id, func() (*model.TokenBucket, error) {
		return &model.TokenBucket{
			ID:            id,
			TokenID:       tokenID,
			PeriodStart:   start,
			Open:          price,
			High:          price,
			Low:           price,
			Close:         price,
			Volume:        new(big.Int),
			CollectedFees: new(big.Int),
		}, nil
	})
	if err != nil {
		return err
	}

	bucket.SwapCount++
	bucket.Volume = new(big.Int).Add(bucket.Volume, volume)
	bucket.VolumeUSD += volumeUSD
	bucket.CollectedFees = new(big.Int).Add(bucket.CollectedFees, fee)
	bucket.CollectedFeesUSD += feeUSD
	applyOHLC(&bucket.High, &bucket.Low, &bucket.Close, price)
	period.tokens.Save(bucket)
	return nil
}

func (e *epoch) updatePoolBucket(ctx context.Context, period bucketPeriod, start int64, pool *model.Pool, flow swapFlow) error {
	id := model.BucketID(pool.ID, start)
	price := pool.Price1
	bucket, _, err := period.pools.Ensure(ctx, id, func() (*model.PoolBucket, error) {
		return &model.PoolBucket{
			ID:                  id,
			PoolID:              pool.ID,
			PeriodStart:         start,
			Open:                price,
			High:                price,
			Low:                 price,
			Close:               price,
			VolumeToken0:        new(big.Int),
			VolumeToken1:        new(big.Int),
			CollectedFeesToken0: new(big.Int),
			CollectedFeesToken1: new(big.Int),
		}, nil
	})
	if err != nil {
		return err
	}

	bucket.SwapCount++
	bucket.VolumeToken0 = new(big.Int).Add(bucket.VolumeToken0, flow.amount0)
	bucket.VolumeToken1 = new(big.Int).Add(bucket.VolumeToken1, flow.amount1)
	bucket.VolumeToken0D = fixedpoint.FormatAmount(bucket.VolumeToken0, pool.Token0Decimals)
	bucket.VolumeToken1D = fixedpoint.FormatAmount(bucket.VolumeToken1, pool.Token1Decimals)
	bucket.VolumeUSD += flow.volumeUSD
	bucket.CollectedFeesToken0 = new(big.Int).Add(bucket.CollectedFeesToken0, flow.fee0)
	bucket.CollectedFeesToken1 = new(big.Int).Add(bucket.CollectedFeesToken1, flow.fee1)
	bucket.CollectedFeesUSD += flow.feeUSD0 + flow.feeUSD1
	bucket.Liquidity = new(big.Int).Set(pool.Liquidity)
	bucket.SqrtPriceX64 = new(big.Int).Set(pool.SqrtPriceX64)
	bucket.Tick = pool.CurrentTick
	applyOHLC(&bucket.High, &bucket.Low, &bucket.Close, price)

	change, err := e.volumeChange(ctx, period, pool.ID, start, bucket)
	if err != nil {
		return err
	}
	bucket.VolumeChange = change
	period.pools.Save(bucket)
	return nil
}

// volumeChange compares the bucket's raw volume with the previous bucket of
// the same period; 0 when there is none.
func (e *epoch) volumeChange(ctx context.Context, period bucketPeriod, poolID string, start int64, bucket *model.PoolBucket) (float64, error) {
	prev, err := period.pools.Get(ctx, model.BucketID(poolID, start-period.width))
	if err != nil || prev == nil {
		return 0, err
	}
	return fixedpoint.DivideToBoundedFloat(totalVolume(bucket), totalVolume(prev), fixedpoint.DefaultMaxDecimals), nil
}

func totalVolume(b *model.PoolBucket) *big.Int {
	total := new(big.Int)
	if b.VolumeToken0 != nil {
		total.Add(total, b.VolumeToken0)
	}
	if b.VolumeToken1 != nil {
		total.Add(total, b.VolumeToken1)
	}
	return total
}

// applyOHLC folds price into the running extrema; open is fixed at creation.
func applyOHLC(high, low, closePrice *float64, price float64) {
	if price > *high {
		*high = price
	}
	if price < *low {
		*low = price
	}
	*closePrice = price
}
