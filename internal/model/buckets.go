package model

import (
	"fmt"
	"math/big"
)

// Bucket widths in seconds.
const (
	HourSeconds int64 = 3600
	DaySeconds  int64 = 86400
)

// BucketStart truncates a unix timestamp to the start of its bucket.
func BucketStart(ts, width int64) int64 {
	return ts - ts%width
}

// BucketID builds the deterministic id of an aggregation row.
func BucketID(entityID string, start int64) string {
	return fmt.Sprintf("%s-%d", entityID, start)
}

// TokenBucket aggregates swaps touching one token over an hour or a day.
type TokenBucket struct {
	ID               string
	TokenID          string
	PeriodStart      int64
	Open             float64
	High             float64
	Low              float64
	Close            float64
	SwapCount        uint64
	Volume           *big.Int
	VolumeUSD        float64
	CollectedFees    *big.Int
	CollectedFeesUSD float64
}

func (b *TokenBucket) EntityID() string { return b.ID }

// PoolBucket aggregates swaps of one pool over an hour or a day.
type PoolBucket struct {
	ID                  string
	PoolID              string
	PeriodStart         int64
	Open                float64
	High                float64
	Low                 float64
	Close               float64
	SwapCount           uint64
	VolumeToken0        *big.Int
	VolumeToken1        *big.Int
	VolumeToken0D       string
	VolumeToken1D       string
	VolumeUSD           float64
	VolumeChange        float64
	CollectedFeesToken0 *big.Int
	CollectedFeesToken1 *big.Int
	CollectedFeesUSD    float64
	Liquidity           *big.Int
	SqrtPriceX64        *big.Int
	Tick                int32
}

func (b *PoolBucket) EntityID() string { return b.ID }
