package reconcile

import (
	"fmt"
	"math/big"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// recordPair appends a price observation for the pool's current sqrt price.
// A pair quoted in a stablecoin is flipped so the stable leg is token0.
func (e *epoch) recordPair(pool *model.Pool) error {
	if pool.SqrtPriceX64 == nil || pool.SqrtPriceX64.Sign() <= 0 {
		return nil
	}
	record := &model.PairRecord{
		PoolID:         pool.ID,
		Token0:         pool.Token0ID,
		Token1:         pool.Token1ID,
		Token0Decimals: pool.Token0Decimals,
		Token1Decimals: pool.Token1Decimals,
		SqrtPriceX64:   new(big.Int).Set(pool.SqrtPriceX64),
		Timestamp:      e.block.Timestamp,
		BlockHeight:    e.block.Height,
		Ordinal:        e.pairOrdinal,
	}
	if e.isStable(record.Token1) && !e.isStable(record.Token0) {
		inverted, err := fixedpoint.InvertSqrtPriceX64(record.SqrtPriceX64)
		if err != nil {
			return fmt.Errorf("invert price of pool %s: %w", pool.ID, err)
		}
		record.Token0, record.Token1 = record.Token1, record.Token0
		record.Token0Decimals, record.Token1Decimals = record.Token1Decimals, record.Token0Decimals
		record.SqrtPriceX64 = inverted
	}
	record.BaseStable = e.isStable(record.Token0)
	record.ID = fmt.Sprintf("%s-%d-%d", pool.ID, e.block.Height, e.pairOrdinal)

	e.pairOrdinal++
	e.pairs.Append(record)
	return nil
}
