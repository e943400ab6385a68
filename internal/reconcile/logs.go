package reconcile

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// decodedLog is a program data log of the current block with its event.
type decodedLog struct {
	log   model.LogMessage
	event dex.Event
}

// decodeLogs decodes the block's program data logs once, dropping lines of
// failed transactions and payloads that match no known event.
func (e *epoch) decodeLogs(block model.Block) []decodedLog {
	out := make([]decodedLog, 0, len(block.Logs))
	for _, l := range block.Logs {
		if l.TxFailed {
			e.skip(skipFailedTx, zap.String("log", l.RecordID()))
			continue
		}
		event, ok := e.r.codec.TryDecodeLog(l)
		if !ok {
			continue
		}
		out = append(out, decodedLog{log: l, event: event})
	}
	return out
}

// firstEvent returns the first event of type E emitted by the transaction.
// An empty signature matches any transaction of the block.
func firstEvent[E dex.Event](logs []decodedLog, txSignature string) (E, bool) {
	var zero E
	for _, l := range logs {
		if txSignature != "" && l.log.TxSignature != txSignature {
			continue
		}
		if ev, ok := l.event.(E); ok {
			return ev, true
		}
	}
	return zero, false
}

func (e *epoch) handleLog(ctx context.Context, l decodedLog) error {
	e.r.metrics.EventsHandled.WithLabelValues(l.event.EventName()).Inc()

	switch ev := l.event.(type) {
	case *dex.PoolCreatedEvent:
		return e.poolCreated(ctx, ev)
	case *dex.LiquidityChangeEvent:
		return e.liquidityChanged(ctx, l.log, ev)
	case *dex.SwapEvent:
		return e.swapped(ctx, l.log, ev)
	case *dex.CollectPersonalFeeEvent:
		e.r.logger.Debug("personal fee collected",
			zap.String("position_nft_mint", ev.PositionNFTMint),
			zap.Uint64("amount0", ev.Amount0),
			zap.Uint64("amount1", ev.Amount1))
	}
	return nil
}

func (e *epoch) poolCreated(ctx context.Context, ev *dex.PoolCreatedEvent) error {
	pool, err := e.pools.Get(ctx, ev.PoolState)
	if err != nil {
		return err
	}
	if pool == nil {
		e.skip(skipPoolMissing, zap.String("pool", ev.PoolState), zap.String("event", ev.EventName()))
		return nil
	}
	pool.CurrentTick = ev.Tick
	pool.TickSpacing = ev.TickSpacing
	e.pools.Save(pool)
	return nil
}

func (e *epoch) liquidityChanged(ctx context.Context, l model.LogMessage, ev *dex.LiquidityChangeEvent) error {
	pool, err := e.pools.Get(ctx, ev.PoolState)
	if err != nil {
		return err
	}
	if pool == nil {
		e.skip(skipPoolMissing, zap.String("pool", ev.PoolState), zap.String("event", ev.EventName()))
		return nil
	}

	after := bigOrZero(ev.LiquidityAfter)
	pool.CurrentTick = ev.Tick
	pool.Liquidity = new(big.Int).Set(after)
	pool.BlockHeight = e.block.Height
	pool.Timestamp = e.block.Timestamp
	e.pools.Save(pool)

	var sender string
	if len(l.InstructionAccounts) > 0 {
		sender = l.InstructionAccounts[0]
	}
	if err := e.ensureWallet(ctx, sender); err != nil {
		return err
	}
	e.liquidity.Append(&model.LiquidityRecord{
		ID:             l.RecordID(),
		PoolID:         pool.ID,
		SenderID:       sender,
		LiquidityDelta: new(big.Int).Sub(after, bigOrZero(ev.LiquidityBefore)),
		TickLower:      ev.TickLower,
		TickUpper:      ev.TickUpper,
		Tick:           ev.Tick,
		TxSignature:    l.TxSignature,
		BlockHeight:    e.block.Height,
		Timestamp:      e.block.Timestamp,
	})
	return nil
}

// swapped applies one swap to its pool: reserves, price, volume, fees,
// counters, the audit record and the aggregation buckets.
func (e *epoch) swapped(ctx context.Context, l model.LogMessage, ev *dex.SwapEvent) error {
	pool, err := e.pools.Get(ctx, ev.PoolState)
	if err != nil {
		return err
	}
	if pool == nil {
		e.skip(skipPoolMissing, zap.String("pool", ev.PoolState), zap.String("event", ev.EventName()))
		return nil
	}

	amount0 := new(big.Int).SetUint64(ev.Amount0)
	amount1 := new(big.Int).SetUint64(ev.Amount1)
	applySwapAmounts(pool, amount0, amount1, ev.ZeroForOne)

	pool.SqrtPriceX64 = new(big.Int).Set(bigOrZero(ev.SqrtPriceX64))
	pool.Liquidity = new(big.Int).Set(bigOrZero(ev.Liquidity))
	pool.CurrentTick = ev.Tick
	pool.BatchMinTick, pool.BatchMaxTick = e.ticks.observe(pool.ID, ev.Tick)
	pool.BlockHeight = e.block.Height
	pool.Timestamp = e.block.Timestamp

	if err := e.recordPair(pool); err != nil {
		return err
	}
	if pool.Price0, err = e.priceOf(ctx, pool.Token0ID); err != nil {
		return err
	}
	if pool.Price1, err = e.priceOf(ctx, pool.Token1ID); err != nil {
		return err
	}

	flow := swapFlow{
		amount0: amount0,
		amount1: amount1,
		fee0:    new(big.Int),
		fee1:    new(big.Int),
		price0:  pool.Price0,
		price1:  pool.Price1,
	}
	inputToken := pool.Token0ID
	fee := flow.fee0
	if ev.ZeroForOne {
		if fee, err = fixedpoint.FeeFromAmount(amount0, pool.FeeRate); err != nil {
			return err
		}
		flow.fee0 = fee
		flow.feeUSD0 = fixedpoint.AmountUSD(pool.Price0, fee, pool.Token0Decimals)
		flow.volumeUSD = swapVolumeUSD(pool.Price0, amount0, pool.Token0Decimals, pool.Price1, amount1, pool.Token1Decimals)
	} else {
		inputToken = pool.Token1ID
		if fee, err = fixedpoint.FeeFromAmount(amount1, pool.FeeRate); err != nil {
			return err
		}
		flow.fee1 = fee
		flow.feeUSD1 = fixedpoint.AmountUSD(pool.Price1, fee, pool.Token1Decimals)
		flow.volumeUSD = swapVolumeUSD(pool.Price1, amount1, pool.Token1Decimals, pool.Price0, amount0, pool.Token0Decimals)
	}
	feeUSD := flow.feeUSD0 + flow.feeUSD1

	pool.VolumeToken0 = new(big.Int).Add(pool.VolumeToken0, amount0)
	pool.VolumeToken1 = new(big.Int).Add(pool.VolumeToken1, amount1)
	pool.VolumeToken0D = fixedpoint.FormatAmount(pool.VolumeToken0, pool.Token0Decimals)
	pool.VolumeToken1D = fixedpoint.FormatAmount(pool.VolumeToken1, pool.Token1Decimals)
	pool.VolumeUSD += flow.volumeUSD
	pool.CollectedFeesToken0 = new(big.Int).Add(pool.CollectedFeesToken0, flow.fee0)
	pool.CollectedFeesToken1 = new(big.Int).Add(pool.CollectedFeesToken1, flow.fee1)
	pool.CollectedFeesUSD += feeUSD
	pool.TVLUSD = fixedpoint.AmountUSD(pool.Price0, pool.Amount0, pool.Token0Decimals) +
		fixedpoint.AmountUSD(pool.Price1, pool.Amount1, pool.Token1Decimals)
	pool.SwapCount++
	e.pools.Save(pool)

	token, err := e.tokens.Get(ctx, inputToken)
	if err != nil {
		return err
	}
	if token != nil {
		token.SwapCount++
		e.tokens.Save(token)
	}

	pm, err := e.poolManager(ctx)
	if err != nil {
		return err
	}
	pm.SwapCount++
	pm.TotalVolumeUSD += flow.volumeUSD
	pm.TotalFeesUSD += feeUSD
	e.poolManagers.Save(pm)

	if err := e.ensureWallet(ctx, ev.Sender); err != nil {
		return err
	}
	e.swaps.Append(&model.SwapRecord{
		ID:           l.RecordID(),
		PoolID:       pool.ID,
		SenderID:     ev.Sender,
		Amount0:      amount0,
		Amount1:      amount1,
		ZeroForOne:   ev.ZeroForOne,
		FeeRate:      pool.FeeRate,
		FeeAmount:    fee,
		Liquidity:    new(big.Int).Set(pool.Liquidity),
		SqrtPriceX64: new(big.Int).Set(pool.SqrtPriceX64),
		Tick:         ev.Tick,
		TxSignature:  l.TxSignature,
		BlockHeight:  e.block.Height,
		Timestamp:    e.block.Timestamp,
	})

	return e.recordSwapBuckets(ctx, pool, flow)
}

// applySwapAmounts moves the swapped amounts through the pool reserves. The
// input side grows and the output side shrinks.
func applySwapAmounts(pool *model.Pool, amount0, amount1 *big.Int, zeroForOne bool) {
	if zeroForOne {
		pool.Amount0 = new(big.Int).Add(pool.Amount0, amount0)
		pool.Amount1 = new(big.Int).Sub(pool.Amount1, amount1)
	} else {
		pool.Amount0 = new(big.Int).Sub(pool.Amount0, amount0)
		pool.Amount1 = new(big.Int).Add(pool.Amount1, amount1)
	}
	pool.Amount0D = fixedpoint.FormatAmount(pool.Amount0, pool.Token0Decimals)
	pool.Amount1D = fixedpoint.FormatAmount(pool.Amount1, pool.Token1Decimals)
}

// swapVolumeUSD values the input side, falling back to the output side when
// the input token has no price yet.
func swapVolumeUSD(inPrice float64, in *big.Int, inDecimals uint8, outPrice float64, out *big.Int, outDecimals uint8) float64 {
	if v := fixedpoint.AmountUSD(inPrice, in, inDecimals); v != 0 {
		return v
	}
	return fixedpoint.AmountUSD(outPrice, out, outDecimals)
}
