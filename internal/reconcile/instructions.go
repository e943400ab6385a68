package reconcile

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// handleInstruction applies one instruction and reports whether it was
// dispatched to a handler. Foreign, uncommitted and failed instructions are
// ignored, as are swaps, which are applied from their events.
func (e *epoch) handleInstruction(ctx context.Context, ix model.Instruction) (bool, error) {
	if ix.ProgramID != e.r.programID || !ix.Committed || ix.Failed {
		return false, nil
	}
	decoded, ok, err := e.r.codec.DecodeInstruction(ix)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	e.r.metrics.InstructionsHandled.WithLabelValues(decoded.InstructionName()).Inc()

	switch v := decoded.(type) {
	case *dex.CreatePool:
		return true, e.createPool(ctx, v)
	case *dex.OpenPosition:
		return true, e.openPosition(ctx, ix.TxSignature, v)
	case *dex.IncreaseLiquidity:
		return true, e.increaseLiquidity(ctx, ix.TxSignature, v)
	case *dex.DecreaseLiquidity:
		return true, e.decreaseLiquidity(ctx, ix.TxSignature, v)
	case *dex.ClosePosition:
		return true, e.closePosition(ctx, v)
	}
	return false, nil
}

func (e *epoch) createPool(ctx context.Context, ix *dex.CreatePool) error {
	existing, err := e.pools.Get(ctx, ix.PoolState)
	if err != nil {
		return err
	}
	if existing != nil {
		e.skip(skipPoolExists, zap.String("pool", ix.PoolState))
		return nil
	}

	cfg, err := e.ammConfig(ctx, ix.AMMConfig)
	if err != nil {
		return err
	}
	token0, err := e.ensureToken(ctx, ix.TokenMint0)
	if err != nil {
		return err
	}
	token1, err := e.ensureToken(ctx, ix.TokenMint1)
	if err != nil {
		return err
	}

	pool := model.NewPool(ix.PoolState)
	pool.Token0ID = token0.ID
	pool.Token1ID = token1.ID
	pool.Token0Decimals = token0.Decimals
	pool.Token1Decimals = token1.Decimals
	pool.AMMConfigID = cfg.ID
	pool.CreatorID = ix.PoolCreator
	pool.HookID = model.PlaceholderHookID
	pool.FeeRate = cfg.TradeFeeRate
	pool.TickSpacing = cfg.TickSpacing
	if ix.SqrtPriceX64 != nil {
		pool.SqrtPriceX64 = new(big.Int).Set(ix.SqrtPriceX64)
	}
	pool.CreatedAtBlock = e.block.Height
	pool.CreatedAtTimestamp = e.block.Timestamp
	pool.BlockHeight = e.block.Height
	pool.Timestamp = e.block.Timestamp

	if err := e.recordPair(pool); err != nil {
		return err
	}
	if pool.Price0, err = e.priceOf(ctx, token0.ID); err != nil {
		return err
	}
	if pool.Price1, err = e.priceOf(ctx, token1.ID); err != nil {
		return err
	}
	e.pools.Save(pool)

	if err := e.ensureWallet(ctx, ix.PoolCreator); err != nil {
		return err
	}

	token0.PoolCount++
	token1.PoolCount++
	e.tokens.Save(token0, token1)

	pm, err := e.poolManager(ctx)
	if err != nil {
		return err
	}
	pm.PoolCount++
	e.poolManagers.Save(pm)
	return nil
}

func (e *epoch) openPosition(ctx context.Context, txSignature string, ix *dex.OpenPosition) error {
	existing, err := e.positions.Get(ctx, ix.PersonalPosition)
	if err != nil {
		return err
	}
	if existing != nil {
		e.skip(skipPositionExists, zap.String("position", ix.PersonalPosition))
		return nil
	}
	pool, err := e.pools.Get(ctx, ix.PoolState)
	if err != nil {
		return err
	}
	if pool == nil {
		e.skip(skipPoolMissing, zap.String("pool", ix.PoolState), zap.String("instruction", ix.Variant))
		return nil
	}

	liquidity := bigOrZero(ix.Liquidity)
	amount0, amount1 := new(big.Int), new(big.Int)
	if ev, ok := firstEvent[*dex.CreatePersonalPositionEvent](e.logs, txSignature); ok {
		liquidity = bigOrZero(ev.Liquidity)
		amount0.SetUint64(ev.DepositAmount0)
		amount1.SetUint64(ev.DepositAmount1)
	} else {
		e.skip(skipNoCorrelated, zap.String("position", ix.PersonalPosition), zap.String("instruction", ix.Variant))
	}

	position := model.NewPosition(ix.PersonalPosition)
	position.NFTMint = ix.PositionNFTMint
	position.OwnerID = ix.PositionNFTOwner
	position.PoolID = pool.ID
	position.ManagerID = e.r.programID
	position.Token0ID = pool.Token0ID
	position.Token1ID = pool.Token1ID
	position.LowerTick = ix.TickLowerIndex
	position.UpperTick = ix.TickUpperIndex

	if err := e.applyLiquidityDelta(ctx, pool, position, liquidity, amount0, amount1); err != nil {
		return err
	}

	if err := e.ensureWallet(ctx, ix.PositionNFTOwner); err != nil {
		return err
	}
	m, err := e.manager(ctx)
	if err != nil {
		return err
	}
	m.PositionCount++
	e.managers.Save(m)

	pm, err := e.poolManager(ctx)
	if err != nil {
		return err
	}
	pm.PositionCount++
	e.poolManagers.Save(pm)
	return nil
}

func (e *epoch) increaseLiquidity(ctx context.Context, txSignature string, ix *dex.IncreaseLiquidity) error {
	pool, position, err := e.poolAndPosition(ctx, ix.PoolState, ix.PersonalPosition, ix.Variant)
	if err != nil || pool == nil {
		return err
	}

	liquidity := bigOrZero(ix.Liquidity)
	amount0, amount1 := new(big.Int), new(big.Int)
	if ev, ok := firstEvent[*dex.IncreaseLiquidityEvent](e.logs, txSignature); ok {
		liquidity = bigOrZero(ev.Liquidity)
		amount0.SetUint64(ev.Amount0)
		amount1.SetUint64(ev.Amount1)
		if position.NFTMint == "" {
			position.NFTMint = ev.PositionNFTMint
		}
	} else {
		e.skip(skipNoCorrelated, zap.String("position", ix.PersonalPosition), zap.String("instruction", ix.Variant))
	}
	return e.applyLiquidityDelta(ctx, pool, position, liquidity, amount0, amount1)
}

func (e *epoch) decreaseLiquidity(ctx context.Context, txSignature string, ix *dex.DecreaseLiquidity) error {
	pool, position, err := e.poolAndPosition(ctx, ix.PoolState, ix.PersonalPosition, ix.Variant)
	if err != nil || pool == nil {
		return err
	}

	liquidity := bigOrZero(ix.Liquidity)
	amount0, amount1 := new(big.Int), new(big.Int)
	if ev, ok := firstEvent[*dex.DecreaseLiquidityEvent](e.logs, txSignature); ok {
		liquidity = bigOrZero(ev.Liquidity)
		amount0.SetUint64(ev.DecreaseAmount0)
		amount1.SetUint64(ev.DecreaseAmount1)
	} else {
		e.skip(skipNoCorrelated, zap.String("position", ix.PersonalPosition), zap.String("instruction", ix.Variant))
	}
	return e.applyLiquidityDelta(ctx, pool, position,
		new(big.Int).Neg(liquidity), new(big.Int).Neg(amount0), new(big.Int).Neg(amount1))
}

func (e *epoch) closePosition(ctx context.Context, ix *dex.ClosePosition) error {
	position, err := e.positions.Get(ctx, ix.PersonalPosition)
	if err != nil {
		return err
	}
	if position == nil {
		e.skip(skipPositionMissing, zap.String("position", ix.PersonalPosition))
		return nil
	}
	position.Closed = true
	position.BlockHeight = e.block.Height
	position.Timestamp = e.block.Timestamp
	e.positions.Save(position)
	return nil
}

func (e *epoch) poolAndPosition(ctx context.Context, poolID, positionID, variant string) (*model.Pool, *model.Position, error) {
	pool, err := e.pools.Get(ctx, poolID)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		e.skip(skipPoolMissing, zap.String("pool", poolID), zap.String("instruction", variant))
		return nil, nil, nil
	}
	position, err := e.positions.Get(ctx, positionID)
	if err != nil {
		return nil, nil, err
	}
	if position == nil {
		e.skip(skipPositionMissing, zap.String("position", positionID), zap.String("instruction", variant))
		return nil, nil, nil
	}
	return pool, position, nil
}

// applyLiquidityDelta adds signed liquidity and token deltas to a position
// and its pool, then revalues both.
func (e *epoch) applyLiquidityDelta(ctx context.Context, pool *model.Pool, position *model.Position, liquidity, amount0, amount1 *big.Int) error {
	position.Liquidity = new(big.Int).Add(position.Liquidity, liquidity)
	position.Amount0 = new(big.Int).Add(position.Amount0, amount0)
	position.Amount1 = new(big.Int).Add(position.Amount1, amount1)
	position.Amount0D = fixedpoint.FormatAmount(position.Amount0, pool.Token0Decimals)
	position.Amount1D = fixedpoint.FormatAmount(position.Amount1, pool.Token1Decimals)
	position.Ratio = fixedpoint.TokenRatio(position.Amount0, position.Amount1, pool.Token0Decimals, pool.Token1Decimals)
	position.BlockHeight = e.block.Height
	position.Timestamp = e.block.Timestamp

	pool.Liquidity = new(big.Int).Add(pool.Liquidity, liquidity)
	pool.Amount0 = new(big.Int).Add(pool.Amount0, amount0)
	pool.Amount1 = new(big.Int).Add(pool.Amount1, amount1)
	pool.Amount0D = fixedpoint.FormatAmount(pool.Amount0, pool.Token0Decimals)
	pool.Amount1D = fixedpoint.FormatAmount(pool.Amount1, pool.Token1Decimals)
	pool.BlockHeight = e.block.Height
	pool.Timestamp = e.block.Timestamp

	price0, err := e.priceOf(ctx, pool.Token0ID)
	if err != nil {
		return err
	}
	price1, err := e.priceOf(ctx, pool.Token1ID)
	if err != nil {
		return err
	}
	position.CoreTotalUSD = fixedpoint.AmountUSD(price0, position.Amount0, pool.Token0Decimals) +
		fixedpoint.AmountUSD(price1, position.Amount1, pool.Token1Decimals)
	pool.TVLUSD = fixedpoint.AmountUSD(price0, pool.Amount0, pool.Token0Decimals) +
		fixedpoint.AmountUSD(price1, pool.Amount1, pool.Token1Decimals)

	e.positions.Save(position)
	e.pools.Save(pool)
	return nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
