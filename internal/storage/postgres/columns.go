package postgres

import "github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"

var poolColumns = []string{
	"id", "token0_id", "token1_id", "token0_decimals", "token1_decimals",
	"amm_config_id", "creator_id", "hook_id", "fee_rate", "tick_spacing",
	"sqrt_price_x64", "current_tick", "liquidity",
	"amount0", "amount1", "amount0_d", "amount1_d", "price0", "price1",
	"volume_token0", "volume_token1", "volume_token0_d", "volume_token1_d", "volume_usd",
	"collected_fees_token0", "collected_fees_token1", "collected_fees_usd", "tvl_usd",
	"batch_min_tick", "batch_max_tick", "swap_count",
	"created_at_block", "created_at_timestamp", "block_height", "block_time",
}

func poolFields(p *model.Pool) []any {
	return []any{
		&p.ID, &p.Token0ID, &p.Token1ID, &p.Token0Decimals, &p.Token1Decimals,
		&p.AMMConfigID, &p.CreatorID, &p.HookID, &p.FeeRate, &p.TickSpacing,
		&p.SqrtPriceX64, &p.CurrentTick, &p.Liquidity,
		&p.Amount0, &p.Amount1, &p.Amount0D, &p.Amount1D, &p.Price0, &p.Price1,
		&p.VolumeToken0, &p.VolumeToken1, &p.VolumeToken0D, &p.VolumeToken1D, &p.VolumeUSD,
		&p.CollectedFeesToken0, &p.CollectedFeesToken1, &p.CollectedFeesUSD, &p.TVLUSD,
		&p.BatchMinTick, &p.BatchMaxTick, &p.SwapCount,
		&p.CreatedAtBlock, &p.CreatedAtTimestamp, &p.BlockHeight, &p.Timestamp,
	}
}

var positionColumns = []string{
	"id", "nft_mint", "owner_id", "pool_id", "manager_id", "token0_id", "token1_id",
	"lower_tick", "upper_tick", "liquidity", "amount0", "amount1", "amount0_d", "amount1_d",
	"ratio", "core_total_usd", "closed", "block_height", "block_time",
}

func positionFields(p *model.Position) []any {
	return []any{
		&p.ID, &p.NFTMint, &p.OwnerID, &p.PoolID, &p.ManagerID, &p.Token0ID, &p.Token1ID,
		&p.LowerTick, &p.UpperTick, &p.Liquidity, &p.Amount0, &p.Amount1, &p.Amount0D, &p.Amount1D,
		&p.Ratio, &p.CoreTotalUSD, &p.Closed, &p.BlockHeight, &p.Timestamp,
	}
}

var tokenColumns = []string{
	"id", "name", "symbol", "decimals", "price", "pool_count", "swap_count", "block_height", "block_time",
}

func tokenFields(t *model.Token) []any {
	return []any{&t.ID, &t.Name, &t.Symbol, &t.Decimals, &t.Price, &t.PoolCount, &t.SwapCount, &t.BlockHeight, &t.Timestamp}
}

var walletColumns = []string{"id", "address"}

func walletFields(w *model.Wallet) []any {
	return []any{&w.ID, &w.Address}
}

var managerColumns = []string{"id", "address", "position_count"}

func managerFields(m *model.Manager) []any {
	return []any{&m.ID, &m.Address, &m.PositionCount}
}

var poolManagerColumns = []string{
	"id", "address", "pool_count", "position_count", "swap_count", "total_volume_usd", "total_fees_usd",
}

func poolManagerFields(m *model.PoolManager) []any {
	return []any{&m.ID, &m.Address, &m.PoolCount, &m.PositionCount, &m.SwapCount, &m.TotalVolumeUSD, &m.TotalFeesUSD}
}

var hookColumns = []string{"id", "address", "whitelisted", "blacklisted"}

func hookFields(h *model.Hook) []any {
	return []any{&h.ID, &h.Address, &h.Whitelisted, &h.Blacklisted}
}

var ammConfigColumns = []string{
	"id", "config_index", "owner", "protocol_fee_rate", "trade_fee_rate", "tick_spacing", "fund_fee_rate", "fund_owner",
}

func ammConfigFields(c *model.AMMConfig) []any {
	return []any{&c.ID, &c.Index, &c.Owner, &c.ProtocolFeeRate, &c.TradeFeeRate, &c.TickSpacing, &c.FundFeeRate, &c.FundOwner}
}

var pairColumns = []string{
	"id", "pool_id", "token0", "token1", "token0_decimals", "token1_decimals",
	"base_stable", "sqrt_price_x64", "block_time", "block_height", "ordinal",
}

func pairFields(r *model.PairRecord) []any {
	return []any{
		&r.ID, &r.PoolID, &r.Token0, &r.Token1, &r.Token0Decimals, &r.Token1Decimals,
		&r.BaseStable, &r.SqrtPriceX64, &r.Timestamp, &r.BlockHeight, &r.Ordinal,
	}
}

var swapColumns = []string{
	"id", "pool_id", "sender_id", "amount0", "amount1", "zero_for_one", "fee_rate", "fee_amount",
	"liquidity", "sqrt_price_x64", "tick", "tx_signature", "block_height", "block_time",
}

func swapFields(r *model.SwapRecord) []any {
	return []any{
		&r.ID, &r.PoolID, &r.SenderID, &r.Amount0, &r.Amount1, &r.ZeroForOne, &r.FeeRate, &r.FeeAmount,
		&r.Liquidity, &r.SqrtPriceX64, &r.Tick, &r.TxSignature, &r.BlockHeight, &r.Timestamp,
	}
}

var liquidityColumns = []string{
	"id", "pool_id", "sender_id", "liquidity_delta", "tick_lower", "tick_upper", "tick",
	"tx_signature", "block_height", "block_time",
}

func liquidityFields(r *model.LiquidityRecord) []any {
	return []any{
		&r.ID, &r.PoolID, &r.SenderID, &r.LiquidityDelta, &r.TickLower, &r.TickUpper, &r.Tick,
		&r.TxSignature, &r.BlockHeight, &r.Timestamp,
	}
}

var tokenBucketColumns = []string{
	"id", "token_id", "period_start", "open", "high", "low", "close",
	"swap_count", "volume", "volume_usd", "collected_fees", "collected_fees_usd",
}

func tokenBucketFields(b *model.TokenBucket) []any {
	return []any{
		&b.ID, &b.TokenID, &b.PeriodStart, &b.Open, &b.High, &b.Low, &b.Close,
		&b.SwapCount, &b.Volume, &b.VolumeUSD, &b.CollectedFees, &b.CollectedFeesUSD,
	}
}

var poolBucketColumns = []string{
	"id", "pool_id", "period_start", "open", "high", "low", "close", "swap_count",
	"volume_token0", "volume_token1", "volume_token0_d", "volume_token1_d", "volume_usd", "volume_change",
	"collected_fees_token0", "collected_fees_token1", "collected_fees_usd",
	"liquidity", "sqrt_price_x64", "tick",
}

func poolBucketFields(b *model.PoolBucket) []any {
	return []any{
		&b.ID, &b.PoolID, &b.PeriodStart, &b.Open, &b.High, &b.Low, &b.Close, &b.SwapCount,
		&b.VolumeToken0, &b.VolumeToken1, &b.VolumeToken0D, &b.VolumeToken1D, &b.VolumeUSD, &b.VolumeChange,
		&b.CollectedFeesToken0, &b.CollectedFeesToken1, &b.CollectedFeesUSD,
		&b.Liquidity, &b.SqrtPriceX64, &b.Tick,
	}
}
