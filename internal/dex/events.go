package dex

import "math/big"

// Event is a decoded program event.
type Event interface {
	EventName() string
}

// PoolCreatedEvent is emitted by create_pool.
type PoolCreatedEvent struct {
	TokenMint0   string   `json:"token_mint_0"`
	TokenMint1   string   `json:"token_mint_1"`
	TickSpacing  uint16   `json:"tick_spacing"`
	PoolState    string   `json:"pool_state"`
	SqrtPriceX64 *big.Int `json:"sqrt_price_x64"`
	Tick         int32    `json:"tick"`
	TokenVault0  string   `json:"token_vault_0"`
	TokenVault1  string   `json:"token_vault_1"`
}

func (PoolCreatedEvent) EventName() string { return "PoolCreatedEvent" }

// CreatePersonalPositionEvent carries the amounts actually deposited by an open position.
type CreatePersonalPositionEvent struct {
	PoolState                 string   `json:"pool_state"`
	Minter                    string   `json:"minter"`
	NFTOwner                  string   `json:"nft_owner"`
	TickLowerIndex            int32    `json:"tick_lower_index"`
	TickUpperIndex            int32    `json:"tick_upper_index"`
	Liquidity                 *big.Int `json:"liquidity"`
	DepositAmount0            uint64   `json:"deposit_amount_0"`
	DepositAmount1            uint64   `json:"deposit_amount_1"`
	DepositAmount0TransferFee uint64   `json:"deposit_amount_0_transfer_fee"`
	DepositAmount1TransferFee uint64   `json:"deposit_amount_1_transfer_fee"`
}

func (CreatePersonalPositionEvent) EventName() string { return "CreatePersonalPositionEvent" }

// IncreaseLiquidityEvent carries the liquidity and amounts added to a position.
type IncreaseLiquidityEvent struct {
	PositionNFTMint    string   `json:"position_nft_mint"`
	Liquidity          *big.Int `json:"liquidity"`
	Amount0            uint64   `json:"amount_0"`
	Amount1            uint64   `json:"amount_1"`
	Amount0TransferFee uint64   `json:"amount_0_transfer_fee"`
	Amount1TransferFee uint64   `json:"amount_1_transfer_fee"`
}

func (IncreaseLiquidityEvent) EventName() string { return "IncreaseLiquidityEvent" }

// DecreaseLiquidityEvent carries the liquidity and amounts removed from a position.
type DecreaseLiquidityEvent struct {
	PositionNFTMint string    `json:"position_nft_mint"`
	Liquidity       *big.Int  `json:"liquidity"`
	DecreaseAmount0 uint64    `json:"decrease_amount_0"`
	DecreaseAmount1 uint64    `json:"decrease_amount_1"`
	FeeAmount0      uint64    `json:"fee_amount_0"`
	FeeAmount1      uint64    `json:"fee_amount_1"`
	RewardAmounts   [3]uint64 `json:"reward_amounts"`
	TransferFee0    uint64    `json:"transfer_fee_0"`
	TransferFee1    uint64    `json:"transfer_fee_1"`
}

func (DecreaseLiquidityEvent) EventName() string { return "DecreaseLiquidityEvent" }

// LiquidityChangeEvent reports the pool's active liquidity around a position change.
type LiquidityChangeEvent struct {
	PoolState       string   `json:"pool_state"`
	Tick            int32    `json:"tick"`
	TickLower       int32    `json:"tick_lower"`
	TickUpper       int32    `json:"tick_upper"`
	LiquidityBefore *big.Int `json:"liquidity_before"`
	LiquidityAfter  *big.Int `json:"liquidity_after"`
}

func (LiquidityChangeEvent) EventName() string { return "LiquidityChangeEvent" }

// SwapEvent is emitted once per pool crossed by a swap.
type SwapEvent struct {
	PoolState     string   `json:"pool_state"`
	Sender        string   `json:"sender"`
	TokenAccount0 string   `json:"token_account_0"`
	TokenAccount1 string   `json:"token_account_1"`
	Amount0       uint64   `json:"amount_0"`
	TransferFee0  uint64   `json:"transfer_fee_0"`
	Amount1       uint64   `json:"amount_1"`
	TransferFee1  uint64   `json:"transfer_fee_1"`
	ZeroForOne    bool     `json:"zero_for_one"`
	SqrtPriceX64  *big.Int `json:"sqrt_price_x64"`
	Liquidity     *big.Int `json:"liquidity"`
	Tick          int32    `json:"tick"`
}

func (SwapEvent) EventName() string { return "SwapEvent" }

// CollectPersonalFeeEvent reports fees withdrawn from a position.
type CollectPersonalFeeEvent struct {
	PositionNFTMint        string `json:"position_nft_mint"`
	RecipientTokenAccount0 string `json:"recipient_token_account_0"`
	RecipientTokenAccount1 string `json:"recipient_token_account_1"`
	Amount0                uint64 `json:"amount_0"`
	Amount1                uint64 `json:"amount_1"`
}

func (CollectPersonalFeeEvent) EventName() string { return "CollectPersonalFeeEvent" }

type eventSchema struct {
	name   string
	disc   Discriminator
	decode func(r *fieldReader) Event
}

func eventSchemas() []eventSchema {
	schemas := []eventSchema{
		{name: "PoolCreatedEvent", decode: decodePoolCreated},
		{name: "CreatePersonalPositionEvent", decode: decodeCreatePersonalPosition},
		{name: "IncreaseLiquidityEvent", decode: decodeIncreaseLiquidity},
		{name: "DecreaseLiquidityEvent", decode: decodeDecreaseLiquidity},
		{name: "LiquidityChangeEvent", decode: decodeLiquidityChange},
		{name: "SwapEvent", decode: decodeSwap},
		{name: "CollectPersonalFeeEvent", decode: decodeCollectPersonalFee},
	}
	for i := range schemas {
		schemas[i].disc = EventDiscriminator(schemas[i].name)
	}
	return schemas
}

func (s eventSchema) tryDecode(payload []byte) (Event, bool) {
	disc, ok := discriminatorOf(payload)
	if !ok || disc != s.disc {
		return nil, false
	}
	r := newFieldReader(payload[DiscriminatorSize:])
	event := s.decode(r)
	if r.err != nil {
		return nil, false
	}
	return event, true
}

func decodePoolCreated(r *fieldReader) Event {
	return &PoolCreatedEvent{
		TokenMint0:   r.pubkey(),
		TokenMint1:   r.pubkey(),
		TickSpacing:  r.u16(),
		PoolState:    r.pubkey(),
		SqrtPriceX64: r.u128(),
		Tick:         r.i32(),
		TokenVault0:  r.pubkey(),
		TokenVault1:  r.pubkey(),
	}
}

func decodeCreatePersonalPosition(r *fieldReader) Event {
	return &CreatePersonalPositionEvent{
		PoolState:                 r.pubkey(),
		Minter:                    r.pubkey(),
		NFTOwner:                  r.pubkey(),
		TickLowerIndex:            r.i32(),
		TickUpperIndex:            r.i32(),
		Liquidity:                 r.u128(),
		DepositAmount0:            r.u64(),
		DepositAmount1:            r.u64(),
		DepositAmount0TransferFee: r.u64(),
		DepositAmount1TransferFee: r.u64(),
	}
}

func decodeIncreaseLiquidity(r *fieldReader) Event {
	return &IncreaseLiquidityEvent{
		PositionNFTMint:    r.pubkey(),
		Liquidity:          r.u128(),
		Amount0:            r.u64(),
		Amount1:            r.u64(),
		Amount0TransferFee: r.u64(),
		Amount1TransferFee: r.u64(),
	}
}

func decodeDecreaseLiquidity(r *fieldReader) Event {
	ev := &DecreaseLiquidityEvent{
		PositionNFTMint: r.pubkey(),
		Liquidity:       r.u128(),
		DecreaseAmount0: r.u64(),
		DecreaseAmount1: r.u64(),
		FeeAmount0:      r.u64(),
		FeeAmount1:      r.u64(),
	}
	for i := range ev.RewardAmounts {
		ev.RewardAmounts[i] = r.u64()
	}
	ev.TransferFee0 = r.u64()
	ev.TransferFee1 = r.u64()
	return ev
}

func decodeLiquidityChange(r *fieldReader) Event {
	return &LiquidityChangeEvent{
		PoolState:       r.pubkey(),
		Tick:            r.i32(),
		TickLower:       r.i32(),
		TickUpper:       r.i32(),
		LiquidityBefore: r.u128(),
		LiquidityAfter:  r.u128(),
	}
}

func decodeSwap(r *fieldReader) Event {
	return &SwapEvent{
		PoolState:     r.pubkey(),
		Sender:        r.pubkey(),
		TokenAccount0: r.pubkey(),
		TokenAccount1: r.pubkey(),
		Amount0:       r.u64(),
		TransferFee0:  r.u64(),
		Amount1:       r.u64(),
		TransferFee1:  r.u64(),
		ZeroForOne:    r.boolean(),
		SqrtPriceX64:  r.u128(),
		Liquidity:     r.u128(),
		Tick:          r.i32(),
	}
}

func decodeCollectPersonalFee(r *fieldReader) Event {
	return &CollectPersonalFeeEvent{
		PositionNFTMint:        r.pubkey(),
		RecipientTokenAccount0: r.pubkey(),
		RecipientTokenAccount1: r.pubkey(),
		Amount0:                r.u64(),
		Amount1:                r.u64(),
	}
}
