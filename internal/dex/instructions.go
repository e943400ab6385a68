package dex

import "math/big"

// Instruction is a decoded program instruction in canonical form.
type Instruction interface {
	InstructionName() string
}

// Wire variants folded into the canonical instruction shapes.
const (
	VariantOpenPosition        = "open_position"
	VariantOpenPositionV2      = "open_position_v2"
	VariantOpenPositionToken22 = "open_position_with_token22_nft"
	VariantIncreaseLiquidity   = "increase_liquidity"
	VariantIncreaseLiquidityV2 = "increase_liquidity_v2"
	VariantDecreaseLiquidity   = "decrease_liquidity"
	VariantDecreaseLiquidityV2 = "decrease_liquidity_v2"
	VariantSwap                = "swap"
	VariantSwapV2              = "swap_v2"
	VariantSwapRouterBaseIn    = "swap_router_base_in"
	instructionCreatePool      = "create_pool"
	instructionClosePosition   = "close_position"
)

// CreatePool initializes a pool for a token pair under an AMM config.
type CreatePool struct {
	PoolCreator  string   `json:"pool_creator"`
	AMMConfig    string   `json:"amm_config"`
	PoolState    string   `json:"pool_state"`
	TokenMint0   string   `json:"token_mint_0"`
	TokenMint1   string   `json:"token_mint_1"`
	TokenVault0  string   `json:"token_vault_0"`
	TokenVault1  string   `json:"token_vault_1"`
	SqrtPriceX64 *big.Int `json:"sqrt_price_x64"`
	OpenTime     uint64   `json:"open_time"`
}

func (CreatePool) InstructionName() string { return instructionCreatePool }

// OpenPosition is any of the three open-position wire variants.
type OpenPosition struct {
	Variant                  string   `json:"variant"`
	Payer                    string   `json:"payer"`
	PositionNFTOwner         string   `json:"position_nft_owner"`
	PositionNFTMint          string   `json:"position_nft_mint"`
	PositionNFTAccount       string   `json:"position_nft_account"`
	PoolState                string   `json:"pool_state"`
	ProtocolPosition         string   `json:"protocol_position"`
	PersonalPosition         string   `json:"personal_position"`
	TickLowerIndex           int32    `json:"tick_lower_index"`
	TickUpperIndex           int32    `json:"tick_upper_index"`
	TickArrayLowerStartIndex int32    `json:"tick_array_lower_start_index"`
	TickArrayUpperStartIndex int32    `json:"tick_array_upper_start_index"`
	Liquidity                *big.Int `json:"liquidity"`
	Amount0Max               uint64   `json:"amount_0_max"`
	Amount1Max               uint64   `json:"amount_1_max"`
	WithMetadata             bool     `json:"with_metadata"`
	BaseFlag                 *bool    `json:"base_flag,omitempty"`
}

func (o OpenPosition) InstructionName() string { return o.Variant }

// IncreaseLiquidity is either increase-liquidity wire variant.
type IncreaseLiquidity struct {
	Variant          string   `json:"variant"`
	NFTOwner         string   `json:"nft_owner"`
	NFTAccount       string   `json:"nft_account"`
	PoolState        string   `json:"pool_state"`
	ProtocolPosition string   `json:"protocol_position"`
	PersonalPosition string   `json:"personal_position"`
	Liquidity        *big.Int `json:"liquidity"`
	Amount0Max       uint64   `json:"amount_0_max"`
	Amount1Max       uint64   `json:"amount_1_max"`
	BaseFlag         *bool    `json:"base_flag,omitempty"`
}

func (i IncreaseLiquidity) InstructionName() string { return i.Variant }

// DecreaseLiquidity is either decrease-liquidity wire variant.
type DecreaseLiquidity struct {
	Variant          string   `json:"variant"`
	NFTOwner         string   `json:"nft_owner"`
	NFTAccount       string   `json:"nft_account"`
	PersonalPosition string   `json:"personal_position"`
	PoolState        string   `json:"pool_state"`
	ProtocolPosition string   `json:"protocol_position"`
	Liquidity        *big.Int `json:"liquidity"`
	Amount0Min       uint64   `json:"amount_0_min"`
	Amount1Min       uint64   `json:"amount_1_min"`
}

func (d DecreaseLiquidity) InstructionName() string { return d.Variant }

// ClosePosition burns a position NFT and closes its personal position account.
type ClosePosition struct {
	NFTOwner           string `json:"nft_owner"`
	PositionNFTMint    string `json:"position_nft_mint"`
	PositionNFTAccount string `json:"position_nft_account"`
	PersonalPosition   string `json:"personal_position"`
}

func (ClosePosition) InstructionName() string { return instructionClosePosition }

// Swap is any swap wire variant. Swaps are reconciled from their events.
type Swap struct {
	Variant              string   `json:"variant"`
	Payer                string   `json:"payer"`
	AMMConfig            string   `json:"amm_config,omitempty"`
	PoolState            string   `json:"pool_state,omitempty"`
	Amount               uint64   `json:"amount"`
	OtherAmountThreshold uint64   `json:"other_amount_threshold"`
	SqrtPriceLimitX64    *big.Int `json:"sqrt_price_limit_x64,omitempty"`
	IsBaseInput          bool     `json:"is_base_input"`
}

func (s Swap) InstructionName() string { return s.Variant }

type instructionSchema struct {
	name        string
	minAccounts int
	decode      func(accounts []string, r *fieldReader) Instruction
}

func instructionSchemas() []instructionSchema {
	return []instructionSchema{
		{name: instructionCreatePool, minAccounts: 7, decode: decodeCreatePool},
		{name: VariantOpenPosition, minAccounts: 10, decode: openPositionDecoder(VariantOpenPosition)},
		{name: VariantOpenPositionV2, minAccounts: 10, decode: openPositionDecoder(VariantOpenPositionV2)},
		{name: VariantOpenPositionToken22, minAccounts: 9, decode: openPositionDecoder(VariantOpenPositionToken22)},
		{name: VariantIncreaseLiquidity, minAccounts: 5, decode: increaseLiquidityDecoder(VariantIncreaseLiquidity)},
		{name: VariantIncreaseLiquidityV2, minAccounts: 5, decode: increaseLiquidityDecoder(VariantIncreaseLiquidityV2)},
		{name: VariantDecreaseLiquidity, minAccounts: 5, decode: decreaseLiquidityDecoder(VariantDecreaseLiquidity)},
		{name: VariantDecreaseLiquidityV2, minAccounts: 5, decode: decreaseLiquidityDecoder(VariantDecreaseLiquidityV2)},
		{name: instructionClosePosition, minAccounts: 4, decode: decodeClosePosition},
		{name: VariantSwap, minAccounts: 3, decode: swapDecoder(VariantSwap)},
		{name: VariantSwapV2, minAccounts: 3, decode: swapDecoder(VariantSwapV2)},
		{name: VariantSwapRouterBaseIn, minAccounts: 1, decode: decodeSwapRouterBaseIn},
	}
}

func decodeCreatePool(accounts []string, r *fieldReader) Instruction {
	return &CreatePool{
		PoolCreator:  accounts[0],
		AMMConfig:    accounts[1],
		PoolState:    accounts[2],
		TokenMint0:   accounts[3],
		TokenMint1:   accounts[4],
		TokenVault0:  accounts[5],
		TokenVault1:  accounts[6],
		SqrtPriceX64: r.u128(),
		OpenTime:     r.u64(),
	}
}

// open_position_with_token22_nft has no metadata account, shifting the pool
// and position accounts down by one.
func openPositionDecoder(variant string) func([]string, *fieldReader) Instruction {
	return func(accounts []string, r *fieldReader) Instruction {
		ix := &OpenPosition{
			Variant:            variant,
			Payer:              accounts[0],
			PositionNFTOwner:   accounts[1],
			PositionNFTMint:    accounts[2],
			PositionNFTAccount: accounts[3],
		}
		offset := 5
		if variant == VariantOpenPositionToken22 {
			offset = 4
		}
		ix.PoolState = accounts[offset]
		ix.ProtocolPosition = accounts[offset+1]
		ix.PersonalPosition = accounts[offset+4]

		ix.TickLowerIndex = r.i32()
		ix.TickUpperIndex = r.i32()
		ix.TickArrayLowerStartIndex = r.i32()
		ix.TickArrayUpperStartIndex = r.i32()
		ix.Liquidity = r.u128()
		ix.Amount0Max = r.u64()
		ix.Amount1Max = r.u64()
		if variant != VariantOpenPosition {
			ix.WithMetadata = r.boolean()
			ix.BaseFlag = r.optionalBool()
		}
		return ix
	}
}

func increaseLiquidityDecoder(variant string) func([]string, *fieldReader) Instruction {
	return func(accounts []string, r *fieldReader) Instruction {
		ix := &IncreaseLiquidity{
			Variant:          variant,
			NFTOwner:         accounts[0],
			NFTAccount:       accounts[1],
			PoolState:        accounts[2],
			ProtocolPosition: accounts[3],
			PersonalPosition: accounts[4],
			Liquidity:        r.u128(),
			Amount0Max:       r.u64(),
			Amount1Max:       r.u64(),
		}
		if variant == VariantIncreaseLiquidityV2 {
			ix.BaseFlag = r.optionalBool()
		}
		return ix
	}
}

func decreaseLiquidityDecoder(variant string) func([]string, *fieldReader) Instruction {
	return func(accounts []string, r *fieldReader) Instruction {
		return &DecreaseLiquidity{
			Variant:          variant,
			NFTOwner:         accounts[0],
			NFTAccount:       accounts[1],
			PersonalPosition: accounts[2],
			PoolState:        accounts[3],
			ProtocolPosition: accounts[4],
			Liquidity:        r.u128(),
			Amount0Min:       r.u64(),
			Amount1Min:       r.u64(),
		}
	}
}

func decodeClosePosition(accounts []string, _ *fieldReader) Instruction {
	return &ClosePosition{
		NFTOwner:           accounts[0],
		PositionNFTMint:    accounts[1],
		PositionNFTAccount: accounts[2],
		PersonalPosition:   accounts[3],
	}
}

func swapDecoder(variant string) func([]string, *fieldReader) Instruction {
	return func(accounts []string, r *fieldReader) Instruction {
		return &Swap{
			Variant:              variant,
			Payer:                accounts[0],
			AMMConfig:            accounts[1],
			PoolState:            accounts[2],
			Amount:               r.u64(),
			OtherAmountThreshold: r.u64(),
			SqrtPriceLimitX64:    r.u128(),
			IsBaseInput:          r.boolean(),
		}
	}
}

func decodeSwapRouterBaseIn(accounts []string, r *fieldReader) Instruction {
	return &Swap{
		Variant:              VariantSwapRouterBaseIn,
		Payer:                accounts[0],
		Amount:               r.u64(),
		OtherAmountThreshold: r.u64(),
		IsBaseInput:          true,
	}
}
