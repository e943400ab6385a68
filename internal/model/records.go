package model

import "math/big"

// PairRecord is an immutable price observation for a pool.
// When BaseStable is set, Token0 is a stablecoin.
type PairRecord struct {
	ID             string
	PoolID         string
	Token0         string
	Token1         string
	Token0Decimals uint8
	Token1Decimals uint8
	BaseStable     bool
	SqrtPriceX64   *big.Int
	Timestamp      int64
	BlockHeight    uint64
	Ordinal        int
}

func (r *PairRecord) EntityID() string { return r.ID }

// SwapRecord is the audit row for one swap event.
type SwapRecord struct {
	ID           string
	PoolID       string
	SenderID     string
	Amount0      *big.Int
	Amount1      *big.Int
	ZeroForOne   bool
	FeeRate      uint32
	FeeAmount    *big.Int
	Liquidity    *big.Int
	SqrtPriceX64 *big.Int
	Tick         int32
	TxSignature  string
	BlockHeight  uint64
	Timestamp    int64
}

func (r *SwapRecord) EntityID() string { return r.ID }

// LiquidityRecord is the audit row for one liquidity change event.
type LiquidityRecord struct {
	ID             string
	PoolID         string
	SenderID       string
	LiquidityDelta *big.Int
	TickLower      int32
	TickUpper      int32
	Tick           int32
	TxSignature    string
	BlockHeight    uint64
	Timestamp      int64
}

func (r *LiquidityRecord) EntityID() string { return r.ID }
