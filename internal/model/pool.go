package model

import "math/big"

// Pool is the reconciled state of one CLMM pool account.
type Pool struct {
	ID             string
	Token0ID       string
	Token1ID       string
	Token0Decimals uint8
	Token1Decimals uint8
	AMMConfigID    string
	CreatorID      string
	HookID         string
	FeeRate        uint32
	TickSpacing    uint16

	SqrtPriceX64 *big.Int
	CurrentTick  int32
	Liquidity    *big.Int

	Amount0  *big.Int
	Amount1  *big.Int
	Amount0D string
	Amount1D string
	Price0   float64
	Price1   float64

	VolumeToken0        *big.Int
	VolumeToken1        *big.Int
	VolumeToken0D       string
	VolumeToken1D       string
	VolumeUSD           float64
	CollectedFeesToken0 *big.Int
	CollectedFeesToken1 *big.Int
	CollectedFeesUSD    float64
	TVLUSD              float64

	BatchMinTick int32
	BatchMaxTick int32
	SwapCount    uint64

	CreatedAtBlock     uint64
	CreatedAtTimestamp int64
	BlockHeight        uint64
	Timestamp          int64
}

// NewPool returns a pool with zeroed accumulators.
func NewPool(id string) *Pool {
	return &Pool{
		ID:                  id,
		SqrtPriceX64:        new(big.Int),
		Liquidity:           new(big.Int),
		Amount0:             new(big.Int),
		Amount1:             new(big.Int),
		Amount0D:            "0",
		Amount1D:            "0",
		VolumeToken0:        new(big.Int),
		VolumeToken1:        new(big.Int),
		VolumeToken0D:       "0",
		VolumeToken1D:       "0",
		CollectedFeesToken0: new(big.Int),
		CollectedFeesToken1: new(big.Int),
	}
}

// EntityID implements Entity.
func (p *Pool) EntityID() string { return p.ID }
