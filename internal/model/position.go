package model

import "math/big"

// Position is a personal liquidity position inside a pool.
type Position struct {
	ID           string
	NFTMint      string
	OwnerID      string
	PoolID       string
	ManagerID    string
	Token0ID     string
	Token1ID     string
	LowerTick    int32
	UpperTick    int32
	Liquidity    *big.Int
	Amount0      *big.Int
	Amount1      *big.Int
	Amount0D     string
	Amount1D     string
	Ratio        float64
	CoreTotalUSD float64
	Closed       bool
	BlockHeight  uint64
	Timestamp    int64
}

// NewPosition returns an empty position.
func NewPosition(id string) *Position {
	return &Position{
		ID:        id,
		Liquidity: new(big.Int),
		Amount0:   new(big.Int),
		Amount1:   new(big.Int),
		Amount0D:  "0",
		Amount1D:  "0",
	}
}

func (p *Position) EntityID() string { return p.ID }
