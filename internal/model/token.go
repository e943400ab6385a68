package model

// Token is an SPL mint referenced by at least one pool.
type Token struct {
	ID          string
	Name        string
	Symbol      string
	Decimals    uint8
	Price       float64
	PoolCount   uint64
	SwapCount   uint64
	BlockHeight uint64
	Timestamp   int64
}

func (t *Token) EntityID() string { return t.ID }

// Wallet is any account seen as creator, owner or swap sender.
type Wallet struct {
	ID      string
	Address string
}

func (w *Wallet) EntityID() string { return w.ID }
