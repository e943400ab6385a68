package model

// AMMConfig mirrors the program's fee configuration account.
type AMMConfig struct {
	ID              string
	Index           uint16
	Owner           string
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
	FundOwner       string
}

func (c *AMMConfig) EntityID() string { return c.ID }
