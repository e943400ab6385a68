package model

// TokenMeta captures SPL mint metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// DefaultTokenDecimals is assumed when a mint cannot be resolved.
const DefaultTokenDecimals = 9
