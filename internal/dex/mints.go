package dex

// Well-known stablecoin mints on Solana, priced at 1 USD.
const (
	MintUSDC   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT   = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	MintUSDTet = "Dn4noZ5jgGfkntzcQSUZ8czkreiZ1ForXYoV2H8Dm7S1"
	MintUSDCet = "A9mUU4qviSctJVPJdBJWkb28deg915LYJKrzQ19ji3FM"
	MintPYUSD  = "2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo"
)

// DefaultStablecoins returns the stablecoin set used when none is configured.
func DefaultStablecoins() []string {
	return []string{MintUSDC, MintUSDT, MintUSDTet, MintUSDCet, MintPYUSD}
}
