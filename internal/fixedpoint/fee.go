package fixedpoint

import "math/big"

// FeeRateDivisor converts a raw pool fee rate into a percentage (2500 -> 0.25%).
const FeeRateDivisor = 10000

// FeePercent returns the fee rate as a percentage.
func FeePercent(raw uint32) float64 {
	return float64(raw) / FeeRateDivisor
}

// FeeFromAmount returns the fee charged on amount at the raw fee rate.
func FeeFromAmount(amount *big.Int, raw uint32) (*big.Int, error) {
	if raw == 0 {
		return new(big.Int), nil
	}
	return MultiplyIntByFloat(amount, FeePercent(raw)/100, 0)
}
