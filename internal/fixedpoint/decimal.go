package fixedpoint

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidArgument reports a violated arithmetic precondition.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultMaxDecimals is the fractional precision used by DivideToBoundedFloat callers.
const DefaultMaxDecimals = 15

// ToDecimalString renders a raw integer amount with the given number of decimals.
// With trim set, trailing fractional zeros and a dangling point are removed.
func ToDecimalString(value *big.Int, decimals int, trim bool) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("%w: negative decimals %d", ErrInvalidArgument, decimals)
	}
	if value == nil {
		value = new(big.Int)
	}

	text := decimal.NewFromBigInt(value, -int32(decimals)).StringFixed(int32(decimals))
	if trim && strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	return text, nil
}

// FormatAmount renders a raw token amount with trailing zeros trimmed.
func FormatAmount(value *big.Int, decimals uint8) string {
	text, _ := ToDecimalString(value, int(decimals), true)
	return text
}

// DivideToBoundedFloat returns numerator/denominator rounded to maxDecimals
// fractional digits. A zero denominator yields 0.
func DivideToBoundedFloat(numerator, denominator *big.Int, maxDecimals int) float64 {
	if denominator == nil || denominator.Sign() == 0 || numerator == nil {
		return 0
	}
	if maxDecimals < 0 {
		maxDecimals = 0
	}

	quotient := decimal.NewFromBigInt(numerator, 0).DivRound(decimal.NewFromBigInt(denominator, 0), int32(maxDecimals))
	f, _ := quotient.Float64()
	return f
}

// MultiplyIntByFloat multiplies an integer by a float without leaving the
// integer domain. The float is taken at its shortest exact decimal form, or
// rounded half-up to scale fractional digits when scale is positive; the
// product is truncated toward zero.
func MultiplyIntByFloat(value *big.Int, f float64, scale int) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite multiplier %v", ErrInvalidArgument, f)
	}
	if f == 0 || value == nil || value.Sign() == 0 {
		return new(big.Int), nil
	}

	factor := decimal.NewFromFloat(f)
	if scale > 0 {
		factor = factor.Round(int32(scale))
	}
	return decimal.NewFromBigInt(value, 0).Mul(factor).Truncate(0).BigInt(), nil
}

// TokenRatio returns (amount0/10^decimals0) / (amount1/10^decimals1), or 0
// when amount1 is zero.
func TokenRatio(amount0, amount1 *big.Int, decimals0, decimals1 uint8) float64 {
	if amount1 == nil || amount1.Sign() == 0 || amount0 == nil {
		return 0
	}
	a0 := decimal.NewFromBigInt(amount0, -int32(decimals0))
	a1 := decimal.NewFromBigInt(amount1, -int32(decimals1))
	f, _ := a0.DivRound(a1, DefaultMaxDecimals).Float64()
	return f
}

// AmountUSD values a raw token amount at a USD unit price.
func AmountUSD(price float64, amount *big.Int, decimals uint8) float64 {
	if price == 0 || amount == nil || amount.Sign() == 0 {
		return 0
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	value := decimal.NewFromFloat(price).Mul(decimal.NewFromBigInt(amount, -int32(decimals)))
	f, _ := value.Float64()
	return f
}
