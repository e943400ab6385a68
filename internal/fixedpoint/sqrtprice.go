package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

const floatPrec = 256

var (
	q128      = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	q128Float = new(big.Float).SetPrec(floatPrec).SetInt(q128.ToBig())
)

// InvertSqrtPriceX64 returns ceil(2^128 / p), the packed price of the
// reversed pair.
func InvertSqrtPriceX64(p *big.Int) (*big.Int, error) {
	if p == nil || p.Sign() <= 0 {
		return nil, fmt.Errorf("%w: sqrt price must be positive", ErrInvalidArgument)
	}
	v, overflow := uint256.FromBig(p)
	if overflow {
		return nil, fmt.Errorf("%w: sqrt price exceeds 256 bits", ErrInvalidArgument)
	}

	q := new(uint256.Int).Div(q128, v)
	if !new(uint256.Int).Mod(q128, v).IsZero() {
		q.AddUint64(q, 1)
	}
	return q.ToBig(), nil
}

// RatioFromSqrtPriceX64 returns (p^2 / 2^128) * 10^(baseDecimals-quoteDecimals).
func RatioFromSqrtPriceX64(p *big.Int, baseDecimals, quoteDecimals uint8) float64 {
	if p == nil || p.Sign() <= 0 {
		return 0
	}
	v, overflow := uint256.FromBig(p)
	if overflow {
		return 0
	}
	squared := new(uint256.Int).Mul(v, v)

	ratio := new(big.Float).SetPrec(floatPrec).SetInt(squared.ToBig())
	ratio.Quo(ratio, q128Float)

	exp := int(baseDecimals) - int(quoteDecimals)
	if exp != 0 {
		abs := exp
		if abs < 0 {
			abs = -abs
		}
		scale := new(big.Float).SetPrec(floatPrec).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs)), nil))
		if exp > 0 {
			ratio.Mul(ratio, scale)
		} else {
			ratio.Quo(ratio, scale)
		}
	}

	f, _ := ratio.Float64()
	return f
}

// PriceFromRatio returns 1/ratio, or 0 for a zero ratio.
func PriceFromRatio(ratio float64) float64 {
	if ratio == 0 {
		return 0
	}
	return 1 / ratio
}
