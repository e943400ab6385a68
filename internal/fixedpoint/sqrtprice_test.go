package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q64() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 64)
}

func TestInvertSqrtPriceX64(t *testing.T) {
	one := q64()
	inv, err := InvertSqrtPriceX64(one)
	require.NoError(t, err)
	assert.Zero(t, inv.Cmp(one))

	two := new(big.Int).Lsh(big.NewInt(2), 64)
	inv, err = InvertSqrtPriceX64(two)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 63).String(), inv.String())

	inv, err = InvertSqrtPriceX64(big.NewInt(3))
	require.NoError(t, err)
	q128 := new(big.Int).Lsh(big.NewInt(1), 128)
	floor := new(big.Int).Div(q128, big.NewInt(3))
	assert.Equal(t, new(big.Int).Add(floor, big.NewInt(1)).String(), inv.String())

	_, err = InvertSqrtPriceX64(big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRatioFromSqrtPriceX64(t *testing.T) {
	assert.Equal(t, 1.0, RatioFromSqrtPriceX64(q64(), 6, 6))

	two := new(big.Int).Lsh(big.NewInt(2), 64)
	assert.Equal(t, 4.0, RatioFromSqrtPriceX64(two, 6, 6))
	assert.InDelta(t, 0.004, RatioFromSqrtPriceX64(two, 6, 9), 1e-15)
	assert.InDelta(t, 4000.0, RatioFromSqrtPriceX64(two, 9, 6), 1e-9)
	assert.Equal(t, 0.0, RatioFromSqrtPriceX64(big.NewInt(0), 6, 6))
}

func TestPriceFromRatio(t *testing.T) {
	assert.Equal(t, 0.5, PriceFromRatio(2))
	assert.Equal(t, 0.0, PriceFromRatio(0))
}
