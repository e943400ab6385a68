package fixedpoint

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimalString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals int
		trim     bool
		want     string
	}{
		{name: "whole", value: "1000000", decimals: 6, trim: true, want: "1"},
		{name: "untrimmed", value: "1000000", decimals: 6, trim: false, want: "1.000000"},
		{name: "fraction", value: "1500000", decimals: 6, trim: true, want: "1.5"},
		{name: "padded", value: "42", decimals: 6, trim: false, want: "0.000042"},
		{name: "zero", value: "0", decimals: 9, trim: true, want: "0"},
		{name: "no decimals", value: "123", decimals: 0, trim: true, want: "123"},
		{name: "negative", value: "-500000000", decimals: 9, trim: true, want: "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.value, 10)
			require.True(t, ok)

			got, err := ToDecimalString(v, tt.decimals, tt.trim)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDecimalStringRoundTrip(t *testing.T) {
	values := []string{"0", "1", "9", "10", "123456789", "-987654321", "340282366920938463463374607431768211455"}
	for _, raw := range values {
		v, _ := new(big.Int).SetString(raw, 10)
		for d := 0; d <= 20; d++ {
			text, err := ToDecimalString(v, d, true)
			require.NoError(t, err)

			parsed, err := decimal.NewFromString(text)
			require.NoError(t, err)
			back := parsed.Shift(int32(d)).BigInt()
			require.Zero(t, back.Cmp(v), "value %s decimals %d text %s", raw, d, text)
		}
	}
}

func TestToDecimalStringNegativeDecimals(t *testing.T) {
	_, err := ToDecimalString(big.NewInt(1), -1, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDivideToBoundedFloat(t *testing.T) {
	assert.Equal(t, 0.0, DivideToBoundedFloat(big.NewInt(10), big.NewInt(0), DefaultMaxDecimals))
	assert.Equal(t, 0.0, DivideToBoundedFloat(big.NewInt(10), nil, DefaultMaxDecimals))
	assert.Equal(t, 2.5, DivideToBoundedFloat(big.NewInt(5), big.NewInt(2), DefaultMaxDecimals))
	assert.Equal(t, 0.33, DivideToBoundedFloat(big.NewInt(1), big.NewInt(3), 2))
	assert.Equal(t, 0.67, DivideToBoundedFloat(big.NewInt(2), big.NewInt(3), 2))
}

func TestMultiplyIntByFloat(t *testing.T) {
	got, err := MultiplyIntByFloat(big.NewInt(123456), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, got.Sign())

	got, err = MultiplyIntByFloat(big.NewInt(1000), 0.25, 0)
	require.NoError(t, err)
	assert.Equal(t, "250", got.String())

	got, err = MultiplyIntByFloat(big.NewInt(999), 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, "499", got.String())

	got, err = MultiplyIntByFloat(big.NewInt(1000), 0.125, 2)
	require.NoError(t, err)
	assert.Equal(t, "130", got.String())

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MultiplyIntByFloat(big.NewInt(1), f, 0)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestFeeFromAmount(t *testing.T) {
	assert.Equal(t, 0.25, FeePercent(2500))

	fee, err := FeeFromAmount(big.NewInt(500_000_000), 2500)
	require.NoError(t, err)
	assert.Equal(t, "1250000", fee.String())

	fee, err = FeeFromAmount(big.NewInt(500_000_000), 0)
	require.NoError(t, err)
	assert.Zero(t, fee.Sign())
}

func TestTokenRatio(t *testing.T) {
	assert.Equal(t, 0.0, TokenRatio(big.NewInt(100), big.NewInt(0), 6, 9))
	assert.Equal(t, 2.0, TokenRatio(big.NewInt(2_000_000), big.NewInt(1_000_000_000), 6, 9))
}

func TestAmountUSD(t *testing.T) {
	assert.Equal(t, 3.0, AmountUSD(2, big.NewInt(1_500_000_000), 9))
	assert.Equal(t, 0.0, AmountUSD(0, big.NewInt(1_500_000_000), 9))
	assert.Equal(t, 0.0, AmountUSD(math.NaN(), big.NewInt(1), 0))
}
