package dex_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex/dextest"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

func TestTryDecodeSwapEvent(t *testing.T) {
	codec := dex.NewCodec("")
	pool := dextest.Key(1)
	sender := dextest.Key(2)
	sqrt := new(big.Int).Lsh(big.NewInt(3), 64)
	liquidity, _ := new(big.Int).SetString("123456789012345678901234", 10)

	payload := dextest.SwapEvent(pool, sender, 1_000_000, 500_000_000, false, sqrt, liquidity, -42)

	event, ok := codec.TryDecodeLog(model.LogMessage{ProgramID: dex.DefaultProgramID, Message: payload.Base64()})
	require.True(t, ok)

	swap, ok := event.(*dex.SwapEvent)
	require.True(t, ok, "decoded %T", event)
	assert.Equal(t, pool.String(), swap.PoolState)
	assert.Equal(t, sender.String(), swap.Sender)
	assert.Equal(t, uint64(1_000_000), swap.Amount0)
	assert.Equal(t, uint64(500_000_000), swap.Amount1)
	assert.False(t, swap.ZeroForOne)
	assert.Zero(t, swap.SqrtPriceX64.Cmp(sqrt))
	assert.Zero(t, swap.Liquidity.Cmp(liquidity))
	assert.Equal(t, int32(-42), swap.Tick)
}

func TestTryDecodeEventMismatch(t *testing.T) {
	codec := dex.NewCodec("")

	_, ok := codec.TryDecodeEvent(dextest.Event("SomethingElse").U64(1).Bytes())
	assert.False(t, ok)

	truncated := dextest.Event("SwapEvent").Key(dextest.Key(1)).Bytes()
	_, ok = codec.TryDecodeEvent(truncated)
	assert.False(t, ok)

	_, ok = codec.TryDecodeEvent([]byte{1, 2, 3})
	assert.False(t, ok)

	_, ok = codec.TryDecodeLog(model.LogMessage{ProgramID: "other", Message: dextest.SwapEvent(dextest.Key(1), dextest.Key(2), 1, 1, true, big.NewInt(1), big.NewInt(1), 0).Base64()})
	assert.False(t, ok)

	_, ok = codec.TryDecodeLog(model.LogMessage{Message: "not base64!"})
	assert.False(t, ok)
}

func TestTryDecodeLiquidityEvents(t *testing.T) {
	codec := dex.NewCodec("")
	mint := dextest.Key(7)

	event, ok := codec.TryDecodeEvent(dextest.Event("IncreaseLiquidityEvent").
		Key(mint).U128(big.NewInt(500)).U64(10).U64(20).U64(0).U64(0).Bytes())
	require.True(t, ok)
	inc := event.(*dex.IncreaseLiquidityEvent)
	assert.Equal(t, mint.String(), inc.PositionNFTMint)
	assert.Equal(t, "500", inc.Liquidity.String())
	assert.Equal(t, uint64(20), inc.Amount1)

	event, ok = codec.TryDecodeEvent(dextest.Event("DecreaseLiquidityEvent").
		Key(mint).U128(big.NewInt(200)).U64(4).U64(8).U64(1).U64(2).
		U64(0).U64(0).U64(0).U64(0).U64(0).Bytes())
	require.True(t, ok)
	dec := event.(*dex.DecreaseLiquidityEvent)
	assert.Equal(t, uint64(4), dec.DecreaseAmount0)
	assert.Equal(t, uint64(8), dec.DecreaseAmount1)
	assert.Equal(t, uint64(2), dec.FeeAmount1)

	event, ok = codec.TryDecodeEvent(dextest.Event("LiquidityChangeEvent").
		Key(dextest.Key(1)).I32(5).I32(-10).I32(10).U128(big.NewInt(100)).U128(big.NewInt(150)).Bytes())
	require.True(t, ok)
	change := event.(*dex.LiquidityChangeEvent)
	assert.Equal(t, int32(-10), change.TickLower)
	assert.Equal(t, "150", change.LiquidityAfter.String())
}

func TestDecodeCreatePoolInstruction(t *testing.T) {
	codec := dex.NewCodec("")
	accounts := make([]string, 13)
	for i := range accounts {
		accounts[i] = dextest.Key(byte(i + 1)).String()
	}
	sqrt := new(big.Int).Lsh(big.NewInt(1), 64)

	decoded, ok, err := codec.DecodeInstruction(model.Instruction{
		ProgramID: dex.DefaultProgramID,
		Accounts:  accounts,
		Data:      dextest.CreatePool(sqrt, 99).Base58(),
	})
	require.NoError(t, err)
	require.True(t, ok)

	create, ok := decoded.(*dex.CreatePool)
	require.True(t, ok)
	assert.Equal(t, accounts[0], create.PoolCreator)
	assert.Equal(t, accounts[1], create.AMMConfig)
	assert.Equal(t, accounts[2], create.PoolState)
	assert.Equal(t, accounts[3], create.TokenMint0)
	assert.Equal(t, accounts[4], create.TokenMint1)
	assert.Zero(t, create.SqrtPriceX64.Cmp(sqrt))
	assert.Equal(t, uint64(99), create.OpenTime)
}

func TestDecodeOpenPositionVariants(t *testing.T) {
	codec := dex.NewCodec("")
	accounts := make([]string, 20)
	for i := range accounts {
		accounts[i] = dextest.Key(byte(i + 1)).String()
	}

	args := func(p *dextest.Payload) *dextest.Payload {
		return p.I32(-120).I32(120).I32(-600).I32(0).U128(big.NewInt(1000)).U64(5).U64(6)
	}

	tests := []struct {
		variant      string
		data         string
		poolIdx      int
		personalIdx  int
		withMetadata bool
	}{
		{variant: dex.VariantOpenPosition, data: args(dextest.Instruction(dex.VariantOpenPosition)).Base58(), poolIdx: 5, personalIdx: 9},
		{variant: dex.VariantOpenPositionV2, data: args(dextest.Instruction(dex.VariantOpenPositionV2)).Bool(true).U8(1).Bool(true).Base58(), poolIdx: 5, personalIdx: 9, withMetadata: true},
		{variant: dex.VariantOpenPositionToken22, data: args(dextest.Instruction(dex.VariantOpenPositionToken22)).Bool(false).U8(0).Base58(), poolIdx: 4, personalIdx: 8},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			decoded, ok, err := codec.DecodeInstruction(model.Instruction{Accounts: accounts, Data: tt.data})
			require.NoError(t, err)
			require.True(t, ok)

			open, ok := decoded.(*dex.OpenPosition)
			require.True(t, ok)
			assert.Equal(t, tt.variant, open.Variant)
			assert.Equal(t, accounts[1], open.PositionNFTOwner)
			assert.Equal(t, accounts[2], open.PositionNFTMint)
			assert.Equal(t, accounts[tt.poolIdx], open.PoolState)
			assert.Equal(t, accounts[tt.personalIdx], open.PersonalPosition)
			assert.Equal(t, int32(-120), open.TickLowerIndex)
			assert.Equal(t, int32(120), open.TickUpperIndex)
			assert.Equal(t, "1000", open.Liquidity.String())
			assert.Equal(t, tt.withMetadata, open.WithMetadata)
		})
	}
}

func TestDecodeInstructionUnknownAndMalformed(t *testing.T) {
	codec := dex.NewCodec("")

	_, ok, err := codec.DecodeInstruction(model.Instruction{Data: dextest.Instruction("set_reward_params").U64(1).Base58()})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = codec.DecodeInstruction(model.Instruction{
		Accounts: []string{"a", "b", "c", "d", "e"},
		Data:     dextest.Instruction(dex.VariantIncreaseLiquidity).U64(1).Base58(),
	})
	assert.True(t, ok)
	require.ErrorIs(t, err, dex.ErrMalformed)

	_, ok, err = codec.DecodeInstruction(model.Instruction{
		Accounts: []string{"a"},
		Data:     dextest.CreatePool(big.NewInt(1), 0).Base58(),
	})
	assert.True(t, ok)
	require.ErrorIs(t, err, dex.ErrMalformed)
}

func TestDecodeAMMConfig(t *testing.T) {
	owner := dextest.Key(9)
	data := dextest.New(dex.AccountDiscriminator("AmmConfig")).
		U8(255).U16(4).Key(owner).U32(120000).U32(2500).U16(60).U32(40000).U32(0).Key(dextest.Key(8)).
		U64(0).U64(0).U64(0).Bytes()

	cfg, err := dex.DecodeAMMConfig("cfg", data)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), cfg.Index)
	assert.Equal(t, owner.String(), cfg.Owner)
	assert.Equal(t, uint32(2500), cfg.TradeFeeRate)
	assert.Equal(t, uint16(60), cfg.TickSpacing)
	assert.Equal(t, uint32(40000), cfg.FundFeeRate)

	_, err = dex.DecodeAMMConfig("cfg", dextest.New(dex.AccountDiscriminator("PoolState")).U8(1).Bytes())
	require.ErrorIs(t, err, dex.ErrMalformed)
}

type fakeAccounts map[string][]byte

func (f fakeAccounts) AccountData(_ context.Context, address string) ([]byte, error) {
	data, ok := f[address]
	if !ok {
		return nil, chain.ErrAccountNotFound
	}
	return data, nil
}

func TestFetchTokenMeta(t *testing.T) {
	mint := dextest.Key(3)
	mintData := make([]byte, 82)
	mintData[44] = 6

	accounts := fakeAccounts{mint.String(): mintData}
	meta, err := dex.FetchTokenMeta(context.Background(), accounts, mint.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Empty(t, meta.Symbol)

	_, err = dex.FetchTokenMeta(context.Background(), accounts, dextest.Key(4).String(), nil)
	require.ErrorIs(t, err, dex.ErrNotFound)

	_, err = dex.FetchAMMConfig(context.Background(), accounts, dextest.Key(5).String())
	require.ErrorIs(t, err, dex.ErrNotFound)
}

func TestDecodeMetadataNameSymbol(t *testing.T) {
	name := make([]byte, 32)
	copy(name, "USD Coin")
	symbol := make([]byte, 10)
	copy(symbol, "USDC")

	raw := []byte{4}
	raw = append(raw, dextest.Key(1).Bytes()...)
	raw = append(raw, dextest.Key(2).Bytes()...)
	raw = append(raw, 32, 0, 0, 0)
	raw = append(raw, name...)
	raw = append(raw, 10, 0, 0, 0)
	raw = append(raw, symbol...)

	gotName, gotSymbol, err := dex.DecodeMetadataNameSymbol(raw)
	require.NoError(t, err)
	assert.Equal(t, "USD Coin", gotName)
	assert.Equal(t, "USDC", gotSymbol)

	_, _, err = dex.DecodeMetadataNameSymbol(raw[:40])
	require.ErrorIs(t, err, dex.ErrMalformed)
}
