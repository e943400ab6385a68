package reconcile

import (
	"context"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/dex/dextest"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage/memory"
)

const (
	testProgram   = dex.DefaultProgramID
	testTimestamp = int64(1_700_000_000)
)

var (
	usdc        = dex.MintUSDC
	tokenX      = dextest.Key(0x11).String()
	tokenY      = dextest.Key(0x12).String()
	poolKey     = dextest.Key(0x21)
	poolID      = poolKey.String()
	configID    = dextest.Key(0x31).String()
	creator     = dextest.Key(0x41).String()
	senderKey   = dextest.Key(0x51)
	ownerID     = dextest.Key(0x61).String()
	nftMintKey  = dextest.Key(0x62)
	positionID  = dextest.Key(0x63).String()
)

type fakeMetadata map[string]model.TokenMeta

func (f fakeMetadata) Resolve(_ context.Context, mint string) (model.TokenMeta, error) {
	meta, ok := f[mint]
	if !ok {
		return model.TokenMeta{}, dex.ErrNotFound
	}
	return meta, nil
}

type fakeConfigs map[string]*model.AMMConfig

func (f fakeConfigs) FetchAMMConfig(_ context.Context, address string) (*model.AMMConfig, error) {
	cfg, ok := f[address]
	if !ok {
		return nil, dex.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func newTestReconciler(t *testing.T) (*Reconciler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	metadata := fakeMetadata{
		usdc:   {Address: usdc, Decimals: 6, Symbol: "USDC", Name: "USD Coin"},
		tokenX: {Address: tokenX, Decimals: 9, Symbol: "X", Name: "Token X"},
		tokenY: {Address: tokenY, Decimals: 9, Symbol: "Y", Name: "Token Y"},
	}
	configs := fakeConfigs{
		configID: {ID: configID, TradeFeeRate: 2500, TickSpacing: 10},
	}
	r := New(Config{ProgramID: testProgram, Stablecoins: dex.DefaultStablecoins()},
		store, metadata, configs, NewMetrics(prometheus.NewRegistry()), nil)
	return r, store
}

// sqrtPriceX64 returns sqrt(square) in Q64.64.
func sqrtPriceX64(square float64) *big.Int {
	f := new(big.Float).SetPrec(256).SetFloat64(square)
	f.Sqrt(f)
	f.Mul(f, new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64)))
	out, _ := f.Int(nil)
	return out
}

// priceTwoSqrt prices tokenX at 2 USDC when USDC (6 decimals) is token0.
func priceTwoSqrt() *big.Int {
	return sqrtPriceX64(500)
}

func testBlock(height uint64, ts int64) model.Block {
	return model.Block{Height: height, Slot: height, Timestamp: ts}
}

func programIx(sig string, accounts []string, data string) model.Instruction {
	return model.Instruction{
		ProgramID:   testProgram,
		TxSignature: sig,
		Accounts:    accounts,
		Data:        data,
		Committed:   true,
	}
}

func createPoolIx(sig string, sqrt *big.Int) model.Instruction {
	accounts := []string{creator, configID, poolID, usdc, tokenX, dextest.Key(0x71).String(), dextest.Key(0x72).String()}
	return programIx(sig, accounts, dextest.CreatePool(sqrt, 0).Base58())
}

func openPositionIx(sig string, liquidity int64) model.Instruction {
	accounts := []string{
		ownerID, ownerID, nftMintKey.String(), dextest.Key(0x65).String(), dextest.Key(0x66).String(),
		poolID, dextest.Key(0x67).String(), dextest.Key(0x68).String(), dextest.Key(0x69).String(), positionID,
	}
	data := dextest.Instruction(dex.VariantOpenPositionV2).
		I32(-100).I32(100).I32(-600).I32(0).
		U128(big.NewInt(liquidity)).U64(1 << 40).U64(1 << 40).
		Bool(true).U8(0).Base58()
	return programIx(sig, accounts, data)
}

func decreaseLiquidityIx(sig string, liquidity int64) model.Instruction {
	accounts := []string{ownerID, dextest.Key(0x65).String(), positionID, poolID, dextest.Key(0x67).String()}
	data := dextest.Instruction(dex.VariantDecreaseLiquidity).U128(big.NewInt(liquidity)).U64(0).U64(0).Base58()
	return programIx(sig, accounts, data)
}

func closePositionIx(sig string) model.Instruction {
	accounts := []string{ownerID, nftMintKey.String(), dextest.Key(0x65).String(), positionID}
	return programIx(sig, accounts, dextest.Instruction("close_position").Base58())
}

func programLog(height uint64, sig string, txIndex, logIndex int, payload *dextest.Payload) model.LogMessage {
	return model.LogMessage{
		ID:          model.LogID(height, txIndex),
		ProgramID:   testProgram,
		TxSignature: sig,
		TxIndex:     txIndex,
		LogIndex:    logIndex,
		Message:     payload.Base64(),
	}
}

func swapPayload(zeroForOne bool, amount0, amount1 uint64, sqrt *big.Int, tick int32) *dextest.Payload {
	return dextest.SwapEvent(poolKey, senderKey, amount0, amount1, zeroForOne, sqrt, big.NewInt(1_000_000), tick)
}

func positionCreatedPayload(liquidity int64, amount0, amount1 uint64) *dextest.Payload {
	return dextest.Event("CreatePersonalPositionEvent").
		Key(poolKey).Key(dextest.Key(0x61)).Key(dextest.Key(0x61)).
		I32(-100).I32(100).U128(big.NewInt(liquidity)).
		U64(amount0).U64(amount1).U64(0).U64(0)
}

func liquidityChangePayload(before, after int64) *dextest.Payload {
	return dextest.Event("LiquidityChangeEvent").
		Key(poolKey).I32(7).I32(-100).I32(100).
		U128(big.NewInt(before)).U128(big.NewInt(after))
}

func liquidityDecreasedPayload(liquidity int64, amount0, amount1 uint64) *dextest.Payload {
	return dextest.Event("DecreaseLiquidityEvent").
		Key(nftMintKey).U128(big.NewInt(liquidity)).
		U64(amount0).U64(amount1).U64(0).U64(0).
		U64(0).U64(0).U64(0).U64(0).U64(0)
}

func findOne[T any](t *testing.T, table *memory.Table[T], id string) *T {
	t.Helper()
	row, err := table.FindOne(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, row, "row %s", id)
	return row
}
