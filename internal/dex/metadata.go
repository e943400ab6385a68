package dex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// MetadataProgramID is the Metaplex token metadata program.
var MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// Offset of the decimals byte in an SPL mint account (Token and Token-2022).
const mintDecimalsOffset = 44

// TokenMetaCache caches token metadata by mint address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[string]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[string]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(mint string) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[mint]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(mint string, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[mint] = meta
	c.mu.Unlock()
}

// MintMetadataResolver resolves mint decimals and Metaplex name/symbol over RPC.
type MintMetadataResolver struct {
	accounts AccountFetcher
	cache    *TokenMetaCache
	logger   *zap.Logger
}

func NewMintMetadataResolver(accounts AccountFetcher, logger *zap.Logger) *MintMetadataResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MintMetadataResolver{
		accounts: accounts,
		cache:    NewTokenMetaCache(),
		logger:   logger,
	}
}

// Resolve returns the metadata of mint, or ErrNotFound when the mint account does not exist.
func (r *MintMetadataResolver) Resolve(ctx context.Context, mint string) (model.TokenMeta, error) {
	if meta, ok := r.cache.Get(mint); ok {
		return meta, nil
	}
	meta, err := FetchTokenMeta(ctx, r.accounts, mint, r.logger)
	if err != nil {
		return model.TokenMeta{}, err
	}
	r.cache.Set(mint, meta)
	return meta, nil
}

// FetchTokenMeta loads decimals from the mint account and name/symbol from
// its Metaplex metadata account when one exists.
func FetchTokenMeta(ctx context.Context, accounts AccountFetcher, mint string, logger *zap.Logger) (model.TokenMeta, error) {
	if accounts == nil {
		return model.TokenMeta{}, fmt.Errorf("account fetcher is nil")
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("invalid mint %s: %w", mint, err)
	}

	data, err := accounts.AccountData(ctx, mint)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return model.TokenMeta{}, fmt.Errorf("mint %s: %w", mint, ErrNotFound)
		}
		return model.TokenMeta{}, fmt.Errorf("fetch mint %s: %w", mint, err)
	}
	decimals, err := DecodeMintDecimals(data)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("mint %s: %w", mint, err)
	}
	meta := model.TokenMeta{Address: mint, Decimals: decimals}

	metadataKey, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		MetadataProgramID[:],
		mintKey[:],
	}, MetadataProgramID)
	if err != nil {
		return meta, nil
	}

	data, err = accounts.AccountData(ctx, metadataKey.String())
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return meta, nil
		}
		return model.TokenMeta{}, fmt.Errorf("fetch metadata %s: %w", mint, err)
	}
	name, symbol, err := DecodeMetadataNameSymbol(data)
	if err != nil {
		if logger != nil {
			logger.Warn("decode token metadata", zap.String("mint", mint), zap.Error(err))
		}
		return meta, nil
	}
	meta.Name = name
	meta.Symbol = symbol
	return meta, nil
}

// DecodeMintDecimals returns the decimals of an SPL mint account.
func DecodeMintDecimals(data []byte) (uint8, error) {
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("%w: mint account too short (%d bytes)", ErrMalformed, len(data))
	}
	return data[mintDecimalsOffset], nil
}

// DecodeMetadataNameSymbol reads name and symbol from a Metaplex metadata account.
func DecodeMetadataNameSymbol(data []byte) (string, string, error) {
	r := newFieldReader(data)
	r.u8()                         // key
	r.skip(solana.PublicKeyLength) // update authority
	r.skip(solana.PublicKeyLength) // mint
	name := r.borshString()
	symbol := r.borshString()
	if r.err != nil {
		return "", "", fmt.Errorf("%w: metadata: %v", ErrMalformed, r.err)
	}
	return name, symbol, nil
}
