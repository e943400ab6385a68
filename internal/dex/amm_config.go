package dex

import (
	"context"
	"errors"
	"fmt"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/chain"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

// AccountFetcher reads raw account data.
type AccountFetcher interface {
	AccountData(ctx context.Context, address string) ([]byte, error)
}

// AccountDiscriminator returns sha256("account:<Name>")[:8].
func AccountDiscriminator(name string) Discriminator {
	return hashDiscriminator("account:" + name)
}

var ammConfigDiscriminator = AccountDiscriminator("AmmConfig")

// DecodeAMMConfig decodes an AmmConfig account.
func DecodeAMMConfig(address string, data []byte) (*model.AMMConfig, error) {
	disc, ok := discriminatorOf(data)
	if !ok || disc != ammConfigDiscriminator {
		return nil, fmt.Errorf("%w: %s is not an amm config account", ErrMalformed, address)
	}

	r := newFieldReader(data[DiscriminatorSize:])
	r.u8() // bump
	cfg := &model.AMMConfig{
		ID:              address,
		Index:           r.u16(),
		Owner:           r.pubkey(),
		ProtocolFeeRate: r.u32(),
		TradeFeeRate:    r.u32(),
		TickSpacing:     r.u16(),
		FundFeeRate:     r.u32(),
	}
	r.u32() // padding
	cfg.FundOwner = r.pubkey()
	if r.err != nil {
		return nil, fmt.Errorf("%w: amm config %s: %v", ErrMalformed, address, r.err)
	}
	return cfg, nil
}

// FetchAMMConfig loads and decodes an AmmConfig account.
func FetchAMMConfig(ctx context.Context, accounts AccountFetcher, address string) (*model.AMMConfig, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account fetcher is nil")
	}
	data, err := accounts.AccountData(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return nil, fmt.Errorf("amm config %s: %w", address, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch amm config %s: %w", address, err)
	}
	return DecodeAMMConfig(address, data)
}

// AMMConfigFetcher adapts an AccountFetcher to the reconciler's config lookup.
type AMMConfigFetcher struct {
	Accounts AccountFetcher
}

func (f AMMConfigFetcher) FetchAMMConfig(ctx context.Context, address string) (*model.AMMConfig, error) {
	return FetchAMMConfig(ctx, f.Accounts, address)
}
