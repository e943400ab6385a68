package reconcile

import (
	"context"
	"sort"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/fixedpoint"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/storage"
)

// priceOf returns the USD unit price of a token: 1 for stablecoins, else
// through the newest stable pair quoting it, else through one intermediate
// token that has a stable pair. Unknown prices are 0.
func (e *epoch) priceOf(ctx context.Context, tokenID string) (float64, error) {
	if e.isStable(tokenID) {
		return 1, nil
	}

	price, err := e.directStablePrice(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	if price == 0 {
		price, err = e.twoHopPrice(ctx, tokenID)
		if err != nil {
			return 0, err
		}
	}
	if price > 0 {
		if err := e.writeBackPrice(ctx, tokenID, price); err != nil {
			return 0, err
		}
	}
	return price, nil
}

func (e *epoch) directStablePrice(ctx context.Context, tokenID string) (float64, error) {
	pair, err := e.latestStablePair(ctx, tokenID)
	if err != nil || pair == nil {
		return 0, err
	}
	return pairQuotePrice(pair, 1), nil
}

func (e *epoch) twoHopPrice(ctx context.Context, tokenID string) (float64, error) {
	pairs, err := e.latestPairsByQuote(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	visited := map[string]struct{}{tokenID: {}}
	for _, pair := range pairs {
		counter := pair.Token0
		if _, seen := visited[counter]; seen {
			continue
		}
		visited[counter] = struct{}{}

		counterPrice := 0.0
		if e.isStable(counter) {
			counterPrice = 1
		} else {
			counterPrice, err = e.directStablePrice(ctx, counter)
			if err != nil {
				return 0, err
			}
		}
		if counterPrice == 0 {
			continue
		}
		if price := pairQuotePrice(pair, counterPrice); price > 0 {
			return price, nil
		}
	}
	return 0, nil
}

// pairQuotePrice prices the quote leg of a pair given the base leg's price.
func pairQuotePrice(pair *model.PairRecord, basePrice float64) float64 {
	ratio := fixedpoint.RatioFromSqrtPriceX64(pair.SqrtPriceX64, pair.Token0Decimals, pair.Token1Decimals)
	return fixedpoint.PriceFromRatio(ratio) * basePrice
}

func (e *epoch) writeBackPrice(ctx context.Context, tokenID string, price float64) error {
	token, err := e.tokens.Get(ctx, tokenID)
	if err != nil || token == nil {
		return err
	}
	if token.Price != price {
		token.Price = price
		e.tokens.Save(token)
	}
	return nil
}

// latestStablePair prefers this epoch's unflushed records over the store.
func (e *epoch) latestStablePair(ctx context.Context, token1 string) (*model.PairRecord, error) {
	var best *model.PairRecord
	for _, r := range e.pairs.Records() {
		if r.Token1 == token1 && r.BaseStable && (best == nil || storage.NewerPair(r, best)) {
			best = r
		}
	}
	if best != nil {
		return best, nil
	}
	return e.r.store.PairRecords().LatestStablePair(ctx, token1)
}

// latestPairsByQuote merges unflushed and stored records quoting token1 and
// keeps the newest one per counter token, newest first.
func (e *epoch) latestPairsByQuote(ctx context.Context, token1 string) ([]*model.PairRecord, error) {
	stored, err := e.r.store.PairRecords().LatestPairsByQuote(ctx, token1)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(stored))
	var out []*model.PairRecord
	for _, r := range e.pairs.Records() {
		if r.Token1 == token1 {
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	for _, r := range stored {
		if _, ok := seen[r.ID]; !ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return storage.NewerPair(out[i], out[j]) })
	return storage.LatestPerCounter(out), nil
}
