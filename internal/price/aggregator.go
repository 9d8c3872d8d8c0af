package price

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"supplyscope/internal/model"
)

// Aggregator fans out to the three providers concurrently and merges their
// quotes behind a fixed priority cascade. One provider's failure or
// slowness never delays or invalidates the others.
type Aggregator struct {
	primary   Provider // price authority
	secondary Provider // price fallback, market structure
	launchpad Provider // bonding-curve extras, market-cap fallback
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAggregator(primary, secondary, launchpad Provider, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Aggregator{
		primary:   primary,
		secondary: secondary,
		launchpad: launchpad,
		timeout:   timeout,
		logger:    logger,
	}
}

// Fetch produces at most one merged quote. canonicalTotal is the fixed
// total supply in whole tokens, used to compute FDV when no provider
// reports one. A nil result means no provider yielded a usable price; the
// caller keeps its previous quote unchanged.
func (a *Aggregator) Fetch(ctx context.Context, canonicalTotal float64) (*model.PriceQuote, []string) {
	quotes := make([]*model.PriceQuote, 3)
	var warnings []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, p := range []Provider{a.primary, a.secondary, a.launchpad} {
		if p == nil {
			continue
		}
		wg.Add(1)
		go func(slot int, p Provider) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			quote, err := p.Fetch(callCtx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("price provider %s: %v", p.Name(), err))
				a.logger.Warn("price provider failed", zap.String("provider", p.Name()), zap.Error(err))
				return
			}
			quotes[slot] = quote
		}(i, p)
	}
	wg.Wait()

	merged := merge(quotes[0], quotes[1], quotes[2], canonicalTotal)
	if merged == nil {
		return nil, warnings
	}
	return merged, warnings
}

// merge applies the cascade: price from primary else secondary; market cap
// primary, secondary, then launchpad; volume and change from the market
// providers; launch-platform fields exclusively from the launchpad. FDV is
// computed as price times canonical total when not directly reported.
func merge(primary, secondary, launchpad *model.PriceQuote, canonicalTotal float64) *model.PriceQuote {
	priceUSD := firstFloat(quoteField(primary, price), quoteField(secondary, price))
	if priceUSD == nil {
		return nil
	}

	out := &model.PriceQuote{
		PriceUSD:  priceUSD,
		MarketCap: firstFloat(quoteField(primary, marketCap), quoteField(secondary, marketCap), quoteField(launchpad, marketCap)),
		Volume24h: firstFloat(quoteField(primary, volume), quoteField(secondary, volume)),
		Change24h: firstFloat(quoteField(primary, change), quoteField(secondary, change)),
		Liquidity: firstFloat(quoteField(launchpad, liquidity), quoteField(primary, liquidity), quoteField(secondary, liquidity)),
		FDV:       firstFloat(quoteField(primary, fdv), quoteField(secondary, fdv)),
		Source:    sources(primary, secondary, launchpad),
	}

	if out.FDV == nil && canonicalTotal > 0 {
		out.FDV = model.Float(*priceUSD * canonicalTotal)
	}

	if launchpad != nil {
		out.BondingProgress = launchpad.BondingProgress
		out.ReplyCount = launchpad.ReplyCount
		out.Website = launchpad.Website
	}

	return out
}

type floatField int

const (
	price floatField = iota
	marketCap
	volume
	change
	fdv
	liquidity
)

func quoteField(q *model.PriceQuote, f floatField) *float64 {
	if q == nil {
		return nil
	}
	switch f {
	case price:
		return q.PriceUSD
	case marketCap:
		return q.MarketCap
	case volume:
		return q.Volume24h
	case change:
		return q.Change24h
	case fdv:
		return q.FDV
	case liquidity:
		return q.Liquidity
	default:
		return nil
	}
}

// firstFloat returns the first non-nil value, the merge primitive for
// optional fields.
func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func sources(quotes ...*model.PriceQuote) string {
	var tags []string
	for _, q := range quotes {
		if q != nil && q.Source != "" {
			tags = append(tags, q.Source)
		}
	}
	if len(tags) == 0 {
		return ""
	}
	out := tags[0]
	for _, tag := range tags[1:] {
		out += "+" + tag
	}
	return out
}
