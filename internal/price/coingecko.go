package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supplyscope/internal/model"
)

// CoinGecko is the secondary provider: price plus market cap, 24h volume,
// and 24h change for a listed coin id.
type CoinGecko struct {
	BaseURL string
	CoinID  string
	HTTP    *http.Client
}

func NewCoinGecko(baseURL, coinID string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		BaseURL: strings.TrimRight(baseURL, "/"),
		CoinID:  coinID,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

// Fetch queries the coin market data endpoint. Absent numeric fields stay
// nil in the quote; zero is never fabricated.
func (c *CoinGecko) Fetch(ctx context.Context) (*model.PriceQuote, error) {
	u := c.BaseURL + "/api/v3/coins/" + url.PathEscape(c.CoinID) +
		"?localization=false&tickers=false&community_data=false&developer_data=false"

	var out struct {
		MarketData struct {
			CurrentPrice struct {
				USD *float64 `json:"usd"`
			} `json:"current_price"`
			MarketCap struct {
				USD *float64 `json:"usd"`
			} `json:"market_cap"`
			TotalVolume struct {
				USD *float64 `json:"usd"`
			} `json:"total_volume"`
			FullyDilutedValuation struct {
				USD *float64 `json:"usd"`
			} `json:"fully_diluted_valuation"`
			PriceChange24h *float64 `json:"price_change_percentage_24h"`
		} `json:"market_data"`
	}
	if err := getJSON(ctx, c.HTTP, u, &out); err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	md := out.MarketData
	if md.CurrentPrice.USD == nil && md.MarketCap.USD == nil {
		return nil, fmt.Errorf("coingecko: %w: empty market data", model.ErrSourceUnavailable)
	}

	return &model.PriceQuote{
		PriceUSD:  md.CurrentPrice.USD,
		MarketCap: md.MarketCap.USD,
		Volume24h: md.TotalVolume.USD,
		Change24h: md.PriceChange24h,
		FDV:       md.FullyDilutedValuation.USD,
		Source:    c.Name(),
	}, nil
}
