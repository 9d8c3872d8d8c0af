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

// Launchpad is the tertiary provider: the token page API of the launch
// platform the token originated on. It is the only source of the
// bonding-curve and community fields, and a market-cap fallback.
type Launchpad struct {
	BaseURL string
	Mint    string
	HTTP    *http.Client
}

func NewLaunchpad(baseURL, mint string, timeout time.Duration) *Launchpad {
	return &Launchpad{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Mint:    mint,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (l *Launchpad) Name() string { return "launchpad" }

// Fetch queries the token page endpoint.
func (l *Launchpad) Fetch(ctx context.Context) (*model.PriceQuote, error) {
	u := l.BaseURL + "/coins/" + url.PathEscape(l.Mint)

	var out struct {
		USDMarketCap    *float64 `json:"usd_market_cap"`
		Liquidity       *float64 `json:"liquidity"`
		BondingProgress *float64 `json:"bonding_curve_progress"`
		ReplyCount      *int     `json:"reply_count"`
		Website         *string  `json:"website"`
	}
	if err := getJSON(ctx, l.HTTP, u, &out); err != nil {
		return nil, fmt.Errorf("launchpad: %w", err)
	}

	return &model.PriceQuote{
		MarketCap:       out.USDMarketCap,
		Liquidity:       out.Liquidity,
		BondingProgress: out.BondingProgress,
		ReplyCount:      out.ReplyCount,
		Website:         out.Website,
		Source:          l.Name(),
	}, nil
}
