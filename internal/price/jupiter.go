package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"supplyscope/internal/model"
)

// Jupiter is the primary price provider. It reports a numeric USD price
// only; market structure fields come from the other providers.
type Jupiter struct {
	BaseURL string
	Mint    string
	HTTP    *http.Client
}

func NewJupiter(baseURL, mint string, timeout time.Duration) *Jupiter {
	return &Jupiter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Mint:    mint,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (j *Jupiter) Name() string { return "jupiter" }

// Fetch queries the price endpoint for the configured mint.
func (j *Jupiter) Fetch(ctx context.Context) (*model.PriceQuote, error) {
	u := j.BaseURL + "/price/v2?ids=" + url.QueryEscape(j.Mint)

	var out struct {
		Data map[string]struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := getJSON(ctx, j.HTTP, u, &out); err != nil {
		return nil, fmt.Errorf("jupiter: %w", err)
	}

	entry, ok := out.Data[j.Mint]
	if !ok || entry.Price == "" {
		return nil, fmt.Errorf("jupiter: %w: no price for mint", model.ErrSourceUnavailable)
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter: %w: parse price %q: %v", model.ErrSourceUnavailable, entry.Price, err)
	}

	return &model.PriceQuote{
		PriceUSD: model.Float(price),
		Source:   j.Name(),
	}, nil
}
