// Package price queries independent market-data providers and merges their
// partial quotes behind a fixed priority cascade.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"supplyscope/internal/model"
)

// Provider is one stateless market-data source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (*model.PriceQuote, error)
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", model.ErrSourceUnavailable, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %v", model.ErrSourceUnavailable, err)
	}
	return nil
}
