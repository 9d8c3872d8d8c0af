package model

// PriceQuote is one merged market quote. Every field may be absent; absence
// means "unknown", never zero, so all values are pointers.
type PriceQuote struct {
	PriceUSD  *float64 `json:"priceUsd,omitempty"`
	MarketCap *float64 `json:"marketCap,omitempty"`
	Volume24h *float64 `json:"volume24h,omitempty"`
	Change24h *float64 `json:"change24h,omitempty"`
	FDV       *float64 `json:"fdv,omitempty"`
	Liquidity *float64 `json:"liquidity,omitempty"`

	// Launch-platform extras, provided only by the launchpad provider.
	BondingProgress *float64 `json:"bondingProgress,omitempty"`
	ReplyCount      *int     `json:"replyCount,omitempty"`
	Website         *string  `json:"website,omitempty"`

	Source string `json:"source,omitempty"`
}

// Float returns a pointer to v, for building quotes with literal fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }
