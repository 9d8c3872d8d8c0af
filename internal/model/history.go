package model

// BurnHistoryEntry is one observation of the cumulative burn counters, in
// raw token units. Entries are append-only and never mutated after insertion.
// The JSON field names are the persisted on-disk format.
type BurnHistoryEntry struct {
	TimestampMs     int64  `json:"timestamp"`
	TotalBurned     uint64 `json:"totalBurned"`
	GasBurned       uint64 `json:"gasBurned"`
	ComputeBurned   uint64 `json:"computeBurned"`
	InferenceBurned uint64 `json:"inferenceBurned"`
	BridgeBurned    uint64 `json:"bridgeBurned"`
	SubnetBurned    uint64 `json:"subnetBurned"`
}

// BurnEntryFromFeeConfig captures the burn counters of a fee config record
// at the given timestamp.
func BurnEntryFromFeeConfig(cfg *FeeConfig, tsMs int64) BurnHistoryEntry {
	return BurnHistoryEntry{
		TimestampMs:     tsMs,
		TotalBurned:     cfg.TotalBurned,
		GasBurned:       cfg.GasBurned,
		ComputeBurned:   cfg.ComputeBurned,
		InferenceBurned: cfg.InferenceBurned,
		BridgeBurned:    cfg.BridgeBurned,
		SubnetBurned:    cfg.SubnetBurned,
	}
}
