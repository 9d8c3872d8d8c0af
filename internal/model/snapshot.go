package model

import "time"

// BridgeStatus is the per-cycle parity verdict between the two ledgers.
type BridgeStatus string

const (
	BridgeSynced        BridgeStatus = "synced"
	BridgeDriftDetected BridgeStatus = "drift_detected"
)

// SupplySnapshot is the reconciled state for one poll cycle. It is immutable
// once constructed; a new cycle builds a new snapshot that replaces the
// previous one wholesale. All amounts are raw (smallest-denomination) units.
type SupplySnapshot struct {
	TotalSupply uint64 `json:"totalSupply"`

	L1Supply uint64 `json:"l1Supply"`
	L2Supply uint64 `json:"l2Supply"`
	// L1Inferred is set when L1Supply was derived as canonical minus L2
	// rather than measured directly from the mint.
	L1Inferred bool `json:"l1Inferred"`

	BridgeLocked      uint64 `json:"bridgeLocked"`
	FoundationReserve uint64 `json:"foundationReserve"`
	Burned            uint64 `json:"burned"`

	// Circulating is total minus foundation reserve, bridge-locked, and
	// burned. Emitted unclamped: a negative value signals inconsistent
	// inputs and is data to report, not to hide.
	Circulating int64 `json:"circulating"`

	BridgeStatus BridgeStatus `json:"bridgeStatus"`
	DriftAmount  uint64       `json:"driftAmount"`

	FeeConfig  *FeeConfig      `json:"feeConfig,omitempty"`
	Validators []ValidatorInfo `json:"validators,omitempty"`
	Price      *PriceQuote     `json:"price,omitempty"`

	Warnings  []string  `json:"warnings,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Age reports how long ago the snapshot was built.
func (s *SupplySnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.UpdatedAt)
}
