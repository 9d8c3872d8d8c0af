package model

import "github.com/gagliardetto/solana-go"

// FeeSplit is the routing of one fee category in basis points. The three
// shares are expected to sum to at most 10,000 bps; the decoder does not
// enforce this, it is an on-chain validity assumption.
type FeeSplit struct {
	ValidatorBps  uint16 `json:"validatorBps"`
	FoundationBps uint16 `json:"foundationBps"`
	BurnBps       uint16 `json:"burnBps"`
}

// FeeConfig is the on-chain fee accounting record. All cumulative counters
// are raw token units and monotonically non-decreasing over the token's
// lifetime; a decrease between observations signals re-initialization or
// corruption, not normal operation.
type FeeConfig struct {
	Authority     solana.PublicKey `json:"authority"`
	Foundation    solana.PublicKey `json:"foundation"`
	BurnAuthority solana.PublicKey `json:"burnAuthority"`
	Mint          solana.PublicKey `json:"mint"`

	GasSplit       FeeSplit `json:"gasSplit"`
	ComputeSplit   FeeSplit `json:"computeSplit"`
	InferenceSplit FeeSplit `json:"inferenceSplit"`
	BridgeSplit    FeeSplit `json:"bridgeSplit"`

	CurrentEpoch             uint64 `json:"currentEpoch"`
	TotalBurned              uint64 `json:"totalBurned"`
	TotalDistributed         uint64 `json:"totalDistributed"`
	TotalFoundationCollected uint64 `json:"totalFoundationCollected"`

	IsPaused bool  `json:"isPaused"`
	Bump     uint8 `json:"bump"`

	GasBurned             uint64 `json:"gasBurned"`
	ComputeBurned         uint64 `json:"computeBurned"`
	InferenceBurned       uint64 `json:"inferenceBurned"`
	BridgeBurned          uint64 `json:"bridgeBurned"`
	SubnetBurned          uint64 `json:"subnetBurned"`
	TotalFoundationBurned uint64 `json:"totalFoundationBurned"`
}
