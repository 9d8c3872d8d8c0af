package model

import "github.com/gagliardetto/solana-go"

// ValidatorInfo is one decoded validator registry account. The registry is
// refreshed wholesale each cycle, never patched entry by entry.
type ValidatorInfo struct {
	Address          solana.PublicKey `json:"address"`
	StakeAmount      uint64           `json:"stakeAmount"`
	AICapable        bool             `json:"aiCapable"`
	RewardMultiplier uint16           `json:"rewardMultiplier"`
	PendingRewards   uint64           `json:"pendingRewards"`
	TotalClaimed     uint64           `json:"totalClaimed"`
	RegisteredAt     int64            `json:"registeredAt"`
	IsActive         bool             `json:"isActive"`
	Bump             uint8            `json:"bump"`
}
