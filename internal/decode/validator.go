package decode

import (
	"fmt"

	"supplyscope/internal/model"
)

// ValidatorSize is the exact serialized size of a validator registry account.
const ValidatorSize = 69

// DecodeValidator decodes a validator registry account blob. Buffers shorter
// than ValidatorSize fail with model.ErrMalformedAccount.
func DecodeValidator(data []byte) (*model.ValidatorInfo, error) {
	if len(data) < ValidatorSize {
		return nil, fmt.Errorf("%w: validator record needs %d bytes, got %d",
			model.ErrMalformedAccount, ValidatorSize, len(data))
	}

	r := newReader(data)

	var v model.ValidatorInfo
	v.Address = r.pubkey()
	v.StakeAmount = r.u64()
	v.AICapable = r.bool()
	v.RewardMultiplier = r.u16()
	v.PendingRewards = r.u64()
	v.TotalClaimed = r.u64()
	v.RegisteredAt = r.i64()
	v.IsActive = r.bool()
	v.Bump = r.u8()

	if r.err != nil {
		return nil, r.err
	}
	return &v, nil
}
