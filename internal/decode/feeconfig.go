// Package decode reconstructs typed records from the fixed-layout account
// blobs of the fee program. Offsets, widths, and field order are a contract
// with the on-chain program; there is no schema negotiation. Decoders are
// pure: identical bytes always yield an identical record or failure.
package decode

import (
	"fmt"

	"supplyscope/internal/model"
)

// FeeConfigSize is the exact serialized size of the fee config account.
const FeeConfigSize = 235

// DecodeFeeConfig decodes a fee config account blob.
//
// Buffers shorter than FeeConfigSize fail with model.ErrMalformedAccount.
// A buffer whose initialized flag is zero is a valid but not-yet-populated
// account and decodes to (nil, nil), distinct from the malformed case.
func DecodeFeeConfig(data []byte) (*model.FeeConfig, error) {
	if len(data) < FeeConfigSize {
		return nil, fmt.Errorf("%w: fee config needs %d bytes, got %d",
			model.ErrMalformedAccount, FeeConfigSize, len(data))
	}

	r := newReader(data)
	if !r.bool() {
		return nil, nil
	}

	var cfg model.FeeConfig
	cfg.Authority = r.pubkey()
	cfg.Foundation = r.pubkey()
	cfg.BurnAuthority = r.pubkey()
	cfg.Mint = r.pubkey()

	cfg.GasSplit = r.split()
	cfg.ComputeSplit = r.split()
	cfg.InferenceSplit = r.split()
	cfg.BridgeSplit = r.split()

	cfg.CurrentEpoch = r.u64()
	cfg.TotalBurned = r.u64()
	cfg.TotalDistributed = r.u64()
	cfg.TotalFoundationCollected = r.u64()

	cfg.IsPaused = r.bool()
	cfg.Bump = r.u8()

	cfg.GasBurned = r.u64()
	cfg.ComputeBurned = r.u64()
	cfg.InferenceBurned = r.u64()
	cfg.BridgeBurned = r.u64()
	cfg.SubnetBurned = r.u64()
	cfg.TotalFoundationBurned = r.u64()

	if r.err != nil {
		return nil, r.err
	}
	return &cfg, nil
}
