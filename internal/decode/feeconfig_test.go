package decode

import (
	"encoding/binary"
	"errors"
	"testing"

	"supplyscope/internal/model"
)

const (
	offCurrentEpoch = 153
	offTotalBurned  = 161
	offIsPaused     = 185
	offGasBurned    = 187
)

func feeConfigBuffer() []byte {
	buf := make([]byte, FeeConfigSize)
	buf[0] = 1
	return buf
}

func putU64(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], v)
}

func TestDecodeFeeConfigShortBuffers(t *testing.T) {
	for n := 0; n < FeeConfigSize; n++ {
		_, err := DecodeFeeConfig(make([]byte, n))
		if !errors.Is(err, model.ErrMalformedAccount) {
			t.Fatalf("length %d: want ErrMalformedAccount, got %v", n, err)
		}
	}
}

func TestDecodeFeeConfigUninitialized(t *testing.T) {
	buf := make([]byte, FeeConfigSize)

	cfg, err := DecodeFeeConfig(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatalf("uninitialized account must yield no record, got %+v", cfg)
	}
}

func TestDecodeFeeConfigTotalBurned(t *testing.T) {
	buf := feeConfigBuffer()
	putU64(buf, offTotalBurned, 5_000_000_000)

	cfg, err := DecodeFeeConfig(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected a record")
	}
	if cfg.TotalBurned != 5_000_000_000 {
		t.Fatalf("totalBurned = %d, want 5000000000", cfg.TotalBurned)
	}

	others := []uint64{
		cfg.CurrentEpoch, cfg.TotalDistributed, cfg.TotalFoundationCollected,
		cfg.GasBurned, cfg.ComputeBurned, cfg.InferenceBurned,
		cfg.BridgeBurned, cfg.SubnetBurned, cfg.TotalFoundationBurned,
	}
	for i, v := range others {
		if v != 0 {
			t.Fatalf("counter %d = %d, want 0", i, v)
		}
	}
	if !cfg.Authority.IsZero() || !cfg.Mint.IsZero() {
		t.Fatalf("expected all-zero addresses")
	}
}

func TestDecodeFeeConfigFull(t *testing.T) {
	buf := feeConfigBuffer()
	for i := 1; i <= 32; i++ {
		buf[i] = 0x11 // authority
	}
	// gas split: 4000/3000/3000 bps
	binary.LittleEndian.PutUint16(buf[129:131], 4000)
	binary.LittleEndian.PutUint16(buf[131:133], 3000)
	binary.LittleEndian.PutUint16(buf[133:135], 3000)

	putU64(buf, offCurrentEpoch, 42)
	putU64(buf, offTotalBurned, 123_456)
	putU64(buf, 169, 77)  // totalDistributed
	putU64(buf, 177, 88)  // totalFoundationCollected
	buf[offIsPaused] = 1
	buf[186] = 254 // bump
	putU64(buf, offGasBurned, 10)
	putU64(buf, 195, 20) // computeBurned
	putU64(buf, 203, 30) // inferenceBurned
	putU64(buf, 211, 40) // bridgeBurned
	putU64(buf, 219, 50) // subnetBurned
	putU64(buf, 227, 60) // totalFoundationBurned

	cfg, err := DecodeFeeConfig(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected a record")
	}

	if cfg.Authority.IsZero() {
		t.Fatalf("authority must not be zero")
	}
	if cfg.GasSplit != (model.FeeSplit{ValidatorBps: 4000, FoundationBps: 3000, BurnBps: 3000}) {
		t.Fatalf("gas split mismatch: %+v", cfg.GasSplit)
	}
	if cfg.ComputeSplit != (model.FeeSplit{}) {
		t.Fatalf("compute split should be zero: %+v", cfg.ComputeSplit)
	}
	if cfg.CurrentEpoch != 42 {
		t.Fatalf("currentEpoch = %d", cfg.CurrentEpoch)
	}
	if cfg.TotalBurned != 123_456 || cfg.TotalDistributed != 77 || cfg.TotalFoundationCollected != 88 {
		t.Fatalf("cumulative counters mismatch: %+v", cfg)
	}
	if !cfg.IsPaused || cfg.Bump != 254 {
		t.Fatalf("flags mismatch: paused=%v bump=%d", cfg.IsPaused, cfg.Bump)
	}
	if cfg.GasBurned != 10 || cfg.ComputeBurned != 20 || cfg.InferenceBurned != 30 ||
		cfg.BridgeBurned != 40 || cfg.SubnetBurned != 50 || cfg.TotalFoundationBurned != 60 {
		t.Fatalf("category counters mismatch: %+v", cfg)
	}
}

func TestDecodeFeeConfigDeterministic(t *testing.T) {
	buf := feeConfigBuffer()
	putU64(buf, offTotalBurned, 999)

	first, err := DecodeFeeConfig(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := DecodeFeeConfig(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *first != *second {
		t.Fatalf("identical input produced differing records")
	}
}
