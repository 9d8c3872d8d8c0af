package decode

import (
	"encoding/binary"
	"errors"
	"testing"

	"supplyscope/internal/model"
)

func TestDecodeValidatorShortBuffers(t *testing.T) {
	for n := 0; n < ValidatorSize; n++ {
		_, err := DecodeValidator(make([]byte, n))
		if !errors.Is(err, model.ErrMalformedAccount) {
			t.Fatalf("length %d: want ErrMalformedAccount, got %v", n, err)
		}
	}
}

func TestDecodeValidator(t *testing.T) {
	buf := make([]byte, ValidatorSize)
	for i := 0; i < 32; i++ {
		buf[i] = 0x22
	}
	binary.LittleEndian.PutUint64(buf[32:40], 1_500_000_000) // stake
	buf[40] = 1                                              // aiCapable
	binary.LittleEndian.PutUint16(buf[41:43], 150)           // multiplier
	binary.LittleEndian.PutUint64(buf[43:51], 12_345)        // pending
	binary.LittleEndian.PutUint64(buf[51:59], 67_890)        // claimed
	binary.LittleEndian.PutUint64(buf[59:67], 1_700_000_000) // registeredAt
	buf[67] = 1                                              // active
	buf[68] = 253                                            // bump

	v, err := DecodeValidator(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if v.Address.IsZero() {
		t.Fatalf("address must not be zero")
	}
	if v.StakeAmount != 1_500_000_000 {
		t.Fatalf("stake = %d", v.StakeAmount)
	}
	if !v.AICapable {
		t.Fatalf("aiCapable must be true")
	}
	if v.RewardMultiplier != 150 {
		t.Fatalf("multiplier = %d", v.RewardMultiplier)
	}
	if v.PendingRewards != 12_345 || v.TotalClaimed != 67_890 {
		t.Fatalf("rewards mismatch: %+v", v)
	}
	if v.RegisteredAt != 1_700_000_000 {
		t.Fatalf("registeredAt = %d", v.RegisteredAt)
	}
	if !v.IsActive || v.Bump != 253 {
		t.Fatalf("flags mismatch: active=%v bump=%d", v.IsActive, v.Bump)
	}
}

func TestDecodeValidatorNegativeTimestamp(t *testing.T) {
	buf := make([]byte, ValidatorSize)
	binary.LittleEndian.PutUint64(buf[59:67], uint64(1<<64-5)) // -5 as i64

	v, err := DecodeValidator(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.RegisteredAt != -5 {
		t.Fatalf("registeredAt = %d, want -5", v.RegisteredAt)
	}
}
