package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"supplyscope/internal/model"
)

// reader walks a fixed-layout account buffer with an explicit cursor. Every
// read is bounds-checked; the first failure sticks and all later reads
// return zero values, so decoders check err once after the last field.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("%w: read %d bytes at offset %d, buffer is %d",
			model.ErrMalformedAccount, n, r.pos, len(r.buf))
		return nil
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) bool() bool {
	return r.u8() != 0
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) pubkey() solana.PublicKey {
	b := r.take(32)
	if b == nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

func (r *reader) split() model.FeeSplit {
	return model.FeeSplit{
		ValidatorBps:  r.u16(),
		FoundationBps: r.u16(),
		BurnBps:       r.u16(),
	}
}
