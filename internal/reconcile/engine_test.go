package reconcile

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"supplyscope/internal/chain"
	"supplyscope/internal/decode"
	"supplyscope/internal/history"
	"supplyscope/internal/model"
)

// fakeLedger answers each query kind from fixed values or errors.
type fakeLedger struct {
	name  string
	delay time.Duration

	nativeSupply uint64
	nativeErr    error
	mintSupply   uint64
	mintErr      error
	balance      uint64
	balanceErr   error
	tokenBalance uint64
	tokenErr     error
	account      []byte
	accountErr   error
	scan         []chain.KeyedAccount
	scanErr      error
}

func (f *fakeLedger) Name() string { return f.name }

func (f *fakeLedger) NativeSupply(ctx context.Context) (uint64, error) {
	return f.nativeSupply, f.nativeErr
}

func (f *fakeLedger) MintSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.mintSupply, f.mintErr
}

func (f *fakeLedger) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return f.tokenBalance, f.tokenErr
}

func (f *fakeLedger) Account(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	return f.account, f.accountErr
}

func (f *fakeLedger) ScanProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64) ([]chain.KeyedAccount, error) {
	return f.scan, f.scanErr
}

type fakeQuotes struct {
	quote    *model.PriceQuote
	warnings []string
}

func (f *fakeQuotes) Fetch(ctx context.Context, canonicalTotal float64) (*model.PriceQuote, []string) {
	return f.quote, f.warnings
}

func feeConfigAccount(totalBurned uint64) []byte {
	buf := make([]byte, decode.FeeConfigSize)
	buf[0] = 1
	binary.LittleEndian.PutUint64(buf[161:169], totalBurned)
	return buf
}

func validatorAccount(stake uint64) []byte {
	buf := make([]byte, decode.ValidatorSize)
	binary.LittleEndian.PutUint64(buf[32:40], stake)
	buf[67] = 1
	return buf
}

// testEngine builds an engine with decimals 0 so whole-token arithmetic in
// the assertions stays literal.
func testEngine(l1, l2 *fakeLedger, quotes QuoteSource, canonical uint64) *Engine {
	return NewEngine(Config{
		CanonicalTotal: canonical,
		Decimals:       0,
	}, l1, l2, quotes, history.NewStore(100, nil, 0, nil), nil)
}

func TestCycleSynced(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 497_000_000, tokenBalance: 50_000_000}
	l2 := &fakeLedger{name: "l2", nativeSupply: 503_000_000, balance: 10_000_000, account: feeConfigAccount(5_000_000)}

	engine := testEngine(l1, l2, nil, 1_000_000_000)
	snap := engine.RunCycle(context.Background())

	if snap.BridgeStatus != model.BridgeSynced {
		t.Fatalf("status = %s, want synced", snap.BridgeStatus)
	}
	if snap.DriftAmount != 0 {
		t.Fatalf("drift = %d, want 0", snap.DriftAmount)
	}
	if snap.L1Inferred {
		t.Fatalf("l1 supply was measured, must not be flagged inferred")
	}
	if snap.Burned != 5_000_000 {
		t.Fatalf("burned = %d", snap.Burned)
	}
}

func TestCycleDriftDetected(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 497_000_000}
	l2 := &fakeLedger{name: "l2", nativeSupply: 503_000_005, account: feeConfigAccount(0)}

	engine := testEngine(l1, l2, nil, 1_000_000_000)
	snap := engine.RunCycle(context.Background())

	if snap.BridgeStatus != model.BridgeDriftDetected {
		t.Fatalf("status = %s, want drift_detected", snap.BridgeStatus)
	}
	if snap.DriftAmount != 5 {
		t.Fatalf("drift = %d, want 5", snap.DriftAmount)
	}
}

func TestCirculatingIdentity(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 400_000_000, tokenBalance: 120_000_000}
	l2 := &fakeLedger{name: "l2", nativeSupply: 600_000_000, balance: 30_000_000, account: feeConfigAccount(7_500_000)}

	engine := testEngine(l1, l2, nil, 1_000_000_000)
	snap := engine.RunCycle(context.Background())

	want := int64(snap.TotalSupply) - int64(snap.FoundationReserve) - int64(snap.BridgeLocked) - int64(snap.Burned)
	if snap.Circulating != want {
		t.Fatalf("circulating = %d, identity gives %d", snap.Circulating, want)
	}
	if snap.Circulating != 1_000_000_000-30_000_000-120_000_000-7_500_000 {
		t.Fatalf("circulating = %d", snap.Circulating)
	}
}

func TestNegativeCirculatingEmittedUnclamped(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 100, tokenBalance: 90}
	l2 := &fakeLedger{name: "l2", nativeSupply: 0, balance: 40, account: feeConfigAccount(0)}

	engine := testEngine(l1, l2, nil, 100)
	snap := engine.RunCycle(context.Background())

	if snap.Circulating != -30 {
		t.Fatalf("circulating = %d, want -30 unclamped", snap.Circulating)
	}
	if !hasWarning(snap, "negative circulating") {
		t.Fatalf("expected a negative-circulating warning, got %v", snap.Warnings)
	}
}

func TestL1SupplyInferredOnFailure(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintErr: fmt.Errorf("%w: timeout", model.ErrSourceUnavailable)}
	l2 := &fakeLedger{name: "l2", nativeSupply: 503_000_000, account: feeConfigAccount(0)}

	engine := testEngine(l1, l2, nil, 1_000_000_000)
	snap := engine.RunCycle(context.Background())

	if !snap.L1Inferred {
		t.Fatalf("fallback supply must be flagged inferred")
	}
	if snap.L1Supply != 497_000_000 {
		t.Fatalf("inferred l1 = %d, want canonical minus l2", snap.L1Supply)
	}
	if !hasWarning(snap, "l1 supply unavailable") {
		t.Fatalf("expected a warning, got %v", snap.Warnings)
	}
}

func TestL1SupplyInsaneValueInferred(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 5_000_000_000} // 5x canonical
	l2 := &fakeLedger{name: "l2", nativeSupply: 400, account: feeConfigAccount(0)}

	engine := testEngine(l1, l2, nil, 1_000)
	snap := engine.RunCycle(context.Background())

	if !snap.L1Inferred {
		t.Fatalf("insane measurement must fall back to inference")
	}
	if snap.L1Supply != 600 {
		t.Fatalf("inferred l1 = %d, want 600", snap.L1Supply)
	}
}

func TestFailedSourcesFallBackToPrevious(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 500, tokenBalance: 100}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, balance: 50, account: feeConfigAccount(25)}

	engine := testEngine(l1, l2, nil, 1_000)
	first := engine.RunCycle(context.Background())
	if len(first.Warnings) != 0 {
		t.Fatalf("clean cycle produced warnings: %v", first.Warnings)
	}

	unavailable := fmt.Errorf("%w: refused", model.ErrSourceUnavailable)
	l1.mintErr = unavailable
	l1.tokenErr = unavailable
	l2.balanceErr = unavailable
	l2.accountErr = unavailable

	second := engine.RunCycle(context.Background())

	if second.BridgeLocked != first.BridgeLocked {
		t.Fatalf("bridge locked must fall back to previous value")
	}
	if second.FoundationReserve != first.FoundationReserve {
		t.Fatalf("foundation reserve must fall back to previous value")
	}
	if second.FeeConfig == nil || second.FeeConfig.TotalBurned != 25 {
		t.Fatalf("fee config must fall back to previous record")
	}
	if len(second.Warnings) == 0 {
		t.Fatalf("degraded cycle must carry warnings")
	}
}

func TestSnapshotAlwaysProduced(t *testing.T) {
	down := fmt.Errorf("%w: down", model.ErrSourceUnavailable)
	l1 := &fakeLedger{name: "l1", mintErr: down, tokenErr: down}
	l2 := &fakeLedger{name: "l2", nativeErr: down, balanceErr: down, accountErr: down, scanErr: down}

	engine := testEngine(l1, l2, &fakeQuotes{warnings: []string{"all providers down"}}, 1_000)
	snap := engine.RunCycle(context.Background())

	if snap == nil {
		t.Fatalf("engine must always produce a snapshot")
	}
	if engine.Holder().Load() != snap {
		t.Fatalf("snapshot must be published to the holder")
	}
	if len(snap.Warnings) < 5 {
		t.Fatalf("expected a warning per failed source, got %v", snap.Warnings)
	}
}

func TestPriceRetainedWhenProvidersFail(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 500}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, account: feeConfigAccount(0)}

	quotes := &fakeQuotes{quote: &model.PriceQuote{
		PriceUSD:  model.Float(1.25),
		MarketCap: model.Float(4e6),
		Source:    "jupiter",
	}}
	engine := testEngine(l1, l2, quotes, 1_000)

	first := engine.RunCycle(context.Background())
	if first.Price == nil || *first.Price.PriceUSD != 1.25 {
		t.Fatalf("expected fresh quote on first cycle")
	}

	quotes.quote = nil
	quotes.warnings = []string{"price provider jupiter: down"}

	second := engine.RunCycle(context.Background())
	if second.Price != first.Price {
		t.Fatalf("stale quote must be retained field-for-field")
	}
	if !hasWarning(second, "price provider") {
		t.Fatalf("expected provider warning, got %v", second.Warnings)
	}
}

func TestMonotonicBurnViolationWarned(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 500}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, account: feeConfigAccount(1_000)}

	engine := testEngine(l1, l2, nil, 1_000)
	engine.RunCycle(context.Background())

	l2.account = feeConfigAccount(900)
	snap := engine.RunCycle(context.Background())

	if !hasWarning(snap, "cumulative burn decreased") {
		t.Fatalf("expected monotonicity warning, got %v", snap.Warnings)
	}
}

func TestValidatorScanSkipsMalformedEntries(t *testing.T) {
	addr := solana.PublicKey{}
	l1 := &fakeLedger{name: "l1", mintSupply: 500}
	l2 := &fakeLedger{
		name:         "l2",
		nativeSupply: 500,
		account:      feeConfigAccount(0),
		scan: []chain.KeyedAccount{
			{Pubkey: addr, Data: validatorAccount(111)},
			{Pubkey: addr, Data: []byte{1, 2, 3}},
			{Pubkey: addr, Data: validatorAccount(222)},
		},
	}

	engine := testEngine(l1, l2, nil, 1_000)
	snap := engine.RunCycle(context.Background())

	if len(snap.Validators) != 2 {
		t.Fatalf("got %d validators, want 2 (malformed entry skipped)", len(snap.Validators))
	}
	if snap.Validators[0].StakeAmount != 111 || snap.Validators[1].StakeAmount != 222 {
		t.Fatalf("validator order lost: %+v", snap.Validators)
	}
	if !hasWarning(snap, "skipped 1 malformed") {
		t.Fatalf("expected skip warning, got %v", snap.Warnings)
	}
}

func TestHistoryRecordsBurnCounters(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 500}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, account: feeConfigAccount(777)}

	hist := history.NewStore(10, nil, 0, nil)
	engine := NewEngine(Config{CanonicalTotal: 1_000, Decimals: 0}, l1, l2, nil, hist, nil)

	engine.RunCycle(context.Background())

	if hist.Len() != 1 {
		t.Fatalf("history len = %d, want 1", hist.Len())
	}
	if hist.Entries()[0].TotalBurned != 777 {
		t.Fatalf("history entry = %+v", hist.Entries()[0])
	}
}

func hasWarning(snap *model.SupplySnapshot, substr string) bool {
	for _, w := range snap.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
