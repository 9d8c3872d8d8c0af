// Package reconcile merges the concurrently gathered partial results of one
// poll cycle into a single consistent supply snapshot.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"supplyscope/internal/chain"
	"supplyscope/internal/decode"
	"supplyscope/internal/history"
	"supplyscope/internal/model"
)

// Ledger is the query surface the engine needs from one chain endpoint.
// chain.Client satisfies it.
type Ledger interface {
	Name() string
	NativeSupply(ctx context.Context) (uint64, error)
	MintSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	TokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	Account(ctx context.Context, addr solana.PublicKey) ([]byte, error)
	ScanProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64) ([]chain.KeyedAccount, error)
}

// QuoteSource produces at most one merged price quote per cycle.
// price.Aggregator satisfies it.
type QuoteSource interface {
	Fetch(ctx context.Context, canonicalTotal float64) (*model.PriceQuote, []string)
}

// Config carries the fixed addresses and constants of the reconciliation.
type Config struct {
	Mint             solana.PublicKey
	FeeConfigAddr    solana.PublicKey
	ValidatorProgram solana.PublicKey
	BridgeVault      solana.PublicKey
	Foundation       solana.PublicKey

	// CanonicalTotal is the fixed maximum token count in raw units, the
	// reconciliation baseline.
	CanonicalTotal uint64
	// Decimals scales raw units to whole tokens; the drift tolerance is
	// one whole token.
	Decimals uint8
}

// Engine runs one reconciliation cycle: fan out every query, wait for all
// of them to settle, then merge. A failing source degrades its own
// contribution and never blocks or discards the others'.
type Engine struct {
	cfg     Config
	l1      Ledger
	l2      Ledger
	quotes  QuoteSource
	holder  *Holder
	history *history.Store
	logger  *zap.Logger

	now func() time.Time
}

func NewEngine(cfg Config, l1, l2 Ledger, quotes QuoteSource, hist *history.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		l1:      l1,
		l2:      l2,
		quotes:  quotes,
		holder:  &Holder{},
		history: hist,
		logger:  logger,
		now:     time.Now,
	}
}

// Holder exposes the published-snapshot accessor for read-only consumers.
func (e *Engine) Holder() *Holder { return e.holder }

// cycleResults collects one settled outcome per fanned-out task. Each
// goroutine writes only its own slot, so no lock is needed beyond the join.
type cycleResults struct {
	l1Supply   uint64
	l1Err      error
	l2Supply   uint64
	l2Err      error
	vault      uint64
	vaultErr   error
	reserve    uint64
	reserveErr error

	feeConfig    *model.FeeConfig
	feeConfigErr error

	validators        []model.ValidatorInfo
	validatorsSkipped int
	validatorsErr     error

	quote         *model.PriceQuote
	quoteWarnings []string
}

// RunCycle gathers all sources, merges them, publishes the snapshot, and
// records the burn counters in history. It always returns a snapshot.
func (e *Engine) RunCycle(ctx context.Context) *model.SupplySnapshot {
	prev := e.holder.Load()
	res := e.gather(ctx)
	snap := e.merge(prev, res)

	e.holder.Store(snap)

	if snap.FeeConfig != nil && e.history != nil {
		e.history.Append(model.BurnEntryFromFeeConfig(snap.FeeConfig, snap.UpdatedAt.UnixMilli()))
	}

	e.logger.Info("cycle complete",
		zap.Uint64("total_supply", snap.TotalSupply),
		zap.Int64("circulating", snap.Circulating),
		zap.String("bridge_status", string(snap.BridgeStatus)),
		zap.Uint64("drift", snap.DriftAmount),
		zap.Int("warnings", len(snap.Warnings)),
	)
	return snap
}

// gather fans out every query as a named task and joins them all. Each task
// settles on its own; sibling failures never cancel one another.
func (e *Engine) gather(ctx context.Context) *cycleResults {
	res := &cycleResults{}
	var wg sync.WaitGroup

	run := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	run(func() { res.l1Supply, res.l1Err = e.l1.MintSupply(ctx, e.cfg.Mint) })
	run(func() { res.l2Supply, res.l2Err = e.l2.NativeSupply(ctx) })
	run(func() { res.vault, res.vaultErr = e.l1.TokenBalance(ctx, e.cfg.BridgeVault) })
	run(func() { res.reserve, res.reserveErr = e.l2.Balance(ctx, e.cfg.Foundation) })
	run(func() {
		data, err := e.l2.Account(ctx, e.cfg.FeeConfigAddr)
		if err != nil {
			res.feeConfigErr = err
			return
		}
		res.feeConfig, res.feeConfigErr = decode.DecodeFeeConfig(data)
	})
	run(func() {
		accounts, err := e.l2.ScanProgramAccounts(ctx, e.cfg.ValidatorProgram, decode.ValidatorSize)
		if err != nil {
			res.validatorsErr = err
			return
		}
		for _, acc := range accounts {
			v, err := decode.DecodeValidator(acc.Data)
			if err != nil {
				res.validatorsSkipped++
				e.logger.Warn("skipping malformed validator account",
					zap.String("address", acc.Pubkey.String()), zap.Error(err))
				continue
			}
			res.validators = append(res.validators, *v)
		}
	})
	if e.quotes != nil {
		run(func() {
			res.quote, res.quoteWarnings = e.quotes.Fetch(ctx, e.wholeTokens(e.cfg.CanonicalTotal))
		})
	}

	wg.Wait()
	return res
}

// merge computes the derived snapshot from the settled results, using the
// previous snapshot as the fallback for unavailable sources.
func (e *Engine) merge(prev *model.SupplySnapshot, res *cycleResults) *model.SupplySnapshot {
	snap := &model.SupplySnapshot{UpdatedAt: e.now()}
	warn := func(format string, args ...interface{}) {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf(format, args...))
	}

	snap.TotalSupply = e.cfg.CanonicalTotal

	// L2 native supply, falling back to the previous observation.
	if res.l2Err != nil {
		warn("l2 supply unavailable: %v", res.l2Err)
		if prev != nil {
			snap.L2Supply = prev.L2Supply
		}
	} else {
		snap.L2Supply = res.l2Supply
	}

	// L1 mint supply: measured when positive and sane, otherwise inferred
	// as canonical minus L2 and flagged so readers can tell the two apart.
	if res.l1Err == nil && saneL1Supply(res.l1Supply, e.cfg.CanonicalTotal) {
		snap.L1Supply = res.l1Supply
	} else {
		if res.l1Err != nil {
			warn("l1 supply unavailable, inferring from canonical: %v", res.l1Err)
		} else {
			warn("l1 supply %d outside sane bounds, inferring from canonical", res.l1Supply)
		}
		snap.L1Supply = inferL1Supply(e.cfg.CanonicalTotal, snap.L2Supply)
		snap.L1Inferred = true
	}

	if res.vaultErr != nil {
		warn("bridge vault balance unavailable: %v", res.vaultErr)
		if prev != nil {
			snap.BridgeLocked = prev.BridgeLocked
		}
	} else {
		snap.BridgeLocked = res.vault
	}

	if res.reserveErr != nil {
		warn("foundation reserve unavailable: %v", res.reserveErr)
		if prev != nil {
			snap.FoundationReserve = prev.FoundationReserve
		}
	} else {
		snap.FoundationReserve = res.reserve
	}

	// Fee config: a nil record with no error is a valid uninitialized
	// account; keep the previous record in that case too.
	switch {
	case res.feeConfigErr != nil:
		warn("fee config unavailable: %v", res.feeConfigErr)
		if prev != nil {
			snap.FeeConfig = prev.FeeConfig
		}
	case res.feeConfig == nil:
		warn("fee config account not initialized")
		if prev != nil {
			snap.FeeConfig = prev.FeeConfig
		}
	default:
		snap.FeeConfig = res.feeConfig
	}

	if res.validatorsErr != nil {
		warn("validator scan unavailable: %v", res.validatorsErr)
		if prev != nil {
			snap.Validators = prev.Validators
		}
	} else {
		snap.Validators = res.validators
		if res.validatorsSkipped > 0 {
			warn("validator scan skipped %d malformed accounts", res.validatorsSkipped)
		}
	}

	// Price degrades to stale: on total provider failure the previous
	// quote is retained unchanged, never reset to unknown.
	snap.Warnings = append(snap.Warnings, res.quoteWarnings...)
	if res.quote != nil {
		snap.Price = res.quote
	} else if prev != nil {
		snap.Price = prev.Price
	}

	if snap.FeeConfig != nil {
		snap.Burned = snap.FeeConfig.TotalBurned
	}

	// Monotonic burn counters: a decrease signals re-initialization or
	// corruption and is reported, not acted on.
	if prev != nil && snap.Burned < prev.Burned {
		warn("cumulative burn decreased from %d to %d", prev.Burned, snap.Burned)
	}

	snap.Circulating = circulating(snap.TotalSupply, snap.FoundationReserve, snap.BridgeLocked, snap.Burned)
	if snap.Circulating < 0 {
		warn("negative circulating supply %d, inputs are inconsistent", snap.Circulating)
	}

	snap.BridgeStatus, snap.DriftAmount = driftStatus(snap.L1Supply, snap.L2Supply, e.cfg.CanonicalTotal, e.driftTolerance())

	return snap
}

func (e *Engine) driftTolerance() uint64 {
	return pow10(e.cfg.Decimals)
}

func (e *Engine) wholeTokens(raw uint64) float64 {
	return float64(raw) / float64(pow10(e.cfg.Decimals))
}

// circulating computes total minus foundation reserve, bridge-locked, and
// burned as an exact identity, unclamped.
func circulating(total, reserve, locked, burned uint64) int64 {
	return int64(total) - int64(reserve) - int64(locked) - int64(burned)
}

// driftStatus compares the sum of per-ledger supplies against the canonical
// total; each cycle re-evaluates independently, with no hysteresis.
func driftStatus(l1, l2, canonical, tolerance uint64) (model.BridgeStatus, uint64) {
	sum := l1 + l2
	var drift uint64
	if sum > canonical {
		drift = sum - canonical
	} else {
		drift = canonical - sum
	}
	if drift > tolerance {
		return model.BridgeDriftDetected, drift
	}
	return model.BridgeSynced, drift
}

// saneL1Supply accepts a directly measured mint supply only when it is
// positive and no more than twice the canonical total.
func saneL1Supply(supply, canonical uint64) bool {
	return supply > 0 && supply <= 2*canonical
}

// inferL1Supply derives the L1 side from the baseline when measurement is
// unavailable.
func inferL1Supply(canonical, l2 uint64) uint64 {
	if l2 > canonical {
		return 0
	}
	return canonical - l2
}

func pow10(n uint8) uint64 {
	out := uint64(1)
	for i := uint8(0); i < n; i++ {
		out *= 10
	}
	return out
}
