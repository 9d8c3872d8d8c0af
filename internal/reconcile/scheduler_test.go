package reconcile

import (
	"context"
	"testing"
	"time"

	"supplyscope/internal/history"
)

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	// Each cycle takes ~80ms against a 10ms interval; with the in-flight
	// guard the colliding ticks are skipped, so only a handful of cycles
	// complete instead of one per tick.
	l1 := &fakeLedger{name: "l1", mintSupply: 500, delay: 80 * time.Millisecond}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, account: feeConfigAccount(1)}

	hist := history.NewStore(100, nil, 0, nil)
	engine := NewEngine(Config{CanonicalTotal: 1_000, Decimals: 0}, l1, l2, nil, hist, nil)
	scheduler := NewScheduler(10*time.Millisecond, engine, hist, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = scheduler.Run(ctx)

	// Allow the final in-flight cycle to settle.
	time.Sleep(100 * time.Millisecond)

	cycles := hist.Len()
	if cycles == 0 {
		t.Fatalf("no cycles completed")
	}
	if cycles > 4 {
		t.Fatalf("%d cycles in 200ms of 80ms cycles: ticks overlapped", cycles)
	}
}

func TestHolderAtomicReplacement(t *testing.T) {
	l1 := &fakeLedger{name: "l1", mintSupply: 500}
	l2 := &fakeLedger{name: "l2", nativeSupply: 500, account: feeConfigAccount(1)}

	engine := testEngine(l1, l2, nil, 1_000)

	if engine.Holder().Load() != nil {
		t.Fatalf("holder must be empty before the first cycle")
	}

	first := engine.RunCycle(context.Background())
	second := engine.RunCycle(context.Background())

	current := engine.Holder().Load()
	if current != second {
		t.Fatalf("holder must expose the newest snapshot")
	}
	if first == second {
		t.Fatalf("each cycle must build a fresh snapshot")
	}
}
