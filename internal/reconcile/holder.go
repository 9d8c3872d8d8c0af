package reconcile

import (
	"sync/atomic"

	"supplyscope/internal/model"
)

// Holder publishes the current snapshot by atomic whole-value replacement.
// A single writer swaps in each cycle's result; readers always observe
// either the previous complete snapshot or the next one, never a partial
// update.
type Holder struct {
	p atomic.Pointer[model.SupplySnapshot]
}

// Load returns the current snapshot, or nil before the first cycle.
func (h *Holder) Load() *model.SupplySnapshot {
	return h.p.Load()
}

// Store publishes a new snapshot.
func (h *Holder) Store(s *model.SupplySnapshot) {
	h.p.Store(s)
}
