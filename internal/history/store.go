// Package history keeps a capacity-bounded, append-only time series of burn
// snapshots with windowed lookups and coalesced persistence.
package history

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"supplyscope/internal/model"
)

// Sink is the durable backing for the in-memory series. In-memory state is
// authoritative; a failing sink is retried at the next flush point.
type Sink interface {
	Save(entries []model.BurnHistoryEntry) error
	Load(max int) ([]model.BurnHistoryEntry, error)
}

// Store is the bounded burn time series. Single writer (the reconciliation
// cycle); any number of readers.
type Store struct {
	mu      sync.RWMutex
	entries []model.BurnHistoryEntry
	max     int

	sink       Sink
	flushEvery time.Duration
	lastFlush  time.Time
	dirty      bool

	logger *zap.Logger

	now func() time.Time
}

func NewStore(max int, sink Sink, flushEvery time.Duration, logger *zap.Logger) *Store {
	if max <= 0 {
		max = 2016
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		max:        max,
		sink:       sink,
		flushEvery: flushEvery,
		logger:     logger,
		now:        time.Now,
	}
}

// Restore loads the persisted series, truncated to the bound. A missing or
// unreadable file is logged and the store starts empty.
func (s *Store) Restore() error {
	if s.sink == nil {
		return nil
	}
	entries, err := s.sink.Load(s.max)
	if err != nil {
		return fmt.Errorf("%w: restore history: %v", model.ErrPersistence, err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.logger.Info("history restored", zap.Int("entries", len(entries)))
	return nil
}

// Append adds an entry to the tail, evicting from the head past the bound.
func (s *Store) Append(entry model.BurnHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.max; over > 0 {
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	s.dirty = true
}

// Len reports the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the retained series in chronological order.
func (s *Store) Entries() []model.BurnHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BurnHistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// SnapshotAt returns the earliest retained entry at or after now-window.
// When the history is shorter than the window it degrades to the oldest
// entry, so warm-up rates are under-windowed rather than absent.
func (s *Store) SnapshotAt(window time.Duration) (model.BurnHistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return model.BurnHistoryEntry{}, false
	}

	cutoff := s.now().Add(-window).UnixMilli()
	for _, e := range s.entries {
		if e.TimestampMs >= cutoff {
			return e, true
		}
	}
	return s.entries[0], true
}

// DeltaOver reports the burn growth across the window: the difference
// between the latest entry and the windowed snapshot, and the elapsed span
// those two observations actually cover.
func (s *Store) DeltaOver(window time.Duration) (delta uint64, elapsed time.Duration, ok bool) {
	base, ok := s.SnapshotAt(window)
	if !ok {
		return 0, 0, false
	}

	s.mu.RLock()
	latest := s.entries[len(s.entries)-1]
	s.mu.RUnlock()

	if latest.TotalBurned >= base.TotalBurned {
		delta = latest.TotalBurned - base.TotalBurned
	}
	elapsed = time.Duration(latest.TimestampMs-base.TimestampMs) * time.Millisecond
	return delta, elapsed, true
}

// Query returns entries at or after now-window, clipped to limit from the
// most recent end, in chronological order. limit <= 0 means no clipping.
func (s *Store) Query(window time.Duration, limit int) []model.BurnHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-window).UnixMilli()
	start := len(s.entries)
	for i, e := range s.entries {
		if e.TimestampMs >= cutoff {
			start = i
			break
		}
	}

	matched := s.entries[start:]
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	out := make([]model.BurnHistoryEntry, len(matched))
	copy(out, matched)
	return out
}

// FlushIfDue persists the series when it is dirty and the coalescing
// interval has elapsed. Failures leave the series dirty for the next try.
func (s *Store) FlushIfDue() error {
	s.mu.Lock()
	due := s.dirty && (s.lastFlush.IsZero() || s.now().Sub(s.lastFlush) >= s.flushEvery)
	s.mu.Unlock()

	if !due {
		return nil
	}
	return s.Flush()
}

// Flush persists the series unconditionally.
func (s *Store) Flush() error {
	if s.sink == nil {
		return nil
	}

	entries := s.Entries()
	if err := s.sink.Save(entries); err != nil {
		return fmt.Errorf("%w: flush history: %v", model.ErrPersistence, err)
	}

	s.mu.Lock()
	s.lastFlush = s.now()
	s.dirty = false
	s.mu.Unlock()
	return nil
}
