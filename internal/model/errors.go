package model

import "errors"

// Error kinds for component-boundary outcomes. Callers match with errors.Is
// and substitute fallbacks; none of these terminate a reconciliation cycle.
var (
	// ErrMalformedAccount marks account data too short or unreadable for
	// its schema. The account is treated as absent.
	ErrMalformedAccount = errors.New("malformed account data")

	// ErrSourceUnavailable marks a transport failure or timeout from a
	// remote query. The caller substitutes its last-known-good value.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPersistence marks a failed history read or write. In-memory state
	// stays authoritative; the write is retried at the next flush point.
	ErrPersistence = errors.New("persistence failure")
)
