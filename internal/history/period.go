package history

import (
	"fmt"
	"time"
)

// Named query periods exposed by the history API.
var namedPeriods = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// ParsePeriod resolves a named period (1h, 24h, 7d) or any Go duration
// string into a window.
func ParsePeriod(s string) (time.Duration, error) {
	if d, ok := namedPeriods[s]; ok {
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unknown period %q (use 1h, 24h, 7d, or a duration)", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("period must be positive: %q", s)
	}
	return d, nil
}
