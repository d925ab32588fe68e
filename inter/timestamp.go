// Package inter defines the primitive types shared across the namechain
// registry suite. The registry operates over a single serialized ledger, so
// every state-changing operation carries an explicit ledger timestamp instead
// of reading a wall clock.
package inter

import (
	"time"
)

// Timestamp is a ledger time value in Unix seconds. All expiry accounting,
// grace periods and auction windows are computed in whole seconds, matching
// the wei-per-second pricing model.
type Timestamp uint64

// FromTime converts a time.Time into a ledger timestamp, truncating to
// whole seconds.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

// Time converts the timestamp back into a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add advances the timestamp by a duration, truncated to whole seconds.
// Durations are never negative in registry accounting.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d/time.Second)
}

// Elapsed returns t - since, saturating at zero when since lies in the
// future. Callers use this to avoid underflow on defensive paths.
func (t Timestamp) Elapsed(since Timestamp) Timestamp {
	if since >= t {
		return 0
	}
	return t - since
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}
