package inter

import (
	"time"
)

// Timestamp is a Unix time in seconds.
type Timestamp uint64

// Duration is a length of time in seconds.
type Duration uint64

// Week is the alignment granularity of the ledger. Unlock times and
// scheduled slope changes always sit on week boundaries.
const Week Duration = 7 * 24 * 60 * 60

// FromTime converts t to the ledger's second-resolution Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

// Time converts t to the standard library representation.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// WeekFloor rounds t down to its containing week boundary.
func (t Timestamp) WeekFloor() Timestamp {
	return t - t%Timestamp(Week)
}

// Add advances t by d.
func (t Timestamp) Add(d Duration) Timestamp {
	return t + Timestamp(d)
}

// Since returns the seconds elapsed from u to t. It must hold that u <= t.
func (t Timestamp) Since(u Timestamp) Duration {
	return Duration(t - u)
}
