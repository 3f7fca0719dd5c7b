package ledger

import (
	"sync/atomic"
	"time"

	"github.com/Neverland-Money/go-escrow/inter"
)

// Clock supplies the ledger's notion of now. Checkpoint histories are
// ordered by it, so a clock must never run backwards.
type Clock interface {
	Now() inter.Timestamp
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() inter.Timestamp {
	return inter.FromTime(time.Now())
}

// ManualClock is a settable clock for tests and simulations.
type ManualClock struct {
	now uint64
}

// NewManualClock starts a manual clock at the given time.
func NewManualClock(start inter.Timestamp) *ManualClock {
	return &ManualClock{now: uint64(start)}
}

func (c *ManualClock) Now() inter.Timestamp {
	return inter.Timestamp(atomic.LoadUint64(&c.now))
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d inter.Duration) {
	atomic.AddUint64(&c.now, uint64(d))
}

// Set jumps the clock to t. Moving backwards panics.
func (c *ManualClock) Set(t inter.Timestamp) {
	for {
		old := atomic.LoadUint64(&c.now)
		if uint64(t) < old {
			panic("ledger: manual clock cannot move backwards")
		}
		if atomic.CompareAndSwapUint64(&c.now, old, uint64(t)) {
			return
		}
	}
}
