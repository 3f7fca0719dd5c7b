package inter

import (
	"fmt"
	"math/big"
)

// LockID identifies one escrow position. IDs are allocated sequentially
// starting from 1 and are never reused, not even after withdrawal.
type LockID uint64

// LockState is the lifecycle phase of a position.
type LockState uint8

const (
	// LockNone marks an id that was never created.
	LockNone LockState = iota
	// LockActive is a decaying lock heading for a week-aligned unlock time.
	LockActive
	// LockPermanent is a frozen lock: its weight equals the locked amount
	// and does not decay until the lock is converted back.
	LockPermanent
	// LockWithdrawn is the terminal phase.
	LockWithdrawn
)

func (s LockState) String() string {
	switch s {
	case LockNone:
		return "none"
	case LockActive:
		return "active"
	case LockPermanent:
		return "permanent"
	case LockWithdrawn:
		return "withdrawn"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// LockedBalance is the persistent record of one position.
//
// End is retained while the lock is permanent, so converting back resumes
// the original decay curve. External views read the unlock time through
// UnlockTime, which hides the retained value behind the permanent sentinel.
type LockedBalance struct {
	// Amount is the locked balance in the public 18-decimal unit.
	Amount *big.Int
	// End is the week-aligned unlock time.
	End Timestamp
	// EffectiveStart is the deposit-weighted origin of the lock. It sizes
	// early-exit penalties and plays no role in weight decay.
	EffectiveStart Timestamp
	// State is the lifecycle phase.
	State LockState
}

// IsPermanent reports whether the lock weight is currently frozen.
func (l LockedBalance) IsPermanent() bool {
	return l.State == LockPermanent
}

// UnlockTime is the externally visible unlock time: the sentinel 0 while
// the lock is permanent, End otherwise.
func (l LockedBalance) UnlockTime() Timestamp {
	if l.State == LockPermanent {
		return 0
	}
	return l.End
}

// Copy returns a deep copy of the record.
func (l LockedBalance) Copy() LockedBalance {
	cp := l
	if l.Amount != nil {
		cp.Amount = new(big.Int).Set(l.Amount)
	}
	return cp
}

// EmptyLockedBalance is the tombstone a burned position collapses to.
func EmptyLockedBalance() LockedBalance {
	return LockedBalance{Amount: new(big.Int), State: LockWithdrawn}
}
