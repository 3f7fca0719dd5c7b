package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return escrow.ErrZeroAmount
	}
	if err := wad.CheckAmount(amount); err != nil {
		return escrow.ErrAmountTooLarge
	}
	return nil
}

func (m *mutation) addTotalLocked(delta *big.Int) error {
	v, err := m.s.TotalLocked()
	if err != nil {
		return err
	}
	return m.s.SetTotalLocked(v.Add(v, delta))
}

func (m *mutation) subTotalLocked(delta *big.Int) error {
	v, err := m.s.TotalLocked()
	if err != nil {
		return err
	}
	return m.s.SetTotalLocked(v.Sub(v, delta))
}

func (m *mutation) addPermanentTotal(delta *big.Int) error {
	v, err := m.s.PermanentTotal()
	if err != nil {
		return err
	}
	return m.s.SetPermanentTotal(v.Add(v, delta))
}

func (m *mutation) subPermanentTotal(delta *big.Int) error {
	v, err := m.s.PermanentTotal()
	if err != nil {
		return err
	}
	return m.s.SetPermanentTotal(v.Sub(v, delta))
}

// mint creates a position from an already validated record.
func (m *mutation) mint(owner common.Address, locked inter.LockedBalance) (inter.LockID, error) {
	id, err := m.s.AllocLockID()
	if err != nil {
		return 0, err
	}
	if err := m.s.SetOwner(id, owner); err != nil {
		return 0, err
	}
	if err := m.s.SetPosition(id, locked); err != nil {
		return 0, err
	}
	none := inter.LockedBalance{Amount: new(big.Int), State: inter.LockNone}
	if err := m.checkpoint(id, none, locked); err != nil {
		return 0, err
	}
	return id, nil
}

// burn retires a position: ownership and approval are deleted, the record
// collapses to a withdrawn tombstone and the checkpoint removes the
// position's contribution, including its scheduled slope change.
func (m *mutation) burn(id inter.LockID, old inter.LockedBalance) error {
	if err := m.s.SetApproval(id, common.Address{}); err != nil {
		return err
	}
	if err := m.s.DeleteOwner(id); err != nil {
		return err
	}
	tomb := inter.EmptyLockedBalance()
	if err := m.s.SetPosition(id, tomb); err != nil {
		return err
	}
	return m.checkpoint(id, old, tomb)
}

// CreateLock opens a new position for owner. The unlock time is now plus
// duration rounded down to a week boundary; after rounding it must keep at
// least the minimum and at most the maximum lock duration. Returns the new
// position id.
func (l *Ledger) CreateLock(owner common.Address, amount *big.Int, duration inter.Duration) (inter.LockID, error) {
	var id inter.LockID
	err := l.mutate(func(m *mutation) error {
		if owner == (common.Address{}) {
			return escrow.ErrZeroAddress
		}
		if err := checkAmount(amount); err != nil {
			return err
		}
		unlock := m.now.Add(duration).WeekFloor()
		if unlock <= m.now || unlock.Since(m.now) < m.minLockDuration() {
			return escrow.ErrLockTooShort
		}
		if unlock.Since(m.now) > m.maxLockDuration() {
			return escrow.ErrLockTooLong
		}
		locked := inter.LockedBalance{
			Amount:         new(big.Int).Set(amount),
			End:            unlock,
			EffectiveStart: m.now,
			State:          inter.LockActive,
		}
		if err := m.addTotalLocked(amount); err != nil {
			return err
		}
		var err error
		id, err = m.mint(owner, locked)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.log.WithFields(logrus.Fields{
		"id":     id,
		"owner":  owner.Hex(),
		"amount": amount.String(),
	}).Debug("lock created")
	return id, nil
}

// deposit adds amount to an active position, keeping its unlock time. The
// effective start moves to the amount-weighted average of the old start
// and now, which prices early-exit penalties for the blended deposit.
func (m *mutation) deposit(id inter.LockID, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	old, err := m.s.Position(id)
	if err != nil {
		return err
	}
	if old.State == inter.LockNone || old.State == inter.LockWithdrawn {
		return escrow.ErrNoLock
	}
	if old.IsPermanent() {
		return escrow.ErrPermanentLock
	}
	if old.End <= m.now {
		return escrow.ErrExpired
	}
	if old.End.Since(m.now) < m.minLockDuration() {
		return escrow.ErrDepositDurationTooShort
	}

	locked := old.Copy()
	locked.Amount.Add(locked.Amount, amount)
	if err := wad.CheckAmount(locked.Amount); err != nil {
		return escrow.ErrAmountTooLarge
	}
	locked.EffectiveStart = inter.Timestamp(wad.WeightedTime(
		old.Amount, uint64(old.EffectiveStart),
		amount, uint64(m.now),
	))
	if err := m.s.SetPosition(id, locked); err != nil {
		return err
	}
	if err := m.addTotalLocked(amount); err != nil {
		return err
	}
	return m.checkpoint(id, old, locked)
}

// DepositFor tops up a position. It needs no authorization: adding value
// to someone's lock only strengthens it.
func (l *Ledger) DepositFor(id inter.LockID, amount *big.Int) error {
	return l.mutate(func(m *mutation) error {
		return m.deposit(id, amount)
	})
}

// IncreaseAmount tops up a position on behalf of an authorized caller.
func (l *Ledger) IncreaseAmount(caller common.Address, id inter.LockID, amount *big.Int) error {
	return l.mutate(func(m *mutation) error {
		if err := checkApprovedOrOwner(m.s, caller, id); err != nil {
			return err
		}
		return m.deposit(id, amount)
	})
}

// ExtendLock pushes the unlock time of an active position further out.
// The new unlock is now plus duration, week-floored; it must land strictly
// beyond the current unlock and within the maximum duration.
func (l *Ledger) ExtendLock(caller common.Address, id inter.LockID, duration inter.Duration) error {
	return l.mutate(func(m *mutation) error {
		if err := checkApprovedOrOwner(m.s, caller, id); err != nil {
			return err
		}
		old, err := m.s.Position(id)
		if err != nil {
			return err
		}
		if old.IsPermanent() {
			return escrow.ErrPermanentLock
		}
		if old.End <= m.now {
			return escrow.ErrExpired
		}
		unlock := m.now.Add(duration).WeekFloor()
		if unlock <= old.End {
			return escrow.ErrLockNotExtended
		}
		if unlock.Since(m.now) > m.maxLockDuration() {
			return escrow.ErrLockTooLong
		}
		locked := old.Copy()
		locked.End = unlock
		if err := m.s.SetPosition(id, locked); err != nil {
			return err
		}
		return m.checkpoint(id, old, locked)
	})
}

// Checkpoint rolls the aggregate history forward to now without touching
// any position. Anyone may poke it; long idle ledgers need it before
// historical queries can reach the present again.
func (l *Ledger) Checkpoint() error {
	return l.mutate(func(m *mutation) error {
		return m.checkpoint(0, inter.LockedBalance{}, inter.LockedBalance{})
	})
}
