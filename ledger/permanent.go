package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
)

// LockPermanent freezes a live position: its weight stops decaying and
// stays pinned to the locked amount. The unlock time is retained
// internally but hidden from views until the lock is converted back.
func (l *Ledger) LockPermanent(caller common.Address, id inter.LockID) error {
	err := l.mutate(func(m *mutation) error {
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
		locked := old.Copy()
		locked.State = inter.LockPermanent
		if err := m.addPermanentTotal(locked.Amount); err != nil {
			return err
		}
		if err := m.s.SetPosition(id, locked); err != nil {
			return err
		}
		return m.checkpoint(id, old, locked)
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"id": id}).Debug("lock converted to permanent")
	return nil
}

// UnlockPermanent converts a permanent position back to a decaying one.
// The retained unlock time resumes as if the freeze never happened: time
// kept running underneath, so the restored weight equals what the lock
// would have carried had it never been converted. A lock whose retained
// unlock time has already passed becomes immediately withdrawable.
func (l *Ledger) UnlockPermanent(caller common.Address, id inter.LockID) error {
	err := l.mutate(func(m *mutation) error {
		if err := checkApprovedOrOwner(m.s, caller, id); err != nil {
			return err
		}
		old, err := m.s.Position(id)
		if err != nil {
			return err
		}
		if !old.IsPermanent() {
			return escrow.ErrNotPermanent
		}
		locked := old.Copy()
		locked.State = inter.LockActive
		if err := m.subPermanentTotal(locked.Amount); err != nil {
			return err
		}
		if err := m.s.SetPosition(id, locked); err != nil {
			return err
		}
		return m.checkpoint(id, old, locked)
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"id": id}).Debug("lock converted from permanent")
	return nil
}
