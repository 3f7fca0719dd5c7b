package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// Merge folds position from into position to. The source may already be
// expired; the target must not be. The merged unlock time is the later of
// the two, and a permanent target absorbs the source into its frozen
// amount. The source id is burned and never reused.
func (l *Ledger) Merge(caller common.Address, from, to inter.LockID) error {
	err := l.mutate(func(m *mutation) error {
		if from == to {
			return escrow.ErrSameLock
		}
		if err := checkApprovedOrOwner(m.s, caller, from); err != nil {
			return err
		}
		if err := checkApprovedOrOwner(m.s, caller, to); err != nil {
			return err
		}
		oldFrom, err := m.s.Position(from)
		if err != nil {
			return err
		}
		oldTo, err := m.s.Position(to)
		if err != nil {
			return err
		}
		if oldFrom.IsPermanent() {
			return escrow.ErrPermanentLock
		}
		if !oldTo.IsPermanent() && oldTo.End <= m.now {
			return escrow.ErrExpired
		}

		if err := m.burn(from, oldFrom); err != nil {
			return err
		}

		locked := oldTo.Copy()
		locked.Amount.Add(locked.Amount, oldFrom.Amount)
		if err := wad.CheckAmount(locked.Amount); err != nil {
			return escrow.ErrAmountTooLarge
		}
		if oldTo.IsPermanent() {
			if err := m.addPermanentTotal(oldFrom.Amount); err != nil {
				return err
			}
		} else if oldFrom.End > locked.End {
			locked.End = oldFrom.End
		}
		locked.EffectiveStart = inter.Timestamp(wad.WeightedTime(
			oldTo.Amount, uint64(oldTo.EffectiveStart),
			oldFrom.Amount, uint64(oldFrom.EffectiveStart),
		))
		if err := m.s.SetPosition(to, locked); err != nil {
			return err
		}
		return m.checkpoint(to, oldTo, locked)
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Debug("locks merged")
	return nil
}

// Split cuts amount out of a position into its own lock. The source is
// burned and two fresh ids are minted: the remainder first, the cut
// second. Both inherit the unlock time, the effective start and the
// permanence of the source. Splitting must be enabled for the owner (or
// ledger-wide) by the governor.
func (l *Ledger) Split(caller common.Address, id inter.LockID, amount *big.Int) (inter.LockID, inter.LockID, error) {
	var id1, id2 inter.LockID
	err := l.mutate(func(m *mutation) error {
		owner, err := m.s.Owner(id)
		if err != nil {
			return err
		}
		if owner == (common.Address{}) {
			return escrow.ErrNoLock
		}
		allowed, err := m.s.SplitAllowed(owner)
		if err != nil {
			return err
		}
		if !allowed {
			allowed, err = m.s.SplitAllowed(common.Address{})
			if err != nil {
				return err
			}
		}
		if !allowed {
			return escrow.ErrSplitNotAllowed
		}
		if err := checkApprovedOrOwner(m.s, caller, id); err != nil {
			return err
		}
		old, err := m.s.Position(id)
		if err != nil {
			return err
		}
		if !old.IsPermanent() && old.End <= m.now {
			return escrow.ErrExpired
		}
		if err := checkAmount(amount); err != nil {
			return err
		}
		if amount.Cmp(old.Amount) >= 0 {
			return escrow.ErrAmountTooLarge
		}

		if err := m.burn(id, old); err != nil {
			return err
		}

		remainder := old.Copy()
		remainder.Amount.Sub(remainder.Amount, amount)
		cut := old.Copy()
		cut.Amount.Set(amount)

		id1, err = m.mint(owner, remainder)
		if err != nil {
			return err
		}
		id2, err = m.mint(owner, cut)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	l.log.WithFields(logrus.Fields{
		"id":        id,
		"remainder": id1,
		"cut":       id2,
	}).Debug("lock split")
	return id1, id2, nil
}
