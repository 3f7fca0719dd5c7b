package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// Withdraw closes an expired position and returns the full locked amount.
// Permanent locks cannot expire; they must be converted back first.
func (l *Ledger) Withdraw(caller common.Address, id inter.LockID) (*big.Int, error) {
	amount := new(big.Int)
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
		if old.End > m.now {
			return escrow.ErrNotExpired
		}
		amount.Set(old.Amount)
		if err := m.subTotalLocked(amount); err != nil {
			return err
		}
		return m.burn(id, old)
	})
	if err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"id":     id,
		"amount": amount.String(),
	}).Debug("lock withdrawn")
	return amount, nil
}

// EarlyWithdraw closes a live position before its unlock time against a
// penalty. The penalty starts at MaxPenaltyBps of the amount and decays
// linearly over the lock's effective duration:
//
//	penalty = amount * maxPenaltyBps * remaining / (10000 * totalLockTime)
//
// where totalLockTime spans from the deposit-weighted effective start to
// the unlock time. Returns the paid-out amount and the penalty withheld
// for the treasury.
func (l *Ledger) EarlyWithdraw(caller common.Address, id inter.LockID) (payout, penalty *big.Int, err error) {
	payout = new(big.Int)
	penalty = new(big.Int)
	err = l.mutate(func(m *mutation) error {
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

		remaining := old.End.Since(m.now)
		totalLockTime := old.End.Since(old.EffectiveStart)
		bps := m.l.rules.Escrow.MaxPenaltyBps
		num := new(big.Int).SetUint64(bps * uint64(remaining))
		den := new(big.Int).SetUint64(escrow.FullPenaltyBps * uint64(totalLockTime))
		penalty.Set(wad.MulDiv(old.Amount, num, den))
		payout.Sub(old.Amount, penalty)

		if err := m.subTotalLocked(old.Amount); err != nil {
			return err
		}
		if err := m.addPenalties(penalty); err != nil {
			return err
		}
		return m.burn(id, old)
	})
	if err != nil {
		return nil, nil, err
	}
	l.log.WithFields(logrus.Fields{
		"id":       id,
		"payout":   payout.String(),
		"penalty":  penalty.String(),
		"treasury": l.rules.Treasury.Hex(),
	}).Debug("lock withdrawn early")
	return payout, penalty, nil
}

func (m *mutation) addPenalties(delta *big.Int) error {
	v, err := m.s.PenaltiesAccrued()
	if err != nil {
		return err
	}
	return m.s.SetPenaltiesAccrued(v.Add(v, delta))
}
