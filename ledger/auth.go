package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
)

// checkApprovedOrOwner authorizes caller on a position: the owner, the
// per-position approved address and the owner's operators qualify. Burned
// and never-created ids fail with escrow.ErrNoLock.
func checkApprovedOrOwner(s *Store, caller common.Address, id inter.LockID) error {
	owner, err := s.Owner(id)
	if err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return escrow.ErrNoLock
	}
	if caller == owner {
		return nil
	}
	approved, err := s.Approval(id)
	if err != nil {
		return err
	}
	if caller == approved {
		return nil
	}
	ok, err := s.IsOperator(owner, caller)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return escrow.ErrNotApprovedOrOwner
}

// Approve lets caller grant spender control over one position. The zero
// address clears the grant. Only the owner and its operators may approve.
func (l *Ledger) Approve(caller common.Address, id inter.LockID, spender common.Address) error {
	return l.mutate(func(m *mutation) error {
		owner, err := m.s.Owner(id)
		if err != nil {
			return err
		}
		if owner == (common.Address{}) {
			return escrow.ErrNoLock
		}
		if caller != owner {
			ok, err := m.s.IsOperator(owner, caller)
			if err != nil {
				return err
			}
			if !ok {
				return escrow.ErrNotApprovedOrOwner
			}
		}
		return m.s.SetApproval(id, spender)
	})
}

// SetOperator grants or revokes operator rights over every position the
// caller owns, current and future.
func (l *Ledger) SetOperator(caller, operator common.Address, approved bool) error {
	if operator == (common.Address{}) {
		return escrow.ErrZeroAddress
	}
	return l.mutate(func(m *mutation) error {
		return m.s.SetOperator(caller, operator, approved)
	})
}

// Transfer moves a position to a new owner and clears its approval. The
// position's weight and history stay untouched.
func (l *Ledger) Transfer(caller common.Address, id inter.LockID, to common.Address) error {
	if to == (common.Address{}) {
		return escrow.ErrZeroAddress
	}
	err := l.mutate(func(m *mutation) error {
		if err := checkApprovedOrOwner(m.s, caller, id); err != nil {
			return err
		}
		if err := m.s.SetApproval(id, common.Address{}); err != nil {
			return err
		}
		return m.s.SetOwner(id, to)
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{
		"id": id,
		"to": to.Hex(),
	}).Debug("position transferred")
	return nil
}

// ToggleSplit lets the governor allow or disallow splitting for one owner.
// The zero address toggles the ledger-wide flag.
func (l *Ledger) ToggleSplit(caller, owner common.Address, allowed bool) error {
	return l.mutate(func(m *mutation) error {
		governor, err := m.s.Governor()
		if err != nil {
			return err
		}
		if caller != governor {
			return escrow.ErrNotGovernor
		}
		return m.s.SetSplitAllowed(owner, allowed)
	})
}

// SetGovernor hands governance to a new address.
func (l *Ledger) SetGovernor(caller, governor common.Address) error {
	if governor == (common.Address{}) {
		return escrow.ErrZeroAddress
	}
	err := l.mutate(func(m *mutation) error {
		current, err := m.s.Governor()
		if err != nil {
			return err
		}
		if caller != current {
			return escrow.ErrNotGovernor
		}
		return m.s.SetGovernor(governor)
	})
	if err != nil {
		return err
	}
	l.log.WithField("governor", governor.Hex()).Info("governor changed")
	return nil
}
