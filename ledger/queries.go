package ledger

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Neverland-Money/go-escrow/inter"
)

// BalanceOf is the position's weight at the current time.
func (l *Ledger) BalanceOf(id inter.LockID) (*big.Int, error) {
	return l.BalanceAt(id, l.clock.Now())
}

// BalanceAt is the position's weight at an arbitrary time: the checkpoint
// at or before t is decayed forward to t. Times before the first
// checkpoint read zero.
func (l *Ledger) BalanceAt(id inter.LockID, t inter.Timestamp) (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = balanceAt(s, id, t)
		return err
	})
	return v, err
}

// TotalSupply is the aggregate weight at the current time. After more than
// the replay horizon without a checkpoint it fails with
// escrow.ErrReplayHorizonExceeded; run Checkpoint to roll forward first.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.TotalSupplyAt(l.clock.Now())
}

// TotalSupplyAt is the aggregate weight at an arbitrary time.
func (l *Ledger) TotalSupplyAt(t inter.Timestamp) (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = supplyAt(s, t)
		return err
	})
	return v, err
}

// OwnerOf is the owner of a position, or the zero address once burned.
func (l *Ledger) OwnerOf(id inter.LockID) (common.Address, error) {
	var a common.Address
	err := l.view(func(s *Store) error {
		var err error
		a, err = s.Owner(id)
		return err
	})
	return a, err
}

// Locked is the position record as external callers see it: a permanent
// lock reads a zero unlock time.
func (l *Ledger) Locked(id inter.LockID) (inter.LockedBalance, error) {
	var lb inter.LockedBalance
	err := l.view(func(s *Store) error {
		var err error
		lb, err = s.Position(id)
		if err != nil {
			return err
		}
		lb = lb.Copy()
		lb.End = lb.UnlockTime()
		return nil
	})
	return lb, err
}

// LockEnd is the externally visible unlock time of a position.
func (l *Ledger) LockEnd(id inter.LockID) (inter.Timestamp, error) {
	lb, err := l.Locked(id)
	if err != nil {
		return 0, err
	}
	return lb.End, nil
}

// UserPointEpoch is the number of checkpoints in a position's history.
func (l *Ledger) UserPointEpoch(id inter.LockID) (idx.Epoch, error) {
	var e idx.Epoch
	err := l.view(func(s *Store) error {
		var err error
		e, err = s.UserEpoch(id)
		return err
	})
	return e, err
}

// UserPointAt reads one checkpoint of a position's history (1-based).
func (l *Ledger) UserPointAt(id inter.LockID, epoch idx.Epoch) (inter.UserPoint, error) {
	var p inter.UserPoint
	err := l.view(func(s *Store) error {
		var err error
		p, err = s.UserPoint(id, epoch)
		return err
	})
	return p, err
}

// GlobalEpoch is the number of checkpoints in the aggregate history.
func (l *Ledger) GlobalEpoch() (idx.Epoch, error) {
	var e idx.Epoch
	err := l.view(func(s *Store) error {
		var err error
		e, err = s.GlobalEpoch()
		return err
	})
	return e, err
}

// GlobalPointAt reads one checkpoint of the aggregate history (1-based).
func (l *Ledger) GlobalPointAt(epoch idx.Epoch) (inter.GlobalPoint, error) {
	var p inter.GlobalPoint
	err := l.view(func(s *Store) error {
		var err error
		p, err = s.GlobalPoint(epoch)
		return err
	})
	return p, err
}

// SlopeChange is the net scheduled slope delta at a week boundary.
func (l *Ledger) SlopeChange(t inter.Timestamp) (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = s.SlopeChange(t)
		return err
	})
	return v, err
}

// TotalLocked is the sum of all locked amounts, decay-free.
func (l *Ledger) TotalLocked() (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = s.TotalLocked()
		return err
	})
	return v, err
}

// PermanentTotal is the sum of all frozen amounts.
func (l *Ledger) PermanentTotal() (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = s.PermanentTotal()
		return err
	})
	return v, err
}

// PenaltiesAccrued is the cumulative penalty amount withheld for the
// treasury by early withdrawals.
func (l *Ledger) PenaltiesAccrued() (*big.Int, error) {
	var v *big.Int
	err := l.view(func(s *Store) error {
		var err error
		v, err = s.PenaltiesAccrued()
		return err
	})
	return v, err
}

// Governor is the address allowed to toggle splitting.
func (l *Ledger) Governor() (common.Address, error) {
	var a common.Address
	err := l.view(func(s *Store) error {
		var err error
		a, err = s.Governor()
		return err
	})
	return a, err
}

// CanSplit reports whether owner may split, through either the per-owner
// or the ledger-wide flag.
func (l *Ledger) CanSplit(owner common.Address) (bool, error) {
	var ok bool
	err := l.view(func(s *Store) error {
		var err error
		ok, err = s.SplitAllowed(owner)
		if err != nil || ok {
			return err
		}
		ok, err = s.SplitAllowed(common.Address{})
		return err
	})
	return ok, err
}

// Approved is the address approved on a position, or zero.
func (l *Ledger) Approved(id inter.LockID) (common.Address, error) {
	var a common.Address
	err := l.view(func(s *Store) error {
		var err error
		a, err = s.Approval(id)
		return err
	})
	return a, err
}

// IsOperator reports whether operator manages every position of owner.
func (l *Ledger) IsOperator(owner, operator common.Address) (bool, error) {
	var ok bool
	err := l.view(func(s *Store) error {
		var err error
		ok, err = s.IsOperator(owner, operator)
		return err
	})
	return ok, err
}

// LastLockID is the highest id handed out so far.
func (l *Ledger) LastLockID() (inter.LockID, error) {
	var id inter.LockID
	err := l.view(func(s *Store) error {
		var err error
		id, err = s.LastLockID()
		return err
	})
	return id, err
}

// GenesisHash fingerprints the document the store was initialized from.
func (l *Ledger) GenesisHash() (hash.Hash, error) {
	var h hash.Hash
	err := l.view(func(s *Store) error {
		var err error
		h, err = s.GenesisHash()
		return err
	})
	return h, err
}

// Now exposes the ledger clock reading used by current-time queries.
func (l *Ledger) Now() inter.Timestamp {
	return l.clock.Now()
}
