package ledger

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Neverland-Money/go-escrow/inter"
)

var splitFlag = []byte{1}

// Position loads the record of a lock. A never-created id reads as a zero
// record in the LockNone state.
func (s *Store) Position(id inter.LockID) (inter.LockedBalance, error) {
	b, err := s.table.Positions.Get(lockKey(id))
	if err != nil {
		return inter.LockedBalance{}, fmt.Errorf("load position %d: %w", id, err)
	}
	if b == nil {
		return inter.LockedBalance{Amount: new(big.Int), State: inter.LockNone}, nil
	}
	var l inter.LockedBalance
	if err := rlp.DecodeBytes(b, &l); err != nil {
		return inter.LockedBalance{}, fmt.Errorf("decode position %d: %w", id, err)
	}
	return l, nil
}

func (s *Store) SetPosition(id inter.LockID, l inter.LockedBalance) error {
	b, err := rlp.EncodeToBytes(&l)
	if err != nil {
		return fmt.Errorf("encode position %d: %w", id, err)
	}
	if err := s.table.Positions.Put(lockKey(id), b); err != nil {
		return fmt.Errorf("store position %d: %w", id, err)
	}
	return nil
}

// ForEachPosition walks every created position in id order. The callback
// returns false to stop.
func (s *Store) ForEachPosition(fn func(id inter.LockID, l inter.LockedBalance) bool) error {
	it := s.table.Positions.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		id := inter.LockID(bigendian.BytesToUint64(it.Key()))
		var l inter.LockedBalance
		if err := rlp.DecodeBytes(it.Value(), &l); err != nil {
			return fmt.Errorf("decode position %d: %w", id, err)
		}
		if !fn(id, l) {
			break
		}
	}
	return it.Error()
}

// Owner is the zero address for ids that were never created or are burned.
func (s *Store) Owner(id inter.LockID) (common.Address, error) {
	b, err := s.table.Owners.Get(lockKey(id))
	if err != nil {
		return common.Address{}, fmt.Errorf("load owner of %d: %w", id, err)
	}
	return common.BytesToAddress(b), nil
}

func (s *Store) SetOwner(id inter.LockID, owner common.Address) error {
	if err := s.table.Owners.Put(lockKey(id), owner.Bytes()); err != nil {
		return fmt.Errorf("store owner of %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteOwner(id inter.LockID) error {
	if err := s.table.Owners.Delete(lockKey(id)); err != nil {
		return fmt.Errorf("delete owner of %d: %w", id, err)
	}
	return nil
}

func (s *Store) Approval(id inter.LockID) (common.Address, error) {
	b, err := s.table.Approvals.Get(lockKey(id))
	if err != nil {
		return common.Address{}, fmt.Errorf("load approval of %d: %w", id, err)
	}
	return common.BytesToAddress(b), nil
}

func (s *Store) SetApproval(id inter.LockID, spender common.Address) error {
	if spender == (common.Address{}) {
		if err := s.table.Approvals.Delete(lockKey(id)); err != nil {
			return fmt.Errorf("clear approval of %d: %w", id, err)
		}
		return nil
	}
	if err := s.table.Approvals.Put(lockKey(id), spender.Bytes()); err != nil {
		return fmt.Errorf("store approval of %d: %w", id, err)
	}
	return nil
}

func operatorKey(owner, operator common.Address) []byte {
	return append(owner.Bytes(), operator.Bytes()...)
}

func (s *Store) IsOperator(owner, operator common.Address) (bool, error) {
	ok, err := s.table.Operators.Has(operatorKey(owner, operator))
	if err != nil {
		return false, fmt.Errorf("load operator flag: %w", err)
	}
	return ok, nil
}

func (s *Store) SetOperator(owner, operator common.Address, approved bool) error {
	var err error
	if approved {
		err = s.table.Operators.Put(operatorKey(owner, operator), splitFlag)
	} else {
		err = s.table.Operators.Delete(operatorKey(owner, operator))
	}
	if err != nil {
		return fmt.Errorf("store operator flag: %w", err)
	}
	return nil
}

// SplitAllowed reports the per-owner flag; the zero address holds the
// ledger-wide flag.
func (s *Store) SplitAllowed(owner common.Address) (bool, error) {
	ok, err := s.table.SplitAllowed.Has(owner.Bytes())
	if err != nil {
		return false, fmt.Errorf("load split flag: %w", err)
	}
	return ok, nil
}

func (s *Store) SetSplitAllowed(owner common.Address, allowed bool) error {
	var err error
	if allowed {
		err = s.table.SplitAllowed.Put(owner.Bytes(), splitFlag)
	} else {
		err = s.table.SplitAllowed.Delete(owner.Bytes())
	}
	if err != nil {
		return fmt.Errorf("store split flag: %w", err)
	}
	return nil
}
