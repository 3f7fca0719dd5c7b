package ledger

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Neverland-Money/go-escrow/inter"
)

// UserEpoch is the number of checkpoints recorded for a position. Epochs
// are 1-based; zero means no history.
func (s *Store) UserEpoch(id inter.LockID) (idx.Epoch, error) {
	b, err := s.table.UserEpochs.Get(lockKey(id))
	if err != nil {
		return 0, fmt.Errorf("load user epoch of %d: %w", id, err)
	}
	if b == nil {
		return 0, nil
	}
	return idx.Epoch(bigendian.BytesToUint32(b)), nil
}

func (s *Store) SetUserEpoch(id inter.LockID, epoch idx.Epoch) error {
	if err := s.table.UserEpochs.Put(lockKey(id), epochKey(epoch)); err != nil {
		return fmt.Errorf("store user epoch of %d: %w", id, err)
	}
	return nil
}

func (s *Store) UserPoint(id inter.LockID, epoch idx.Epoch) (inter.UserPoint, error) {
	b, err := s.table.UserPoints.Get(userPointKey(id, epoch))
	if err != nil {
		return inter.UserPoint{}, fmt.Errorf("load user point %d/%d: %w", id, epoch, err)
	}
	if b == nil {
		return inter.UserPoint{}, fmt.Errorf("user point %d/%d: missing checkpoint", id, epoch)
	}
	var p inter.UserPoint
	if err := rlp.DecodeBytes(b, &p); err != nil {
		return inter.UserPoint{}, fmt.Errorf("decode user point %d/%d: %w", id, epoch, err)
	}
	return p, nil
}

func (s *Store) SetUserPoint(id inter.LockID, epoch idx.Epoch, p inter.UserPoint) error {
	b, err := rlp.EncodeToBytes(&p)
	if err != nil {
		return fmt.Errorf("encode user point %d/%d: %w", id, epoch, err)
	}
	if err := s.table.UserPoints.Put(userPointKey(id, epoch), b); err != nil {
		return fmt.Errorf("store user point %d/%d: %w", id, epoch, err)
	}
	return nil
}

func (s *Store) GlobalPoint(epoch idx.Epoch) (inter.GlobalPoint, error) {
	b, err := s.table.GlobalPoints.Get(epochKey(epoch))
	if err != nil {
		return inter.GlobalPoint{}, fmt.Errorf("load global point %d: %w", epoch, err)
	}
	if b == nil {
		return inter.GlobalPoint{}, fmt.Errorf("global point %d: missing checkpoint", epoch)
	}
	var p inter.GlobalPoint
	if err := rlp.DecodeBytes(b, &p); err != nil {
		return inter.GlobalPoint{}, fmt.Errorf("decode global point %d: %w", epoch, err)
	}
	return p, nil
}

func (s *Store) SetGlobalPoint(epoch idx.Epoch, p inter.GlobalPoint) error {
	b, err := rlp.EncodeToBytes(&p)
	if err != nil {
		return fmt.Errorf("encode global point %d: %w", epoch, err)
	}
	if err := s.table.GlobalPoints.Put(epochKey(epoch), b); err != nil {
		return fmt.Errorf("store global point %d: %w", epoch, err)
	}
	return nil
}

// SlopeChange is the net slope delta scheduled at a week boundary, zero
// when nothing is scheduled.
func (s *Store) SlopeChange(t inter.Timestamp) (*big.Int, error) {
	b, err := s.table.SlopeChanges.Get(timeKey(t))
	if err != nil {
		return nil, fmt.Errorf("load slope change at %d: %w", t, err)
	}
	if b == nil {
		return new(big.Int), nil
	}
	var v inter.SignedBig
	if err := rlp.DecodeBytes(b, &v); err != nil {
		return nil, fmt.Errorf("decode slope change at %d: %w", t, err)
	}
	return v.Big(), nil
}

// SetSlopeChange stores the net delta, dropping the entry once it cancels
// out to zero.
func (s *Store) SetSlopeChange(t inter.Timestamp, v *big.Int) error {
	if v.Sign() == 0 {
		if err := s.table.SlopeChanges.Delete(timeKey(t)); err != nil {
			return fmt.Errorf("delete slope change at %d: %w", t, err)
		}
		return nil
	}
	b, err := rlp.EncodeToBytes(inter.SignedBigOf(v))
	if err != nil {
		return fmt.Errorf("encode slope change at %d: %w", t, err)
	}
	if err := s.table.SlopeChanges.Put(timeKey(t), b); err != nil {
		return fmt.Errorf("store slope change at %d: %w", t, err)
	}
	return nil
}

// ForEachSlopeChange walks scheduled deltas from the given boundary on.
func (s *Store) ForEachSlopeChange(from inter.Timestamp, fn func(t inter.Timestamp, v *big.Int) bool) error {
	it := s.table.SlopeChanges.NewIterator(nil, timeKey(from))
	defer it.Release()
	for it.Next() {
		t := inter.Timestamp(bigendian.BytesToUint64(it.Key()))
		var v inter.SignedBig
		if err := rlp.DecodeBytes(it.Value(), &v); err != nil {
			return fmt.Errorf("decode slope change at %d: %w", t, err)
		}
		if !fn(t, v.Big()) {
			break
		}
	}
	return it.Error()
}
