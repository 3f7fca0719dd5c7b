package ledger

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// replayHorizonWeeks caps how far past its nearest checkpoint a historical
// query may replay the slope-change schedule. Queries beyond it fail with
// escrow.ErrReplayHorizonExceeded instead of understating the decay.
const replayHorizonWeeks = 255

// balanceAt evaluates one position's weight at t, in the public unit.
func balanceAt(s *Store, id inter.LockID, t inter.Timestamp) (*big.Int, error) {
	count, err := s.UserEpoch(id)
	if err != nil {
		return nil, err
	}
	epoch, err := epochAtOrBefore(count, t, func(e idx.Epoch) (inter.Timestamp, error) {
		p, err := s.UserPoint(id, e)
		if err != nil {
			return 0, err
		}
		return p.Ts, nil
	})
	if err != nil {
		return nil, err
	}
	if epoch == 0 {
		return new(big.Int), nil
	}
	p, err := s.UserPoint(id, epoch)
	if err != nil {
		return nil, err
	}

	// a frozen position holds its amount flat
	if p.Permanent.Sign() > 0 {
		return new(big.Int).Set(p.Permanent), nil
	}
	dt := new(big.Int).SetUint64(uint64(t.Since(p.Ts)))
	bias := new(big.Int).Sub(p.Bias, new(big.Int).Mul(p.Slope, dt))
	wad.Clamp0(bias)
	return wad.Unscale(bias), nil
}

// supplyAt evaluates the aggregate weight at t, in the public unit: the
// nearest checkpoint at or before t is replayed forward through the
// schedule, one week boundary at a time.
func supplyAt(s *Store, t inter.Timestamp) (*big.Int, error) {
	count, err := s.GlobalEpoch()
	if err != nil {
		return nil, err
	}
	epoch, err := epochAtOrBefore(count, t, func(e idx.Epoch) (inter.Timestamp, error) {
		p, err := s.GlobalPoint(e)
		if err != nil {
			return 0, err
		}
		return p.Ts, nil
	})
	if err != nil {
		return nil, err
	}
	if epoch == 0 {
		return new(big.Int), nil
	}
	point, err := s.GlobalPoint(epoch)
	if err != nil {
		return nil, err
	}

	bias := new(big.Int).Set(point.Bias)
	slope := new(big.Int).Set(point.Slope)
	cursor := point.Ts

	ti := cursor.WeekFloor()
	for i := 0; i < replayHorizonWeeks && cursor < t; i++ {
		ti = ti.Add(inter.Week)
		dSlope := new(big.Int)
		if ti > t {
			ti = t
		} else {
			dSlope, err = s.SlopeChange(ti)
			if err != nil {
				return nil, err
			}
		}
		step := new(big.Int).SetUint64(uint64(ti.Since(cursor)))
		bias.Sub(bias, new(big.Int).Mul(slope, step))
		cursor = ti
		if ti == t {
			break
		}
		slope.Add(slope, dSlope)
		wad.Clamp0(slope)
	}
	if cursor < t {
		return nil, escrow.ErrReplayHorizonExceeded
	}

	wad.Clamp0(bias)
	total := wad.Unscale(bias)
	return total.Add(total, point.PermanentLockBalance), nil
}
