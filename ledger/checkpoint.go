package ledger

import (
	"fmt"
	"math/big"

	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// slopeOf is the WAD-scaled decay rate of a locked amount: the whole
// amount melts away over the maximum lock duration. The division floors
// exactly once, here; every weight derived from the slope is then exact.
func slopeOf(amount *big.Int, maxDuration inter.Duration) *big.Int {
	return new(big.Int).Quo(wad.Scale(amount), new(big.Int).SetUint64(uint64(maxDuration)))
}

// biasOf is the WAD-scaled weight of a slope held from now to end.
func biasOf(slope *big.Int, end, now inter.Timestamp) *big.Int {
	return new(big.Int).Mul(slope, new(big.Int).SetUint64(uint64(end.Since(now))))
}

// checkpoint folds one position transition (old -> new) into both
// histories. It appends the position's next user point, rolls the
// aggregate history forward to now filling one point per crossed week
// boundary, applies the position's contribution delta, and maintains the
// slope-change schedule. A zero id rolls the aggregate history only.
func (m *mutation) checkpoint(id inter.LockID, oldLocked, newLocked inter.LockedBalance) error {
	var (
		uOld      = inter.NewUserPoint(m.now, m.block)
		uNew      = inter.NewUserPoint(m.now, m.block)
		oldDslope = new(big.Int)
		newDslope = new(big.Int)
		err       error
	)

	// a permanent lock contributes through the frozen total, not the
	// decaying pair, and holds no unlock time for scheduling
	oldEnd := oldLocked.UnlockTime()
	newEnd := newLocked.UnlockTime()

	if id != 0 {
		if newLocked.IsPermanent() {
			uNew.Permanent.Set(newLocked.Amount)
		}
		if oldEnd > m.now && oldLocked.Amount.Sign() > 0 {
			uOld.Slope = slopeOf(oldLocked.Amount, m.maxLockDuration())
			uOld.Bias = biasOf(uOld.Slope, oldEnd, m.now)
		}
		if newEnd > m.now && newLocked.Amount.Sign() > 0 {
			uNew.Slope = slopeOf(newLocked.Amount, m.maxLockDuration())
			uNew.Bias = biasOf(uNew.Slope, newEnd, m.now)
		}

		// snapshot the scheduled deltas at both unlock boundaries before
		// this transition rewrites them
		oldDslope, err = m.s.SlopeChange(oldEnd)
		if err != nil {
			return err
		}
		if newEnd != 0 {
			if newEnd == oldEnd {
				newDslope.Set(oldDslope)
			} else {
				newDslope, err = m.s.SlopeChange(newEnd)
				if err != nil {
					return err
				}
			}
		}
	}

	// roll the aggregate history forward to now
	epoch, err := m.s.GlobalEpoch()
	if err != nil {
		return err
	}
	lastPoint := inter.NewGlobalPoint(m.now, m.block)
	if epoch > 0 {
		lastPoint, err = m.s.GlobalPoint(epoch)
		if err != nil {
			return err
		}
	}
	if lastPoint.Ts > m.now {
		return fmt.Errorf("clock went backwards: last checkpoint at %d, now %d", lastPoint.Ts, m.now)
	}
	lastCheckpoint := lastPoint.Ts

	t := lastCheckpoint.WeekFloor()
	for {
		t = t.Add(inter.Week)
		dSlope := new(big.Int)
		if t > m.now {
			t = m.now
		} else {
			dSlope, err = m.s.SlopeChange(t)
			if err != nil {
				return err
			}
		}
		step := new(big.Int).SetUint64(uint64(t.Since(lastCheckpoint)))
		lastPoint.Bias.Sub(lastPoint.Bias, new(big.Int).Mul(lastPoint.Slope, step))
		lastPoint.Slope.Add(lastPoint.Slope, dSlope)
		wad.Clamp0(lastPoint.Bias)
		wad.Clamp0(lastPoint.Slope)
		lastCheckpoint = t
		lastPoint.Ts = t
		lastPoint.Block = m.block
		epoch++
		if t == m.now {
			break
		}
		if err := m.s.SetGlobalPoint(epoch, lastPoint.Copy()); err != nil {
			return err
		}
	}

	if id != 0 {
		// the aggregate absorbs the position's delta; clamped because the
		// filled history may already have melted the old contribution away
		lastPoint.Slope.Add(lastPoint.Slope, new(big.Int).Sub(uNew.Slope, uOld.Slope))
		lastPoint.Bias.Add(lastPoint.Bias, new(big.Int).Sub(uNew.Bias, uOld.Bias))
		wad.Clamp0(lastPoint.Slope)
		wad.Clamp0(lastPoint.Bias)
	}
	permanentTotal, err := m.s.PermanentTotal()
	if err != nil {
		return err
	}
	lastPoint.PermanentLockBalance.Set(permanentTotal)

	// a second checkpoint in the same second overwrites the previous point
	// instead of appending a duplicate timestamp
	if epoch > 1 {
		prev, err := m.s.GlobalPoint(epoch - 1)
		if err != nil {
			return err
		}
		if prev.Ts == m.now {
			epoch--
		}
	}
	if err := m.s.SetGlobalPoint(epoch, lastPoint); err != nil {
		return err
	}
	if err := m.s.SetGlobalEpoch(epoch); err != nil {
		return err
	}

	if id == 0 {
		return nil
	}

	// maintain the schedule around the position's boundaries
	if oldEnd > m.now {
		// cancel the drop the old lock had scheduled at its unlock
		oldDslope.Add(oldDslope, uOld.Slope)
		if newEnd == oldEnd {
			oldDslope.Sub(oldDslope, uNew.Slope)
		}
		if err := m.s.SetSlopeChange(oldEnd, oldDslope); err != nil {
			return err
		}
	}
	if newEnd > m.now && newEnd > oldEnd {
		newDslope.Sub(newDslope, uNew.Slope)
		if err := m.s.SetSlopeChange(newEnd, newDslope); err != nil {
			return err
		}
	}

	// append the position's point
	userEpoch, err := m.s.UserEpoch(id)
	if err != nil {
		return err
	}
	userEpoch++
	if err := m.s.SetUserEpoch(id, userEpoch); err != nil {
		return err
	}
	return m.s.SetUserPoint(id, userEpoch, uNew)
}
