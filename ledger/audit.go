package ledger

import (
	"fmt"
	"math/big"

	"github.com/Neverland-Money/go-escrow/inter"
)

// AuditReport summarizes the ledger-wide invariants at one point in time.
//
// Balances round down independently per position, so the sum of balances
// may trail the aggregate supply by up to one unit per live position; any
// other divergence means a corrupted store. The amount counters must match
// exactly.
type AuditReport struct {
	Time          inter.Timestamp
	LivePositions int
	BurnedCount   int

	SumBalances *big.Int
	TotalSupply *big.Int
	// SupplyDrift is TotalSupply - SumBalances, valid in [0, LivePositions].
	SupplyDrift *big.Int

	SumAmounts  *big.Int
	TotalLocked *big.Int

	SumPermanent   *big.Int
	PermanentTotal *big.Int

	OK bool
}

func (r AuditReport) String() string {
	status := "OK"
	if !r.OK {
		status = "BROKEN"
	}
	return fmt.Sprintf("audit %s at %d: %d live, %d burned, supply %s (drift %s), locked %s, permanent %s",
		status, r.Time, r.LivePositions, r.BurnedCount,
		r.TotalSupply, r.SupplyDrift, r.TotalLocked, r.PermanentTotal)
}

// Audit replays every position at the current time and cross-checks the
// sums against the aggregate history and the stored counters.
func (l *Ledger) Audit() (AuditReport, error) {
	now := l.clock.Now()
	r := AuditReport{
		Time:           now,
		SumBalances:    new(big.Int),
		TotalSupply:    new(big.Int),
		SupplyDrift:    new(big.Int),
		SumAmounts:     new(big.Int),
		TotalLocked:    new(big.Int),
		SumPermanent:   new(big.Int),
		PermanentTotal: new(big.Int),
	}

	err := l.view(func(s *Store) error {
		var walkErr error
		err := s.ForEachPosition(func(id inter.LockID, lb inter.LockedBalance) bool {
			switch lb.State {
			case inter.LockActive, inter.LockPermanent:
				r.LivePositions++
				r.SumAmounts.Add(r.SumAmounts, lb.Amount)
				if lb.IsPermanent() {
					r.SumPermanent.Add(r.SumPermanent, lb.Amount)
				}
				b, err := balanceAt(s, id, now)
				if err != nil {
					walkErr = err
					return false
				}
				r.SumBalances.Add(r.SumBalances, b)
			case inter.LockWithdrawn:
				r.BurnedCount++
			}
			return true
		})
		if err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}

		supply, err := supplyAt(s, now)
		if err != nil {
			return err
		}
		r.TotalSupply.Set(supply)

		locked, err := s.TotalLocked()
		if err != nil {
			return err
		}
		r.TotalLocked.Set(locked)

		permanent, err := s.PermanentTotal()
		if err != nil {
			return err
		}
		r.PermanentTotal.Set(permanent)
		return nil
	})
	if err != nil {
		return r, err
	}

	r.SupplyDrift.Sub(r.TotalSupply, r.SumBalances)
	tolerance := big.NewInt(int64(r.LivePositions))
	r.OK = r.SupplyDrift.Sign() >= 0 &&
		r.SupplyDrift.Cmp(tolerance) <= 0 &&
		r.SumAmounts.Cmp(r.TotalLocked) == 0 &&
		r.SumPermanent.Cmp(r.PermanentTotal) == 0

	if !r.OK {
		l.log.WithField("report", r.String()).Error("ledger audit failed")
	}
	return r, nil
}
