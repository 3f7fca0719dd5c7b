package ledger

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/escrow/genesis"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
)

// ApplyGenesis initializes an empty store from the document and creates
// its initial locks at the genesis time. Applying the same document again
// is a no-op; a different document on a non-empty store is rejected with
// escrow.ErrGenesisMismatch.
func ApplyGenesis(db escrowdb.Store, g genesis.Genesis) (hash.Hash, error) {
	s := newStore(db)
	h := g.Hash()

	have, err := s.GenesisHash()
	if err != nil {
		return hash.Hash{}, err
	}
	if have != (hash.Hash{}) {
		if have == h {
			return h, nil
		}
		return hash.Hash{}, escrow.ErrGenesisMismatch
	}

	if err := g.Rules.Validate(); err != nil {
		return hash.Hash{}, err
	}
	if g.Governor == (common.Address{}) {
		return hash.Hash{}, fmt.Errorf("genesis governor: %w", escrow.ErrZeroAddress)
	}
	for i, lk := range g.Locks {
		if err := validateGenesisLock(g.Rules, g.Time, lk); err != nil {
			return hash.Hash{}, fmt.Errorf("genesis lock #%d: %w", i, err)
		}
	}

	ov := escrowdb.NewOverlay(db)
	os := newStore(ov)
	if err := os.SetRules(g.Rules); err != nil {
		return hash.Hash{}, err
	}
	if err := os.SetGovernor(g.Governor); err != nil {
		return hash.Hash{}, err
	}
	if err := os.SetGenesisTime(g.Time); err != nil {
		return hash.Hash{}, err
	}
	if err := os.SetNextLockID(1); err != nil {
		return hash.Hash{}, err
	}
	if err := os.SetGenesisHash(h); err != nil {
		return hash.Hash{}, err
	}
	batch := db.NewBatch()
	if err := ov.Flush(batch); err != nil {
		return hash.Hash{}, err
	}
	if err := batch.Write(); err != nil {
		return hash.Hash{}, err
	}

	// the initial locks run through the regular engine on a clock frozen
	// at the genesis time, so they checkpoint like any later operation
	lgr, err := New(db, NewManualClock(g.Time))
	if err != nil {
		return hash.Hash{}, err
	}
	for i, lk := range g.Locks {
		id, err := lgr.CreateLock(lk.Owner, lk.Amount, lk.Duration)
		if err != nil {
			return hash.Hash{}, fmt.Errorf("apply genesis lock #%d: %w", i, err)
		}
		if lk.Permanent {
			if err := lgr.LockPermanent(lk.Owner, id); err != nil {
				return hash.Hash{}, fmt.Errorf("apply genesis lock #%d: %w", i, err)
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"module":  "ledger",
		"rules":   g.Rules.Name,
		"locks":   len(g.Locks),
		"genesis": common.Hash(h).Hex(),
	}).Info("genesis applied")
	return h, nil
}

func validateGenesisLock(rules escrow.Rules, now inter.Timestamp, lk genesis.Lock) error {
	if lk.Owner == (common.Address{}) {
		return escrow.ErrZeroAddress
	}
	if err := checkAmount(lk.Amount); err != nil {
		return err
	}
	unlock := now.Add(lk.Duration).WeekFloor()
	if unlock <= now || unlock.Since(now) < rules.Escrow.MinLockDuration {
		return escrow.ErrLockTooShort
	}
	if unlock.Since(now) > rules.Escrow.MaxLockDuration {
		return escrow.ErrLockTooLong
	}
	return nil
}
