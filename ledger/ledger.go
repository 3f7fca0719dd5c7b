// Package ledger implements the escrow accounting engine: per-position and
// aggregate checkpoint histories, the slope-change schedule, historical
// balance and supply queries, and the lock lifecycle state machine.
package ledger

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
)

// Ledger is the voting-escrow accounting engine.
//
// Mutators serialize on one writer lock, stage every write of an operation
// in an overlay and commit it through a single batch, so a failed
// operation leaves no trace. Queries are pure functions over committed
// state and run under the read lock.
type Ledger struct {
	mu     sync.RWMutex
	db     escrowdb.Store
	reader *Store
	rules  escrow.Rules
	clock  Clock
	log    *logrus.Entry
}

// New opens a ledger over an initialized store. The store must carry a
// genesis (see ApplyGenesis), otherwise escrow.ErrNotInitialized is
// returned. A nil clock defaults to the system clock.
func New(db escrowdb.Store, clock Clock) (*Ledger, error) {
	reader := newStore(db)
	rules, err := reader.Rules()
	if err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ledger{
		db:     db,
		reader: reader,
		rules:  rules,
		clock:  clock,
		log:    logrus.WithField("module", "ledger"),
	}, nil
}

// Rules returns the network parameters the ledger runs under.
func (l *Ledger) Rules() escrow.Rules {
	return l.rules
}

// mutation is the working context of one state-changing operation: a store
// view over the write overlay, the operation time and its sequence number.
type mutation struct {
	l     *Ledger
	s     *Store
	now   inter.Timestamp
	block idx.Block
}

// mutate runs fn against an overlay of the database and commits the staged
// writes in one batch. On any error the overlay is dropped and nothing
// reaches the database.
func (l *Ledger) mutate(fn func(m *mutation) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ov := escrowdb.NewOverlay(l.db)
	s := newStore(ov)
	block, err := s.NextBlock()
	if err != nil {
		return err
	}
	m := &mutation{
		l:     l,
		s:     s,
		now:   l.clock.Now(),
		block: block,
	}
	if err := fn(m); err != nil {
		return err
	}
	batch := l.db.NewBatch()
	if err := ov.Flush(batch); err != nil {
		return err
	}
	return batch.Write()
}

// view runs fn under the read lock against committed state.
func (l *Ledger) view(fn func(s *Store) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.reader)
}

func (m *mutation) maxLockDuration() inter.Duration {
	return m.l.rules.Escrow.MaxLockDuration
}

func (m *mutation) minLockDuration() inter.Duration {
	return m.l.rules.Escrow.MinLockDuration
}
