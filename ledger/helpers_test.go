package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/escrow/genesis"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

var (
	testStart = genesis.FakeGenesisTime
	alice     = addr("alice")
	bob       = addr("bob")
	carol     = addr("carol")
	governor  = addr("governor")
)

func addr(name string) common.Address {
	return common.BytesToAddress([]byte(name))
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), wad.One)
}

// newTestLedger boots a fakenet ledger over a fresh in-memory store with a
// manual clock frozen at the (week-aligned) genesis time.
func newTestLedger(t *testing.T) (*Ledger, *ManualClock) {
	t.Helper()
	return newTestLedgerWithRules(t, escrow.FakeNetRules())
}

func newTestLedgerWithRules(t *testing.T, rules escrow.Rules) (*Ledger, *ManualClock) {
	t.Helper()
	db := escrowdb.NewMemory()
	_, err := ApplyGenesis(db, genesis.Genesis{
		Rules:    rules,
		Time:     testStart,
		Governor: governor,
	})
	require.NoError(t, err)

	clock := NewManualClock(testStart)
	l, err := New(db, clock)
	require.NoError(t, err)
	return l, clock
}

// newGenesisDB returns a fresh in-memory store with the fakenet genesis
// already applied, for tests that construct the Ledger themselves.
func newGenesisDB(t *testing.T) escrowdb.Store {
	t.Helper()
	db := escrowdb.NewMemory()
	_, err := ApplyGenesis(db, genesis.Genesis{
		Rules:    escrow.FakeNetRules(),
		Time:     testStart,
		Governor: governor,
	})
	require.NoError(t, err)
	return db
}

// mustBalance reads BalanceOf and fails the test on error.
func mustBalance(t *testing.T, l *Ledger, id inter.LockID) *big.Int {
	t.Helper()
	b, err := l.BalanceOf(id)
	require.NoError(t, err)
	return b
}

// mustSupply reads TotalSupply and fails the test on error.
func mustSupply(t *testing.T, l *Ledger) *big.Int {
	t.Helper()
	s, err := l.TotalSupply()
	require.NoError(t, err)
	return s
}

// within asserts |got - want| <= tolerance, all in base units.
func within(t *testing.T, want, got *big.Int, tolerance int64) {
	t.Helper()
	diff := new(big.Int).Sub(want, got)
	diff.Abs(diff)
	require.Truef(t, diff.Cmp(big.NewInt(tolerance)) <= 0,
		"want %s, got %s (tolerance %d)", want, got, tolerance)
}
