package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/escrow/genesis"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
)

func TestApplyFakeGenesis(t *testing.T) {
	db := escrowdb.NewMemory()
	defer db.Close()

	g := genesis.FakeGenesis(5, escrow.FakeNetRules())
	h, err := ApplyGenesis(db, g)
	require.NoError(t, err)
	assert.Equal(t, g.Hash(), h)

	l, err := New(db, NewManualClock(genesis.FakeGenesisTime))
	require.NoError(t, err)

	last, err := l.LastLockID()
	require.NoError(t, err)
	assert.Equal(t, inter.LockID(5), last)

	stored, err := l.GenesisHash()
	require.NoError(t, err)
	assert.Equal(t, h, stored)

	gov, err := l.Governor()
	require.NoError(t, err)
	assert.Equal(t, genesis.FakeOwner(1), gov)

	for i, lk := range g.Locks {
		id := inter.LockID(i + 1)
		owner, err := l.OwnerOf(id)
		require.NoError(t, err)
		assert.Equal(t, lk.Owner, owner)

		locked, err := l.Locked(id)
		require.NoError(t, err)
		assert.Equal(t, lk.Amount, locked.Amount)
		if lk.Permanent {
			assert.Equal(t, inter.LockPermanent, locked.State)
		} else {
			assert.Equal(t, inter.LockActive, locked.State)
		}
		assert.Equal(t, 1, mustBalance(t, l, id).Sign())
	}

	r, err := l.Audit()
	require.NoError(t, err)
	assert.True(t, r.OK, "audit: %s", r)
	assert.Equal(t, 5, r.LivePositions)
}

func TestApplyGenesisTwiceIsNoop(t *testing.T) {
	db := escrowdb.NewMemory()
	defer db.Close()

	g := genesis.FakeGenesis(3, escrow.FakeNetRules())
	h1, err := ApplyGenesis(db, g)
	require.NoError(t, err)
	h2, err := ApplyGenesis(db, g)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	l, err := New(db, NewManualClock(genesis.FakeGenesisTime))
	require.NoError(t, err)
	last, err := l.LastLockID()
	require.NoError(t, err)
	assert.Equal(t, inter.LockID(3), last, "locks are not granted twice")
}

func TestApplyGenesisMismatch(t *testing.T) {
	db := escrowdb.NewMemory()
	defer db.Close()

	g := genesis.FakeGenesis(3, escrow.FakeNetRules())
	_, err := ApplyGenesis(db, g)
	require.NoError(t, err)

	other := g.Copy()
	other.Locks[0].Amount = tokens(1)
	_, err = ApplyGenesis(db, other)
	require.ErrorIs(t, err, escrow.ErrGenesisMismatch)
}

func TestApplyGenesisValidation(t *testing.T) {
	valid := func() genesis.Genesis {
		return genesis.FakeGenesis(2, escrow.FakeNetRules())
	}

	testCases := map[string]struct {
		mutate func(*genesis.Genesis)
		want   error
	}{
		"zero governor": {
			mutate: func(g *genesis.Genesis) { g.Governor = common.Address{} },
			want:   escrow.ErrZeroAddress,
		},
		"zero lock owner": {
			mutate: func(g *genesis.Genesis) { g.Locks[0].Owner = common.Address{} },
			want:   escrow.ErrZeroAddress,
		},
		"zero lock amount": {
			mutate: func(g *genesis.Genesis) { g.Locks[1].Amount = new(big.Int) },
			want:   escrow.ErrZeroAmount,
		},
		"lock duration too short": {
			mutate: func(g *genesis.Genesis) { g.Locks[0].Duration = inter.Week - 1 },
			want:   escrow.ErrLockTooShort,
		},
		"lock duration too long": {
			mutate: func(g *genesis.Genesis) { g.Locks[0].Duration = 105 * inter.Week },
			want:   escrow.ErrLockTooLong,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			db := escrowdb.NewMemory()
			defer db.Close()

			g := valid()
			tc.mutate(&g)
			_, err := ApplyGenesis(db, g)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApplyGenesisRejectsBadRules(t *testing.T) {
	db := escrowdb.NewMemory()
	defer db.Close()

	g := genesis.FakeGenesis(1, escrow.FakeNetRules())
	g.Rules.Escrow.MaxLockDuration = 104*inter.Week + 1
	_, err := ApplyGenesis(db, g)
	require.Error(t, err)
}

func TestNewRequiresGenesis(t *testing.T) {
	db := escrowdb.NewMemory()
	defer db.Close()

	_, err := New(db, nil)
	require.ErrorIs(t, err, escrow.ErrNotInitialized)
}
