package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
)

func TestBalanceDecaysLinearly(t *testing.T) {
	l, clock := newTestLedger(t)
	maxDur := l.Rules().Escrow.MaxLockDuration

	amount := tokens(1000)
	id, err := l.CreateLock(alice, amount, maxDur)
	require.NoError(t, err)

	within(t, amount, mustBalance(t, l, id), 1)

	// half the lock time gone, half the weight gone
	clock.Advance(maxDur / 2)
	within(t, tokens(500), mustBalance(t, l, id), 2)

	// at three quarters
	clock.Advance(maxDur / 4)
	within(t, tokens(250), mustBalance(t, l, id), 2)

	// expiry floors the weight at exactly zero
	clock.Advance(maxDur / 4)
	assert.Equal(t, 0, mustBalance(t, l, id).Sign())

	clock.Advance(52 * inter.Week)
	assert.Equal(t, 0, mustBalance(t, l, id).Sign())
}

func TestBalanceBeforeFirstCheckpointIsZero(t *testing.T) {
	l, clock := newTestLedger(t)

	clock.Advance(4 * inter.Week)
	id, err := l.CreateLock(alice, tokens(10), 10*inter.Week)
	require.NoError(t, err)

	b, err := l.BalanceAt(id, testStart)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Sign())

	b, err = l.BalanceAt(id, testStart.Add(4*inter.Week)-1)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Sign())

	s, err := l.TotalSupplyAt(testStart - 1)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Sign())
}

// the aggregate history must track the sum of position histories at any
// timestamp, past or extrapolated, across every lifecycle transition
func TestSupplyMatchesSumOfBalances(t *testing.T) {
	l, clock := newTestLedger(t)
	dave := addr("dave")

	id1, err := l.CreateLock(alice, tokens(1000), 104*inter.Week)
	require.NoError(t, err)
	id2, err := l.CreateLock(bob, tokens(400), 52*inter.Week)
	require.NoError(t, err)
	id3, err := l.CreateLock(dave, tokens(77), 10*inter.Week)
	require.NoError(t, err)

	clock.Advance(5 * inter.Week)
	require.NoError(t, l.LockPermanent(dave, id3))

	clock.Advance(5*inter.Week + 3*86400)
	id4, err := l.CreateLock(carol, tokens(250), 26*inter.Week)
	require.NoError(t, err)

	clock.Set(testStart.Add(15 * inter.Week))
	require.NoError(t, l.UnlockPermanent(dave, id3))

	clock.Set(testStart.Add(20 * inter.Week))
	_, _, err = l.EarlyWithdraw(bob, id2)
	require.NoError(t, err)

	ids := []inter.LockID{id1, id2, id3, id4}
	grid := []inter.Timestamp{
		testStart,
		testStart + 1,
		testStart.Add(3 * inter.Week),
		testStart.Add(5 * inter.Week),
		testStart.Add(5*inter.Week) + 1,
		testStart.Add(10*inter.Week) - 1,
		testStart.Add(10 * inter.Week),
		testStart.Add(12 * inter.Week),
		testStart.Add(15 * inter.Week),
		testStart.Add(20 * inter.Week),
		testStart.Add(36 * inter.Week),
		testStart.Add(52 * inter.Week),
		testStart.Add(104*inter.Week) - 1,
		testStart.Add(104 * inter.Week),
	}
	for _, ts := range grid {
		supply, err := l.TotalSupplyAt(ts)
		require.NoErrorf(t, err, "supply at %d", ts)

		sum := new(big.Int)
		for _, id := range ids {
			b, err := l.BalanceAt(id, ts)
			require.NoErrorf(t, err, "balance of %d at %d", id, ts)
			sum.Add(sum, b)
		}
		within(t, sum, supply, int64(len(ids)))
	}

	// every live lock has run out by the final grid point
	supply, err := l.TotalSupplyAt(testStart.Add(104 * inter.Week))
	require.NoError(t, err)
	assert.Equal(t, 0, supply.Sign())
}

func TestPermanentFreezesBalanceExactly(t *testing.T) {
	l, clock := newTestLedger(t)

	amount := tokens(333)
	id, err := l.CreateLock(alice, amount, 20*inter.Week)
	require.NoError(t, err)

	clock.Advance(2 * inter.Week)
	require.NoError(t, l.LockPermanent(alice, id))

	assert.Equal(t, amount, mustBalance(t, l, id))
	clock.Advance(30 * inter.Week) // far past the retained unlock time
	assert.Equal(t, amount, mustBalance(t, l, id))

	supply := mustSupply(t, l)
	assert.Equal(t, amount, supply, "a lone permanent lock is the whole supply")

	total, err := l.PermanentTotal()
	require.NoError(t, err)
	assert.Equal(t, amount, total)
}

// converting back must restore the decay curve as if the freeze never
// happened: the clock kept running underneath
func TestUnlockPermanentResumesOriginalCurve(t *testing.T) {
	l, clock := newTestLedger(t)

	amount := tokens(512)
	control, err := l.CreateLock(alice, amount, 40*inter.Week)
	require.NoError(t, err)
	subject, err := l.CreateLock(bob, amount, 40*inter.Week)
	require.NoError(t, err)

	clock.Advance(4 * inter.Week)
	require.NoError(t, l.LockPermanent(bob, subject))

	clock.Advance(6 * inter.Week)
	require.NoError(t, l.UnlockPermanent(bob, subject))

	for _, ahead := range []inter.Duration{0, 1, inter.Week, 10 * inter.Week, 30 * inter.Week} {
		ts := clock.Now().Add(ahead)
		wantBal, err := l.BalanceAt(control, ts)
		require.NoError(t, err)
		gotBal, err := l.BalanceAt(subject, ts)
		require.NoError(t, err)
		assert.Equalf(t, wantBal, gotBal, "at %d after unfreeze", ahead)
	}

	total, err := l.PermanentTotal()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())
}

func TestUnlockPermanentAfterRetainedExpiry(t *testing.T) {
	l, clock := newTestLedger(t)

	id, err := l.CreateLock(alice, tokens(10), 2*inter.Week)
	require.NoError(t, err)
	require.NoError(t, l.LockPermanent(alice, id))

	// the retained unlock time passes while frozen
	clock.Advance(5 * inter.Week)
	assert.Equal(t, tokens(10), mustBalance(t, l, id))

	require.NoError(t, l.UnlockPermanent(alice, id))
	assert.Equal(t, 0, mustBalance(t, l, id).Sign())

	// and the lock is immediately withdrawable
	got, err := l.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, tokens(10), got)
}

func TestReplayHorizon(t *testing.T) {
	l, clock := newTestLedger(t)

	id, err := l.CreateLock(alice, tokens(5), 10*inter.Week)
	require.NoError(t, err)

	// within the horizon a long-idle query still answers
	clock.Advance(254 * inter.Week)
	s, err := l.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Sign())

	// beyond it the query refuses instead of understating
	clock.Advance(2 * inter.Week)
	_, err = l.TotalSupply()
	require.ErrorIs(t, err, escrow.ErrReplayHorizonExceeded)

	// position queries extrapolate without a schedule and stay available
	b, err := l.BalanceOf(id)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Sign())

	// a checkpoint poke rolls the history forward and unblocks the query
	require.NoError(t, l.Checkpoint())
	s, err = l.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Sign())
}
