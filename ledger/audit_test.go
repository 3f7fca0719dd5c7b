package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neverland-Money/go-escrow/inter"
)

func TestAuditEmptyLedger(t *testing.T) {
	l, _ := newTestLedger(t)

	r, err := l.Audit()
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, 0, r.LivePositions)
	assert.Equal(t, 0, r.BurnedCount)
	assert.Equal(t, 0, r.TotalSupply.Sign())
	assert.Contains(t, r.String(), "audit OK")
}

func TestAuditMixedLifecycle(t *testing.T) {
	l, clock := newTestLedger(t)

	id1, err := l.CreateLock(alice, tokens(1000), 104*inter.Week)
	require.NoError(t, err)
	id2, err := l.CreateLock(bob, tokens(400), 52*inter.Week)
	require.NoError(t, err)
	id3, err := l.CreateLock(carol, tokens(77), 10*inter.Week)
	require.NoError(t, err)
	require.NoError(t, l.LockPermanent(carol, id3))

	clock.Advance(8 * inter.Week)
	require.NoError(t, l.DepositFor(id1, tokens(500)))
	_, _, err = l.EarlyWithdraw(bob, id2)
	require.NoError(t, err)

	require.NoError(t, l.ToggleSplit(governor, alice, true))
	_, _, err = l.Split(alice, id1, tokens(300))
	require.NoError(t, err)

	clock.Advance(20 * inter.Week)
	r, err := l.Audit()
	require.NoError(t, err)

	assert.True(t, r.OK, "audit: %s", r)
	assert.Equal(t, 3, r.LivePositions) // the two split halves and the permanent lock
	assert.Equal(t, 2, r.BurnedCount)   // the early withdrawal and the split source
	assert.Equal(t, tokens(1577), r.TotalLocked)
	assert.Equal(t, tokens(77), r.PermanentTotal)
	assert.Equal(t, r.SumAmounts, r.TotalLocked)
	assert.Equal(t, r.SumPermanent, r.PermanentTotal)
}

func TestAuditSurvivesExpiry(t *testing.T) {
	l, clock := newTestLedger(t)

	_, err := l.CreateLock(alice, tokens(10), 2*inter.Week)
	require.NoError(t, err)
	_, err = l.CreateLock(bob, tokens(20), 104*inter.Week)
	require.NoError(t, err)

	// the short lock expires without being withdrawn
	clock.Advance(50 * inter.Week)
	r, err := l.Audit()
	require.NoError(t, err)

	assert.True(t, r.OK, "audit: %s", r)
	assert.Equal(t, 2, r.LivePositions)
	assert.Equal(t, tokens(30), r.TotalLocked, "expired but unwithdrawn principal stays locked")
}
