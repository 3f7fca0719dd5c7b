package inter

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// UserPoint is one checkpoint of a single position's weight history.
//
// Bias and Slope are WAD-scaled: for a decaying lock the weight at a time
// t >= Ts is (Bias - Slope*(t-Ts)) / 10^18, floored at zero. Permanent is
// the frozen amount in the public unit; while it is non-zero the decaying
// pair is zero.
type UserPoint struct {
	Bias      *big.Int
	Slope     *big.Int
	Ts        Timestamp
	Block     idx.Block
	Permanent *big.Int
}

// NewUserPoint returns an empty point pinned to the given time and block.
func NewUserPoint(ts Timestamp, block idx.Block) UserPoint {
	return UserPoint{
		Bias:      new(big.Int),
		Slope:     new(big.Int),
		Ts:        ts,
		Block:     block,
		Permanent: new(big.Int),
	}
}

// Copy returns a deep copy of the point.
func (p UserPoint) Copy() UserPoint {
	cp := p
	cp.Bias = new(big.Int).Set(p.Bias)
	cp.Slope = new(big.Int).Set(p.Slope)
	cp.Permanent = new(big.Int).Set(p.Permanent)
	return cp
}

// GlobalPoint is one checkpoint of the aggregate weight history. Bias and
// Slope sum the contributions of every decaying lock; PermanentLockBalance
// sums all frozen amounts in the public unit.
type GlobalPoint struct {
	Bias                 *big.Int
	Slope                *big.Int
	Ts                   Timestamp
	Block                idx.Block
	PermanentLockBalance *big.Int
}

// NewGlobalPoint returns an empty point pinned to the given time and block.
func NewGlobalPoint(ts Timestamp, block idx.Block) GlobalPoint {
	return GlobalPoint{
		Bias:                 new(big.Int),
		Slope:                new(big.Int),
		Ts:                   ts,
		Block:                block,
		PermanentLockBalance: new(big.Int),
	}
}

// Copy returns a deep copy of the point.
func (p GlobalPoint) Copy() GlobalPoint {
	cp := p
	cp.Bias = new(big.Int).Set(p.Bias)
	cp.Slope = new(big.Int).Set(p.Slope)
	cp.PermanentLockBalance = new(big.Int).Set(p.PermanentLockBalance)
	return cp
}
