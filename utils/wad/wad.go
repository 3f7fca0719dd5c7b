// Package wad implements the fixed-point conventions of the escrow ledger.
//
// Public balances are unsigned integers with 18 decimal places ("WAD").
// Internal checkpoint accumulators (bias, slope) carry one extra WAD factor
// of precision, so converting a weight back to the public unit is a single
// floor division. Every conversion rounds downward: the ledger may
// understate a historical balance by at most one unit, never overstate it.
package wad

import (
	"errors"
	"math/big"
)

// Decimals is the number of decimal places of the public balance unit.
const Decimals = 18

// AmountBits is the maximum bit width of a public amount accepted by the
// ledger. It matches the accumulator width historical balances are folded
// into, so no checkpoint operation can silently truncate.
const AmountBits = 128

// One is the WAD scale factor, 10^18.
var One = big.NewInt(1_000_000_000_000_000_000)

var (
	// ErrCastOverflow reports a value too wide for its target.
	ErrCastOverflow = errors.New("wad: cast overflow")

	// ErrNegative reports a negative value reaching an unsigned conversion.
	ErrNegative = errors.New("wad: negative value")
)

// Scale lifts a public amount into the WAD-scaled accumulator domain.
func Scale(amount *big.Int) *big.Int {
	return new(big.Int).Mul(amount, One)
}

// Unscale lowers a WAD-scaled accumulator value back to the public unit,
// rounding down. Callers clamp before unscaling; a negative argument is a
// programming error and panics.
func Unscale(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		panic("wad: unscale of negative value")
	}
	return new(big.Int).Quo(x, One)
}

// CheckAmount rejects public amounts the accumulators cannot represent
// losslessly: nil or negative values, and values AmountBits wide or beyond.
func CheckAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegative
	}
	if amount.BitLen() > AmountBits {
		return ErrCastOverflow
	}
	return nil
}

// ToUint64 narrows x to uint64, failing loudly instead of truncating.
func ToUint64(x *big.Int) (uint64, error) {
	if x.Sign() < 0 {
		return 0, ErrNegative
	}
	if !x.IsUint64() {
		return 0, ErrCastOverflow
	}
	return x.Uint64(), nil
}

// Clamp0 floors x at zero in place and returns it.
func Clamp0(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		x.SetInt64(0)
	}
	return x
}

// MulDiv returns floor(x*num/den) for non-negative operands.
func MulDiv(x, num, den *big.Int) *big.Int {
	r := new(big.Int).Mul(x, num)
	return r.Quo(r, den)
}

// WeightedTime returns the weight-averaged timestamp
// floor((w1*t1 + w2*t2) / (w1+w2)). The combined weight must be positive.
func WeightedTime(w1 *big.Int, t1 uint64, w2 *big.Int, t2 uint64) uint64 {
	num := new(big.Int).Mul(w1, new(big.Int).SetUint64(t1))
	num.Add(num, new(big.Int).Mul(w2, new(big.Int).SetUint64(t2)))
	den := new(big.Int).Add(w1, w2)
	return num.Quo(num, den).Uint64()
}
