package inter

import (
	"math/big"
)

// SignedBig is a sign-and-magnitude form of a big.Int. RLP encodes only
// non-negative integers, and scheduled slope deltas are negative, so the
// slope-change schedule persists its values in this form.
type SignedBig struct {
	Neg bool
	Abs *big.Int
}

// SignedBigOf captures x, copying the magnitude.
func SignedBigOf(x *big.Int) SignedBig {
	return SignedBig{
		Neg: x.Sign() < 0,
		Abs: new(big.Int).Abs(x),
	}
}

// Big reconstructs the signed value as a fresh big.Int.
func (s SignedBig) Big() *big.Int {
	v := new(big.Int)
	if s.Abs != nil {
		v.Set(s.Abs)
	}
	if s.Neg {
		v.Neg(v)
	}
	return v
}
