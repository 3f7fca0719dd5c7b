// Package genesis defines the bootstrap document of an escrow deployment:
// the network rules, the ledger start time, the governor, and the locks
// that exist from the first checkpoint on.
package genesis

import (
	"crypto/sha256"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
)

// Lock is one position created at genesis.
type Lock struct {
	Owner     common.Address
	Amount    *big.Int
	Duration  inter.Duration
	Permanent bool
}

// Genesis is the complete bootstrap document. Applying the same document
// to an empty store always produces the same state and the same Hash.
type Genesis struct {
	Rules    escrow.Rules
	Time     inter.Timestamp
	Governor common.Address
	Locks    []Lock
}

// Hash fingerprints the document.
func (g Genesis) Hash() hash.Hash {
	hasher := sha256.New()
	err := rlp.Encode(hasher, &g)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

// Copy returns a deep copy of the document.
func (g Genesis) Copy() Genesis {
	cp := g
	cp.Locks = make([]Lock, len(g.Locks))
	copy(cp.Locks, g.Locks)
	for i := range cp.Locks {
		if g.Locks[i].Amount != nil {
			cp.Locks[i].Amount = new(big.Int).Set(g.Locks[i].Amount)
		}
	}
	return cp
}
