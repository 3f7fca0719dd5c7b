package genesis

import (
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// FakeGenesisTime is the deterministic, week-aligned start of fake networks.
var FakeGenesisTime = inter.Timestamp(1700000000).WeekFloor()

// FakeOwner derives the deterministic owner address of fake account n.
func FakeOwner(n int) common.Address {
	var a common.Address
	a[0] = 0xfe
	copy(a[16:], bigendian.Uint32ToBytes(uint32(n)))
	return a
}

// FakeGenesis builds a deterministic document with n locks spread across
// the allowed duration range. Every third lock is permanent.
func FakeGenesis(n int, rules escrow.Rules) Genesis {
	minWeeks := uint64(rules.Escrow.MinLockDuration / inter.Week)
	maxWeeks := uint64(rules.Escrow.MaxLockDuration / inter.Week)
	span := maxWeeks - minWeeks

	locks := make([]Lock, n)
	for i := range locks {
		weeks := minWeeks
		if span > 0 {
			weeks += (uint64(i) * 7) % (span + 1)
		}
		locks[i] = Lock{
			Owner:     FakeOwner(i + 1),
			Amount:    new(big.Int).Mul(big.NewInt(int64(1000*(i+1))), wad.One),
			Duration:  inter.Duration(weeks) * inter.Week,
			Permanent: i%3 == 2,
		}
	}
	return Genesis{
		Rules:    rules,
		Time:     FakeGenesisTime,
		Governor: FakeOwner(1),
		Locks:    locks,
	}
}
