package escrow

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Neverland-Money/go-escrow/inter"
)

const (
	MainNetworkID uint64 = 0x4e
	TestNetworkID uint64 = 0x4e2
	FakeNetworkID uint64 = 0x4e3
)

// FullPenaltyBps is the basis-point denominator of penalty math.
const FullPenaltyBps uint64 = 10000

// RulesRLP describes the escrow network parameters.
type RulesRLP struct {
	Name      string
	NetworkID uint64

	// Escrow parameterizes the lock lifecycle.
	Escrow EscrowRules

	// Treasury receives early-withdrawal penalties.
	Treasury common.Address
}

// EscrowRules are the lock lifecycle parameters.
type EscrowRules struct {
	// MinLockDuration is the shortest accepted distance to an unlock time,
	// measured after week alignment.
	MinLockDuration inter.Duration
	// MaxLockDuration is the longest accepted distance to an unlock time.
	// It is also the decay denominator: a lock of this length starts at
	// full weight. Must be a whole number of weeks.
	MaxLockDuration inter.Duration
	// MaxPenaltyBps is the early-withdrawal penalty at the moment a lock
	// is created, in basis points. The penalty decays linearly to zero
	// over the lock's effective duration.
	MaxPenaltyBps uint64
}

// Rules is RulesRLP with coupled methods.
type Rules RulesRLP

// MainNetRules returns the mainnet parameters.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Escrow: EscrowRules{
			MinLockDuration: 2 * inter.Week,
			MaxLockDuration: 208 * inter.Week,
			MaxPenaltyBps:   5000,
		},
		Treasury: common.HexToAddress("0x00000000000000000000000000000000004e0001"),
	}
}

// TestNetRules returns the testnet parameters.
func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Escrow: EscrowRules{
			MinLockDuration: 1 * inter.Week,
			MaxLockDuration: 208 * inter.Week,
			MaxPenaltyBps:   5000,
		},
		Treasury: common.HexToAddress("0x00000000000000000000000000000000004e0002"),
	}
}

// FakeNetRules returns parameters for localnet testing: a short lock
// ceiling so simulated timelines stay compact.
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Escrow: EscrowRules{
			MinLockDuration: 1 * inter.Week,
			MaxLockDuration: 104 * inter.Week,
			MaxPenaltyBps:   5000,
		},
		Treasury: common.HexToAddress("0x00000000000000000000000000000000004e0003"),
	}
}

// Validate checks the internal consistency of the parameters.
func (r Rules) Validate() error {
	e := r.Escrow
	if e.MinLockDuration == 0 {
		return fmt.Errorf("rules %q: MinLockDuration is zero", r.Name)
	}
	if e.MaxLockDuration < e.MinLockDuration {
		return fmt.Errorf("rules %q: MaxLockDuration %d below MinLockDuration %d", r.Name, e.MaxLockDuration, e.MinLockDuration)
	}
	if e.MaxLockDuration%inter.Week != 0 {
		return fmt.Errorf("rules %q: MaxLockDuration %d is not week-aligned", r.Name, e.MaxLockDuration)
	}
	// historical queries replay at most 255 weeks past a checkpoint, so a
	// single lock must never outlive that horizon
	if e.MaxLockDuration/inter.Week > 255 {
		return fmt.Errorf("rules %q: MaxLockDuration %d exceeds 255 weeks", r.Name, e.MaxLockDuration)
	}
	if e.MaxPenaltyBps > FullPenaltyBps {
		return fmt.Errorf("rules %q: MaxPenaltyBps %d exceeds %d", r.Name, e.MaxPenaltyBps, FullPenaltyBps)
	}
	return nil
}

// String returns the JSON representation with \n instead of \\n.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
