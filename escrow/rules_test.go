package escrow

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Neverland-Money/go-escrow/inter"
)

func TestNetworkConstants(t *testing.T) {
	if MainNetworkID != 0x4e {
		t.Errorf("MainNetworkID = 0x%x, want 0x4e", MainNetworkID)
	}
	if TestNetworkID != 0x4e2 {
		t.Errorf("TestNetworkID = 0x%x, want 0x4e2", TestNetworkID)
	}
	if FakeNetworkID != 0x4e3 {
		t.Errorf("FakeNetworkID = 0x%x, want 0x4e3", FakeNetworkID)
	}
	if FullPenaltyBps != 10000 {
		t.Errorf("FullPenaltyBps = %d, want 10000", FullPenaltyBps)
	}
}

func TestPresetRules(t *testing.T) {
	for name, tc := range map[string]struct {
		rules     Rules
		networkID uint64
		minWeeks  uint64
		maxWeeks  uint64
	}{
		"main": {MainNetRules(), MainNetworkID, 2, 208},
		"test": {TestNetRules(), TestNetworkID, 1, 208},
		"fake": {FakeNetRules(), FakeNetworkID, 1, 104},
	} {
		r := tc.rules
		if r.Name != name {
			t.Errorf("%s: Name = %q, want %q", name, r.Name, name)
		}
		if r.NetworkID != tc.networkID {
			t.Errorf("%s: NetworkID = 0x%x, want 0x%x", name, r.NetworkID, tc.networkID)
		}
		if got := uint64(r.Escrow.MinLockDuration / inter.Week); got != tc.minWeeks {
			t.Errorf("%s: MinLockDuration = %d weeks, want %d", name, got, tc.minWeeks)
		}
		if got := uint64(r.Escrow.MaxLockDuration / inter.Week); got != tc.maxWeeks {
			t.Errorf("%s: MaxLockDuration = %d weeks, want %d", name, got, tc.maxWeeks)
		}
		if r.Escrow.MaxPenaltyBps == 0 || r.Escrow.MaxPenaltyBps > FullPenaltyBps {
			t.Errorf("%s: MaxPenaltyBps = %d out of range", name, r.Escrow.MaxPenaltyBps)
		}
		zero := [20]byte{}
		if r.Treasury == zero {
			t.Errorf("%s: Treasury is the zero address", name)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("%s: Validate() = %v, want nil", name, err)
		}
	}
}

func TestRulesValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(r *Rules)
		wantSub string
	}{
		"zero min": {
			mutate:  func(r *Rules) { r.Escrow.MinLockDuration = 0 },
			wantSub: "MinLockDuration",
		},
		"max below min": {
			mutate:  func(r *Rules) { r.Escrow.MaxLockDuration = r.Escrow.MinLockDuration - 1 },
			wantSub: "below MinLockDuration",
		},
		"max not week aligned": {
			mutate:  func(r *Rules) { r.Escrow.MaxLockDuration += 1 },
			wantSub: "not week-aligned",
		},
		"max beyond replay horizon": {
			mutate:  func(r *Rules) { r.Escrow.MaxLockDuration = 256 * inter.Week },
			wantSub: "255 weeks",
		},
		"penalty above denominator": {
			mutate:  func(r *Rules) { r.Escrow.MaxPenaltyBps = FullPenaltyBps + 1 },
			wantSub: "MaxPenaltyBps",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := MainNetRules()
			tc.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tc.wantSub)
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("Validate() = %q, want substring %q", err.Error(), tc.wantSub)
			}
		})
	}
}

func TestRulesString(t *testing.T) {
	r := MainNetRules()
	s := r.String()
	if s == "" {
		t.Fatal("String() is empty")
	}

	var decoded Rules
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("String() is not valid JSON: %v", err)
	}
	if decoded.Name != r.Name {
		t.Errorf("round trip Name = %q, want %q", decoded.Name, r.Name)
	}
	if decoded.NetworkID != r.NetworkID {
		t.Errorf("round trip NetworkID = %d, want %d", decoded.NetworkID, r.NetworkID)
	}
	if decoded.Escrow != r.Escrow {
		t.Errorf("round trip Escrow = %+v, want %+v", decoded.Escrow, r.Escrow)
	}
	if decoded.Treasury != r.Treasury {
		t.Errorf("round trip Treasury = %s, want %s", decoded.Treasury.Hex(), r.Treasury.Hex())
	}
}

func TestRulesComparison(t *testing.T) {
	main := MainNetRules()
	test := TestNetRules()
	fake := FakeNetRules()

	if main.NetworkID == test.NetworkID || main.NetworkID == fake.NetworkID || test.NetworkID == fake.NetworkID {
		t.Error("network IDs must differ between presets")
	}
	if main.Treasury == test.Treasury || main.Treasury == fake.Treasury {
		t.Error("treasuries must differ between presets")
	}
	if main.Escrow.MinLockDuration <= test.Escrow.MinLockDuration {
		t.Error("mainnet must demand a longer minimum lock than testnet")
	}
	if fake.Escrow.MaxLockDuration >= main.Escrow.MaxLockDuration {
		t.Error("fakenet must keep a shorter lock ceiling than mainnet")
	}
}
