package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Neverland-Money/go-escrow/escrow/genesis"
	"github.com/Neverland-Money/go-escrow/escrowdb"
	"github.com/Neverland-Money/go-escrow/inter"
	"github.com/Neverland-Money/go-escrow/ledger"
	"github.com/Neverland-Money/go-escrow/utils/wad"
)

// Scenario is a deterministic script: a genesis document plus a sequence
// of clock advances and ledger operations, replayed on a manual clock
// over a fresh in-memory store. The same scenario always produces the
// same final state.
type Scenario struct {
	Network string      `yaml:"network"`
	Genesis GenesisSpec `yaml:"genesis"`
	Steps   []Step      `yaml:"steps"`
}

// GenesisSpec names the governor and the locks existing from the start.
type GenesisSpec struct {
	Governor string        `yaml:"governor"`
	Locks    []GenesisLock `yaml:"locks"`
}

type GenesisLock struct {
	Owner     string `yaml:"owner"`
	Amount    uint64 `yaml:"amount"`
	Duration  string `yaml:"duration"`
	Permanent bool   `yaml:"permanent"`
}

// Step is one scripted action. Advance moves the clock before the
// operation runs; a step may carry either or both.
//
// Ops: create, deposit, extend, merge, split, permanent, unlock,
// withdraw, early-withdraw, approve, operator, transfer, toggle-split,
// set-governor, checkpoint.
//
// Account fields take a label ("alice") or a 0x-prefixed address. Caller
// defaults to the lock's current owner, or to the governor for the
// governance ops. Amounts are whole tokens, durations are compact
// strings like "26w" or "3d12h".
type Step struct {
	Advance string `yaml:"advance,omitempty"`

	Op       string `yaml:"op,omitempty"`
	Caller   string `yaml:"caller,omitempty"`
	Owner    string `yaml:"owner,omitempty"`
	Spender  string `yaml:"spender,omitempty"`
	Lock     uint64 `yaml:"lock,omitempty"`
	To       uint64 `yaml:"to,omitempty"`
	Amount   uint64 `yaml:"amount,omitempty"`
	Duration string `yaml:"duration,omitempty"`
	Allowed  bool   `yaml:"allowed,omitempty"`
}

// ScenarioResult is what a finished run produced.
type ScenarioResult struct {
	Steps   int
	Created []inter.LockID
	// Payouts is the principal returned by withdraw and early-withdraw
	// steps, after penalties.
	Payouts *big.Int
	Report  ledger.AuditReport
}

// ScenarioOptions tunes a run.
type ScenarioOptions struct {
	// AuditEveryStep cross-checks the ledger after each step instead of
	// only once at the end.
	AuditEveryStep bool
}

// LoadScenario reads and decodes a scenario file.
func LoadScenario(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return ParseScenario(raw)
}

// ParseScenario decodes a scenario document. Unknown fields are
// rejected, so a typo in a step key fails loudly instead of silently
// doing nothing.
func ParseScenario(raw []byte) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if sc.Network == "" {
		sc.Network = "fake"
	}
	return sc, nil
}

// RunScenario replays sc on a fresh in-memory ledger. A failing step
// aborts the run; the final audit report is returned for the caller to
// judge.
func RunScenario(sc Scenario, opts ScenarioOptions) (*ScenarioResult, error) {
	rules, err := rulesByName(sc.Network)
	if err != nil {
		return nil, err
	}

	governor := sc.Genesis.Governor
	if governor == "" {
		governor = "governor"
	}
	g := genesis.Genesis{
		Rules:    rules,
		Time:     genesis.FakeGenesisTime,
		Governor: namedAddress(governor),
	}
	for i, lk := range sc.Genesis.Locks {
		d, err := parseDuration(lk.Duration)
		if err != nil {
			return nil, fmt.Errorf("genesis lock %d: %w", i+1, err)
		}
		g.Locks = append(g.Locks, genesis.Lock{
			Owner:     namedAddress(lk.Owner),
			Amount:    tokens(lk.Amount),
			Duration:  d,
			Permanent: lk.Permanent,
		})
	}

	db := escrowdb.NewMemory()
	if _, err := ledger.ApplyGenesis(db, g); err != nil {
		return nil, err
	}
	clock := ledger.NewManualClock(genesis.FakeGenesisTime)
	l, err := ledger.New(db, clock)
	if err != nil {
		return nil, err
	}

	run := &scenarioRun{
		l:     l,
		clock: clock,
		result: &ScenarioResult{
			Created: []inter.LockID{},
			Payouts: new(big.Int),
		},
	}
	for i, st := range sc.Steps {
		if err := run.step(st); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		run.result.Steps++
		if opts.AuditEveryStep {
			report, err := l.Audit()
			if err != nil {
				return nil, fmt.Errorf("step %d: audit: %w", i+1, err)
			}
			if !report.OK {
				return nil, fmt.Errorf("step %d: %s", i+1, report)
			}
		}
	}

	report, err := l.Audit()
	if err != nil {
		return nil, err
	}
	run.result.Report = report
	return run.result, nil
}

type scenarioRun struct {
	l      *ledger.Ledger
	clock  *ledger.ManualClock
	result *ScenarioResult
}

func (r *scenarioRun) step(st Step) error {
	if st.Advance == "" && st.Op == "" {
		return errors.New("step has neither advance nor op")
	}
	if st.Advance != "" {
		d, err := parseDuration(st.Advance)
		if err != nil {
			return err
		}
		r.clock.Advance(d)
	}
	if st.Op == "" {
		return nil
	}
	return r.apply(st)
}

// caller resolves the acting address, falling back to the lock's owner.
func (r *scenarioRun) caller(st Step) (common.Address, error) {
	if st.Caller != "" {
		return namedAddress(st.Caller), nil
	}
	return r.l.OwnerOf(inter.LockID(st.Lock))
}

// governorOr resolves the acting address for governance ops, falling
// back to the current governor.
func (r *scenarioRun) governorOr(name string) (common.Address, error) {
	if name != "" {
		return namedAddress(name), nil
	}
	return r.l.Governor()
}

func (r *scenarioRun) apply(st Step) error {
	id := inter.LockID(st.Lock)
	log := logrus.WithFields(logrus.Fields{
		"op":   st.Op,
		"lock": st.Lock,
		"time": r.clock.Now(),
	})

	switch st.Op {
	case "create":
		d, err := parseDuration(st.Duration)
		if err != nil {
			return err
		}
		created, err := r.l.CreateLock(namedAddress(st.Owner), tokens(st.Amount), d)
		if err != nil {
			return err
		}
		r.result.Created = append(r.result.Created, created)
		log.WithField("id", created).Info("created lock")
		return nil

	case "deposit":
		if st.Caller == "" {
			return r.l.DepositFor(id, tokens(st.Amount))
		}
		return r.l.IncreaseAmount(namedAddress(st.Caller), id, tokens(st.Amount))

	case "extend":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		d, err := parseDuration(st.Duration)
		if err != nil {
			return err
		}
		return r.l.ExtendLock(caller, id, d)

	case "merge":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		return r.l.Merge(caller, id, inter.LockID(st.To))

	case "split":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		rest, cut, err := r.l.Split(caller, id, tokens(st.Amount))
		if err != nil {
			return err
		}
		r.result.Created = append(r.result.Created, rest, cut)
		log.WithFields(logrus.Fields{"rest": rest, "cut": cut}).Info("split lock")
		return nil

	case "permanent":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		return r.l.LockPermanent(caller, id)

	case "unlock":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		return r.l.UnlockPermanent(caller, id)

	case "withdraw":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		paid, err := r.l.Withdraw(caller, id)
		if err != nil {
			return err
		}
		r.result.Payouts.Add(r.result.Payouts, paid)
		log.WithField("paid", paid).Info("withdrew lock")
		return nil

	case "early-withdraw":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		payout, penalty, err := r.l.EarlyWithdraw(caller, id)
		if err != nil {
			return err
		}
		r.result.Payouts.Add(r.result.Payouts, payout)
		log.WithFields(logrus.Fields{"paid": payout, "penalty": penalty}).Info("early-withdrew lock")
		return nil

	case "approve":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		return r.l.Approve(caller, id, namedAddress(st.Spender))

	case "operator":
		return r.l.SetOperator(namedAddress(st.Caller), namedAddress(st.Spender), st.Allowed)

	case "transfer":
		caller, err := r.caller(st)
		if err != nil {
			return err
		}
		return r.l.Transfer(caller, id, namedAddress(st.Owner))

	case "toggle-split":
		caller, err := r.governorOr(st.Caller)
		if err != nil {
			return err
		}
		return r.l.ToggleSplit(caller, namedAddress(st.Owner), st.Allowed)

	case "set-governor":
		caller, err := r.governorOr(st.Caller)
		if err != nil {
			return err
		}
		return r.l.SetGovernor(caller, namedAddress(st.Owner))

	case "checkpoint":
		return r.l.Checkpoint()

	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

// namedAddress turns an account label into a deterministic address. Hex
// strings pass through, anything else is padded into the low bytes.
func namedAddress(name string) common.Address {
	if name == "" {
		return common.Address{}
	}
	if common.IsHexAddress(name) {
		return common.HexToAddress(name)
	}
	return common.BytesToAddress([]byte(name))
}

func tokens(n uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(n), wad.One)
}

// parseDuration reads a compact duration like "26w", "3d12h" or "90s".
// Units: w, d, h, m, s.
func parseDuration(s string) (inter.Duration, error) {
	if s == "" {
		return 0, errors.New("empty duration")
	}
	var total, num inter.Duration
	digits := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num = num*10 + inter.Duration(r-'0')
			digits = true
			continue
		}
		if !digits {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		var unit inter.Duration
		switch r {
		case 'w':
			unit = inter.Week
		case 'd':
			unit = 24 * 60 * 60
		case 'h':
			unit = 60 * 60
		case 'm':
			unit = 60
		case 's':
			unit = 1
		default:
			return 0, fmt.Errorf("unknown unit %q in duration %q", string(r), s)
		}
		total += num * unit
		num, digits = 0, false
	}
	if digits {
		return 0, fmt.Errorf("missing unit at end of duration %q", s)
	}
	return total, nil
}
