package launcher

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/Neverland-Money/go-escrow/escrow/genesis"
	"github.com/Neverland-Money/go-escrow/flags"
	"github.com/Neverland-Money/go-escrow/integration"
	"github.com/Neverland-Money/go-escrow/ledger"
)

var inspectCommand = cli.Command{
	Action:   inspect,
	Name:     "inspect",
	Usage:    "Print the stored rules, counters and genesis fingerprint",
	Flags:    append(flags.CommonFlags(), flags.EscrowFlags()...),
	Category: "LEDGER COMMANDS",
	Description: `
Opens the store named by --db.preset and --datadir and dumps its
identity: network rules, genesis hash, governor, lock counters and the
aggregate supply. With --fakenet N an empty store is first initialized
with the deterministic N-lock genesis.`,
}

var checkCommand = cli.Command{
	Action:   check,
	Name:     "check",
	Usage:    "Audit every position and exit nonzero when the store is inconsistent",
	Flags:    append(flags.CommonFlags(), flags.EscrowFlags()...),
	Category: "LEDGER COMMANDS",
	Description: `
Replays every live position at the current time and cross-checks the
sums against the aggregate history and the stored counters. Prints the
report; a broken invariant makes the command exit nonzero.`,
}

// openLedger builds the configured store and a ledger over it. The
// returned closer must be called when done.
func openLedger(ctx *cli.Context) (*ledger.Ledger, func(), error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := setupLogging(cfg.Node.Logging); err != nil {
		return nil, nil, err
	}

	preset, err := integration.GetPresetByName(cfg.Store.Preset)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.CacheMB > 0 {
		preset.CacheMB = cfg.Store.CacheMB
	}
	db, err := integration.OpenStore(preset, cfg.Node.DataDir)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("closing store")
		}
	}

	if cfg.Escrow.FakeNet {
		rules, err := rulesByName(cfg.Escrow.NetworkName)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		g := genesis.FakeGenesis(cfg.Escrow.FakeLocks, rules)
		if _, err := ledger.ApplyGenesis(db, g); err != nil {
			closeStore()
			return nil, nil, err
		}
	}

	l, err := ledger.New(db, nil)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return l, closeStore, nil
}

func inspect(ctx *cli.Context) error {
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	rules := l.Rules()
	genesisHash, err := l.GenesisHash()
	if err != nil {
		return err
	}
	governor, err := l.Governor()
	if err != nil {
		return err
	}
	last, err := l.LastLockID()
	if err != nil {
		return err
	}
	epoch, err := l.GlobalEpoch()
	if err != nil {
		return err
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	locked, err := l.TotalLocked()
	if err != nil {
		return err
	}
	permanent, err := l.PermanentTotal()
	if err != nil {
		return err
	}
	penalties, err := l.PenaltiesAccrued()
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "network:    %s (id %s)\n", rules.Name, hexutil.EncodeUint64(rules.NetworkID))
	fmt.Fprintf(w, "genesis:    %s\n", hexutil.Encode(genesisHash[:]))
	fmt.Fprintf(w, "governor:   %s\n", governor.Hex())
	fmt.Fprintf(w, "locks:      %d minted\n", last)
	fmt.Fprintf(w, "epoch:      %d\n", epoch)
	fmt.Fprintf(w, "time:       %d\n", l.Now())
	fmt.Fprintf(w, "supply:     %s\n", supply)
	fmt.Fprintf(w, "locked:     %s\n", locked)
	fmt.Fprintf(w, "permanent:  %s\n", permanent)
	fmt.Fprintf(w, "penalties:  %s\n", penalties)
	return nil
}

func check(ctx *cli.Context) error {
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := l.Audit()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, report.String())
	if !report.OK {
		return fmt.Errorf("store is inconsistent")
	}
	return nil
}
