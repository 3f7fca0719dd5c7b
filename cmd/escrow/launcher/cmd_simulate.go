package launcher

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/Neverland-Money/go-escrow/flags"
)

var simulateCommand = cli.Command{
	Action:    simulate,
	Name:      "simulate",
	Usage:     "Replay a YAML scenario on a fresh in-memory ledger",
	ArgsUsage: "<scenario.yaml>",
	Flags: append(append(
		flags.CommonFlags(),
		flags.EscrowFlags()...),
		flags.SimulateFlags()...),
	Category: "LEDGER COMMANDS",
	Description: `
Builds the scenario's genesis in memory, replays its steps on a manual
clock, and prints the ids it minted, the principal it paid out and the
final audit report. The run is deterministic. A failing step or a broken
audit makes the command exit nonzero.`,
}

func simulate(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Node.Logging); err != nil {
		return err
	}

	path := ctx.String("scenario")
	if path == "" && ctx.NArg() > 0 {
		path = ctx.Args().First()
	}
	if path == "" {
		return fmt.Errorf("no scenario given: pass --scenario or a positional file argument")
	}

	sc, err := LoadScenario(resolvePath(path))
	if err != nil {
		return err
	}

	result, err := RunScenario(sc, ScenarioOptions{
		AuditEveryStep: ctx.Bool("audit"),
	})
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "replayed %d steps on network %q\n", result.Steps, sc.Network)
	if len(result.Created) > 0 {
		fmt.Fprintf(w, "minted locks: %v\n", result.Created)
	}
	if result.Payouts.Sign() > 0 {
		fmt.Fprintf(w, "paid out:     %s\n", result.Payouts)
	}
	fmt.Fprintln(w, result.Report.String())

	if !result.Report.OK {
		return fmt.Errorf("scenario left the ledger inconsistent")
	}
	return nil
}
