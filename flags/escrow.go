package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// EscrowFlags covers network rules and storage selection.
func EscrowFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Rules preset to run under (main|test|fake)",
			Value: "main",
		},
		cli.IntFlag{
			Name:  "fakenet",
			Usage: "Number of deterministic genesis locks for a fake network",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "db.preset",
			Usage: "Storage profile (memory|lite|archive|default)",
			Value: "default",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to storage caching",
			Value: 0,
		},
	}
}

// SimulateFlags isolates the scenario-runner knobs.
func SimulateFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scenario",
			Usage: "YAML scenario file to replay on a manual clock",
		},
		cli.BoolFlag{
			Name:  "audit",
			Usage: "Run a full audit after every step instead of once at the end",
		},
	}
}
