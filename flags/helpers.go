package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp builds the bare CLI application; the launcher attaches commands
// and flag groups to it.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "escrow"
	app.Usage = "Time-weighted voting-escrow balance ledger"
	app.Version = "1.0.0"
	app.Writer = os.Stdout
	return app
}
