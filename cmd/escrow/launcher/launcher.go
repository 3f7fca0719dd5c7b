package launcher

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/Neverland-Money/go-escrow/flags"
)

var app = flags.NewApp()

func init() {
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.EscrowFlags()...)
	app.Commands = []cli.Command{
		simulateCommand,
		inspectCommand,
		checkCommand,
	}
}

// Launch parses args and dispatches to a subcommand. With no command it
// prints the usage text.
func Launch(args []string) error {
	return app.Run(args)
}
