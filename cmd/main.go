package main

import (
	"fmt"
	"os"

	"github.com/Neverland-Money/go-escrow/cmd/escrow/launcher"
)

func main() {
	if err := launcher.Launch(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
