package main

import (
	"fmt"
	"os"

	cbcsuite "github.com/drand/cbcsuite/internal/cbcsuite-cli"
)

func main() {
	app := cbcsuite.CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
