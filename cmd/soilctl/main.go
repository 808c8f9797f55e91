// Command soilctl runs the soil water engine from the command line.
package main

import (
	"fmt"
	"os"

	"soilwater/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
