// Command calculator hosts the calculator program against a local ledger.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/calculator/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
