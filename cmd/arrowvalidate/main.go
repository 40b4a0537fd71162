// Command arrowvalidate checks an Arrow IPC file's content against the
// output invariants every driver in this module is expected to uphold.
package main

import (
	"fmt"
	"os"

	"github.com/nebuladata/colbuild/internal/cli"
)

func main() {
	root := cli.NewValidateCommand("arrowvalidate")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
