// Command csv2arrow converts a single CSV file into a single-batch
// Arrow IPC file.
package main

import (
	"fmt"
	"os"

	"github.com/nebuladata/colbuild/internal/cli"
)

func main() {
	root := cli.NewCSVCommand("csv2arrow")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
