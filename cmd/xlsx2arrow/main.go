// Command xlsx2arrow converts the first worksheet of an XLSX workbook
// into a single-batch Arrow IPC file.
package main

import (
	"fmt"
	"os"

	"github.com/nebuladata/colbuild/internal/cli"
)

func main() {
	root := cli.NewXLSXCommand("xlsx2arrow")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
