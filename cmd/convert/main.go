// Command convert batch-converts every csv/json/xls/xlsx file in a
// directory into its own Arrow IPC file.
package main

import (
	"fmt"
	"os"

	"github.com/nebuladata/colbuild/internal/cli"
)

func main() {
	root := cli.NewConvertCommand("convert")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
