// Command fileconv is the umbrella binary bundling every converter in
// this module as a subcommand, for deployments that would rather ship
// one binary than six.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "fileconv",
		Short: "Convert CSV, JSON, XLS, and XLSX files to Arrow IPC",
	}

	root.AddCommand(cli.NewCSVCommand("csv"))
	root.AddCommand(cli.NewJSONCommand("json"))
	root.AddCommand(cli.NewXLSXCommand("xlsx"))
	root.AddCommand(cli.NewXLSCommand("xls"))
	root.AddCommand(cli.NewValidateCommand("validate"))
	root.AddCommand(cli.NewConvertCommand("convert"))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
