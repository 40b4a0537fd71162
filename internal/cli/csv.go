package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/internal/source/csvsrc"
	"github.com/nebuladata/colbuild/pkg/convconfig"
)

// NewCSVCommand builds the CSV-to-Arrow converter command. use lets
// the umbrella binary call it "csv" while the standalone binary calls
// it "csv2arrow", matching each program's own --help banner.
func NewCSVCommand(use string) *cobra.Command {
	cfg := convconfig.NewRunConfig(convconfig.DefaultCSVLimits())
	var configFile, dumpConfigFile, delimiter string

	cmd := &cobra.Command{
		Use:   use + " <input_file> <output_file>",
		Short: "Convert a CSV file to a single-batch Arrow IPC file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCSV(args, cfg, configFile, dumpConfigFile, delimiter)
		},
	}

	bindLimitFlags(cmd, cfg)
	bindAmbientFlags(cmd, cfg, &configFile, &dumpConfigFile)
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Single-byte field delimiter")

	return cmd
}

func runCSV(args []string, cfg *convconfig.RunConfig, configFile, dumpConfigFile, delimiter string) error {
	inputPath, outputPath, err := requireTwoArgs(args)
	if err != nil {
		return err
	}

	log, err := prepareRun(cfg, configFile, dumpConfigFile)
	if err != nil {
		return err
	}

	if len(delimiter) != 1 {
		return validationErrorf("--delimiter must be exactly one byte, got %q", delimiter)
	}

	f, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ledger := newLedger()
	driver := csvsrc.New(delimiter[0], cfg.Limits)
	schema, arrays, err := driver.Read(f, ledger)
	if err != nil {
		return wrapFileErr(err, "failed to read CSV input")
	}
	defer releaseArrays(arrays)

	if err := writeOutput(outputPath, schema, arrays); err != nil {
		return err
	}

	finishRun(log, "csv", inputPath, schema, arrays, ledger)
	return nil
}
