package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/internal/source/xlssrc"
	"github.com/nebuladata/colbuild/pkg/convconfig"
)

// NewXLSCommand builds the legacy-XLS-to-Arrow converter command.
func NewXLSCommand(use string) *cobra.Command {
	cfg := convconfig.NewRunConfig(convconfig.DefaultExcelLimits())
	var configFile, dumpConfigFile, headerRowsFile string
	var mac1904 bool

	cmd := &cobra.Command{
		Use:   use + " <input_file> <output_file>",
		Short: "Convert a legacy XLS workbook's first worksheet to a single-batch Arrow IPC file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runXLS(args, cfg, configFile, dumpConfigFile, headerRowsFile, mac1904)
		},
	}

	bindLimitFlags(cmd, cfg)
	bindAmbientFlags(cmd, cfg, &configFile, &dumpConfigFile)
	cmd.Flags().BoolVar(&cfg.HasHeaderRow, "header-row", cfg.HasHeaderRow, "Treat worksheet row 0 as column headers rather than data")
	cmd.Flags().StringVar(&headerRowsFile, "header-rows-file", "", "Path to write the header row's own Arrow IPC file")
	cmd.Flags().BoolVar(&mac1904, "mac-1904", false, "Accepted for the 1904 (Mac) Excel date epoch; has no effect, since this driver stores date cells as formatted text")

	return cmd
}

func runXLS(args []string, cfg *convconfig.RunConfig, configFile, dumpConfigFile, headerRowsFile string, mac1904 bool) error {
	inputPath, outputPath, err := requireTwoArgs(args)
	if err != nil {
		return err
	}

	log, err := prepareRun(cfg, configFile, dumpConfigFile)
	if err != nil {
		return err
	}

	ledger := newLedger()
	driver := xlssrc.New(cfg.Limits, cfg.HasHeaderRow, mac1904)
	result, err := driver.Read(inputPath, ledger)
	if err != nil {
		return wrapFileErr(err, "failed to read XLS input")
	}
	defer releaseArrays(result.Arrays)
	defer releaseArrays(result.HeaderArrays)

	if err := writeOutput(outputPath, result.Schema, result.Arrays); err != nil {
		return err
	}

	if cfg.HasHeaderRow && headerRowsFile != "" {
		if err := writeOutput(headerRowsFile, result.HeaderSchema, result.HeaderArrays); err != nil {
			return err
		}
	}

	finishRun(log, "xls", inputPath, result.Schema, result.Arrays, ledger)
	return nil
}
