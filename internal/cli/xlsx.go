package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/internal/source/xlsxsrc"
	"github.com/nebuladata/colbuild/pkg/convconfig"
)

// NewXLSXCommand builds the XLSX-to-Arrow converter command.
func NewXLSXCommand(use string) *cobra.Command {
	cfg := convconfig.NewRunConfig(convconfig.DefaultExcelLimits())
	var configFile, dumpConfigFile, headerRowsFile string
	var mac1904 bool

	cmd := &cobra.Command{
		Use:   use + " <input_file> <output_file>",
		Short: "Convert an XLSX workbook's first worksheet to a single-batch Arrow IPC file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mac1904Override *bool
			if cmd.Flags().Changed("mac-1904") {
				mac1904Override = &mac1904
			}
			return runXLSX(args, cfg, configFile, dumpConfigFile, headerRowsFile, mac1904Override)
		},
	}

	bindLimitFlags(cmd, cfg)
	bindAmbientFlags(cmd, cfg, &configFile, &dumpConfigFile)
	cmd.Flags().BoolVar(&cfg.HasHeaderRow, "header-row", cfg.HasHeaderRow, "Treat worksheet row 0 as column headers rather than data")
	cmd.Flags().StringVar(&headerRowsFile, "header-rows-file", "", "Path to write the header row's own Arrow IPC file")
	cmd.Flags().BoolVar(&mac1904, "mac-1904", false, "Use the 1904 (Mac) Excel date epoch when the workbook does not declare its own date1904 flag")

	return cmd
}

func runXLSX(args []string, cfg *convconfig.RunConfig, configFile, dumpConfigFile, headerRowsFile string, mac1904 *bool) error {
	inputPath, outputPath, err := requireTwoArgs(args)
	if err != nil {
		return err
	}

	log, err := prepareRun(cfg, configFile, dumpConfigFile)
	if err != nil {
		return err
	}

	f, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ledger := newLedger()
	driver := xlsxsrc.New(cfg.Limits, cfg.HasHeaderRow, mac1904)
	result, err := driver.Read(f, ledger)
	if err != nil {
		return wrapFileErr(err, "failed to read XLSX input")
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

	finishRun(log, "xlsx", inputPath, result.Schema, result.Arrays, ledger)
	return nil
}
