package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebuladata/colbuild/internal/source/jsonsrc"
	"github.com/nebuladata/colbuild/pkg/convconfig"
)

// NewJSONCommand builds the JSON-to-Arrow converter command.
func NewJSONCommand(use string) *cobra.Command {
	cfg := convconfig.NewRunConfig(convconfig.DefaultJSONLimits())
	var configFile, dumpConfigFile string

	cmd := &cobra.Command{
		Use:   use + " <input_file> <output_file>",
		Short: "Convert a JSON file (array or array-bearing object) to a single-batch Arrow IPC file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJSON(args, cfg, configFile, dumpConfigFile)
		},
	}

	bindLimitFlags(cmd, cfg)
	bindAmbientFlags(cmd, cfg, &configFile, &dumpConfigFile)

	return cmd
}

func runJSON(args []string, cfg *convconfig.RunConfig, configFile, dumpConfigFile string) error {
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
	driver := jsonsrc.New(cfg.Limits)
	schema, arrays, err := driver.Read(f, ledger)
	if err != nil {
		return wrapFileErr(err, "failed to read JSON input")
	}
	defer releaseArrays(arrays)

	if err := writeOutput(outputPath, schema, arrays); err != nil {
		return err
	}

	finishRun(log, "json", inputPath, schema, arrays, ledger)
	return nil
}
