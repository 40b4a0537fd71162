// Package cli builds the cobra commands shared by every converter
// binary in this module: each standalone main (cmd/csv2arrow, …) and
// the umbrella multi-command binary (cmd/fileconv) both construct
// their commands from here, the way cmd/nebula/main.go builds a
// single binary's commands directly but with flags and RunE bodies
// factored out so six programs don't each reimplement "open input,
// run a driver, write output, print warnings."
package cli

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/ingesterr"
	"github.com/nebuladata/colbuild/pkg/logger"
	"github.com/nebuladata/colbuild/pkg/tableio"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// bindLimitFlags registers the --max-* flags every driver command
// shares onto cfg.Limits.
func bindLimitFlags(cmd *cobra.Command, cfg *convconfig.RunConfig) {
	flags := cmd.Flags()
	flags.Uint64Var(&cfg.MaxRows, "max-rows", cfg.MaxRows, "Skip rows after parsing this many (0 = unbounded)")
	flags.Uint64Var(&cfg.MaxColumns, "max-columns", cfg.MaxColumns, "Skip columns after this many (0 = unbounded)")
	flags.Uint32Var(&cfg.MaxBytesPerValue, "max-bytes-per-value", cfg.MaxBytesPerValue, "Truncate each value to at most this many bytes (0 = unbounded)")
	flags.Uint32Var(&cfg.MaxBytesPerErrorValue, "max-bytes-per-error-value", cfg.MaxBytesPerErrorValue, "Truncate warning snippets to at most this many bytes")
	flags.Uint32Var(&cfg.MaxBytesPerColumnName, "max-bytes-per-column-name", cfg.MaxBytesPerColumnName, "Truncate column names to at most this many bytes (0 = unbounded)")
	flags.Uint64Var(&cfg.MaxBytesTotal, "max-bytes-total", cfg.MaxBytesTotal, "Stop ingestion after this many bytes of useful data (0 = unbounded)")
}

// bindAmbientFlags registers the logging and config-file flags every
// command shares.
func bindAmbientFlags(cmd *cobra.Command, cfg *convconfig.RunConfig, configFile, dumpConfigFile *string) {
	flags := cmd.Flags()
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogEncoding, "log-encoding", cfg.LogEncoding, "Log encoding (json, console)")
	flags.StringVar(configFile, "config", "", "Optional YAML file loaded after flag parsing; values it sets override the flags")
	flags.StringVar(dumpConfigFile, "dump-config", "", "Write the effective configuration to this YAML file and continue")
}

// prepareRun loads an optional config file over cfg, initializes the
// global logger, and dumps the effective config if requested. Every
// command's RunE calls this before touching its input file.
func prepareRun(cfg *convconfig.RunConfig, configFile, dumpConfigFile string) (*zap.Logger, error) {
	if configFile != "" {
		if err := convconfig.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}); err != nil {
		return nil, ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to initialize logger")
	}

	if dumpConfigFile != "" {
		if err := convconfig.Save(dumpConfigFile, cfg); err != nil {
			return nil, err
		}
	}

	return logger.Get(), nil
}

// requireTwoArgs validates the "<input_file> <output_file>" shape
// every single-file converter command takes.
func requireTwoArgs(args []string) (inputPath, outputPath string, err error) {
	if len(args) != 2 {
		return "", "", ingesterr.New(ingesterr.TypeValidation, "expected exactly 2 arguments: <input_file> <output_file>")
	}
	return args[0], args[1], nil
}

// writeOutput writes schema/columns to path as a single-batch Arrow
// IPC file, matching every driver's "one table per input file" shape.
func writeOutput(path string, schema *arrow.Schema, columns []arrow.Array) error {
	f, err := os.Create(path)
	if err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to create output file")
	}
	defer f.Close()

	if err := tableio.WriteTable(f, schema, columns); err != nil {
		return err
	}
	return f.Close()
}

func releaseArrays(arrays []arrow.Array) {
	for _, a := range arrays {
		if a != nil {
			a.Release()
		}
	}
}

func rowCount(arrays []arrow.Array) int {
	if len(arrays) == 0 {
		return 0
	}
	return arrays[0].Len()
}

func finishRun(log *zap.Logger, driverName, inputPath string, schema *arrow.Schema, arrays []arrow.Array, ledger *warnings.Ledger) {
	log.Info("conversion complete",
		zap.String("driver", driverName),
		zap.String("input", inputPath),
		zap.Int("rows", rowCount(arrays)),
		zap.Int("columns", schema.NumFields()))
	ledger.Print(os.Stdout)
}

func newLedger() *warnings.Ledger {
	return warnings.New()
}

func validationErrorf(format string, args ...interface{}) error {
	return ingesterr.New(ingesterr.TypeValidation, fmt.Sprintf(format, args...))
}

func wrapFileErr(err error, message string) error {
	return ingesterr.Wrap(err, ingesterr.TypeFile, message)
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ingesterr.Wrap(err, ingesterr.TypeFile, fmt.Sprintf("failed to open input file %s", path))
	}
	return f, nil
}
