package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nebuladata/colbuild/internal/source/csvsrc"
	"github.com/nebuladata/colbuild/internal/source/jsonsrc"
	"github.com/nebuladata/colbuild/internal/source/xlssrc"
	"github.com/nebuladata/colbuild/internal/source/xlsxsrc"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/ingesterr"
	"github.com/nebuladata/colbuild/pkg/logger"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// NewConvertCommand builds the batch converter: every csv/json/xls/xlsx
// file in a directory becomes its own Arrow IPC file, one goroutine per
// input, driver chosen by extension.
func NewConvertCommand(use string) *cobra.Command {
	var configFile, dumpConfigFile string
	var delimiter string
	var workers int
	var timeout time.Duration
	var mac1904 bool

	csvCfg := convconfig.NewRunConfig(convconfig.DefaultCSVLimits())
	jsonCfg := convconfig.NewRunConfig(convconfig.DefaultJSONLimits())
	excelCfg := convconfig.NewRunConfig(convconfig.DefaultExcelLimits())

	cmd := &cobra.Command{
		Use:   use + " <input_dir> <output_dir>",
		Short: "Convert every csv/json/xls/xlsx file in a directory to Arrow IPC files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mac1904Override *bool
			if cmd.Flags().Changed("mac-1904") {
				mac1904Override = &mac1904
			}
			return runConvert(args, batchConfig{
				csv: csvCfg, json: jsonCfg, excel: excelCfg,
				configFile: configFile, dumpConfigFile: dumpConfigFile,
				delimiter: delimiter, workers: workers, timeout: timeout,
				mac1904: mac1904Override,
			})
		},
	}

	bindAmbientFlags(cmd, csvCfg, &configFile, &dumpConfigFile)
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Single-byte field delimiter for .csv inputs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Maximum number of files converted concurrently (0 = one goroutine per file)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Per-file conversion timeout (accepted but not enforced)")
	cmd.Flags().BoolVar(&mac1904, "mac-1904", false, "Use the 1904 (Mac) Excel date epoch for .xlsx inputs whose workbook does not declare one (.xls inputs read dates as text)")

	return cmd
}

type batchConfig struct {
	csv, json, excel        *convconfig.RunConfig
	configFile              string
	dumpConfigFile          string
	delimiter               string
	workers                 int
	timeout                 time.Duration
	mac1904                 *bool
}

type fileResult struct {
	path        string
	ok          bool
	hasWarnings bool
	err         error
}

func runConvert(args []string, bc batchConfig) error {
	inputDir, outputDir := args[0], args[1]

	if bc.configFile != "" {
		if err := convconfig.Load(bc.configFile, bc.csv); err != nil {
			return err
		}
		if err := convconfig.Load(bc.configFile, bc.json); err != nil {
			return err
		}
		if err := convconfig.Load(bc.configFile, bc.excel); err != nil {
			return err
		}
	}
	if err := logger.Init(logger.Config{Level: bc.csv.LogLevel, Encoding: bc.csv.LogEncoding}); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to initialize logger")
	}
	log := logger.Get()

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to list input directory")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to create output directory")
	}

	runID := uuid.New().String()
	log.Info("batch convert starting", zap.String("run_id", runID), zap.String("input_dir", inputDir))

	reg := prometheus.NewRegistry()
	filesOK := prometheus.NewCounter(prometheus.CounterOpts{Name: "convert_files_ok_total", Help: "Files converted without fatal error."})
	filesFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "convert_files_failed_total", Help: "Files that failed to convert."})
	warningsTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "convert_warnings_total", Help: "Converted files that raised at least one non-fatal warning."})
	reg.MustRegister(filesOK, filesFailed, warningsTotal)

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, supported := driverFor(e.Name()); supported {
			candidates = append(candidates, e.Name())
		}
	}

	limit := bc.workers
	if limit <= 0 {
		limit = len(candidates)
	}
	if limit == 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	results := make([]fileResult, len(candidates))
	var wg sync.WaitGroup
	for i, name := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = convertOne(log, bc, inputDir, outputDir, name)
		}(i, name)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			filesFailed.Inc()
			log.Error("file conversion failed", zap.String("file", r.path), zap.Error(r.err))
			continue
		}
		filesOK.Inc()
		if r.hasWarnings {
			warningsTotal.Inc()
		}
	}

	if err := writeMetricsSnapshot(reg, filepath.Join(outputDir, "convert-metrics.prom")); err != nil {
		log.Warn("failed to write metrics snapshot", zap.Error(err))
	}

	log.Info("batch convert finished",
		zap.String("run_id", runID),
		zap.Int("files_ok", countOK(results)),
		zap.Int("files_failed", len(results)-countOK(results)))

	fmt.Printf("batch %s: %d/%d files converted\n", runID, countOK(results), len(results))
	if countOK(results) < len(results) {
		return ingesterr.New(ingesterr.TypeData, "one or more files in the batch failed to convert")
	}
	return nil
}

func countOK(results []fileResult) int {
	n := 0
	for _, r := range results {
		if r.err == nil {
			n++
		}
	}
	return n
}

func driverFor(name string) (ext string, supported bool) {
	ext = strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".json", ".xls", ".xlsx":
		return ext, true
	default:
		return ext, false
	}
}

func convertOne(log *zap.Logger, bc batchConfig, inputDir, outputDir, name string) fileResult {
	ext, _ := driverFor(name)
	inputPath := filepath.Join(inputDir, name)
	outputPath := filepath.Join(outputDir, strings.TrimSuffix(name, ext)+".arrow")

	ledger := warnings.New()
	var schema *arrow.Schema
	var arrays []arrow.Array
	var err error

	switch ext {
	case ".csv":
		schema, arrays, err = convertCSVFile(inputPath, bc, ledger)
	case ".json":
		schema, arrays, err = convertJSONFile(inputPath, bc, ledger)
	case ".xlsx":
		schema, arrays, err = convertXLSXFile(inputPath, bc, ledger)
	case ".xls":
		schema, arrays, err = convertXLSFile(inputPath, bc, ledger)
	default:
		err = ingesterr.New(ingesterr.TypeValidation, "unsupported file extension: "+ext)
	}

	if err != nil {
		return fileResult{path: name, err: err}
	}
	defer releaseArrays(arrays)

	if err := writeOutput(outputPath, schema, arrays); err != nil {
		return fileResult{path: name, err: err}
	}

	log.Info("file converted", zap.String("file", name), zap.Int("rows", rowCount(arrays)), zap.Bool("has_warnings", ledger.HasAny()))
	return fileResult{path: name, ok: true, hasWarnings: ledger.HasAny()}
}

func convertCSVFile(path string, bc batchConfig, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	if len(bc.delimiter) != 1 {
		return nil, nil, validationErrorf("delimiter must be exactly one byte, got %q", bc.delimiter)
	}
	f, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	driver := csvsrc.New(bc.delimiter[0], bc.csv.Limits)
	return driver.Read(f, ledger)
}

func convertJSONFile(path string, bc batchConfig, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	driver := jsonsrc.New(bc.json.Limits)
	return driver.Read(f, ledger)
}

func convertXLSXFile(path string, bc batchConfig, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	driver := xlsxsrc.New(bc.excel.Limits, bc.excel.HasHeaderRow, bc.mac1904)
	result, err := driver.Read(f, ledger)
	if err != nil {
		return nil, nil, err
	}
	releaseArrays(result.HeaderArrays)
	return result.Schema, result.Arrays, nil
}

func convertXLSFile(path string, bc batchConfig, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	mac1904 := false
	if bc.mac1904 != nil {
		mac1904 = *bc.mac1904
	}
	driver := xlssrc.New(bc.excel.Limits, bc.excel.HasHeaderRow, mac1904)
	result, err := driver.Read(path, ledger)
	if err != nil {
		return nil, nil, err
	}
	releaseArrays(result.HeaderArrays)
	return result.Schema, result.Arrays, nil
}

func writeMetricsSnapshot(reg *prometheus.Registry, path string) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
