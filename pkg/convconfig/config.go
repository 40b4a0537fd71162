// Package convconfig is the single configuration surface every driver
// and CLI command in this module reads from: the hard limits that
// bound memory and output size, plus the handful of run-wide knobs
// (logging, Excel date mode) that aren't per-driver.
package convconfig

import "time"

// Limits bounds ingestion exactly as described in the external
// interfaces table: each field is a hard cap, not a hint, and 0 means
// unbounded except where noted.
type Limits struct {
	MaxRows               uint64 `yaml:"max_rows" json:"max_rows"`
	MaxColumns            uint64 `yaml:"max_columns" json:"max_columns"`
	MaxBytesPerValue      uint32 `yaml:"max_bytes_per_value" json:"max_bytes_per_value"`
	MaxBytesPerErrorValue uint32 `yaml:"max_bytes_per_error_value" json:"max_bytes_per_error_value"`
	MaxBytesPerColumnName uint32 `yaml:"max_bytes_per_column_name" json:"max_bytes_per_column_name"`
	MaxBytesTotal         uint64 `yaml:"max_bytes_total" json:"max_bytes_total"`
}

// DefaultJSONLimits matches the JSON driver's defaults: bounded
// per-value, per-column-name and error-snippet length, unbounded
// everything else.
func DefaultJSONLimits() Limits {
	return Limits{
		MaxBytesPerValue:      32 * 1024,
		MaxBytesPerErrorValue: 100,
		MaxBytesPerColumnName: 1024,
	}
}

// DefaultCSVLimits matches the CSV driver's defaults: entirely
// unbounded except for the error-snippet length, which every driver
// shares.
func DefaultCSVLimits() Limits {
	return Limits{
		MaxBytesPerErrorValue: 100,
	}
}

// DefaultExcelLimits matches the native row/column ceiling of the
// legacy XLS/XLSX grid (2^20 rows, 2^14 columns).
func DefaultExcelLimits() Limits {
	return Limits{
		MaxRows:               1_048_576,
		MaxColumns:            16_384,
		MaxBytesPerErrorValue: 100,
		MaxBytesPerColumnName: 1024,
	}
}

// RunConfig is the full set of knobs a CLI command exposes, embedding
// Limits the same way the teacher's connector configs embed a shared
// BaseConfig.
type RunConfig struct {
	Limits `yaml:",inline" json:",inline"`

	// HasHeaderRow tells a spreadsheet driver to route row 0 into a
	// separate header table instead of the main table. The CSV and JSON
	// drivers do not read it.
	HasHeaderRow bool `yaml:"has_header_row" json:"has_header_row"`

	// Mac1904 selects the legacy 1904 Excel epoch in a saved or loaded
	// config file. The CLI commands take the epoch from their --mac-1904
	// flag and do not read this field.
	Mac1904 *bool `yaml:"mac_1904,omitempty" json:"mac_1904,omitempty"`

	// LogLevel and LogEncoding configure pkg/logger for this run.
	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`

	// ConvertWorkers and ConvertTimeout record the batch `convert`
	// worker count (0 = no cap) and per-file timeout in a config file.
	// The `convert` command takes both from its own --workers and
	// --timeout flags and does not read these fields; no conversion is
	// ever abandoned on a timeout.
	ConvertWorkers int `yaml:"convert_workers" json:"convert_workers"`
	ConvertTimeout time.Duration `yaml:"convert_timeout" json:"convert_timeout"`
}

// NewRunConfig returns a RunConfig seeded with the given format
// defaults and sensible ambient values.
func NewRunConfig(limits Limits) *RunConfig {
	return &RunConfig{
		Limits:         limits,
		HasHeaderRow:   true,
		LogLevel:       "info",
		LogEncoding:    "json",
		ConvertWorkers: 0,
		ConvertTimeout: 5 * time.Minute,
	}
}
