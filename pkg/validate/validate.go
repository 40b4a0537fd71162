// Package validate is a read-only scanner over an already-written
// Arrow IPC file, checking invariants the writer is supposed to
// guarantee but that a corrupt or hand-edited file might violate.
// It is deliberately not the hard part of this module — the column
// builder in pkg/coltable already enforces most of these invariants
// at write time — but closing the loop with an independent reader
// pass catches the class of bug where the writer and the format
// disagree about what it wrote.
package validate

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/nebuladata/colbuild/pkg/ingesterr"
	"github.com/nebuladata/colbuild/pkg/tableio"
)

// Options selects which checks run. Each is independently toggleable,
// mirroring the original command-line flags this is grounded on.
type Options struct {
	CheckSafe                     bool
	CheckFloatsAllFinite          bool
	CheckDictionaryValuesAllUsed  bool
	CheckDictionaryValuesNotNull  bool
	CheckDictionaryValuesUnique   bool
	CheckColumnNameControlChars   bool
	CheckColumnNameMaxBytes       uint32
}

// DefaultOptions enables only the cheap, always-safe-to-run check.
func DefaultOptions() Options {
	return Options{CheckSafe: true}
}

// File validates every record batch stored in r against opts,
// returning the first failure encountered.
func File(r io.Reader, opts Options) error {
	_, records, err := tableio.ReadTable(r)
	if err != nil {
		return err
	}
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	return Batches(records, opts)
}

// Batches validates every given record batch against opts. Callers
// that already hold decoded records (e.g. a driver's own table right
// after Finish, before it is ever written) can call this directly
// without a round trip through Arrow IPC.
func Batches(records []arrow.Record, opts Options) error {
	for _, rec := range records {
		if err := validateRecordBatch(rec, opts); err != nil {
			return err
		}
	}
	return nil
}

func validateRecordBatch(rec arrow.Record, opts Options) error {
	schema := rec.Schema()
	for i := 0; i < int(rec.NumCols()); i++ {
		name := schema.Field(i).Name
		if err := validateColumnName(name, opts); err != nil {
			return ingesterr.New(ingesterr.TypeData, err.Error()).WithDetail("column", name)
		}
		if err := validateArray(rec.Column(i), opts); err != nil {
			return ingesterr.New(ingesterr.TypeData, err.Error()).WithDetail("column", name)
		}
	}
	return nil
}

func validateColumnName(name string, opts Options) error {
	if opts.CheckSafe && !utf8.ValidString(name) {
		return fmt.Errorf("check-safe failed on a column name with invalid UTF-8")
	}
	if opts.CheckColumnNameControlChars {
		for i := 0; i < len(name); i++ {
			if name[i] < 0x20 {
				return fmt.Errorf("check-column-name-control-characters failed on column %q", name)
			}
		}
	}
	if opts.CheckColumnNameMaxBytes > 0 && uint32(len(name)) > opts.CheckColumnNameMaxBytes {
		return fmt.Errorf("check-column-name-max-bytes=%d failed on column %q", opts.CheckColumnNameMaxBytes, name)
	}
	return nil
}

func validateArray(arr arrow.Array, opts Options) error {
	// Structural checks the writer is supposed to guarantee on every
	// array regardless of which opt-in checks below are enabled:
	// offsets within the value buffer, buffer lengths matching the
	// type's layout, and similar invariants arrow-go's own validator
	// already knows how to check.
	if err := arr.Data().ValidateFull(); err != nil {
		return fmt.Errorf("arrow array validation failed: %w", err)
	}

	switch a := arr.(type) {
	case *array.Float32:
		return validateFloatsFinite32(a, opts)
	case *array.Float64:
		return validateFloatsFinite64(a, opts)
	case *array.String:
		if opts.CheckSafe {
			for i := 0; i < a.Len(); i++ {
				if a.IsNull(i) {
					continue
				}
				if !utf8.ValidString(a.Value(i)) {
					return fmt.Errorf("check-safe failed on a string value with invalid UTF-8")
				}
			}
		}
		return nil
	case *array.Dictionary:
		return validateDictionary(a, opts)
	default:
		return nil
	}
}

func validateFloatsFinite32(a *array.Float32, opts Options) error {
	if !opts.CheckFloatsAllFinite {
		return nil
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			continue
		}
		v := float64(a.Value(i))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("check-floats-all-finite failed")
		}
	}
	return nil
}

func validateFloatsFinite64(a *array.Float64, opts Options) error {
	if !opts.CheckFloatsAllFinite {
		return nil
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			continue
		}
		v := a.Value(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("check-floats-all-finite failed")
		}
	}
	return nil
}

func validateDictionary(a *array.Dictionary, opts Options) error {
	indices := a.Indices()
	dict := a.Dictionary()

	if err := validateArray(dict, opts); err != nil {
		return err
	}

	if opts.CheckDictionaryValuesNotNull && dict.NullN() != 0 {
		return fmt.Errorf("check-dictionary-values-not-null failed")
	}

	if opts.CheckDictionaryValuesUnique {
		if err := checkDictionaryValuesUnique(dict); err != nil {
			return err
		}
	}

	if opts.CheckDictionaryValuesAllUsed {
		if err := checkDictionaryValuesAllUsed(indices, dict); err != nil {
			return err
		}
	}

	return nil
}

// checkDictionaryValuesUnique reports whether the dictionary array
// holds any duplicate values, comparing each decoded value's string
// form — cheap enough for the diagnostic-tool use case this serves
// and avoids needing a type-specific hash for every dictionary value
// type Arrow supports.
func checkDictionaryValuesUnique(dict arrow.Array) error {
	seen := make(map[string]struct{}, dict.Len())
	for i := 0; i < dict.Len(); i++ {
		if dict.IsNull(i) {
			continue
		}
		key := fmt.Sprintf("%v", dict.GetOneForMarshal(i))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("check-dictionary-values-unique failed")
		}
		seen[key] = struct{}{}
	}
	return nil
}

// checkDictionaryValuesAllUsed reports whether every dictionary entry
// is referenced by at least one index.
func checkDictionaryValuesAllUsed(indices, dict arrow.Array) error {
	if indices.NullN() == indices.Len() {
		if dict.Len() != 0 {
			return fmt.Errorf("check-dictionary-values-all-used failed")
		}
		return nil
	}

	seen := make([]bool, dict.Len())
	switch idx := indices.(type) {
	case *array.Int8:
		for i := 0; i < idx.Len(); i++ {
			if idx.IsValid(i) {
				seen[idx.Value(i)] = true
			}
		}
	case *array.Int16:
		for i := 0; i < idx.Len(); i++ {
			if idx.IsValid(i) {
				seen[idx.Value(i)] = true
			}
		}
	case *array.Int32:
		for i := 0; i < idx.Len(); i++ {
			if idx.IsValid(i) {
				seen[idx.Value(i)] = true
			}
		}
	default:
		return fmt.Errorf("dictionary indices must be int8/int16/int32")
	}

	for _, ok := range seen {
		if !ok {
			return fmt.Errorf("check-dictionary-values-all-used failed")
		}
	}
	return nil
}
