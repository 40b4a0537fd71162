package coltable

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/warnings"
)

// TableBuilder owns every column of an in-progress table by name,
// enforces the column-count limit, and assembles the finished
// Arrow schema and arrays once ingestion is done. It has no
// knowledge of rows beyond the highest index any column has seen;
// callers are responsible for telling Finish how many rows the table
// actually has.
type TableBuilder struct {
	mem        memory.Allocator
	columns    []*ColumnBuilder
	lookup     map[string]int
	maxColumns uint64
}

// NewTableBuilder returns an empty TableBuilder. maxColumns of 0 means
// unlimited.
func NewTableBuilder(mem memory.Allocator, maxColumns uint64) *TableBuilder {
	return &TableBuilder{
		mem:        mem,
		lookup:     make(map[string]int),
		maxColumns: maxColumns,
	}
}

// NumColumns reports how many columns currently exist.
func (t *TableBuilder) NumColumns() int { return len(t.columns) }

// FindOrCreateColumn looks up name, creating a new column if it does
// not exist yet. A miss is rejected, with the matching warning, if
// the name itself is invalid or the column limit has already been
// reached; name truncation to max_bytes_per_column_name happens
// earlier, in the front-end driver, so by the time a name reaches
// here it is already correctly sized. isNew tells the caller whether
// this call created the column, for front ends (JSON) that only want
// to warn about a truncated name the first time it's seen.
func (t *TableBuilder) FindOrCreateColumn(row int, name string, ledger *warnings.Ledger) (col *ColumnBuilder, ok bool, isNew bool) {
	if idx, found := t.lookup[name]; found {
		return t.columns[idx], true, false
	}
	if IsColumnNameInvalid(name) {
		ledger.WarnColumnNameInvalid(row, name)
		return nil, false, false
	}
	if t.maxColumns != 0 && uint64(len(t.columns)) >= t.maxColumns {
		ledger.WarnColumnSkipped(t.maxColumns, name)
		return nil, false, false
	}
	col = NewColumnBuilder(t.mem, name)
	t.lookup[name] = len(t.columns)
	t.columns = append(t.columns, col)
	return col, true, true
}

// Column returns the column at zero-based index i, creating it (and
// any columns before it) under its IndexColumnName if it does not
// exist yet. Used by front ends that address cells positionally
// (spreadsheet rows) rather than by a name.
func (t *TableBuilder) Column(i int) *ColumnBuilder {
	for len(t.columns) <= i {
		name := IndexColumnName(len(t.columns))
		col := NewColumnBuilder(t.mem, name)
		t.lookup[name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t.columns[i]
}

// Finish null-pads every column to nRows, warns about any column that
// never left the Untyped state, and returns the assembled schema and
// arrays in column order. After Finish the TableBuilder is empty and
// ready to build a new table.
func (t *TableBuilder) Finish(ledger *warnings.Ledger, nRows int) (*arrow.Schema, []arrow.Array) {
	fields := make([]arrow.Field, len(t.columns))
	arrays := make([]arrow.Array, len(t.columns))

	for i, col := range t.columns {
		if col.Dtype() == Untyped {
			ledger.WarnColumnAllNull(col.Name())
		}
		field, arr := col.Finish(ledger, nRows)
		fields[i] = field
		arrays[i] = arr
	}

	t.columns = nil
	t.lookup = make(map[string]int)

	return arrow.NewSchema(fields, nil), arrays
}
