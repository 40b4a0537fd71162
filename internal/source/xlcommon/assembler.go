package xlcommon

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/coltable"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/strbuf"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// CellKind is the handful of ways a spreadsheet cell can resolve once
// a front end (xlssrc or xlsxsrc) has read its raw value and, for
// ambiguous numeric cells, consulted its number format.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellDate
	CellString
)

// Action tells a driver's read loop whether to keep feeding cells or
// stop early because the byte budget ran out.
type Action int

const (
	Continue Action = iota
	Stop
)

// Assembler is the index-addressed table assembly shared by every
// spreadsheet front end: column lookup by position with base-26
// fallback names, an optional header row routed to a parallel
// string-only table, and the same truncation/row-limit/byte-budget
// bookkeeping the row-oriented front ends use.
type Assembler struct {
	limits convconfig.Limits
	hasHeader bool

	main   *coltable.TableBuilder
	header *coltable.TableBuilder

	maxRowSeen    int
	maxRowHandled int
	nBytesTotal   uint64
	stopped       bool
}

// NewAssembler returns an empty Assembler. hasHeaderRow routes sheet
// row 0 into a separate header table instead of the main one, and
// shifts every later row up by one — the only header-row mode this
// module supports.
func NewAssembler(mem memory.Allocator, limits convconfig.Limits, hasHeaderRow bool) *Assembler {
	return &Assembler{
		limits:        limits,
		hasHeader:     hasHeaderRow,
		main:          coltable.NewTableBuilder(mem, limits.MaxColumns),
		header:        coltable.NewTableBuilder(mem, limits.MaxColumns),
		maxRowSeen:    -1,
		maxRowHandled: -1,
	}
}

// AddCell feeds one spreadsheet cell, already classified by the
// driver (empty/number/date/string) and rendered to its display
// text. numeric and (dateNs, dateOverflow) are only consulted for
// CellNumber and CellDate respectively. It returns Stop once the
// byte budget is exhausted; the caller should stop iterating the
// workbook (but may keep draining already-buffered rows if that's
// cheaper than aborting mid-sheet).
func (a *Assembler) AddCell(row, col int, kind CellKind, display string, numeric float64, dateNs int64, dateOverflow bool, ledger *warnings.Ledger) Action {
	if a.stopped {
		return Stop
	}

	if a.limits.MaxColumns != 0 && uint64(col) >= a.limits.MaxColumns {
		ledger.WarnColumnSkipped(a.limits.MaxColumns, coltable.IndexColumnName(col))
		return Continue
	}
	mainCol := a.main.Column(col)

	if a.limits.MaxBytesPerValue != 0 && uint32(len(display)) > a.limits.MaxBytesPerValue {
		ledger.WarnValueTruncated(row, mainCol.Name(), a.limits.MaxBytesPerValue)
		display = string(strbuf.TruncateUTF8([]byte(display), int(a.limits.MaxBytesPerValue)))
	}

	if a.hasHeader {
		if row == 0 {
			if kind != CellEmpty {
				a.header.Column(col).WriteString(0, []byte(display))
			}
			return Continue
		}
		row--
	}

	if row > a.maxRowSeen {
		a.maxRowSeen = row
	}

	if a.limits.MaxRows != 0 && uint64(row) >= a.limits.MaxRows {
		return Continue
	}

	nBytesNext := a.nBytesTotal + uint64(len(display))
	if a.limits.MaxBytesTotal != 0 && nBytesNext > a.limits.MaxBytesTotal {
		ledger.WarnStoppedOutOfMemory(a.limits.MaxBytesTotal)
		a.stopped = true
		return Stop
	}

	switch kind {
	case CellEmpty:
		// Absence means null; nothing to write.
	case CellDate:
		mainCol.WriteParsedTimestamp(row, dateNs, dateOverflow, []byte(display))
	case CellNumber:
		mainCol.WriteParsedNumber(row, numeric, []byte(display))
	default:
		mainCol.WriteString(row, []byte(display))
	}

	a.nBytesTotal = nBytesNext
	if row > a.maxRowHandled {
		a.maxRowHandled = row
	}
	return Continue
}

// Finish assembles the main table and, if a header row was
// configured, the header table, warning once about any rows that
// were skipped past max_rows.
func (a *Assembler) Finish(ledger *warnings.Ledger) (schema *arrow.Schema, arrays []arrow.Array, headerSchema *arrow.Schema, headerArrays []arrow.Array) {
	if a.limits.MaxRows != 0 && a.maxRowSeen > a.maxRowHandled {
		ledger.WarnRowsSkipped(uint32(a.maxRowSeen-a.maxRowHandled), a.limits.MaxRows)
	}

	nRows := a.maxRowHandled + 1
	nHeaderRows := 0
	if a.hasHeader {
		nHeaderRows = 1
	}

	schema, arrays = a.main.Finish(ledger, nRows)
	headerSchema, headerArrays = a.header.Finish(ledger, nHeaderRows)
	return schema, arrays, headerSchema, headerArrays
}
