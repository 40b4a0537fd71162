// Package xlsxsrc implements the XLSX front-end driver. It reads a
// workbook's first sheet with excelize's streaming row iterator,
// classifying each cell as empty/number/date/string the way
// xlsx-to-arrow.cc's addCell does by consulting the cell's number
// format rather than trusting the workbook's nominal cell type, and
// feeds the result into the shared xlcommon.Assembler.
package xlsxsrc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/xuri/excelize/v2"

	"github.com/nebuladata/colbuild/internal/source/xlcommon"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// Driver reads one XLSX workbook's first worksheet into a table, plus
// an optional header-row table.
type Driver struct {
	Limits       convconfig.Limits
	HasHeaderRow bool

	// Mac1904 is used only when the workbook does not declare its own
	// date1904 flag; a workbook declaration always wins. With neither,
	// the driver uses windows_1900.
	Mac1904 *bool
}

// New returns a Driver with the given limits and header-row mode.
func New(limits convconfig.Limits, hasHeaderRow bool, mac1904 *bool) *Driver {
	return &Driver{Limits: limits, HasHeaderRow: hasHeaderRow, Mac1904: mac1904}
}

// Result carries the main table and, if HasHeaderRow was set, the
// header-row table.
type Result struct {
	Schema       *arrow.Schema
	Arrays       []arrow.Array
	HeaderSchema *arrow.Schema
	HeaderArrays []arrow.Array
}

// Read reads r as an XLSX workbook and reads its first worksheet. A
// corrupt or unreadable workbook never panics out of this call: any
// panic from the underlying library is recovered at this one
// boundary and reported as a warning, mirroring the single
// try/catch(xlnt::exception&) around the original's whole read loop.
func (d *Driver) Read(r io.Reader, ledger *warnings.Ledger) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ledger.WarnXLSXFileError(fmt.Sprintf("panic: %v", rec))
			result = emptyResult(d.Limits, d.HasHeaderRow, ledger)
		}
	}()

	f, openErr := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if openErr != nil {
		ledger.WarnXLSXFileError(openErr.Error())
		return emptyResult(d.Limits, d.HasHeaderRow, ledger), nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		ledger.WarnXLSXFileError("there are no worksheets")
		return emptyResult(d.Limits, d.HasHeaderRow, ledger), nil
	}
	sheetName := sheets[0]

	mac1904 := d.resolveMac1904(f, ledger)

	rows, rowsErr := f.Rows(sheetName)
	if rowsErr != nil {
		ledger.WarnXLSXFileError(rowsErr.Error())
		return emptyResult(d.Limits, d.HasHeaderRow, ledger), nil
	}
	defer rows.Close()

	asm := xlcommon.NewAssembler(memory.NewGoAllocator(), d.Limits, d.HasHeaderRow)
	rowIndex := 0

rowLoop:
	for rows.Next() {
		cols, colsErr := rows.Columns(excelize.Options{RawCellValue: true})
		if colsErr != nil {
			ledger.WarnXLSXFileError(colsErr.Error())
			break
		}

		for colIndex, raw := range cols {
			axis, axisErr := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if axisErr != nil {
				continue
			}
			kind, numeric, dateNs, dateOverflow := d.classifyCell(f, sheetName, axis, raw, mac1904, ledger)
			action := asm.AddCell(rowIndex, colIndex, kind, raw, numeric, dateNs, dateOverflow, ledger)
			if action == xlcommon.Stop {
				break rowLoop
			}
		}
		rowIndex++
	}

	schema, arrays, headerSchema, headerArrays := asm.Finish(ledger)
	return Result{Schema: schema, Arrays: arrays, HeaderSchema: headerSchema, HeaderArrays: headerArrays}, nil
}

// resolveMac1904 trusts the workbook's own date1904 declaration over
// the CLI flag, falling back to the flag (or windows_1900) only when
// the workbook doesn't say.
func (d *Driver) resolveMac1904(f *excelize.File, ledger *warnings.Ledger) bool {
	props, propsErr := f.GetWorkbookProps()
	if propsErr == nil && props.Date1904 != nil {
		return *props.Date1904
	}
	if d.Mac1904 != nil {
		return *d.Mac1904
	}
	return false
}

// classifyCell decides whether raw is empty, a plain number, a date
// serial, or text, the way xlnt's number_format::is_date_format is
// consulted in excel-table-builder.cc: a numeric-looking raw value is
// a date only if the cell's own style says so.
func (d *Driver) classifyCell(f *excelize.File, sheet, axis, raw string, mac1904 bool, ledger *warnings.Ledger) (kind xlcommon.CellKind, numeric float64, dateNs int64, dateOverflow bool) {
	if raw == "" {
		return xlcommon.CellEmpty, 0, 0, false
	}

	n, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil {
		return xlcommon.CellString, 0, 0, false
	}

	if d.isDateCell(f, sheet, axis, ledger) {
		ns, overflow := xlcommon.SerialToNanos(n, mac1904)
		return xlcommon.CellDate, 0, ns, overflow
	}
	return xlcommon.CellNumber, n, 0, false
}

func (d *Driver) isDateCell(f *excelize.File, sheet, axis string, ledger *warnings.Ledger) bool {
	styleID, styleErr := f.GetCellStyle(sheet, axis)
	if styleErr != nil {
		return false
	}
	style, getErr := f.GetStyle(styleID)
	if getErr != nil || style == nil {
		return false
	}

	code := ""
	if style.CustomNumFmt != nil {
		code = *style.CustomNumFmt
	}
	return xlcommon.IsDateFormatCode(style.NumFmt, code)
}

func emptyResult(limits convconfig.Limits, hasHeaderRow bool, ledger *warnings.Ledger) Result {
	asm := xlcommon.NewAssembler(memory.NewGoAllocator(), limits, hasHeaderRow)
	schema, arrays, headerSchema, headerArrays := asm.Finish(ledger)
	return Result{Schema: schema, Arrays: arrays, HeaderSchema: headerSchema, HeaderArrays: headerArrays}
}
