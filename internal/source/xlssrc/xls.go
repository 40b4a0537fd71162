// Package xlssrc implements the legacy XLS (BIFF) front-end driver.
// extrame/xls has a narrower surface than excelize: it hands back
// each cell as a single already-formatted string rather than a raw
// value plus a style, so unlike xlsxsrc this driver cannot tell a
// date cell from a plain number by re-deriving it from a serial — see
// classifyCell below and the grounding notes for this package.
package xlssrc

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/extrame/xls"

	"github.com/nebuladata/colbuild/internal/source/xlcommon"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// Driver reads one XLS workbook's first worksheet into a table, plus
// an optional header-row table. Mac1904 is stored but not read: the
// library hands date cells over as already-formatted text, so the
// driver writes them as strings and never converts a date serial.
type Driver struct {
	Limits       convconfig.Limits
	HasHeaderRow bool
	Mac1904      bool
}

// New returns a Driver with the given limits, header-row mode, and
// 1904 calendar flag.
func New(limits convconfig.Limits, hasHeaderRow bool, mac1904 bool) *Driver {
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

// Read opens path as a legacy XLS workbook and reads its first
// worksheet. extrame/xls only opens by filesystem path, not an
// io.Reader, so unlike the other drivers in this module Read takes a
// path. Any panic from the underlying parser is recovered at this one
// boundary and reported as a warning rather than propagated, mirroring
// xlssrc's sibling xlsxsrc and the original's single
// try/catch(xlnt::exception&) around its whole read loop.
func (d *Driver) Read(path string, ledger *warnings.Ledger) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ledger.WarnXLSFileError(fmt.Sprintf("panic: %v", rec))
			result = emptyResult(d.Limits, d.HasHeaderRow, ledger)
		}
	}()

	workbook, openErr := xls.Open(path, "utf-8")
	if openErr != nil {
		ledger.WarnXLSFileError(openErr.Error())
		return emptyResult(d.Limits, d.HasHeaderRow, ledger), nil
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		ledger.WarnXLSFileError("there are no worksheets")
		return emptyResult(d.Limits, d.HasHeaderRow, ledger), nil
	}

	asm := xlcommon.NewAssembler(memory.NewGoAllocator(), d.Limits, d.HasHeaderRow)

rowLoop:
	for rowIndex := 0; rowIndex <= int(sheet.MaxRow); rowIndex++ {
		row := sheet.Row(rowIndex)
		if row == nil {
			continue
		}
		for colIndex := row.FirstCol(); colIndex < row.LastCol(); colIndex++ {
			raw := row.Col(colIndex)
			kind, numeric := classifyCell(raw)
			action := asm.AddCell(rowIndex, colIndex, kind, raw, numeric, 0, false, ledger)
			if action == xlcommon.Stop {
				break rowLoop
			}
		}
	}

	schema, arrays, headerSchema, headerArrays := asm.Finish(ledger)
	return Result{Schema: schema, Arrays: arrays, HeaderSchema: headerSchema, HeaderArrays: headerArrays}, nil
}

// classifyCell decides whether raw is empty, a number, or text.
// extrame/xls already applies the cell's number format when it
// builds this string, so a date cell arrives pre-formatted as text
// (e.g. "2006-01-02") rather than as a serial we could convert with
// xlcommon.SerialToNanos; it is therefore stored as a string, not a
// timestamp. Legacy-XLS date columns are a known gap of this driver
// relative to xlsxsrc.
func classifyCell(raw string) (kind xlcommon.CellKind, numeric float64) {
	if raw == "" {
		return xlcommon.CellEmpty, 0
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return xlcommon.CellNumber, n
	}
	return xlcommon.CellString, 0
}

func emptyResult(limits convconfig.Limits, hasHeaderRow bool, ledger *warnings.Ledger) Result {
	asm := xlcommon.NewAssembler(memory.NewGoAllocator(), limits, hasHeaderRow)
	schema, arrays, headerSchema, headerArrays := asm.Finish(ledger)
	return Result{Schema: schema, Arrays: arrays, HeaderSchema: headerSchema, HeaderArrays: headerArrays}
}
