// Package csvsrc implements the CSV front-end driver: a hand-written
// byte-level state machine feeding cells into a coltable.TableBuilder,
// with every value written as a string (CSV never infers types on its
// own — coltable does not even see write_number_literal calls here).
package csvsrc

import (
	"bufio"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/coltable"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/strbuf"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// state is the CSV state machine's current position, named after the
// original implementation's goto labels.
type state int

const (
	valueBegin state = iota
	inUnquoted
	inQuoted
	afterQuote
)

// Driver reads a single CSV file into one table. Column names are the
// zero-based column index rendered as a decimal string ("0", "1", …),
// not the base-26 scheme coltable.TableBuilder.Column uses for
// spreadsheet front ends — grounded on the original driver's literal
// std::to_string(columnIndex) column naming.
type Driver struct {
	Delimiter byte
	Limits    convconfig.Limits
}

// New returns a Driver with the given delimiter (must be a single
// byte, validated by the CLI layer) and limits.
func New(delimiter byte, limits convconfig.Limits) *Driver {
	return &Driver{Delimiter: delimiter, Limits: limits}
}

// Read parses r as CSV and returns the assembled schema and columns.
func (d *Driver) Read(r io.Reader, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	tb := coltable.NewTableBuilder(memory.NewGoAllocator(), d.Limits.MaxColumns)
	br := bufio.NewReader(r)

	var (
		row, column int
		value       []byte
		st          = valueBegin
	)

	maxValueBytes := int(d.Limits.MaxBytesPerValue)

	emit := func() {
		defer func() { value = value[:0] }()

		if d.Limits.MaxRows != 0 && uint64(row) >= d.Limits.MaxRows {
			if column == 0 {
				ledger.WarnRowsSkipped(1, d.Limits.MaxRows)
			}
			return
		}
		if d.Limits.MaxColumns != 0 && uint64(column) >= d.Limits.MaxColumns {
			ledger.WarnColumnSkipped(d.Limits.MaxColumns, strconv.Itoa(column))
			return
		}

		if maxValueBytes > 0 && len(value) > maxValueBytes {
			ledger.WarnValueTruncated(row, strconv.Itoa(column), uint32(maxValueBytes))
			value = strbuf.TruncateUTF8(value, maxValueBytes)
		}

		col, ok, _ := tb.FindOrCreateColumn(row, strconv.Itoa(column), ledger)
		if ok {
			col.WriteString(row, value)
		}
	}

	advanceRow := func() {
		row++
		column = 0
	}

	for {
		c, err := br.ReadByte()
		eof := err == io.EOF
		if err != nil && !eof {
			return nil, nil, err
		}

		switch st {
		case valueBegin:
			switch {
			case eof:
				if column > 0 {
					emit()
				}
				goto done
			case c == d.Delimiter:
				emit()
				column++
			case c == '\r' || c == '\n':
				if column == 0 {
					continue
				}
				emit()
				advanceRow()
			case c == '"':
				st = inQuoted
			default:
				value = append(value, c)
				st = inUnquoted
			}

		case inUnquoted:
			switch {
			case eof:
				emit()
				goto done
			case c == d.Delimiter:
				emit()
				column++
				st = valueBegin
			case c == '\r' || c == '\n':
				emit()
				advanceRow()
				st = valueBegin
			default:
				value = append(value, c)
			}

		case inQuoted:
			switch {
			case eof:
				ledger.WarnCSVEOFInQuotedValue(row, column)
				ledger.WarnCSVValueRepairedLastValue()
				emit()
				goto done
			case c == '"':
				st = afterQuote
			default:
				value = append(value, c)
			}

		case afterQuote:
			switch {
			case eof:
				emit()
				goto done
			case c == d.Delimiter:
				emit()
				column++
				st = valueBegin
			case c == '"':
				value = append(value, '"')
				st = inQuoted
			case c == '\r' || c == '\n':
				emit()
				advanceRow()
				st = valueBegin
			default:
				ledger.WarnCSVValueRepaired(row, column)
				value = append(value, c)
				st = inUnquoted
			}
		}
	}

done:
	nRows := row
	if column > 0 || st != valueBegin {
		// EOF arrived after a value of the current row was emitted.
		nRows = row + 1
	}
	if d.Limits.MaxRows != 0 && uint64(nRows) > d.Limits.MaxRows {
		nRows = int(d.Limits.MaxRows)
	}
	schema, arrays := tb.Finish(ledger, nRows)
	return schema, arrays, nil
}
