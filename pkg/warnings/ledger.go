// Package warnings implements the write-mostly diagnostic ledger shared
// by every front-end driver: one slot per warning kind, each holding a
// saturating count and, for kinds where it is meaningful, the row,
// column name, and a small snippet of the first occurrence.
//
// Callers only ever call the WarnX methods during ingestion; nothing
// reads individual fields until Print renders the terminal report.
package warnings

import "math"

// cappedLevel tracks the "zero, one, or more than one" distinction used
// for a handful of warning kinds to bound memory on adversarial input.
type cappedLevel uint8

const (
	levelZero cappedLevel = 0
	levelOne  cappedLevel = 1
	levelMany cappedLevel = 2
)

func (l *cappedLevel) bump() {
	if *l < levelMany {
		*l++
	}
}

func saturatingAdd(count *uint32, n uint32) {
	if math.MaxUint32-*count < n {
		*count = math.MaxUint32
		return
	}
	*count += n
}

// Ledger is a flat record, one field group per warning kind.
type Ledger struct {
	jsonParseError    bool
	jsonParseErrorPos int64
	jsonParseErrorMsg string

	xlsFileError  bool
	xlsErrorMsg   string
	xlsxFileError bool
	xlsxErrorMsg  string

	badRoot      bool
	badRootValue string

	nRowsSkipped uint32
	rowLimit     uint64

	stoppedOutOfMemory bool
	byteLimit          uint64

	nRowsInvalid        uint32
	firstRowInvalidIdx  int
	firstRowInvalidText string

	nColumnsSkipped    cappedLevel
	firstColumnSkipped string
	columnLimit        uint64

	nColumnsNull    uint32
	firstColumnNull string

	nColumnNamesTruncated    uint32
	firstColumnNameTruncated string

	nColumnNamesInvalid        cappedLevel
	firstColumnNameInvalidRow  int
	firstColumnNameInvalid     string

	nColumnNamesDuplicated       cappedLevel
	firstColumnNameDuplicatedRow int
	firstColumnNameDuplicated    string

	nValuesTruncated        uint32
	valueByteLimit          uint32
	firstValueTruncatedRow  int
	firstValueTruncatedCol  string

	nValuesLossyIntToFloat   uint32
	firstLossyNumberRow      int
	firstLossyNumberCol      string

	nValuesOverflowFloat   uint32
	firstOverflowFloatRow  int
	firstOverflowFloatCol  string

	nValuesNumberToText   uint32
	firstNumberToTextRow  int
	firstNumberToTextCol  string

	nValuesTimestampToText  uint32
	firstTimestampToTextRow int
	firstTimestampToTextCol string

	nValuesOverflowTimestamp   uint32
	firstOverflowTimestampRow int
	firstOverflowTimestampCol string

	nCSVValuesRepaired   uint32
	firstRepairedRow     int
	firstRepairedColumn  int
	csvRepairedLastValue bool

	csvEOFInQuotedValue bool
	eofRow              int
	eofColumn           int
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{}
}

// WarnJSONParseError records a file-wide JSON syntax error. Only the
// first call has any effect; subsequent calls are no-ops because a
// driver stops reading after this warning fires.
func (l *Ledger) WarnJSONParseError(byteOffset int64, message string) {
	if l.jsonParseError {
		return
	}
	l.jsonParseError = true
	l.jsonParseErrorPos = byteOffset
	l.jsonParseErrorMsg = message
}

// WarnXLSFileError records a library-level failure opening or decoding
// a legacy XLS workbook.
func (l *Ledger) WarnXLSFileError(message string) {
	if l.xlsFileError {
		return
	}
	l.xlsFileError = true
	l.xlsErrorMsg = message
}

// WarnXLSXFileError records a library-level failure opening or decoding
// an XLSX workbook.
func (l *Ledger) WarnXLSXFileError(message string) {
	if l.xlsxFileError {
		return
	}
	l.xlsxFileError = true
	l.xlsxErrorMsg = message
}

// WarnBadRoot records that the JSON document's root was not an Array
// or an Object containing one.
func (l *Ledger) WarnBadRoot(got string) {
	if l.badRoot {
		return
	}
	l.badRoot = true
	l.badRootValue = got
}

// WarnRowsSkipped records rows dropped because max_rows was reached.
func (l *Ledger) WarnRowsSkipped(n uint32, rowLimit uint64) {
	saturatingAdd(&l.nRowsSkipped, n)
	l.rowLimit = rowLimit
}

// WarnStoppedOutOfMemory records that ingestion stopped after
// max_bytes_total was exceeded.
func (l *Ledger) WarnStoppedOutOfMemory(byteLimit uint64) {
	if l.stoppedOutOfMemory {
		return
	}
	l.stoppedOutOfMemory = true
	l.byteLimit = byteLimit
}

// WarnRowInvalid records a non-Object item found directly inside the
// record array.
func (l *Ledger) WarnRowInvalid(index int, snippet string) {
	if l.nRowsInvalid == 0 {
		l.firstRowInvalidIdx = index
		l.firstRowInvalidText = snippet
	}
	saturatingAdd(&l.nRowsInvalid, 1)
}

// WarnColumnSkipped records a column rejected because max_columns was
// reached.
func (l *Ledger) WarnColumnSkipped(columnLimit uint64, name string) {
	if l.nColumnsSkipped == levelZero {
		l.firstColumnSkipped = name
	}
	l.nColumnsSkipped.bump()
	l.columnLimit = columnLimit
}

// WarnColumnAllNull records that a column never received a typed
// value and defaulted to STRING.
func (l *Ledger) WarnColumnAllNull(name string) {
	if l.nColumnsNull == 0 {
		l.firstColumnNull = name
	}
	saturatingAdd(&l.nColumnsNull, 1)
}

// WarnColumnNameTruncated records a column name cut to
// max_bytes_per_column_name.
func (l *Ledger) WarnColumnNameTruncated(name string) {
	if l.nColumnNamesTruncated == 0 {
		l.firstColumnNameTruncated = name
	}
	saturatingAdd(&l.nColumnNamesTruncated, 1)
}

// WarnColumnNameInvalid records a column name rejected by the §4.3
// name-validity rule (empty or containing a byte < 0x20).
func (l *Ledger) WarnColumnNameInvalid(row int, name string) {
	if l.nColumnNamesInvalid == levelZero {
		l.firstColumnNameInvalidRow = row
		l.firstColumnNameInvalid = name
	}
	l.nColumnNamesInvalid.bump()
}

// WarnColumnNameDuplicated records a column name seen more than once
// in the same row (JSON object with a repeated key).
func (l *Ledger) WarnColumnNameDuplicated(row int, name string) {
	if l.nColumnNamesDuplicated == levelZero {
		l.firstColumnNameDuplicatedRow = row
		l.firstColumnNameDuplicated = name
	}
	l.nColumnNamesDuplicated.bump()
}

// WarnValueTruncated records a cell's bytes cut to max_bytes_per_value.
func (l *Ledger) WarnValueTruncated(row int, column string, byteLimit uint32) {
	if l.nValuesTruncated == 0 {
		l.firstValueTruncatedRow = row
		l.firstValueTruncatedCol = column
	}
	l.valueByteLimit = byteLimit
	saturatingAdd(&l.nValuesTruncated, 1)
}

// WarnValueLossyIntToFloat records n int64 values, first seen at row,
// whose round trip through float64 was not the identity. Called once
// per column at finish time with the count accumulated during writes.
func (l *Ledger) WarnValueLossyIntToFloat(row int, column string, n uint32) {
	if n == 0 {
		return
	}
	if l.nValuesLossyIntToFloat == 0 {
		l.firstLossyNumberRow = row
		l.firstLossyNumberCol = column
	}
	saturatingAdd(&l.nValuesLossyIntToFloat, n)
}

// WarnValueOverflowFloat records n non-finite numbers replaced with
// null in a FLOAT column. Called once per column at finish time with
// the count accumulated during writes.
func (l *Ledger) WarnValueOverflowFloat(row int, column string, n uint32) {
	if n == 0 {
		return
	}
	if l.nValuesOverflowFloat == 0 {
		l.firstOverflowFloatRow = row
		l.firstOverflowFloatCol = column
	}
	saturatingAdd(&l.nValuesOverflowFloat, n)
}

// WarnValueNumberToText records n numbers demoted to STRING when their
// column later saw a non-numeric value. Called once per column at
// finish time with the count accumulated during writes.
func (l *Ledger) WarnValueNumberToText(row int, column string, n uint32) {
	if n == 0 {
		return
	}
	if l.nValuesNumberToText == 0 {
		l.firstNumberToTextRow = row
		l.firstNumberToTextCol = column
	}
	saturatingAdd(&l.nValuesNumberToText, n)
}

// WarnValueTimestampToText records n timestamps demoted to STRING.
// Kept as a distinct counter from WarnValueNumberToText — conflating
// the two was a bug in an earlier revision of this ledger.
func (l *Ledger) WarnValueTimestampToText(row int, column string, n uint32) {
	if n == 0 {
		return
	}
	if l.nValuesTimestampToText == 0 {
		l.firstTimestampToTextRow = row
		l.firstTimestampToTextCol = column
	}
	saturatingAdd(&l.nValuesTimestampToText, n)
}

// WarnValueOverflowTimestamp records n out-of-range dates replaced
// with null. Called once per column at finish time with the count
// accumulated during writes.
func (l *Ledger) WarnValueOverflowTimestamp(row int, column string, n uint32) {
	if n == 0 {
		return
	}
	if l.nValuesOverflowTimestamp == 0 {
		l.firstOverflowTimestampRow = row
		l.firstOverflowTimestampCol = column
	}
	saturatingAdd(&l.nValuesOverflowTimestamp, n)
}

// WarnCSVValueRepaired records a misplaced quotation mark repaired by
// the CSV state machine's AFTER_QUOTE stray-character rule.
func (l *Ledger) WarnCSVValueRepaired(row, column int) {
	if l.nCSVValuesRepaired == 0 {
		l.firstRepairedRow = row
		l.firstRepairedColumn = column
	}
	saturatingAdd(&l.nCSVValuesRepaired, 1)
}

// WarnCSVValueRepairedLastValue records that the file ended with a
// value missing its closing quotation mark.
func (l *Ledger) WarnCSVValueRepairedLastValue() {
	l.csvRepairedLastValue = true
}

// WarnCSVEOFInQuotedValue records that EOF was reached while still
// inside a quoted CSV field.
func (l *Ledger) WarnCSVEOFInQuotedValue(row, column int) {
	if l.csvEOFInQuotedValue {
		return
	}
	l.csvEOFInQuotedValue = true
	l.eofRow = row
	l.eofColumn = column
}

// HasAny reports whether any warning kind fired.
func (l *Ledger) HasAny() bool {
	return l.jsonParseError || l.xlsFileError || l.xlsxFileError || l.badRoot ||
		l.nRowsSkipped > 0 || l.stoppedOutOfMemory || l.nRowsInvalid > 0 ||
		l.nColumnsSkipped != levelZero || l.nColumnsNull > 0 ||
		l.nColumnNamesTruncated > 0 || l.nColumnNamesInvalid != levelZero ||
		l.nColumnNamesDuplicated != levelZero || l.nValuesTruncated > 0 ||
		l.nValuesLossyIntToFloat > 0 || l.nValuesOverflowFloat > 0 ||
		l.nValuesNumberToText > 0 || l.nValuesTimestampToText > 0 ||
		l.nValuesOverflowTimestamp > 0 || l.nCSVValuesRepaired > 0 ||
		l.csvRepairedLastValue || l.csvEOFInQuotedValue
}
