package warnings

import (
	"fmt"
	"io"
)

// Print renders every non-zero warning kind as one deterministic,
// human-readable line to w. The exact phrasing here is part of the
// tool's output contract; do not reword it without checking downstream
// tests that assert on this text.
func (l *Ledger) Print(w io.Writer) {
	if l.jsonParseError {
		fmt.Fprintf(w, "JSON parse error at byte %d: %s\n", l.jsonParseErrorPos, l.jsonParseErrorMsg)
	}
	if l.xlsFileError {
		fmt.Fprintf(w, "failed to read XLS file: %s\n", l.xlsErrorMsg)
	}
	if l.xlsxFileError {
		fmt.Fprintf(w, "failed to read XLSX file: %s\n", l.xlsxErrorMsg)
	}
	if l.badRoot {
		fmt.Fprintf(w, "JSON is not an Array or Object containing an Array; got: %s\n", l.badRootValue)
	}
	if l.nRowsSkipped > 0 {
		fmt.Fprintf(w, "skipped %d rows (after row limit of %d)\n", l.nRowsSkipped, l.rowLimit)
	}
	if l.stoppedOutOfMemory {
		fmt.Fprintf(w, "stopped at limit of %d bytes of data\n", l.byteLimit)
	}
	if l.nRowsInvalid > 0 {
		fmt.Fprintf(w, "skipped %d non-Object records; example Array item %d: %s\n",
			l.nRowsInvalid, l.firstRowInvalidIdx, l.firstRowInvalidText)
	}
	if l.nColumnsSkipped != levelZero {
		suffix := ""
		if l.nColumnsSkipped == levelMany {
			suffix = " and more"
		}
		fmt.Fprintf(w, "skipped column %s%s(after column limit of %d)\n",
			l.firstColumnSkipped, spaced(suffix), l.columnLimit)
	}
	if l.nColumnsNull > 0 {
		fmt.Fprintf(w, "chose string type for null column %s\n", l.firstColumnNull)
	}
	if l.nColumnNamesTruncated > 0 {
		fmt.Fprintf(w, "truncated %d column names; example %s\n", l.nColumnNamesTruncated, l.firstColumnNameTruncated)
	}
	if l.nColumnNamesInvalid != levelZero {
		suffix := ""
		if l.nColumnNamesInvalid == levelMany {
			suffix = " and more"
		}
		fmt.Fprintf(w, "ignored invalid column %s%s\n", l.firstColumnNameInvalid, suffix)
	}
	if l.nColumnNamesDuplicated != levelZero {
		suffix := ""
		if l.nColumnNamesDuplicated == levelMany {
			suffix = " and more"
		}
		fmt.Fprintf(w, "ignored duplicate column %s%s starting at row %d\n",
			l.firstColumnNameDuplicated, suffix, l.firstColumnNameDuplicatedRow)
	}
	if l.nValuesTruncated > 0 {
		fmt.Fprintf(w, "truncated %d values (value byte limit is %d; see row %d column %s)\n",
			l.nValuesTruncated, l.valueByteLimit, l.firstValueTruncatedRow, l.firstValueTruncatedCol)
	}
	if l.nValuesLossyIntToFloat > 0 {
		fmt.Fprintf(w, "lost precision converting %d int64 Numbers to float64; see row %d column %s\n",
			l.nValuesLossyIntToFloat, l.firstLossyNumberRow, l.firstLossyNumberCol)
	}
	if l.nValuesOverflowFloat > 0 {
		fmt.Fprintf(w, "replaced infinity with null for %d Numbers; see row %d column %s\n",
			l.nValuesOverflowFloat, l.firstOverflowFloatRow, l.firstOverflowFloatCol)
	}
	if l.nValuesNumberToText > 0 {
		fmt.Fprintf(w, "interpreted %d Numbers as String; see row %d column %s\n",
			l.nValuesNumberToText, l.firstNumberToTextRow, l.firstNumberToTextCol)
	}
	if l.nValuesTimestampToText > 0 {
		fmt.Fprintf(w, "interpreted %d Timestamps as String; see row %d column %s\n",
			l.nValuesTimestampToText, l.firstTimestampToTextRow, l.firstTimestampToTextCol)
	}
	if l.nValuesOverflowTimestamp > 0 {
		fmt.Fprintf(w, "replaced out-of-range date with null for %d Timestamps; see row %d column %s\n",
			l.nValuesOverflowTimestamp, l.firstOverflowTimestampRow, l.firstOverflowTimestampCol)
	}
	if l.nCSVValuesRepaired > 0 {
		fmt.Fprintf(w, "repaired %d values (misplaced quotation marks; see row %d column %d)\n",
			l.nCSVValuesRepaired, l.firstRepairedRow, l.firstRepairedColumn)
	}
	if l.csvRepairedLastValue {
		fmt.Fprintf(w, "repaired last value (missing quotation mark)\n")
	}
	if l.csvEOFInQuotedValue {
		fmt.Fprintf(w, "hit EOF inside a quoted value; see row %d column %d\n", l.eofRow, l.eofColumn)
	}
}

// spaced returns suffix prefixed with a space unless empty, matching
// the original phrasing "skipped column x (after ...)" vs
// "skipped column x and more (after ...)".
func spaced(suffix string) string {
	if suffix == "" {
		return " "
	}
	return suffix + " "
}
