// Package xlcommon holds the bits of Excel-date and number-format
// handling shared by the legacy xlssrc driver and the OOXML xlsxsrc
// driver, so neither has to duplicate the epoch arithmetic.
package xlcommon

import "math"

// Excel stores dates as a day count from an epoch that depends on
// which calendar the workbook declares. windows_1900 is the default;
// mac_1904 is an option some (mostly old Mac-authored) workbooks set.
// Both constants are the day count from the Unix epoch (1970-01-01) to
// the Excel epoch, matching excel-table-builder.cc's addDatetime.
const (
	EpochDaysWindows1900 = 25569
	EpochDaysMac1904     = 24107

	nanosPerDay = 86400 * 1_000_000_000
)

// SerialToNanos converts an Excel date serial (days since the
// workbook's epoch, with a fractional part for time-of-day) into
// nanoseconds since the Unix epoch. isOverflow reports that the
// result does not fit in an int64; ns is meaningless in that case and
// the caller should store the cell as null.
func SerialToNanos(serial float64, mac1904 bool) (ns int64, isOverflow bool) {
	epochDays := float64(EpochDaysWindows1900)
	if mac1904 {
		epochDays = float64(EpochDaysMac1904)
	}

	days := serial - epochDays
	nsFloat := days * float64(nanosPerDay)

	if nsFloat >= math.MaxInt64 || nsFloat < math.MinInt64 || math.IsNaN(nsFloat) {
		return 0, true
	}
	return int64(nsFloat), false
}

// IsDateFormatCode reports whether an ECMA-376 number-format code
// represents a date or time, the way xlnt's number_format::is_date_format
// inspects the format tokens rather than trusting the cell's nominal
// type. Builtin IDs 14-22, 27-36, 45-47 and 50-58 are Excel's reserved
// date/time formats; anything else is checked token by token, skipping
// quoted literals and bracketed locale/color tags, for the date/time
// letters y, m, d, h, s (case-insensitive). An unquoted AM/PM marker
// gets no special treatment.
func IsDateFormatCode(builtinID int, code string) bool {
	switch {
	case builtinID >= 14 && builtinID <= 22:
		return true
	case builtinID >= 27 && builtinID <= 36:
		return true
	case builtinID >= 45 && builtinID <= 47:
		return true
	case builtinID >= 50 && builtinID <= 58:
		return true
	}

	if code == "" {
		return false
	}
	return scanForDateTokens(code)
}

func scanForDateTokens(code string) bool {
	inQuote := false
	inBracket := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == ';':
			// Only the first of up to four semicolon-separated
			// sections (positive;negative;zero;text) determines the
			// cell's display, which is what matters for date-ness.
			return false
		case c == 'y' || c == 'Y' || c == 'm' || c == 'M' || c == 'd' || c == 'D' ||
			c == 'h' || c == 'H' || c == 's' || c == 'S':
			return true
		}
	}
	return false
}
