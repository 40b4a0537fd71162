// Package colbuild converts CSV, JSON, XLS, and XLSX files into a
// single unified columnar representation backed by Apache Arrow,
// inferring each column's type from the values it actually contains
// rather than requiring a schema up front.
//
// # Architecture
//
// Every format has its own driver under internal/source, each reading
// its input format into a shared column-builder (pkg/coltable) that
// performs progressive type widening (untyped → int64 → float64 → string,
// plus a distinct timestamp lane for date-like cells) one value at a
// time, column by column, so a single pass over the input is enough
// regardless of source format.
//
// Ingestion is bounded, not best-effort: pkg/convconfig's Limits cap
// rows, columns, per-value size, and total bytes so a converter never
// runs unbounded against adversarial or merely oversized input. Every
// limit that trims data records a warning in pkg/warnings rather than
// failing the run outright — a converter should finish with a partial,
// honestly-reported table before it refuses to finish at all.
//
// # Key packages
//
//	pkg/coltable            - type-inferring column builder and table assembler
//	pkg/convconfig          - ingestion limits and run configuration
//	pkg/warnings            - the non-fatal diagnostic ledger every driver writes to
//	pkg/tableio             - Arrow IPC file writer/reader
//	pkg/validate            - post-conversion invariant checks (UTF-8, finite floats, …)
//	internal/source/csvsrc  - CSV driver
//	internal/source/jsonsrc - JSON driver (array of objects, or an object holding one)
//	internal/source/xlsxsrc - XLSX (OOXML) driver
//	internal/source/xlssrc  - legacy XLS (BIFF) driver
//	internal/source/xlcommon - Excel date arithmetic and row/column assembly shared by both Excel drivers
//	internal/cli            - shared cobra command constructors used by every binary in cmd/
//
// # Command-line tools
//
// Six single-purpose binaries (csv2arrow, json2arrow, xls2arrow,
// xlsx2arrow, arrowvalidate, convert) and one umbrella binary
// (fileconv) exposing the same commands as subcommands. Every
// converter follows the same shape:
//
//	<tool> <input_file> <output_file>
//
// exiting 0 on success (warnings, if any, are printed to stdout) and 1
// on misuse or a fatal I/O failure.
package colbuild
