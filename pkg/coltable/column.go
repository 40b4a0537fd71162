package coltable

import (
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/warnings"
)

// tsType is the single timestamp unit this package ever materializes:
// nanoseconds since the Unix epoch, unit-less (no timezone attached).
var tsType = &arrow.TimestampType{Unit: arrow.Nanosecond}

// ColumnBuilder is a single column's type-inferring accumulator. It
// keeps a text shadow of every cell's raw bytes alongside whichever
// typed primary (int64, float64, or timestamp) matches its current
// Dtype; at most one typed primary is live at a time.
type ColumnBuilder struct {
	name  string
	dtype Dtype
	mem   memory.Allocator

	shadow *array.StringBuilder
	intB   *array.Int64Builder
	floatB *array.Float64Builder
	tsB    *array.TimestampBuilder

	nNumbers       int
	firstNumberRow int

	nTimestamps       int
	firstTimestampRow int

	nLossyNumbers       int
	firstLossyNumberRow int

	nOverflowNumbers       int
	firstOverflowNumberRow int

	nOverflowTimestamps       int
	firstOverflowTimestampRow int
}

// NewColumnBuilder returns an empty, Untyped column builder.
func NewColumnBuilder(mem memory.Allocator, name string) *ColumnBuilder {
	return &ColumnBuilder{
		name:   name,
		mem:    mem,
		dtype:  Untyped,
		shadow: array.NewStringBuilder(mem),
	}
}

// Name returns the column's name.
func (c *ColumnBuilder) Name() string { return c.name }

// Dtype returns the column's current inference state.
func (c *ColumnBuilder) Dtype() Dtype { return c.dtype }

// Len returns the column's current logical row count.
func (c *ColumnBuilder) Len() int { return c.shadow.Len() }

// GrowToLength null-pads the column up to row n without writing a
// value, for front ends that need to record "this row touched this
// column" (e.g. a JSON null, or a duplicate-key check) without
// changing the column's inferred type.
func (c *ColumnBuilder) GrowToLength(n int) { c.growToLength(n) }

// growToLength null-pads the text shadow and whichever typed primary
// is currently active up to length n, without appending a value.
func (c *ColumnBuilder) growToLength(n int) {
	for c.shadow.Len() < n {
		c.shadow.AppendNull()
	}
	switch c.dtype {
	case Int:
		for c.intB.Len() < n {
			c.intB.AppendNull()
		}
	case Float:
		for c.floatB.Len() < n {
			c.floatB.AppendNull()
		}
	case Timestamp:
		for c.tsB.Len() < n {
			c.tsB.AppendNull()
		}
	}
}

func (c *ColumnBuilder) appendShadow(row int, raw []byte) {
	c.growToLength(row)
	c.shadow.Append(string(raw))
}

func (c *ColumnBuilder) freeInt() {
	c.intB.Release()
	c.intB = nil
}

func (c *ColumnBuilder) freeFloat() {
	c.floatB.Release()
	c.floatB = nil
}

func (c *ColumnBuilder) freeTimestamp() {
	c.tsB.Release()
	c.tsB = nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// WriteString writes a string cell at row. Any typed primary is
// demoted to String; the text shadow always has the raw bytes already.
func (c *ColumnBuilder) WriteString(row int, raw []byte) {
	c.appendShadow(row, raw)

	switch c.dtype {
	case Untyped:
		c.dtype = String
	case Int:
		c.freeInt()
		c.dtype = String
	case Float:
		c.freeFloat()
		c.dtype = String
	case Timestamp:
		c.freeTimestamp()
		c.dtype = String
	case String:
		// already terminal
	}
}

// canParseAsInt64 implements the §4.3 int-parsing rule: a JSON number
// literal is an int iff it contains none of '.', 'e', 'E' and parses
// as a signed 64-bit integer.
func canParseAsInt64(raw []byte) (int64, bool) {
	for _, c := range raw {
		if c == '.' || c == 'e' || c == 'E' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// WriteNumberLiteral writes a JSON number literal, classifying it as
// int or float per the §4.3 rule and dispatching into the matching
// transition-table column.
func (c *ColumnBuilder) WriteNumberLiteral(row int, raw []byte) {
	if v, ok := canParseAsInt64(raw); ok {
		c.writeIntOp(row, v, raw)
		return
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		// Malformed number literal from an already-validated JSON
		// tokenizer should not happen; fall back to text.
		c.WriteString(row, raw)
		return
	}
	c.writeFloatOp(row, f, raw)
}

// WriteParsedNumber writes a value a front-end already parsed as a
// double (e.g. an Excel numeric cell). Always dispatches through the
// "float" column of the transition table, never "int".
func (c *ColumnBuilder) WriteParsedNumber(row int, v float64, raw []byte) {
	c.appendShadow(row, raw)
	c.dispatchFloatAfterShadow(row, v)
}

// writeIntOp dispatches an int64-shaped value through the "int" column
// of the §4.3 transition table.
func (c *ColumnBuilder) writeIntOp(row int, v int64, raw []byte) {
	c.appendShadow(row, raw)

	switch c.dtype {
	case Untyped:
		c.intB = array.NewInt64Builder(c.mem)
		c.dtype = Int
		c.countNumber(row)
		c.intB.Append(v)
	case Int:
		c.countNumber(row)
		c.intB.Append(v)
	case Float:
		c.countNumber(row)
		f := float64(v)
		if int64(f) != v {
			c.countLossy(row)
		}
		c.floatB.Append(f)
	case Timestamp:
		c.countNumber(row)
		c.freeTimestamp()
		c.dtype = String
	case String:
		c.countNumber(row)
	}
}

// writeFloatOp dispatches a float64-shaped value through the "float"
// column of the §4.3 transition table.
func (c *ColumnBuilder) writeFloatOp(row int, v float64, raw []byte) {
	c.appendShadow(row, raw)
	c.dispatchFloatAfterShadow(row, v)
}

// dispatchFloatAfterShadow implements the "float" transition column,
// assuming appendShadow has already run for this row.
func (c *ColumnBuilder) dispatchFloatAfterShadow(row int, v float64) {
	switch c.dtype {
	case Untyped:
		c.floatB = array.NewFloat64Builder(c.mem)
		c.dtype = Float
		c.countNumber(row)
		c.appendFloatChecked(row, v)
	case Int:
		c.convertIntToFloat()
		c.countNumber(row)
		c.appendFloatChecked(row, v)
	case Float:
		c.countNumber(row)
		c.appendFloatChecked(row, v)
	case Timestamp:
		c.countNumber(row)
		c.freeTimestamp()
		c.dtype = String
	case String:
		c.countNumber(row)
	}
}

func (c *ColumnBuilder) appendFloatChecked(row int, v float64) {
	if isFinite(v) {
		c.floatB.Append(v)
		return
	}
	c.floatB.AppendNull()
	if c.nOverflowNumbers == 0 {
		c.firstOverflowNumberRow = row
	}
	c.nOverflowNumbers++
}

func (c *ColumnBuilder) countNumber(row int) {
	if c.nNumbers == 0 {
		c.firstNumberRow = row
	}
	c.nNumbers++
}

func (c *ColumnBuilder) countLossy(row int) {
	if c.nLossyNumbers == 0 {
		c.firstLossyNumberRow = row
	}
	c.nLossyNumbers++
}

func (c *ColumnBuilder) countTimestamp(row int) {
	if c.nTimestamps == 0 {
		c.firstTimestampRow = row
	}
	c.nTimestamps++
}

// convertIntToFloat demotes an INT column to FLOAT, converting every
// existing int to float64 and recording a lossy warning for any whose
// round trip through float64 is not the identity. This settles the
// overflow-on-INT open question too: callers always demote via this
// path before appending the overflowing value, so the demotion of
// prior data and the new append are never reordered.
func (c *ColumnBuilder) convertIntToFloat() {
	arr := c.intB.NewInt64Array()
	defer arr.Release()

	newFloat := array.NewFloat64Builder(c.mem)
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			newFloat.AppendNull()
			continue
		}
		iv := arr.Value(i)
		f := float64(iv)
		if int64(f) != iv {
			c.countLossy(i)
		}
		newFloat.Append(f)
	}

	c.freeInt()
	c.floatB = newFloat
	c.dtype = Float
}

// WriteParsedTimestamp writes a value a front-end already resolved to
// nanoseconds since the Unix epoch (e.g. an Excel date cell).
// isOverflow signals the source computation did not fit in int64; ns
// is meaningless in that case and the cell is stored as null.
func (c *ColumnBuilder) WriteParsedTimestamp(row int, ns int64, isOverflow bool, raw []byte) {
	c.appendShadow(row, raw)

	switch c.dtype {
	case Untyped:
		c.tsB = array.NewTimestampBuilder(c.mem, tsType)
		c.dtype = Timestamp
		c.appendTimestampChecked(row, ns, isOverflow)
	case Timestamp:
		c.appendTimestampChecked(row, ns, isOverflow)
	case Int:
		c.countTimestamp(row)
		c.freeInt()
		c.dtype = String
	case Float:
		c.countTimestamp(row)
		c.freeFloat()
		c.dtype = String
	case String:
		c.countTimestamp(row)
	}
}

func (c *ColumnBuilder) appendTimestampChecked(row int, ns int64, isOverflow bool) {
	if isOverflow {
		c.tsB.AppendNull()
		if c.nOverflowTimestamps == 0 {
			c.firstOverflowTimestampRow = row
		}
		c.nOverflowTimestamps++
		return
	}
	c.tsB.Append(arrow.Timestamp(ns))
	c.countTimestamp(row)
}

// Finish null-pads the column to nRows, emits every warn-on-finish
// diagnostic the terminal state calls for, and materializes the
// field+array pair for whichever array matches that state. After
// Finish the builder is reset to a fresh Untyped state.
func (c *ColumnBuilder) Finish(ledger *warnings.Ledger, nRows int) (arrow.Field, arrow.Array) {
	c.growToLength(nRows)

	switch c.dtype {
	case String, Untyped:
		if c.nNumbers > 0 {
			ledger.WarnValueNumberToText(c.firstNumberRow, c.name, uint32(c.nNumbers))
		}
		if c.nTimestamps > 0 {
			ledger.WarnValueTimestampToText(c.firstTimestampRow, c.name, uint32(c.nTimestamps))
		}
	case Float:
		if c.nLossyNumbers > 0 {
			ledger.WarnValueLossyIntToFloat(c.firstLossyNumberRow, c.name, uint32(c.nLossyNumbers))
		}
		if c.nOverflowNumbers > 0 {
			ledger.WarnValueOverflowFloat(c.firstOverflowNumberRow, c.name, uint32(c.nOverflowNumbers))
		}
	case Timestamp:
		if c.nOverflowTimestamps > 0 {
			ledger.WarnValueOverflowTimestamp(c.firstOverflowTimestampRow, c.name, uint32(c.nOverflowTimestamps))
		}
	}

	var field arrow.Field
	var arr arrow.Array

	switch c.dtype {
	case Int:
		a := c.intB.NewInt64Array()
		arr = a
		field = arrow.Field{Name: c.name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}
		c.shadow.Release()
	case Float:
		a := c.floatB.NewFloat64Array()
		arr = a
		field = arrow.Field{Name: c.name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
		c.shadow.Release()
	case Timestamp:
		a := c.tsB.NewTimestampArray()
		arr = a
		field = arrow.Field{Name: c.name, Type: tsType, Nullable: true}
		c.shadow.Release()
	default: // String, Untyped
		a := c.shadow.NewStringArray()
		arr = a
		field = arrow.Field{Name: c.name, Type: arrow.BinaryTypes.String, Nullable: true}
	}

	c.reset()
	return field, arr
}

func (c *ColumnBuilder) reset() {
	name := c.name
	mem := c.mem
	*c = ColumnBuilder{name: name, mem: mem, dtype: Untyped, shadow: array.NewStringBuilder(mem)}
}
