package xlcommon

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

func TestAssemblerWithoutHeaderWritesRowsDirectly(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{}, false)

	require.Equal(t, Continue, a.AddCell(0, 0, CellNumber, "1", 1, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(0, 1, CellString, "x", 0, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(1, 0, CellNumber, "2", 2, 0, false, ledger))

	schema, arrays, headerSchema, headerArrays := a.Finish(ledger)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
		for _, arr := range headerArrays {
			arr.Release()
		}
	}()

	require.Equal(t, 2, schema.NumFields())
	require.Equal(t, 0, headerSchema.NumFields())
	farr := arrays[0].(*array.Float64)
	require.Equal(t, 2, farr.Len())
	assert.Equal(t, float64(1), farr.Value(0))
	assert.Equal(t, float64(2), farr.Value(1))
}

func TestAssemblerWithHeaderShiftsRowsAndBuildsHeaderTable(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{}, true)

	require.Equal(t, Continue, a.AddCell(0, 0, CellString, "name", 0, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(1, 0, CellString, "alice", 0, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(2, 0, CellString, "bob", 0, 0, false, ledger))

	schema, arrays, headerSchema, headerArrays := a.Finish(ledger)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
		for _, arr := range headerArrays {
			arr.Release()
		}
	}()

	require.Equal(t, 1, schema.NumFields())
	sarr := arrays[0].(*array.String)
	require.Equal(t, 2, sarr.Len())
	assert.Equal(t, "alice", sarr.Value(0))
	assert.Equal(t, "bob", sarr.Value(1))

	require.Equal(t, 1, headerSchema.NumFields())
	harr := headerArrays[0].(*array.String)
	require.Equal(t, 1, harr.Len())
	assert.Equal(t, "name", harr.Value(0))
}

func TestAssemblerDatetimeCellWritesTimestamp(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{}, false)

	ns, overflow := SerialToNanos(25570, false)
	require.False(t, overflow)
	require.Equal(t, Continue, a.AddCell(0, 0, CellDate, "25570", 0, ns, overflow, ledger))

	schema, arrays, _, headerArrays := a.Finish(ledger)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
		for _, arr := range headerArrays {
			arr.Release()
		}
	}()

	tsType, ok := schema.Field(0).Type.(*arrow.TimestampType)
	require.True(t, ok)
	assert.Equal(t, arrow.Nanosecond, tsType.Unit)
	tsarr := arrays[0].(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(ns), tsarr.Value(0))
}

func TestAssemblerColumnPastLimitIsSkippedWithWarning(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{MaxColumns: 1}, false)

	require.Equal(t, Continue, a.AddCell(0, 0, CellString, "ok", 0, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(0, 1, CellString, "skipped", 0, 0, false, ledger))

	schema, arrays, _, headerArrays := a.Finish(ledger)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
		for _, arr := range headerArrays {
			arr.Release()
		}
	}()
	require.Equal(t, 1, schema.NumFields())
	assert.True(t, ledger.HasAny())
}

func TestAssemblerRowsPastMaxRowsAreSkippedAndCounted(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{MaxRows: 1}, false)

	require.Equal(t, Continue, a.AddCell(0, 0, CellNumber, "1", 1, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(1, 0, CellNumber, "2", 2, 0, false, ledger))
	require.Equal(t, Continue, a.AddCell(2, 0, CellNumber, "3", 3, 0, false, ledger))

	schema, arrays, _, headerArrays := a.Finish(ledger)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
		for _, arr := range headerArrays {
			arr.Release()
		}
	}()
	require.Equal(t, 1, schema.NumFields())
	farr := arrays[0].(*array.Float64)
	require.Equal(t, 1, farr.Len())
	assert.True(t, ledger.HasAny())
}

func TestAssemblerStopsOnceByteBudgetExhausted(t *testing.T) {
	ledger := warnings.New()
	a := NewAssembler(memory.NewGoAllocator(), convconfig.Limits{MaxBytesTotal: 2}, false)

	require.Equal(t, Continue, a.AddCell(0, 0, CellString, "ab", 0, 0, false, ledger))
	action := a.AddCell(0, 1, CellString, "cd", 0, 0, false, ledger)
	assert.Equal(t, Stop, action)
	assert.Equal(t, Stop, a.AddCell(1, 0, CellString, "x", 0, 0, false, ledger))
}
