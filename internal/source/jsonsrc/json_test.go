package jsonsrc

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

type cell struct {
	isNull bool
	str    string
	i64    int64
	f64    float64
	ts     int64
}

func readAll(t *testing.T, input string, limits convconfig.Limits) (fields []string, kinds []string, rows [][]cell) {
	t.Helper()
	d := New(limits)
	ledger := warnings.New()
	schema, arrays, err := d.Read(strings.NewReader(input), ledger)
	require.NoError(t, err)

	fields = make([]string, schema.NumFields())
	kinds = make([]string, len(arrays))
	for i := range fields {
		fields[i] = schema.Field(i).Name
	}

	nRows := 0
	if len(arrays) > 0 {
		nRows = arrays[0].Len()
	}
	rows = make([][]cell, nRows)
	for r := range rows {
		rows[r] = make([]cell, len(arrays))
	}

	for c, a := range arrays {
		switch arr := a.(type) {
		case *array.String:
			kinds[c] = "string"
			for r := 0; r < arr.Len(); r++ {
				if arr.IsNull(r) {
					rows[r][c] = cell{isNull: true}
				} else {
					rows[r][c] = cell{str: arr.Value(r)}
				}
			}
		case *array.Int64:
			kinds[c] = "int64"
			for r := 0; r < arr.Len(); r++ {
				if arr.IsNull(r) {
					rows[r][c] = cell{isNull: true}
				} else {
					rows[r][c] = cell{i64: arr.Value(r)}
				}
			}
		case *array.Float64:
			kinds[c] = "float64"
			for r := 0; r < arr.Len(); r++ {
				if arr.IsNull(r) {
					rows[r][c] = cell{isNull: true}
				} else {
					rows[r][c] = cell{f64: arr.Value(r)}
				}
			}
		}
		a.Release()
	}
	return fields, kinds, rows
}

func TestBasicArrayOfObjectsProducesOneRowPerObject(t *testing.T) {
	fields, kinds, rows := readAll(t, `[{"a":1,"b":"x"},{"a":2,"b":"y"}]`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"a", "b"}, fields)
	assert.Equal(t, []string{"int64", "string"}, kinds)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0][0].i64)
	assert.Equal(t, "x", rows[0][1].str)
	assert.Equal(t, int64(2), rows[1][0].i64)
}

func TestRootObjectWithNestedRecordArrayIsFound(t *testing.T) {
	fields, _, rows := readAll(t, `{"meta":"ignored","data":[{"a":1},{"a":2}]}`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"a"}, fields)
	require.Len(t, rows, 2)
}

func TestMissingKeyInLaterRowLeavesColumnNull(t *testing.T) {
	_, _, rows := readAll(t, `[{"a":1,"b":2},{"a":3}]`, convconfig.DefaultJSONLimits())
	require.Len(t, rows, 2)
	assert.True(t, rows[1][1].isNull)
}

func TestNullValueGrowsColumnWithoutChangingType(t *testing.T) {
	fields, kinds, rows := readAll(t, `[{"a":1},{"a":null},{"a":3}]`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"a"}, fields)
	assert.Equal(t, []string{"int64"}, kinds)
	assert.True(t, rows[1][0].isNull)
	assert.Equal(t, int64(3), rows[2][0].i64)
}

func TestExponentNotationIsParsedAsFloat(t *testing.T) {
	_, kinds, rows := readAll(t, `[{"a":1e10}]`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"float64"}, kinds)
	assert.Equal(t, 1e10, rows[0][0].f64)
}

func TestNestedObjectValueIsSerializedAsJSONText(t *testing.T) {
	_, kinds, rows := readAll(t, `[{"a":{"x":1,"y":[2,3]}}]`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"string"}, kinds)
	assert.Equal(t, `{"x":1,"y":[2,3]}`, rows[0][0].str)
}

func TestNonObjectArrayElementIsInvalidRowAndDoesNotConsumeARow(t *testing.T) {
	ledger := warnings.New()
	d := New(convconfig.DefaultJSONLimits())
	schema, arrays, err := d.Read(strings.NewReader(`[{"a":1},42,{"a":2}]`), ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	require.Equal(t, 1, schema.NumFields())
	assert.Equal(t, 2, arrays[0].Len())
	assert.True(t, ledger.HasAny())
}

func TestDuplicateKeyInSameRecordIsWarnedAndIgnored(t *testing.T) {
	ledger := warnings.New()
	d := New(convconfig.DefaultJSONLimits())
	schema, arrays, err := d.Read(strings.NewReader(`[{"a":1,"a":2}]`), ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	_ = schema
	iarr := arrays[0].(*array.Int64)
	assert.Equal(t, int64(1), iarr.Value(0))
	assert.True(t, ledger.HasAny())
}

func TestScalarRootWarnsBadRoot(t *testing.T) {
	ledger := warnings.New()
	d := New(convconfig.DefaultJSONLimits())
	schema, arrays, err := d.Read(strings.NewReader(`"hello"`), ledger)
	require.NoError(t, err)
	assert.Equal(t, 0, schema.NumFields())
	assert.Empty(t, arrays)
	assert.True(t, ledger.HasAny())
}

func TestMaxRowsSkipsRowsPastLimit(t *testing.T) {
	limits := convconfig.DefaultJSONLimits()
	limits.MaxRows = 1
	_, _, rows := readAll(t, `[{"a":1},{"a":2},{"a":3}]`, limits)
	assert.Len(t, rows, 1)
}

func TestValueTruncatedAtMaxBytesPerValue(t *testing.T) {
	limits := convconfig.DefaultJSONLimits()
	limits.MaxBytesPerValue = 3
	ledger := warnings.New()
	d := New(limits)
	schema, arrays, err := d.Read(strings.NewReader(`[{"a":"hello"}]`), ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	_ = schema
	sarr := arrays[0].(*array.String)
	assert.Equal(t, "hel", sarr.Value(0))
	assert.True(t, ledger.HasAny())
}

func TestColumnNameTruncatedAtMaxBytesPerColumnName(t *testing.T) {
	limits := convconfig.DefaultJSONLimits()
	limits.MaxBytesPerColumnName = 3
	fields, _, _ := readAll(t, `[{"abcdef":1}]`, limits)
	assert.Equal(t, []string{"abc"}, fields)
}

func TestBooleanValuesAreWrittenAsStringLiterals(t *testing.T) {
	_, kinds, rows := readAll(t, `[{"a":true},{"a":false}]`, convconfig.DefaultJSONLimits())
	assert.Equal(t, []string{"string"}, kinds)
	assert.Equal(t, "true", rows[0][0].str)
	assert.Equal(t, "false", rows[1][0].str)
}

func TestEmptyArrayProducesNoColumns(t *testing.T) {
	fields, _, rows := readAll(t, `[]`, convconfig.DefaultJSONLimits())
	assert.Empty(t, fields)
	assert.Empty(t, rows)
}
