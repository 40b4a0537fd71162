package tableio

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadTableRoundTrips(t *testing.T) {
	mem := memory.NewGoAllocator()

	ib := array.NewInt64Builder(mem)
	ib.AppendValues([]int64{1, 2, 3}, nil)
	intArr := ib.NewInt64Array()
	defer intArr.Release()

	sb := array.NewStringBuilder(mem)
	sb.AppendValues([]string{"a", "b", "c"}, nil)
	strArr := sb.NewStringArray()
	defer strArr.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, schema, []arrow.Array{intArr, strArr}))

	gotSchema, records, err := ReadTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()

	assert.True(t, gotSchema.Equal(schema))
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].NumRows())

	got := records[0].Column(0).(*array.Int64)
	assert.Equal(t, int64(2), got.Value(1))
}

func TestWriteTableWithZeroRows(t *testing.T) {
	mem := memory.NewGoAllocator()
	sb := array.NewStringBuilder(mem)
	strArr := sb.NewStringArray()
	defer strArr.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, schema, []arrow.Array{strArr}))

	_, records, err := ReadTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].NumRows())
}
