package xlsxsrc

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

func writeWorkbook(t *testing.T, fill func(f *excelize.File)) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	fill(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadsPlainNumbersAndStrings(t *testing.T) {
	buf := writeWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", 1)
		f.SetCellValue("Sheet1", "B1", "hello")
		f.SetCellValue("Sheet1", "A2", 2)
		f.SetCellValue("Sheet1", "B2", "world")
	})

	ledger := warnings.New()
	d := New(convconfig.DefaultExcelLimits(), false, nil)
	result, err := d.Read(buf, ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range result.Arrays {
			a.Release()
		}
	}()

	require.Equal(t, 2, result.Schema.NumFields())
	farr := result.Arrays[0].(*array.Float64)
	assert.Equal(t, float64(1), farr.Value(0))
	assert.Equal(t, float64(2), farr.Value(1))
	sarr := result.Arrays[1].(*array.String)
	assert.Equal(t, "hello", sarr.Value(0))
}

func TestDateStyledCellIsReadAsTimestamp(t *testing.T) {
	buf := writeWorkbook(t, func(f *excelize.File) {
		styleID, err := f.NewStyle(&excelize.Style{NumFmt: 14})
		require.NoError(t, err)
		f.SetCellValue("Sheet1", "A1", 25570)
		require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styleID))
	})

	ledger := warnings.New()
	d := New(convconfig.DefaultExcelLimits(), false, nil)
	result, err := d.Read(buf, ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range result.Arrays {
			a.Release()
		}
	}()

	_, ok := result.Arrays[0].(*array.Timestamp)
	assert.True(t, ok)
}

func TestHeaderRowIsSplitIntoItsOwnTable(t *testing.T) {
	buf := writeWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "name")
		f.SetCellValue("Sheet1", "A2", "alice")
		f.SetCellValue("Sheet1", "A3", "bob")
	})

	ledger := warnings.New()
	d := New(convconfig.DefaultExcelLimits(), true, nil)
	result, err := d.Read(buf, ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range result.Arrays {
			a.Release()
		}
		for _, a := range result.HeaderArrays {
			a.Release()
		}
	}()

	sarr := result.Arrays[0].(*array.String)
	require.Equal(t, 2, sarr.Len())
	assert.Equal(t, "alice", sarr.Value(0))

	harr := result.HeaderArrays[0].(*array.String)
	require.Equal(t, 1, harr.Len())
	assert.Equal(t, "name", harr.Value(0))
}

func TestBlankCellIsNull(t *testing.T) {
	buf := writeWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", 1)
		f.SetCellValue("Sheet1", "A2", 2)
		f.SetCellValue("Sheet1", "B2", "only in row 2")
	})

	ledger := warnings.New()
	d := New(convconfig.DefaultExcelLimits(), false, nil)
	result, err := d.Read(buf, ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range result.Arrays {
			a.Release()
		}
	}()

	barr := result.Arrays[1].(*array.String)
	assert.True(t, barr.IsNull(0))
	assert.Equal(t, "only in row 2", barr.Value(1))
}
