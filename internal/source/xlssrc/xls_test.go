package xlssrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebuladata/colbuild/internal/source/xlcommon"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

func TestClassifyCellEmptyStringIsNull(t *testing.T) {
	kind, _ := classifyCell("")
	assert.Equal(t, xlcommon.CellEmpty, kind)
}

func TestClassifyCellNumericTextIsNumber(t *testing.T) {
	kind, n := classifyCell("3.5")
	assert.Equal(t, xlcommon.CellNumber, kind)
	assert.Equal(t, 3.5, n)
}

func TestClassifyCellNonNumericTextIsString(t *testing.T) {
	kind, _ := classifyCell("hello")
	assert.Equal(t, xlcommon.CellString, kind)
}

func TestReadOnMissingFileWarnsAndReturnsEmptyTable(t *testing.T) {
	ledger := warnings.New()
	d := New(convconfig.DefaultExcelLimits(), false, false)
	result, err := d.Read("/nonexistent/does-not-exist.xls", ledger)
	require.NoError(t, err)
	defer func() {
		for _, a := range result.Arrays {
			a.Release()
		}
	}()
	assert.Equal(t, 0, result.Schema.NumFields())
	assert.True(t, ledger.HasAny())
}
