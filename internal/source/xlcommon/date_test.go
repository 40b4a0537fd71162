package xlcommon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialToNanosWindows1900Epoch(t *testing.T) {
	ns, overflow := SerialToNanos(25569, false)
	assert.False(t, overflow)
	assert.Equal(t, int64(0), ns)
}

func TestSerialToNanosMac1904Epoch(t *testing.T) {
	ns, overflow := SerialToNanos(24107, true)
	assert.False(t, overflow)
	assert.Equal(t, int64(0), ns)
}

func TestSerialToNanosOneDayAfterEpoch(t *testing.T) {
	ns, overflow := SerialToNanos(25570, false)
	assert.False(t, overflow)
	assert.Equal(t, int64(86400*1_000_000_000), ns)
}

func TestSerialToNanosFractionalDayIsTimeOfDay(t *testing.T) {
	ns, overflow := SerialToNanos(25569.5, false)
	assert.False(t, overflow)
	assert.Equal(t, int64(43200*1_000_000_000), ns)
}

func TestSerialToNanosOverflowsOnExtremeValue(t *testing.T) {
	_, overflow := SerialToNanos(1e30, false)
	assert.True(t, overflow)
}

func TestIsDateFormatCodeRecognizesBuiltinIDs(t *testing.T) {
	assert.True(t, IsDateFormatCode(14, ""))
	assert.True(t, IsDateFormatCode(22, ""))
	assert.False(t, IsDateFormatCode(1, "0"))
}

func TestIsDateFormatCodeScansCustomCode(t *testing.T) {
	assert.True(t, IsDateFormatCode(0, "yyyy-mm-dd"))
	assert.True(t, IsDateFormatCode(0, "h:mm:ss AM/PM"))
	assert.False(t, IsDateFormatCode(0, "#,##0.00"))
	assert.False(t, IsDateFormatCode(0, `"meters" 0.00`))
}

func TestIsDateFormatCodeIgnoresTextSectionAfterSemicolon(t *testing.T) {
	assert.False(t, IsDateFormatCode(0, `0.00;-0.00;0;"made on" mm/dd`))
}
