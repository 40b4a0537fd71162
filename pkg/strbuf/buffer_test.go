package strbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendWithinCapacity(t *testing.T) {
	b := New(16)
	b.Append([]byte("hello"))
	require.False(t, b.HasOverflow())
	assert.Equal(t, "hello", string(b.Raw()))
	assert.Equal(t, 5, b.Pos())
}

func TestAppendOverflowStillAdvancesCursor(t *testing.T) {
	b := New(4)
	b.Append([]byte("hello world"))
	assert.True(t, b.HasOverflow())
	assert.Equal(t, 11, b.Pos())
	assert.Equal(t, "hell", string(b.Raw()))
}

func TestResetClearsStateNotCapacity(t *testing.T) {
	b := New(4)
	b.Append([]byte("abcdef"))
	b.Reset()
	assert.False(t, b.HasOverflow())
	assert.Equal(t, 0, b.Pos())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 4, b.Cap())
}

func TestValidUTF8DoesNotSplitTwoByteSequence(t *testing.T) {
	// "e-acute" is 0xC3 0xA9; capping at 1 byte leaves only the lead byte.
	b := New(1)
	b.Append([]byte("é"))
	assert.Equal(t, "", string(b.ValidUTF8()))
}

func TestValidUTF8KeepsCompleteTwoByteSequence(t *testing.T) {
	b := New(2)
	b.Append([]byte("é"))
	assert.Equal(t, "é", string(b.ValidUTF8()))
}

func TestValidUTF8DropsIncompleteThreeByteSequence(t *testing.T) {
	// euro sign is 0xE2 0x82 0xAC; capping at 2 bytes keeps only 2 of 3.
	b := New(2)
	b.Append([]byte("€"))
	assert.Equal(t, "", string(b.ValidUTF8()))
}

func TestValidUTF8KeepsCompleteThreeByteSequence(t *testing.T) {
	b := New(3)
	b.Append([]byte("€"))
	assert.Equal(t, "€", string(b.ValidUTF8()))
}

func TestValidUTF8DropsIncompleteFourByteSequence(t *testing.T) {
	// U+1D518 is 4 bytes: 0xF0 0x9D 0x94 0x98.
	b := New(3)
	b.Append([]byte("\U0001d518"))
	assert.Equal(t, "", string(b.ValidUTF8()))
}

func TestValidUTF8DropsFourByteSequenceCutToTwoBytes(t *testing.T) {
	// grinning face emoji is 4 bytes: 0xF0 0x9F 0x98 0x80; capping at 2
	// bytes keeps only the lead and its first continuation byte.
	b := New(2)
	b.Append([]byte("\U0001F600"))
	assert.Equal(t, "", string(b.ValidUTF8()))
}

func TestValidUTF8KeepsAsciiPrefixUnconditionally(t *testing.T) {
	b := New(5)
	b.Append([]byte("abcde"))
	assert.Equal(t, "abcde", string(b.ValidUTF8()))
}

func TestAppendJSONQuotedEscapesControlBytes(t *testing.T) {
	b := New(64)
	input := []byte{'a', '\t', 'b', '\n', 'c', 0x01, 'd', '"', 'e', '\\', 'f'}
	b.AppendJSONQuoted(input)
	assert.Equal(t, "\"a\\tb\\nc\\u0001d\\\"e\\\\f\"", string(b.Raw()))
}

func TestAppendJSONQuotedEmptyString(t *testing.T) {
	b := New(8)
	b.AppendJSONQuoted(nil)
	assert.Equal(t, "\"\"", string(b.Raw()))
}
