// Package jsonsrc implements the JSON front-end driver: a token-driven
// reader that locates a record array (either the document root, or the
// first array value found in a root object) and writes each record
// object's fields into a coltable.TableBuilder, the way
// json-to-arrow.cc's rapidjson SAX handler does with events instead of
// tokens.
package jsonsrc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"

	"github.com/nebuladata/colbuild/pkg/coltable"
	"github.com/nebuladata/colbuild/pkg/convconfig"
	"github.com/nebuladata/colbuild/pkg/strbuf"
	"github.com/nebuladata/colbuild/pkg/warnings"
)

// Driver reads a single JSON document into one table.
type Driver struct {
	Limits convconfig.Limits
}

// New returns a Driver with the given limits.
func New(limits convconfig.Limits) *Driver {
	return &Driver{Limits: limits}
}

// Read parses r as JSON and returns the assembled schema and columns.
// A JSON syntax error does not make Read fail outright: whatever was
// parsed before the error is still returned, with a warning recorded
// on the ledger, mirroring the original driver's "parse as much as we
// can, then report" behavior.
func (d *Driver) Read(r io.Reader, ledger *warnings.Ledger) (*arrow.Schema, []arrow.Array, error) {
	tb := coltable.NewTableBuilder(memory.NewGoAllocator(), d.Limits.MaxColumns)
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	p := &parser{
		dec:    dec,
		tb:     tb,
		ledger: ledger,
		limits: d.Limits,
	}
	p.run()

	nRows := p.row
	if p.rowPartiallyWritten {
		// The parse stopped mid-record (e.g. truncated input); the
		// partial row still holds data worth keeping.
		nRows++
	}
	if p.limits.MaxRows != 0 && uint64(nRows) > p.limits.MaxRows {
		ledger.WarnRowsSkipped(saturateUint32(uint64(nRows)-p.limits.MaxRows), p.limits.MaxRows)
		nRows = int(p.limits.MaxRows)
	}

	schema, arrays := tb.Finish(ledger, nRows)
	return schema, arrays, nil
}

func saturateUint32(n uint64) uint32 {
	const max = ^uint32(0)
	if n > uint64(max) {
		return max
	}
	return uint32(n)
}

// parser walks the decoder's token stream, tracking just enough state
// to know whether we're scanning the root for a record array, inside
// that array, or inside one record object — the Go analogue of the
// rapidjson handler's explicit state field.
type parser struct {
	dec    *gojson.Decoder
	tb     *coltable.TableBuilder
	ledger *warnings.Ledger
	limits convconfig.Limits

	row                 int
	rowPartiallyWritten bool
	nBytesTotal         uint64
	stoppedOutOfMemory  bool
}

func (p *parser) run() {
	tok, err := p.dec.Token()
	if err != nil {
		p.reportParseError(err)
		return
	}

	switch v := tok.(type) {
	case gojson.Delim:
		switch rune(v) {
		case '[':
			p.consumeRecordArray()
		case '{':
			p.scanRootObjectForRecordArray()
		}
	default:
		p.ledger.WarnBadRoot(scalarText(tok))
	}
}

// scanRootObjectForRecordArray walks a root Object's top-level
// key/value pairs, using the first Array value it finds as the record
// array and ignoring everything else.
func (p *parser) scanRootObjectForRecordArray() {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == '}' {
			return
		}
		// tok is a key; we don't need its text.
		vtok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if d, ok := vtok.(gojson.Delim); ok && rune(d) == '[' {
			p.consumeRecordArray()
			// Drain the rest of the root object without looking for
			// a second record array.
			p.skipRestOfObject()
			return
		}
		p.skipValue(vtok)
	}
}

func (p *parser) skipRestOfObject() {
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if d, ok := tok.(gojson.Delim); ok {
			switch rune(d) {
			case '{', '[':
				depth++
			case '}':
				if depth == 0 {
					return
				}
				depth--
			case ']':
				depth--
			}
		}
	}
}

// skipValue discards a value already started by tok (a scalar, or an
// opening delimiter whose matching close we consume here).
func (p *parser) skipValue(tok interface{}) {
	if _, ok := tok.(gojson.Delim); !ok {
		return
	}
	depth := 1
	for depth > 0 {
		next, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if nd, ok := next.(gojson.Delim); ok {
			switch rune(nd) {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
}

// consumeRecordArray processes each element of the record array until
// its closing "]"; elements that are not Objects are reported as
// invalid rows without advancing p.row.
func (p *parser) consumeRecordArray() {
	for {
		if p.stoppedOutOfMemory {
			p.skipValue(gojson.Delim('['))
			return
		}
		tok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == ']' {
			return
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == '{' {
			p.processRecord()
			continue
		}
		snippet, err := p.serializeValue(tok)
		if err != nil {
			p.reportParseError(err)
			return
		}
		p.ledger.WarnRowInvalid(p.row, truncateErrorSnippet(snippet, p.limits.MaxBytesPerErrorValue))
	}
}

// processRecord handles one record Object's key/value pairs, assuming
// the opening "{" has already been consumed.
func (p *parser) processRecord() {
	row := p.row

	for {
		tok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == '}' {
			break
		}

		key, _ := tok.(string)

		valTok, err := p.dec.Token()
		if err != nil {
			p.reportParseError(err)
			return
		}

		if p.limits.MaxRows != 0 && uint64(row) >= p.limits.MaxRows {
			p.skipValue(valTok)
			continue
		}

		name, truncated := truncateColumnName(key, p.limits.MaxBytesPerColumnName)
		col, ok, isNew := p.tb.FindOrCreateColumn(row, name, p.ledger)
		if !ok {
			p.skipValue(valTok)
			continue
		}
		if isNew && truncated {
			p.ledger.WarnColumnNameTruncated(col.Name())
		}
		if col.Len() > row {
			p.ledger.WarnColumnNameDuplicated(row, name)
			p.skipValue(valTok)
			continue
		}

		p.writeValue(col, row, valTok)
	}

	if p.stoppedOutOfMemory && !p.rowPartiallyWritten {
		// The byte limit tripped before any cell of this row was
		// written, so the row is not part of the output.
		return
	}
	p.row++
	p.rowPartiallyWritten = false
}

// writeValue dispatches one record field's already-read first token
// into col, recursively serializing nested Object/Array values to
// text first.
func (p *parser) writeValue(col *coltable.ColumnBuilder, row int, tok interface{}) {
	switch v := tok.(type) {
	case nil:
		col.GrowToLength(row + 1)
		p.rowPartiallyWritten = true
		return

	case bool:
		p.finishString(col, row, boolText(v))
		return

	case gojson.Number:
		p.finishNumber(col, row, []byte(string(v)))
		return

	case string:
		p.finishString(col, row, []byte(v))
		return

	case gojson.Delim:
		text, err := p.serializeValue(v)
		if err != nil {
			p.reportParseError(err)
			return
		}
		p.finishString(col, row, []byte(text))
		return
	}
}

func (p *parser) finishString(col *coltable.ColumnBuilder, row int, raw []byte) {
	maxBytes := int(p.limits.MaxBytesPerValue)
	if maxBytes > 0 && len(raw) > maxBytes {
		p.ledger.WarnValueTruncated(row, col.Name(), uint32(maxBytes))
		raw = strbuf.TruncateUTF8(raw, maxBytes)
	}
	if !p.chargeBytes(len(raw)) {
		return
	}
	col.WriteString(row, raw)
	p.rowPartiallyWritten = true
}

func (p *parser) finishNumber(col *coltable.ColumnBuilder, row int, raw []byte) {
	if !p.chargeBytes(len(raw)) {
		return
	}
	col.WriteNumberLiteral(row, raw)
	p.rowPartiallyWritten = true
}

// chargeBytes applies max_bytes_total, stopping ingestion (but not the
// surrounding parse, so later syntax errors still surface) once the
// running total of cell bytes exceeds the limit.
func (p *parser) chargeBytes(n int) bool {
	if p.stoppedOutOfMemory {
		return false
	}
	p.nBytesTotal += uint64(n)
	if p.limits.MaxBytesTotal != 0 && p.nBytesTotal > p.limits.MaxBytesTotal {
		p.ledger.WarnStoppedOutOfMemory(p.limits.MaxBytesTotal)
		p.stoppedOutOfMemory = true
		return false
	}
	return true
}

// serializeValue re-renders the JSON value already started by tok
// (after its opening delimiter, if any, has been consumed) as compact
// JSON text, the Go equivalent of the original driver serializing a
// nested value into valueBuf as it walks past it.
func (p *parser) serializeValue(tok interface{}) (string, error) {
	var buf bytes.Buffer
	if err := p.writeValueText(&buf, tok); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *parser) writeValueText(buf *bytes.Buffer, tok interface{}) error {
	switch v := tok.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.Write(boolText(v))
	case gojson.Number:
		buf.WriteString(string(v))
	case string:
		quoted, _ := gojson.Marshal(v)
		buf.Write(quoted)
	case gojson.Delim:
		switch rune(v) {
		case '[':
			return p.writeArrayText(buf)
		case '{':
			return p.writeObjectText(buf)
		}
	}
	return nil
}

func (p *parser) writeArrayText(buf *bytes.Buffer) error {
	buf.WriteByte('[')
	first := true
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == ']' {
			buf.WriteByte(']')
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := p.writeValueText(buf, tok); err != nil {
			return err
		}
	}
}

func (p *parser) writeObjectText(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(gojson.Delim); ok && rune(d) == '}' {
			buf.WriteByte('}')
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := tok.(string)
		quoted, _ := gojson.Marshal(key)
		buf.Write(quoted)
		buf.WriteByte(':')

		vtok, err := p.dec.Token()
		if err != nil {
			return err
		}
		if err := p.writeValueText(buf, vtok); err != nil {
			return err
		}
	}
}

func (p *parser) reportParseError(err error) {
	if err == io.EOF {
		return
	}
	p.ledger.WarnJSONParseError(p.dec.InputOffset(), err.Error())
}

func boolText(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

func scalarText(tok interface{}) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case bool:
		return string(boolText(v))
	case gojson.Number:
		return string(v)
	case string:
		quoted, _ := gojson.Marshal(v)
		return string(quoted)
	default:
		return fmt.Sprintf("%v", tok)
	}
}

func truncateErrorSnippet(s string, maxBytes uint32) string {
	if maxBytes == 0 || len(s) <= int(maxBytes) {
		return s
	}
	return string(strbuf.TruncateUTF8([]byte(s), int(maxBytes)))
}

// truncateColumnName applies max_bytes_per_column_name, reporting
// whether truncation happened so the caller can warn once the column
// is known to be new (a truncated name that collides with an existing
// column is not itself worth a second warning).
func truncateColumnName(name string, maxBytes uint32) (string, bool) {
	if maxBytes == 0 || uint32(len(name)) <= maxBytes {
		return name, false
	}
	truncated := strbuf.TruncateUTF8([]byte(name), int(maxBytes))
	return string(truncated), true
}
