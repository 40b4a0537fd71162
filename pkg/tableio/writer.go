// Package tableio writes and reads the Arrow IPC files that are this
// module's one and only interchange format between a driver's
// finished table and everything downstream (validation, inspection,
// re-reading for tests).
package tableio

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/ingesterr"
)

// WriteTable writes schema and its columns to w as a single-batch
// Arrow IPC file. Every driver in this module produces one table per
// input file, so there is never a reason to stream multiple batches.
func WriteTable(w io.Writer, schema *arrow.Schema, columns []arrow.Array) error {
	mem := memory.NewGoAllocator()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to open Arrow IPC writer")
	}

	numRows := int64(0)
	if len(columns) > 0 {
		numRows = int64(columns[0].Len())
	}

	record := array.NewRecord(schema, columns, numRows)
	defer record.Release()

	if err := fw.Write(record); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to write Arrow record batch")
	}

	if err := fw.Close(); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeFile, "failed to close Arrow IPC writer")
	}

	return nil
}
