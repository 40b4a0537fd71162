package tableio

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/nebuladata/colbuild/pkg/ingesterr"
)

// ReadTable reads back every record batch an Arrow IPC file holds,
// concatenated into the schema plus one arrow.Record per stored
// batch. Callers own the returned records and must Release each one.
func ReadTable(r io.Reader) (*arrow.Schema, []arrow.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, ingesterr.Wrap(err, ingesterr.TypeFile, "failed to read Arrow IPC input")
	}

	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, nil, ingesterr.Wrap(err, ingesterr.TypeFile, "failed to open Arrow IPC reader")
	}
	defer fr.Close()

	records := make([]arrow.Record, 0, fr.NumRecords())
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, nil, ingesterr.Wrap(err, ingesterr.TypeFile, "failed to read Arrow record batch")
		}
		rec.Retain()
		records = append(records, rec)
	}

	return fr.Schema(), records, nil
}
