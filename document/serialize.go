package document

import (
	"bytes"

	"github.com/fabtools/inchify/writer"
)

func serialize(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writer.Write(&buf, d.Objects, d.Trailer, d.Version); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
