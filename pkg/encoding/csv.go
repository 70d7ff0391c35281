package encoding

import (
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows with a header line taken from the `csv` struct tags
// of T.
func WriteCSV[T any](w io.Writer, rows []T) error {
	return gocsv.Marshal(rows, w)
}

// ReadCSV parses a document produced by WriteCSV.
func ReadCSV[T any](r io.Reader) ([]T, error) {
	var rows []T
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
