package table

import (
	"encoding/csv"
	"io"
)

// ReadCSV reads all records of a CSV table. Rows may have different lengths.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
