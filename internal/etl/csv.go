package etl

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Row is one CSV row keyed by header-derived column names.
type Row map[string]string

// parseCSV decodes a raw CSV object into rows. The first record is the
// header; every data row must have the same number of fields.
func parseCSV(data []byte) ([]Row, error) {
	cr := csv.NewReader(bytes.NewReader(data))

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parseCSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parseCSV: empty file")
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
