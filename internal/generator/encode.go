package generator

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/portfolio-etl/internal/domain"
)

// Format selects the serialization of a batch.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Header is the CSV header for a raw transaction batch.
const Header = "transaction_id,date,timestamp,amount,category,description,transaction_type,account,location"

const timestampFormat = "2006-01-02 15:04:05"

// EncodeCSV serializes a batch as CSV with a header row.
func EncodeCSV(records []domain.Transaction) ([]byte, error) {
	buf := &bytes.Buffer{}
	cw := csv.NewWriter(buf)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return nil, fmt.Errorf("EncodeCSV: writing header: %w", err)
	}

	for i, rec := range records {
		row := []string{
			rec.TransactionID,
			rec.Date.String(),
			rec.Timestamp.Format(timestampFormat),
			rec.Amount.StringFixed(2),
			rec.Category,
			rec.Description,
			string(rec.Type),
			rec.Account,
			rec.Location,
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("EncodeCSV: writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("EncodeCSV: flushing: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON serializes a batch as a JSON array with ISO-8601 timestamps.
func EncodeJSON(records []domain.Transaction) ([]byte, error) {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"transaction_id":   rec.TransactionID,
			"date":             rec.Date.String(),
			"timestamp":        rec.Timestamp.Format(time.RFC3339),
			"amount":           rec.Amount,
			"category":         rec.Category,
			"description":      rec.Description,
			"transaction_type": rec.Type,
			"account":          rec.Account,
			"location":         rec.Location,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("EncodeJSON: %w", err)
	}
	return data, nil
}

// Encode serializes a batch in the given format.
func Encode(records []domain.Transaction, format Format) ([]byte, error) {
	if format == FormatJSON {
		return EncodeJSON(records)
	}
	return EncodeCSV(records)
}
