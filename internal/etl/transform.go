package etl

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dvloznov/portfolio-etl/internal/domain"
)

// ProcessedBy is the provenance identifier stamped on every transformed
// row.
const ProcessedBy = "portfolio-etl-pipeline"

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Transform cleans and enriches parsed CSV rows. It is a pure function
// of its inputs: rows missing transaction_id or amount are dropped
// (counted, not fatal), amount/date/timestamp coerce to null on parse
// failure, derived columns are computed where their inputs are present,
// and text fields are trimmed and title-cased. The output never has more
// rows than the input.
func Transform(rows []Row, now time.Time) ([]domain.ProcessedTransaction, int) {
	title := cases.Title(language.English)
	out := make([]domain.ProcessedTransaction, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		id := strings.TrimSpace(row["transaction_id"])
		if id == "" || strings.TrimSpace(row["amount"]) == "" {
			dropped++
			continue
		}

		rec := domain.ProcessedTransaction{
			TransactionID:      id,
			Amount:             coerceAmount(row["amount"]),
			Date:               coerceDate(row["date"]),
			Timestamp:          coerceTimestamp(row["timestamp"]),
			TransactionType:    row["transaction_type"],
			Account:            row["account"],
			ProcessedTimestamp: now,
			ProcessedBy:        ProcessedBy,
		}

		if rec.Amount.Valid {
			rec.AmountAbs = decimal.NullDecimal{Decimal: rec.Amount.Decimal.Abs(), Valid: true}
		}
		rec.AmountCategory = domain.ClassifyAmount(rec.Amount)

		if rec.Date != nil {
			weekday := rec.Date.In(time.UTC).Weekday().String()
			month := int(rec.Date.Month)
			year := rec.Date.Year
			rec.DayOfWeek = &weekday
			rec.Month = &month
			rec.Year = &year
		}

		rec.Description = titleCase(title, row["description"])
		rec.Category = titleCase(title, row["category"])
		rec.Location = titleCase(title, row["location"])

		out = append(out, rec)
	}

	return out, dropped
}

// coerceAmount parses a decimal amount; unparseable values become null
// rather than dropping the row.
func coerceAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func coerceDate(s string) *civil.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func coerceTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func titleCase(title cases.Caser, s string) string {
	return title.String(strings.TrimSpace(s))
}
