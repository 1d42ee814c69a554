package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, matching the raw and processed
	// object formats.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// AmountCategory buckets a transaction by the magnitude of its amount.
type AmountCategory string

const (
	AmountUnknown   AmountCategory = "unknown"
	AmountSmall     AmountCategory = "small"
	AmountMedium    AmountCategory = "medium"
	AmountLarge     AmountCategory = "large"
	AmountVeryLarge AmountCategory = "very_large"
)

// Transaction is one synthetic transaction record as produced by the
// generator. Every field is populated; amounts carry two decimal places,
// income positive and expenses negative.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	Date          civil.Date      `json:"date"`
	Timestamp     time.Time       `json:"timestamp"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Type          TransactionType `json:"transaction_type"`
	Account       string          `json:"account"`
	Location      string          `json:"location"`
}

// ProcessedTransaction is a transaction after the transform stage.
// Amount, Date and Timestamp are nullable because CSV input may carry
// values that fail coercion; the derived date columns are null whenever
// Date is.
type ProcessedTransaction struct {
	TransactionID string `json:"transaction_id"`

	Date      *civil.Date         `json:"date"`
	Timestamp *time.Time          `json:"timestamp"`
	Amount    decimal.NullDecimal `json:"amount"`

	Category        string `json:"category"`
	Description     string `json:"description"`
	TransactionType string `json:"transaction_type"`
	Account         string `json:"account"`
	Location        string `json:"location"`

	AmountAbs      decimal.NullDecimal `json:"amount_abs"`
	AmountCategory AmountCategory      `json:"amount_category"`

	DayOfWeek *string `json:"day_of_week"`
	Month     *int    `json:"month"`
	Year      *int    `json:"year"`

	ProcessedTimestamp time.Time `json:"processed_timestamp"`
	ProcessedBy        string    `json:"processed_by"`
}

// Amount bucket thresholds on the absolute value.
var (
	smallLimit  = decimal.NewFromInt(25)
	mediumLimit = decimal.NewFromInt(100)
	largeLimit  = decimal.NewFromInt(500)
)

// ClassifyAmount buckets an amount by absolute value: <25 small,
// <100 medium, <500 large, otherwise very_large. A null amount is
// unknown.
func ClassifyAmount(amount decimal.NullDecimal) AmountCategory {
	if !amount.Valid {
		return AmountUnknown
	}

	abs := amount.Decimal.Abs()
	switch {
	case abs.LessThan(smallLimit):
		return AmountSmall
	case abs.LessThan(mediumLimit):
		return AmountMedium
	case abs.LessThan(largeLimit):
		return AmountLarge
	default:
		return AmountVeryLarge
	}
}
