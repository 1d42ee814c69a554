package etl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/portfolio-etl/internal/domain"
)

var testNow = time.Date(2024, 7, 27, 12, 0, 0, 0, time.UTC)

func baseRow() Row {
	return Row{
		"transaction_id":   "TXN_20240726_0001",
		"date":             "2024-07-26",
		"timestamp":        "2024-07-26 14:30:00",
		"amount":           "-42.50",
		"category":         "food",
		"description":      "Groceries",
		"transaction_type": "expense",
		"account":          "checking",
		"location":         "Online",
	}
}

func TestTransform_DropsRowsMissingCriticalFields(t *testing.T) {
	rows := make([]Row, 0, 10)
	for i := 0; i < 8; i++ {
		rows = append(rows, baseRow())
	}

	noAmount := baseRow()
	noAmount["amount"] = ""
	rows = append(rows, noAmount)

	noID := baseRow()
	noID["transaction_id"] = "   "
	rows = append(rows, noID)

	out, dropped := Transform(rows, testNow)

	assert.Len(t, out, 8)
	assert.Equal(t, 2, dropped)
}

func TestTransform_AmountCategoryBoundaries(t *testing.T) {
	tests := []struct {
		amount string
		want   domain.AmountCategory
	}{
		{"24.99", domain.AmountSmall},
		{"25.00", domain.AmountMedium},
		{"99.99", domain.AmountMedium},
		{"100.00", domain.AmountLarge},
		{"499.99", domain.AmountLarge},
		{"500.00", domain.AmountVeryLarge},
		{"-499.99", domain.AmountLarge},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			row := baseRow()
			row["amount"] = tt.amount

			out, _ := Transform([]Row{row}, testNow)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].AmountCategory)
		})
	}
}

func TestTransform_UnparseableAmountBecomesNull(t *testing.T) {
	row := baseRow()
	row["amount"] = "not-a-number"

	out, dropped := Transform([]Row{row}, testNow)
	require.Len(t, out, 1)
	assert.Equal(t, 0, dropped)

	rec := out[0]
	assert.False(t, rec.Amount.Valid)
	assert.False(t, rec.AmountAbs.Valid)
	assert.Equal(t, domain.AmountUnknown, rec.AmountCategory)
}

func TestTransform_AmountAbs(t *testing.T) {
	row := baseRow()
	row["amount"] = "-42.50"

	out, _ := Transform([]Row{row}, testNow)
	require.Len(t, out, 1)

	rec := out[0]
	require.True(t, rec.Amount.Valid)
	require.True(t, rec.AmountAbs.Valid)
	assert.Equal(t, "-42.50", rec.Amount.Decimal.StringFixed(2))
	assert.Equal(t, "42.50", rec.AmountAbs.Decimal.StringFixed(2))
}

func TestTransform_DateDerivedColumns(t *testing.T) {
	row := baseRow()
	row["date"] = "2024-07-26" // a Friday

	out, _ := Transform([]Row{row}, testNow)
	require.Len(t, out, 1)

	rec := out[0]
	require.NotNil(t, rec.Date)
	require.NotNil(t, rec.DayOfWeek)
	require.NotNil(t, rec.Month)
	require.NotNil(t, rec.Year)
	assert.Equal(t, "Friday", *rec.DayOfWeek)
	assert.Equal(t, 7, *rec.Month)
	assert.Equal(t, 2024, *rec.Year)
}

func TestTransform_UnparseableDateBecomesNull(t *testing.T) {
	row := baseRow()
	row["date"] = "26/07/2024"
	row["timestamp"] = "garbage"

	out, dropped := Transform([]Row{row}, testNow)
	require.Len(t, out, 1)
	assert.Equal(t, 0, dropped)

	rec := out[0]
	assert.Nil(t, rec.Date)
	assert.Nil(t, rec.Timestamp)
	assert.Nil(t, rec.DayOfWeek)
	assert.Nil(t, rec.Month)
	assert.Nil(t, rec.Year)
}

func TestTransform_TitleCasesTextFields(t *testing.T) {
	row := baseRow()
	row["description"] = "  grocery STORE  "
	row["category"] = "food"
	row["location"] = "new york"

	out, _ := Transform([]Row{row}, testNow)
	require.Len(t, out, 1)

	rec := out[0]
	assert.Equal(t, "Grocery Store", rec.Description)
	assert.Equal(t, "Food", rec.Category)
	assert.Equal(t, "New York", rec.Location)
}

func TestTransform_StampsProvenance(t *testing.T) {
	out, _ := Transform([]Row{baseRow()}, testNow)
	require.Len(t, out, 1)

	assert.Equal(t, testNow, out[0].ProcessedTimestamp)
	assert.Equal(t, "portfolio-etl-pipeline", out[0].ProcessedBy)
}

func TestTransform_Timestamp(t *testing.T) {
	out, _ := Transform([]Row{baseRow()}, testNow)
	require.Len(t, out, 1)

	require.NotNil(t, out[0].Timestamp)
	assert.Equal(t, time.Date(2024, 7, 26, 14, 30, 0, 0, time.UTC), *out[0].Timestamp)
}

func TestTransform_EmptyInput(t *testing.T) {
	out, dropped := Transform(nil, testNow)
	assert.Empty(t, out)
	assert.Equal(t, 0, dropped)
}
