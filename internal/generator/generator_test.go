package generator

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/portfolio-etl/internal/domain"
)

func newTestGenerator(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, 0)))
}

func TestGenerate_CountAndUniqueIDs(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	records := newTestGenerator(1).Generate(date, 50)

	require.Len(t, records, 50)

	idFormat := regexp.MustCompile(`^TXN_20240726_\d{4}$`)
	seen := make(map[string]bool)
	for i, rec := range records {
		assert.Regexp(t, idFormat, rec.TransactionID)
		assert.False(t, seen[rec.TransactionID], "duplicate id %s", rec.TransactionID)
		seen[rec.TransactionID] = true

		// 1-based zero-padded sequence.
		assert.Equal(t, fmt.Sprintf("TXN_20240726_%04d", i+1), rec.TransactionID)
	}
}

func TestGenerate_AmountSignMatchesType(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	records := newTestGenerator(2).Generate(date, 500)

	for _, rec := range records {
		switch rec.Type {
		case domain.TypeIncome:
			assert.True(t, rec.Amount.IsPositive(), "income amount %s not positive", rec.Amount)
			assert.True(t, rec.Amount.GreaterThanOrEqual(decimal.NewFromInt(500)), "income %s below range", rec.Amount)
			assert.True(t, rec.Amount.LessThanOrEqual(decimal.NewFromInt(5000)), "income %s above range", rec.Amount)
		case domain.TypeExpense:
			assert.True(t, rec.Amount.IsNegative(), "expense amount %s not negative", rec.Amount)
			abs := rec.Amount.Abs()
			assert.True(t, abs.GreaterThanOrEqual(decimal.NewFromInt(10)), "expense %s below range", rec.Amount)
			assert.True(t, abs.LessThanOrEqual(decimal.NewFromInt(500)), "expense %s above range", rec.Amount)
		default:
			t.Fatalf("unexpected transaction type %q", rec.Type)
		}
	}
}

func TestGenerate_IncomeRatio(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	records := newTestGenerator(3).Generate(date, 2000)

	income := 0
	for _, rec := range records {
		if rec.Type == domain.TypeIncome {
			income++
		}
	}

	// Bernoulli(0.3) per record; a seeded run of 2000 stays well within
	// this band.
	ratio := float64(income) / float64(len(records))
	assert.Greater(t, ratio, 0.25)
	assert.Less(t, ratio, 0.35)
}

func TestGenerate_TimestampWithinDay(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	records := newTestGenerator(4).Generate(date, 200)

	for _, rec := range records {
		assert.Equal(t, "2024-07-26", rec.Date.String())
		assert.Equal(t, "2024-07-26", rec.Timestamp.Format("2006-01-02"))
		assert.GreaterOrEqual(t, rec.Timestamp.Hour(), 6)
		assert.LessOrEqual(t, rec.Timestamp.Hour(), 22)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)

	a := newTestGenerator(7).Generate(date, 100)
	b := newTestGenerator(7).Generate(date, 100)

	assert.Equal(t, a, b)
}

func TestGenerate_CategoryDescriptionPairs(t *testing.T) {
	date := time.Date(2024, 7, 26, 0, 0, 0, 0, time.UTC)
	records := newTestGenerator(5).Generate(date, 300)

	pairs := make(map[categoryPair]bool)
	for _, p := range incomeCategories {
		pairs[p] = true
	}
	for _, p := range expenseCategories {
		pairs[p] = true
	}

	for _, rec := range records {
		assert.True(t, pairs[categoryPair{rec.Category, rec.Description}],
			"unknown category/description pair %q/%q", rec.Category, rec.Description)
	}
}
