// Package generator produces synthetic transaction batches for the
// pipeline to exercise.
package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/portfolio-etl/internal/domain"
)

// categoryPair couples a category with one of its descriptions.
type categoryPair struct {
	category    string
	description string
}

var incomeCategories = []categoryPair{
	{"salary", "Monthly salary"},
	{"freelance", "Freelance project"},
	{"investment", "Investment returns"},
	{"bonus", "Performance bonus"},
}

var expenseCategories = []categoryPair{
	{"food", "Groceries"},
	{"food", "Restaurant"},
	{"transport", "Gas"},
	{"transport", "Public transport"},
	{"utilities", "Electricity bill"},
	{"utilities", "Internet bill"},
	{"entertainment", "Movie tickets"},
	{"entertainment", "Streaming service"},
	{"shopping", "Clothing"},
	{"shopping", "Electronics"},
	{"healthcare", "Doctor visit"},
	{"healthcare", "Pharmacy"},
}

var accounts = []string{"checking", "savings", "credit_card"}

var locations = []string{"Online", "New York", "Los Angeles", "Chicago", "Houston"}

// incomeProbability is the chance a record is income rather than expense.
const incomeProbability = 0.3

// Generator produces synthetic transaction records. All randomness comes
// from the injected source, so a seeded source yields reproducible
// batches.
type Generator struct {
	rnd *rand.Rand
}

// New creates a generator backed by the given random source.
func New(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate produces count transaction records for the given calendar
// date. Sequence numbers are 1-based, zero-padded to four digits and
// unique within the batch.
func (g *Generator) Generate(date time.Time, count int) []domain.Transaction {
	day := civil.DateOf(date)
	records := make([]domain.Transaction, 0, count)

	for i := 0; i < count; i++ {
		isIncome := g.rnd.Float64() < incomeProbability

		var pair categoryPair
		var amount decimal.Decimal
		txType := domain.TypeExpense
		if isIncome {
			pair = incomeCategories[g.rnd.IntN(len(incomeCategories))]
			amount = g.uniformAmount(500, 5000)
			txType = domain.TypeIncome
		} else {
			pair = expenseCategories[g.rnd.IntN(len(expenseCategories))]
			amount = g.uniformAmount(10, 500).Neg()
		}

		// Time of day between 06:00 and 22:59.
		ts := time.Date(date.Year(), date.Month(), date.Day(),
			6+g.rnd.IntN(17), g.rnd.IntN(60), 0, 0, time.UTC)

		records = append(records, domain.Transaction{
			TransactionID: fmt.Sprintf("TXN_%s_%04d", date.Format("20060102"), i+1),
			Date:          day,
			Timestamp:     ts,
			Amount:        amount,
			Category:      pair.category,
			Description:   pair.description,
			Type:          txType,
			Account:       accounts[g.rnd.IntN(len(accounts))],
			Location:      locations[g.rnd.IntN(len(locations))],
		})
	}

	return records
}

// uniformAmount samples uniformly from [lo, hi) and rounds to cents.
func (g *Generator) uniformAmount(lo, hi float64) decimal.Decimal {
	v := lo + g.rnd.Float64()*(hi-lo)
	return decimal.NewFromFloat(v).Round(2)
}
