package ledger

import (
	"math/rand/v2"

	"cashbook/internal/core"
)

// SeedDays is the number of consecutive days covered by the demo data.
const SeedDays = 30

var (
	SeedStart         = core.NewDate(2025, 9, 1)
	IncomeSources     = []string{"Salary", "Freelance", "Gift", "Investment", "Bonus"}
	ExpenseCategories = []string{"Food", "Transport", "Rent", "Shopping", "Entertainment", "Bills"}
)

type amountRange struct{ min, max float64 }

var (
	incomeRange  = amountRange{2000, 8000}
	expenseRange = amountRange{500, 5000}
)

// DemoData generates a month of synthetic rows: 1-3 income rows and 2-5
// expense rows per day. Passing a seeded *rand.Rand makes the output
// reproducible; nil uses the global source.
func DemoData(rng *rand.Rand) (income, expense []core.Row) {
	intN := rand.IntN
	float := rand.Float64
	if rng != nil {
		intN = rng.IntN
		float = rng.Float64
	}
	pick := func(vocab []string) string { return vocab[intN(len(vocab))] }
	amount := func(r amountRange) core.Money {
		return core.MoneyFromFloat(r.min + float()*(r.max-r.min))
	}

	for i := 0; i < SeedDays; i++ {
		day := SeedStart.AddDays(i)
		for n := 1 + intN(3); n > 0; n-- {
			income = append(income, core.Row{Amount: amount(incomeRange), Label: pick(IncomeSources), Date: day})
		}
		for n := 2 + intN(4); n > 0; n-- {
			expense = append(expense, core.Row{Amount: amount(expenseRange), Label: pick(ExpenseCategories), Date: day})
		}
	}
	return income, expense
}
