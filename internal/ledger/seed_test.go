package ledger

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashbook/internal/core"
)

func TestDemoData_Shape(t *testing.T) {
	income, expense := DemoData(rand.New(rand.NewPCG(1, 2)))

	perDay := func(rows []core.Row) map[string]int {
		counts := map[string]int{}
		for _, r := range rows {
			counts[r.Date.String()]++
		}
		return counts
	}

	incomeDays := perDay(income)
	expenseDays := perDay(expense)
	require.Len(t, incomeDays, SeedDays)
	require.Len(t, expenseDays, SeedDays)

	for i := 0; i < SeedDays; i++ {
		day := SeedStart.AddDays(i).String()
		assert.GreaterOrEqual(t, incomeDays[day], 1, day)
		assert.LessOrEqual(t, incomeDays[day], 3, day)
		assert.GreaterOrEqual(t, expenseDays[day], 2, day)
		assert.LessOrEqual(t, expenseDays[day], 5, day)
	}
}

func TestDemoData_AmountsAndVocabulary(t *testing.T) {
	income, expense := DemoData(rand.New(rand.NewPCG(3, 4)))

	for _, r := range income {
		assert.True(t, slices.Contains(IncomeSources, r.Label), r.Label)
		assert.GreaterOrEqual(t, r.Amount.Cents, int64(200000))
		assert.LessOrEqual(t, r.Amount.Cents, int64(800000))
		assert.NoError(t, r.Validate())
	}
	for _, r := range expense {
		assert.True(t, slices.Contains(ExpenseCategories, r.Label), r.Label)
		assert.GreaterOrEqual(t, r.Amount.Cents, int64(50000))
		assert.LessOrEqual(t, r.Amount.Cents, int64(500000))
	}
}

func TestDemoData_Reproducible(t *testing.T) {
	a1, b1 := DemoData(rand.New(rand.NewPCG(9, 9)))
	a2, b2 := DemoData(rand.New(rand.NewPCG(9, 9)))
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}
