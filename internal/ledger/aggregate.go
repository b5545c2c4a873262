package ledger

import (
	"sort"

	"cashbook/internal/core"
)

// SumByDate groups rows by date and sums each group. Buckets are ordered by
// ascending date string, which is calendar order for YYYY-MM-DD keys.
func SumByDate(rows []core.Row) []core.Bucket {
	return sumBy(rows, func(r core.Row) string { return r.Date.String() })
}

// SumByLabel groups rows by source/category and sums each group, ordered by
// ascending label.
func SumByLabel(rows []core.Row) []core.Bucket {
	return sumBy(rows, func(r core.Row) string { return r.Label })
}

func sumBy(rows []core.Row, key func(core.Row) string) []core.Bucket {
	totals := make(map[string]int64)
	for _, r := range rows {
		totals[key(r)] += r.Amount.Cents
	}
	out := make([]core.Bucket, 0, len(totals))
	for k, cents := range totals {
		out = append(out, core.Bucket{Key: k, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Total sums every row of a table.
func Total(rows []core.Row) core.Money {
	var cents int64
	for _, r := range rows {
		cents += r.Amount.Cents
	}
	return core.Money{Cents: cents}
}

// Summarize computes the dashboard totals and balance.
func Summarize(income, expense []core.Row) core.Summary {
	in := Total(income)
	out := Total(expense)
	return core.Summary{
		TotalIncome:  in,
		TotalExpense: out,
		Balance:      in.Sub(out),
	}
}
