package core

// Bucket is an amount aggregated under one key (a date or a label).
type Bucket struct {
	Key   string
	Total Money
}

// Summary holds the ledger-wide totals shown on the dashboard.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}
