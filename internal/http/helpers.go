package http

import (
	"encoding/json"
	"strings"
	"time"

	"cashbook/internal/core"
)

// downloadFilename is the attachment name for an export made at t.
func downloadFilename(t time.Time) string {
	return "Income_Expense_Data_" + t.Format("20060102_150405") + ".xlsx"
}

// rowJSON renders a row with the column headers of its table as keys, e.g.
// {"Amount": 150.01, "Source": "Salary", "Date": "2025-09-01"}.
func rowJSON(table core.Table, row core.Row) map[string]any {
	return map[string]any{
		"Amount":            json.Number(row.Amount.String()),
		table.LabelHeader(): row.Label,
		"Date":              row.Date.String(),
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
