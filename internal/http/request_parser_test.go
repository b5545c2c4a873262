package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

func TestParseEntryForm(t *testing.T) {
	tests := []struct {
		name      string
		table     core.Table
		body      string
		wantLabel string
	}{
		{"income uses source", core.Income, "amount=150.005&source=Salary&date=2025-09-01", "Salary"},
		{"expense uses category", core.Expense, "amount=10&category=Food&date=2025-09-01", "Food"},
		{"wrong field for table", core.Expense, "amount=10&source=Food&date=2025-09-01", ""},
		{"control characters stripped", core.Income, "amount=1&source=Gi%00ft%20&date=2025-09-01", "Gift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/"+tt.table.Slug(), strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			form, err := ParseEntryForm(req, tt.table)
			if err != nil {
				t.Fatalf("ParseEntryForm: %v", err)
			}
			if form.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", form.Label, tt.wantLabel)
			}
			if form.Date != "2025-09-01" {
				t.Errorf("Date = %q", form.Date)
			}
		})
	}
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantKnown  bool
		wantTable  core.Table
		wantOffset int
		wantLimit  int
		wantErr    bool
	}{
		{name: "income page", query: "type=income&offset=5&limit=5", wantKnown: true, wantTable: core.Income, wantOffset: 5, wantLimit: 5},
		{name: "expense defaults", query: "type=expense", wantKnown: true, wantTable: core.Expense, wantOffset: 0, wantLimit: ledger.DefaultPageSize},
		{name: "unknown type", query: "type=savings&offset=0&limit=5", wantKnown: false, wantOffset: 0, wantLimit: 5},
		{name: "missing type", query: "offset=1", wantKnown: false, wantOffset: 1, wantLimit: ledger.DefaultPageSize},
		{name: "zero limit", query: "type=income&limit=0", wantKnown: true, wantTable: core.Income, wantLimit: 0},
		{name: "negative offset", query: "type=income&offset=-1", wantErr: true},
		{name: "negative limit", query: "type=income&limit=-5", wantErr: true},
		{name: "non-numeric offset", query: "type=income&offset=abc", wantErr: true},
		{name: "float limit", query: "type=income&limit=2.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			p, err := ParsePageParams(q)
			if tt.wantErr {
				if !errors.Is(err, ledger.ErrInvalidArgument) {
					t.Fatalf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePageParams: %v", err)
			}
			if p.Known != tt.wantKnown || (tt.wantKnown && p.Table != tt.wantTable) {
				t.Errorf("table = %q known=%v, want %q known=%v", p.Table, p.Known, tt.wantTable, tt.wantKnown)
			}
			if p.Offset != tt.wantOffset || p.Limit != tt.wantLimit {
				t.Errorf("offset/limit = %d/%d, want %d/%d", p.Offset, p.Limit, tt.wantOffset, tt.wantLimit)
			}
		})
	}
}

func TestParsePosition(t *testing.T) {
	if n, err := ParsePosition("3"); err != nil || n != 3 {
		t.Fatalf("ParsePosition(3) = %d, %v", n, err)
	}
	if n, err := ParsePosition("-1"); err != nil || n != -1 {
		t.Fatalf("ParsePosition(-1) = %d, %v", n, err)
	}
	if _, err := ParsePosition("abc"); !errors.Is(err, ledger.ErrInvalidPosition) {
		t.Fatalf("ParsePosition(abc) err = %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Food  ", "Food"},
		{"Rent\x00\x07", "Rent"},
		{"line\tbreak", "line\tbreak"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
