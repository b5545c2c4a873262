package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the on-disk and on-wire representation of a ledger date.
const DateLayout = "2006-01-02"

const (
	Income  Table = "Income"
	Expense Table = "Expense"
)

type (
	// Table names one of the two ledger tables. The value doubles as the
	// sheet name in the workbook.
	Table string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Row is a single ledger entry. Label holds the income source or the
	// expense category depending on the table the row lives in.
	Row struct {
		Amount Money
		Label  string
		Date   Date
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyLabel    = errors.New("empty label")
	ErrUnknownTable  = errors.New("unknown table")
)

// Tables returns both ledger tables in workbook order.
func Tables() []Table {
	return []Table{Income, Expense}
}

// ParseTable accepts the lower-case route form ("income") as well as the
// sheet name ("Income").
func ParseTable(s string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", ErrUnknownTable
}

func (t Table) String() string {
	return string(t)
}

// Slug is the lower-case form used in URLs and templates.
func (t Table) Slug() string {
	return strings.ToLower(string(t))
}

// LabelHeader is the column header of the label slot.
func (t Table) LabelHeader() string {
	if t == Income {
		return "Source"
	}
	return "Category"
}

// Headers returns the column headers in persisted order.
func (t Table) Headers() []string {
	return []string{"Amount", t.LabelHeader(), "Date"}
}

func (t Table) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (r Row) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if len(r.Label) > 200 {
		return errors.New("label too long (max 200 characters)")
	}
	return nil
}
