package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

// EntryForm holds the raw values of an add-entry form.
type EntryForm struct {
	Amount string
	Label  string
	Date   string
}

// PageParams is a parsed load-more query.
type PageParams struct {
	Table  core.Table
	Known  bool
	Offset int
	Limit  int
}

// ParseEntryForm reads amount, the table's label field (source or category)
// and date from a submitted form.
func ParseEntryForm(r *http.Request, table core.Table) (EntryForm, error) {
	if err := r.ParseForm(); err != nil {
		return EntryForm{}, fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}
	return EntryForm{
		Amount: sanitizeInput(r.PostForm.Get("amount")),
		Label:  sanitizeInput(r.PostForm.Get(strings.ToLower(table.LabelHeader()))),
		Date:   sanitizeInput(r.PostForm.Get("date")),
	}, nil
}

// ParsePageParams reads type, offset and limit. Missing offset and limit
// default to 0 and DefaultPageSize; anything present must be a non-negative
// integer. An unknown type is not an error: Known is false.
func ParsePageParams(query url.Values) (PageParams, error) {
	p := PageParams{Limit: ledger.DefaultPageSize}
	if t, err := core.ParseTable(query.Get("type")); err == nil {
		p.Table, p.Known = t, true
	}

	var err error
	if p.Offset, err = nonNegativeInt(query, "offset", 0); err != nil {
		return PageParams{}, err
	}
	if p.Limit, err = nonNegativeInt(query, "limit", ledger.DefaultPageSize); err != nil {
		return PageParams{}, err
	}
	return p, nil
}

func nonNegativeInt(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ledger.ErrInvalidArgument, key, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s %d is negative", ledger.ErrInvalidArgument, key, n)
	}
	return n, nil
}

// ParsePosition converts a path segment to a row position. Non-integers are
// reported as ErrInvalidPosition, like out-of-range values.
func ParsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ledger.ErrInvalidPosition, s)
	}
	return n, nil
}
