package ledger

import (
	"fmt"
	"strings"

	"cashbook/internal/core"
)

// RemoveAt returns a copy of rows without the row at position. Later rows
// shift down by one.
func RemoveAt(rows []core.Row, position int) ([]core.Row, error) {
	if position < 0 || position >= len(rows) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, position, len(rows))
	}
	out := make([]core.Row, 0, len(rows)-1)
	out = append(out, rows[:position]...)
	return append(out, rows[position+1:]...), nil
}

// NewRow builds a row from raw form input. Any malformed field is reported
// as ErrInvalidArgument.
func NewRow(amount, label, date string) (core.Row, error) {
	m, err := core.ParseAmount(amount)
	if err != nil {
		return core.Row{}, fmt.Errorf("%w: amount %q: %v", ErrInvalidArgument, amount, err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Row{}, fmt.Errorf("%w: date %q: %v", ErrInvalidArgument, date, err)
	}
	r := core.Row{Amount: m, Label: strings.TrimSpace(label), Date: d}
	if err := r.Validate(); err != nil {
		return core.Row{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return r, nil
}
