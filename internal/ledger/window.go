package ledger

import (
	"fmt"

	"cashbook/internal/core"
)

// DefaultPageSize is the number of rows shown before "load more".
const DefaultPageSize = 5

// Window returns rows[offset:offset+limit] clipped to the table bounds. An
// offset past the end yields an empty, non-nil slice.
func Window(rows []core.Row, offset, limit int) ([]core.Row, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, offset)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidArgument, limit)
	}
	if offset >= len(rows) {
		return []core.Row{}, nil
	}
	end := len(rows)
	if limit < end-offset {
		end = offset + limit
	}
	out := make([]core.Row, end-offset)
	copy(out, rows[offset:end])
	return out, nil
}
