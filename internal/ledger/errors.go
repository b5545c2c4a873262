// Package ledger holds the storage-independent ledger logic: the error
// taxonomy shared by every backend, the aggregation and pagination views
// derived from a table snapshot, and the demo data generator.
package ledger

import "errors"

var (
	// ErrStorageUnavailable means the backing unit is missing or corrupt.
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
	// ErrMalformedRow means the unit is readable but a row holds a cell that
	// cannot be parsed. The rows are still the user's, so it is never treated
	// as a reason to recreate the unit.
	ErrMalformedRow = errors.New("malformed ledger row")
	// ErrInvalidPosition means a delete targeted a row outside the table.
	ErrInvalidPosition = errors.New("invalid row position")
	// ErrInvalidArgument covers malformed user input (amount, date, offset...).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEncoding means a workbook could not be serialized.
	ErrEncoding = errors.New("workbook encoding failed")
)
