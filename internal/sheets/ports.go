package sheets

import (
	"context"

	"cashbook/internal/core"
)

// Ports for outbound adapters.
type (
	// TableStore persists the Income and Expense tables as one unit. Every
	// mutation is a full read-modify-write of the affected table.
	TableStore interface {
		// Load returns the rows of a table in insertion order. It fails with
		// ledger.ErrStorageUnavailable when the unit is missing or corrupt.
		Load(ctx context.Context, table core.Table) ([]core.Row, error)
		// Append adds row at the end of table.
		Append(ctx context.Context, table core.Table, row core.Row) error
		// DeleteAt removes the row at position, shifting later rows down.
		// Out-of-range positions fail with ledger.ErrInvalidPosition and
		// leave the unit untouched.
		DeleteAt(ctx context.Context, table core.Table, position int) error
		// ReplaceAll overwrites both tables in a single write.
		ReplaceAll(ctx context.Context, income, expense []core.Row) error
	}

	// Mirror receives full copies of the ledger, e.g. a remote spreadsheet.
	Mirror interface {
		MirrorTable(ctx context.Context, table core.Table, rows []core.Row) error
	}
)
