package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/services"
	"cashbook/internal/sheets"
)

// SnapshotLoader is the read side of the ledger service.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (services.Snapshot, error)
}

// MirrorWorker copies ledger tables to a mirror. Every copy is a full
// rewrite of the affected tables from a fresh snapshot, so handling the
// same message twice gives the same result. Copies run one at a time so an
// older snapshot never overwrites a newer one.
type MirrorWorker struct {
	ledger SnapshotLoader
	mirror sheets.Mirror

	mu sync.Mutex
}

func NewMirrorWorker(ledger SnapshotLoader, mirror sheets.Mirror) *MirrorWorker {
	return &MirrorWorker{ledger: ledger, mirror: mirror}
}

// HandleLedgerChanged mirrors the tables named by msg.
func (w *MirrorWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"message_id", msg.ID,
		"table", msg.Table,
		"action", msg.Action,
		"lag", time.Since(msg.Timestamp).Round(time.Millisecond))

	tables := msg.Tables()
	if len(tables) == 0 {
		slog.WarnContext(ctx, "Ledger change names no known table, skipping", "table", msg.Table)
		return nil
	}
	return w.mirrorTables(ctx, tables)
}

// MirrorAll mirrors both tables.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	return w.mirrorTables(ctx, core.Tables())
}

func (w *MirrorWorker) mirrorTables(ctx context.Context, tables []core.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, err := w.ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	for _, table := range tables {
		rows := snap.Rows(table)
		if err := w.mirror.MirrorTable(ctx, table, rows); err != nil {
			return fmt.Errorf("mirror %s: %w", table, err)
		}
		slog.InfoContext(ctx, "Table mirrored", "table", table.String(), "rows", len(rows))
	}
	return nil
}
