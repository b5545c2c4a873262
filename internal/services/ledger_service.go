package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/sheets"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// Snapshot is both tables as read at one point in time.
type Snapshot struct {
	Income  []core.Row
	Expense []core.Row
}

// Rows returns the rows of table.
func (s Snapshot) Rows(table core.Table) []core.Row {
	if table == core.Income {
		return s.Income
	}
	return s.Expense
}

// Empty reports whether both tables have no rows.
func (s Snapshot) Empty() bool {
	return len(s.Income) == 0 && len(s.Expense) == 0
}

// LedgerService serializes access to a TableStore inside the process: reads
// share a read lock, every load-mutate-save sequence holds the write lock.
// Other processes writing the same file are not coordinated.
type LedgerService struct {
	store     sheets.TableStore
	publisher EventPublisher
	rng       *rand.Rand

	mu sync.RWMutex
}

type Option func(*LedgerService)

// WithRand makes demo data generation reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(s *LedgerService) { s.rng = rng }
}

// NewLedgerService wraps store. publisher may be nil, in which case no
// change events are emitted.
func NewLedgerService(store sheets.TableStore, publisher EventPublisher, opts ...Option) *LedgerService {
	s := &LedgerService{store: store, publisher: publisher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) Load(ctx context.Context, table core.Table) ([]core.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Load(ctx, table)
}

// Snapshot loads both tables concurrently under one read lock, so no write
// can land between the two reads.
func (s *LedgerService) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.Load(gctx, core.Income)
		snap.Income = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.Load(gctx, core.Expense)
		snap.Expense = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// AddEntry parses raw form values and appends the resulting row.
func (s *LedgerService) AddEntry(ctx context.Context, table core.Table, amount, label, date string) (core.Row, error) {
	row, err := ledger.NewRow(amount, label, date)
	if err != nil {
		return core.Row{}, err
	}
	if err := s.Append(ctx, table, row); err != nil {
		return core.Row{}, err
	}
	return row, nil
}

// Append stores row with its label trimmed, the form every backend reads
// labels back in.
func (s *LedgerService) Append(ctx context.Context, table core.Table, row core.Row) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, core.ErrUnknownTable)
	}
	row.Label = strings.TrimSpace(row.Label)
	if err := row.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}

	s.mu.Lock()
	err := s.store.Append(ctx, table, row)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("append %s row: %w", table, err)
	}

	slog.InfoContext(ctx, "Ledger row appended",
		"table", table.String(),
		"amount", row.Amount.String(),
		"label", row.Label,
		"date", row.Date.String())
	s.publish(ctx, table, amqp.ActionAppend)
	return nil
}

// DeleteAt removes the row at position in the table as it is when the
// delete runs.
func (s *LedgerService) DeleteAt(ctx context.Context, table core.Table, position int) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, core.ErrUnknownTable)
	}

	s.mu.Lock()
	err := s.store.DeleteAt(ctx, table, position)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete %s row %d: %w", table, position, err)
	}

	slog.InfoContext(ctx, "Ledger row deleted", "table", table.String(), "position", position)
	s.publish(ctx, table, amqp.ActionDelete)
	return nil
}

// InitializeIfEmpty seeds the ledger with demo data when it is missing,
// unreadable or has no rows in either table. It reports whether it seeded.
// A readable ledger with malformed rows is never replaced: the
// ledger.ErrMalformedRow is returned and the data is left as it is.
func (s *LedgerService) InitializeIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	seeded, err := s.initializeLocked(ctx)
	s.mu.Unlock()
	if err != nil || !seeded {
		return seeded, err
	}
	s.publish(ctx, "", amqp.ActionSeed)
	return true, nil
}

func (s *LedgerService) initializeLocked(ctx context.Context) (bool, error) {
	income, err := s.store.Load(ctx, core.Income)
	var expense []core.Row
	if err == nil {
		expense, err = s.store.Load(ctx, core.Expense)
	}
	switch {
	case errors.Is(err, ledger.ErrMalformedRow):
		return false, fmt.Errorf("check ledger: %w", err)
	case errors.Is(err, ledger.ErrStorageUnavailable):
		slog.WarnContext(ctx, "Ledger unavailable, recreating with demo data", "error", err)
	case err != nil:
		return false, fmt.Errorf("check ledger: %w", err)
	case len(income) > 0 || len(expense) > 0:
		return false, nil
	}

	income, expense = ledger.DemoData(s.rng)
	if err := s.store.ReplaceAll(ctx, income, expense); err != nil {
		return false, fmt.Errorf("seed ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger seeded with demo data",
		"income_rows", len(income),
		"expense_rows", len(expense))
	return true, nil
}

// publish never fails the caller: the ledger is already saved.
func (s *LedgerService) publish(ctx context.Context, table core.Table, action string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(table, action)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"message_id", msg.ID,
			"action", action,
			"error", err)
	}
}

// Close closes the store and the publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
