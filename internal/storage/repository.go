package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores both ledger tables in one ledger_rows table. A
// row's position is its rank by id within its table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ sheets.TableStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}
	return nil
}

const (
	selectRowsSQL = `SELECT amount_cents, label, date FROM ledger_rows WHERE tbl = ? ORDER BY id`
	insertRowSQL  = `INSERT INTO ledger_rows (tbl, amount_cents, label, date) VALUES (?, ?, ?, ?)`
	rowIDAtSQL    = `SELECT id FROM ledger_rows WHERE tbl = ? ORDER BY id LIMIT 1 OFFSET ?`
	countRowsSQL  = `SELECT COUNT(*) FROM ledger_rows WHERE tbl = ?`
	deleteRowSQL  = `DELETE FROM ledger_rows WHERE id = ?`
	deleteAllSQL  = `DELETE FROM ledger_rows`
)

func (r *SQLiteRepository) Load(ctx context.Context, table core.Table) ([]core.Row, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	rs, err := r.db.QueryContext(ctx, selectRowsSQL, table.String())
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ledger.ErrStorageUnavailable, table, err)
	}
	defer rs.Close()

	rows := []core.Row{}
	for rs.Next() {
		var (
			cents int64
			label string
			date  string
		)
		if err := rs.Scan(&cents, &label, &date); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ledger.ErrStorageUnavailable, table, err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s date %q: %v", ledger.ErrStorageUnavailable, table, date, err)
		}
		rows = append(rows, core.Row{Amount: core.Money{Cents: cents}, Label: label, Date: d})
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", ledger.ErrStorageUnavailable, table, err)
	}
	return rows, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, table core.Table, row core.Row) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	res, err := r.db.ExecContext(ctx, insertRowSQL, table.String(), row.Amount.Cents, row.Label, row.Date.String())
	if err != nil {
		return fmt.Errorf("insert %s row: %w", table, err)
	}
	slog.DebugContext(ctx, "Ledger row saved to SQLite", savedRowAttrs(ctx, res, table, row)...)
	return nil
}

// savedRowAttrs describes an inserted row for logging. The id is left out
// when the driver cannot report it; the insert itself already succeeded.
func savedRowAttrs(ctx context.Context, res sql.Result, table core.Table, row core.Row) []any {
	attrs := []any{
		"table", table.String(),
		"amount_cents", row.Amount.Cents,
		"date", row.Date.String(),
	}
	id, err := res.LastInsertId()
	if err != nil {
		slog.WarnContext(ctx, "SQLite insert id unavailable", "table", table.String(), "error", err)
		return attrs
	}
	return append(attrs, "id", id)
}

func (r *SQLiteRepository) DeleteAt(ctx context.Context, table core.Table, position int) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	if position < 0 {
		return fmt.Errorf("%w: %d", ledger.ErrInvalidPosition, position)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, rowIDAtSQL, table.String(), position).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		var n int
		if cerr := tx.QueryRowContext(ctx, countRowsSQL, table.String()).Scan(&n); cerr != nil {
			return fmt.Errorf("%w: %d", ledger.ErrInvalidPosition, position)
		}
		return fmt.Errorf("%w: %d not in [0, %d)", ledger.ErrInvalidPosition, position, n)
	}
	if err != nil {
		return fmt.Errorf("resolve %s position %d: %w", table, position, err)
	}
	if _, err := tx.ExecContext(ctx, deleteRowSQL, id); err != nil {
		return fmt.Errorf("delete %s row %d: %w", table, id, err)
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, income, expense []core.Row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertRowSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range []struct {
		table core.Table
		rows  []core.Row
	}{{core.Income, income}, {core.Expense, expense}} {
		for _, row := range t.rows {
			if _, err := stmt.ExecContext(ctx, t.table.String(), row.Amount.Cents, row.Label, row.Date.String()); err != nil {
				return fmt.Errorf("insert %s row: %w", t.table, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	slog.InfoContext(ctx, "Ledger replaced in SQLite", "income_rows", len(income), "expense_rows", len(expense))
	return nil
}
