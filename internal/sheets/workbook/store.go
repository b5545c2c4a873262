package workbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/sheets"
)

var _ sheets.TableStore = (*FileStore)(nil)

// FileStore keeps the ledger in a single .xlsx file. Every mutation decodes
// the whole workbook and rewrites it through a temp file + rename, so a
// crash mid-write leaves the previous file intact.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the workbook location on disk.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context, table core.Table) ([]core.Row, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	income, expense, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if table == core.Income {
		return income, nil
	}
	return expense, nil
}

func (s *FileStore) Append(ctx context.Context, table core.Table, row core.Row) error {
	return s.update(ctx, table, func(rows []core.Row) ([]core.Row, error) {
		return append(rows, row), nil
	})
}

func (s *FileStore) DeleteAt(ctx context.Context, table core.Table, position int) error {
	return s.update(ctx, table, func(rows []core.Row) ([]core.Row, error) {
		return ledger.RemoveAt(rows, position)
	})
}

func (s *FileStore) ReplaceAll(ctx context.Context, income, expense []core.Row) error {
	return s.write(ctx, income, expense)
}

// update applies fn to one table and rewrites the workbook. If fn fails the
// file is not touched.
func (s *FileStore) update(ctx context.Context, table core.Table, fn func([]core.Row) ([]core.Row, error)) error {
	if !table.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	income, expense, err := s.read(ctx)
	if err != nil {
		return err
	}
	if table == core.Income {
		income, err = fn(income)
	} else {
		expense, err = fn(expense)
	}
	if err != nil {
		return err
	}
	return s.write(ctx, income, expense)
}

func (s *FileStore) read(ctx context.Context) (income, expense []core.Row, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", ledger.ErrStorageUnavailable, s.path, err)
	}
	return Decode(data)
}

func (s *FileStore) write(ctx context.Context, income, expense []core.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(income, expense)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
