// Package memory is an in-process TableStore for tests and local
// development. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/sheets"
)

var _ sheets.TableStore = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	income  []core.Row
	expense []core.Row

	// Unavailable makes every call fail with ledger.ErrStorageUnavailable,
	// simulating a missing or corrupt ledger file.
	Unavailable bool

	writes int
}

func New() *Store {
	return &Store{}
}

// NewWithRows returns a store preloaded with copies of income and expense.
func NewWithRows(income, expense []core.Row) *Store {
	return &Store{income: clone(income), expense: clone(expense)}
}

func (s *Store) Load(_ context.Context, table core.Table) ([]core.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return nil, err
	}
	return clone(*rows), nil
}

func (s *Store) Append(_ context.Context, table core.Table, row core.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return err
	}
	*rows = append(*rows, row)
	s.writes++
	return nil
}

func (s *Store) DeleteAt(_ context.Context, table core.Table, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return err
	}
	next, err := ledger.RemoveAt(*rows, position)
	if err != nil {
		return err
	}
	*rows = next
	s.writes++
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, income, expense []core.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unavailable = false
	s.income = clone(income)
	s.expense = clone(expense)
	s.writes++
	return nil
}

// Writes reports how many successful mutations the store has seen.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) table(t core.Table) (*[]core.Row, error) {
	if s.Unavailable {
		return nil, ledger.ErrStorageUnavailable
	}
	switch t {
	case core.Income:
		return &s.income, nil
	case core.Expense:
		return &s.expense, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownTable, t)
}

func clone(rows []core.Row) []core.Row {
	return append([]core.Row{}, rows...)
}
