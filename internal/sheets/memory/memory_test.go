package memory

import (
	"context"
	"errors"
	"testing"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

func row(label string, cents int64) core.Row {
	return core.Row{Amount: core.Money{Cents: cents}, Label: label, Date: core.NewDate(2025, 9, 1)}
}

func TestStoreAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i, label := range []string{"Food", "Rent", "Bills"} {
		if err := s.Append(ctx, core.Expense, row(label, int64(i+1))); err != nil {
			t.Fatalf("append %s: %v", label, err)
		}
	}
	if err := s.DeleteAt(ctx, core.Expense, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, err := s.Load(ctx, core.Expense)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 || rows[0].Label != "Food" || rows[1].Label != "Bills" {
		t.Fatalf("unexpected rows after delete: %+v", rows)
	}
	if got, _ := s.Load(ctx, core.Income); len(got) != 0 {
		t.Fatalf("income should be untouched, got %+v", got)
	}
	if s.Writes() != 4 {
		t.Fatalf("expected 4 writes, got %d", s.Writes())
	}
}

func TestStoreDeleteOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := NewWithRows([]core.Row{row("Salary", 100)}, nil)

	for _, pos := range []int{-1, 1, 99} {
		if err := s.DeleteAt(ctx, core.Income, pos); !errors.Is(err, ledger.ErrInvalidPosition) {
			t.Fatalf("pos %d: expected ErrInvalidPosition, got %v", pos, err)
		}
	}
	if s.Writes() != 0 {
		t.Fatalf("failed deletes must not count as writes")
	}
}

func TestStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewWithRows([]core.Row{row("Salary", 100)}, nil)

	rows, _ := s.Load(ctx, core.Income)
	rows[0].Label = "changed"

	again, _ := s.Load(ctx, core.Income)
	if again[0].Label != "Salary" {
		t.Fatalf("caller mutation leaked into the store")
	}
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Unavailable = true

	if _, err := s.Load(ctx, core.Income); !errors.Is(err, ledger.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := s.ReplaceAll(ctx, []core.Row{row("Salary", 1)}, nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := s.Load(ctx, core.Income); err != nil {
		t.Fatalf("store should recover after ReplaceAll: %v", err)
	}
}

func TestStoreUnknownTable(t *testing.T) {
	if _, err := New().Load(context.Background(), core.Table("Savings")); !errors.Is(err, core.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}
