package backend

import (
	"context"
	"path/filepath"
	"testing"

	"cashbook/internal/config"
	"cashbook/internal/core"
	"cashbook/internal/sheets/memory"
	"cashbook/internal/sheets/workbook"
	"cashbook/internal/storage"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets is not a table backend")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "csv"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "xlsx", LedgerFile: "ledger.xlsx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != XLSXBackend || cfg.LedgerFile != "ledger.xlsx" {
		t.Errorf("unexpected backend config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"xlsx ok", Config{Type: XLSXBackend, LedgerFile: "a.xlsx"}, false},
		{"xlsx missing file", Config{Type: XLSXBackend}, true},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFactory(nil)

	t.Run("xlsx", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: XLSXBackend, LedgerFile: filepath.Join(dir, "ledger.xlsx")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, ok := res.Store.(*workbook.FileStore); !ok {
			t.Fatalf("expected *workbook.FileStore, got %T", res.Store)
		}
		if res.Cleanup != nil {
			t.Error("xlsx backend holds no resources")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "cashbook.db")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
			t.Fatalf("expected *storage.SQLiteRepository, got %T", res.Store)
		}
		if res.Cleanup == nil {
			t.Fatal("sqlite backend must return a cleanup func")
		}
		if err := res.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Fatalf("expected *memory.Store, got %T", res.Store)
		}
	})
}

func TestNewLedgerService_SeedsFreshWorkbook(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend: "xlsx",
		LedgerFile:  filepath.Join(t.TempDir(), "expenses.xlsx"),
	}

	svc, err := NewLedgerService(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("new ledger service: %v", err)
	}
	defer svc.Close()

	seeded, err := svc.InitializeIfEmpty(ctx)
	if err != nil || !seeded {
		t.Fatalf("expected a fresh workbook to be seeded, seeded=%v err=%v", seeded, err)
	}
	rows, err := svc.Load(ctx, core.Expense)
	if err != nil || len(rows) == 0 {
		t.Fatalf("expected seeded expense rows, got %d err=%v", len(rows), err)
	}
}
