package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedLedger(t *testing.T, dbPath string) {
	t.Helper()
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	user := core.User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	svc := ledger.NewService(repo, nil)
	if _, err := svc.SetSalary(ctx, "u1", 2025, 6, "50000"); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}
	for _, amount := range []string{"1200.50", "300"} {
		_, err := svc.AddExpense(ctx, "u1", core.ExpenseInput{
			Year: 2025, Month: 6, Category: "Home", Amount: amount, Date: "2025-06-10",
		})
		if err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
	}
}

func setupSQLite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "budget.db")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", dbPath)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	return dbPath
}

func TestMigrate(t *testing.T) {
	setupSQLite(t)
	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "schema version 1") {
		t.Errorf("output = %q", out)
	}
}

func TestMigrate_RequiresSQLite(t *testing.T) {
	setupSQLite(t)
	t.Setenv("DATA_BACKEND", "memory")
	if _, err := run(t, "migrate"); err == nil {
		t.Fatal("expected error for memory backend")
	}
}

func TestSummaryAndPeriods(t *testing.T) {
	seedLedger(t, setupSQLite(t))

	out, err := run(t, "summary", "--user", "ADA@example.com", "--year", "2025", "--month", "6")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"50000.00", "1500.50", "48499.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %s:\n%s", want, out)
		}
	}

	out, err = run(t, "periods", "--user", "u1")
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if !strings.Contains(out, "2025-06") {
		t.Errorf("periods output = %q", out)
	}
}

func TestSummary_Errors(t *testing.T) {
	seedLedger(t, setupSQLite(t))

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown user", args: []string{"summary", "--user", "nobody@example.com", "--year", "2025", "--month", "6"}},
		{name: "bad month", args: []string{"summary", "--user", "u1", "--year", "2025", "--month", "13"}},
		{name: "missing flag", args: []string{"summary", "--user", "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExport(t *testing.T) {
	dbPath := setupSQLite(t)
	seedLedger(t, dbPath)
	target := filepath.Join(filepath.Dir(dbPath), "june.xlsx")

	if _, err := run(t, "export", "--user", "u1", "--year", "2025", "--month", "6", "--out", target); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty workbook")
	}
}
