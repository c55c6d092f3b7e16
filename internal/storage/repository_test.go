package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id, email string) {
	t.Helper()
	err := repo.CreateUser(context.Background(), core.User{
		ID: id, Name: "Test", Email: email, PasswordHash: "hash", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func seedPeriod(t *testing.T, repo *SQLiteRepository, p core.Period) {
	t.Helper()
	err := repo.InTx(context.Background(), func(q core.LedgerQueries) error {
		return q.CreatePeriod(context.Background(), p)
	})
	if err != nil {
		t.Fatalf("CreatePeriod: %v", err)
	}
}

func TestMigrationsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	version, dirty, err := MigrationVersion(path)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("expected clean version 1, got %d dirty=%v", version, dirty)
	}

	// Running again is a no-op.
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")

	err := repo.CreateUser(ctx, core.User{ID: "u2", Email: "a@example.com", PasswordHash: "x", CreatedAt: time.Now()})
	if !core.IsConflict(err) {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}

	u, err := repo.FindUserByEmail(ctx, "a@example.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("FindUserByEmail = %+v, %v", u, err)
	}
	if _, err := repo.FindUserByID(ctx, "missing"); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPeriodUniqueness(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")

	now := time.Now()
	seedPeriod(t, repo, core.Period{ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: now, UpdatedAt: now})

	err := repo.InTx(ctx, func(q core.LedgerQueries) error {
		return q.CreatePeriod(ctx, core.Period{ID: "p2", UserID: "u1", Year: 2025, Month: 6, CreatedAt: now, UpdatedAt: now})
	})
	if !core.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestOwnershipFilteredQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")
	seedUser(t, repo, "u2", "b@example.com")

	now := time.Now()
	seedPeriod(t, repo, core.Period{ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: now, UpdatedAt: now})

	err := repo.InTx(ctx, func(q core.LedgerQueries) error {
		return q.InsertExpense(ctx, core.Expense{
			ID: "e1", PeriodID: "p1", Category: "Food",
			Amount: core.Money{Cents: 120050}, Date: core.NewDate(2025, 6, 2), CreatedAt: now,
		})
	})
	if err != nil {
		t.Fatalf("InsertExpense: %v", err)
	}

	err = repo.InTx(ctx, func(q core.LedgerQueries) error {
		if _, err := q.FindPeriod(ctx, "u2", 2025, 6); !core.IsNotFound(err) {
			t.Errorf("u2 FindPeriod: expected not found, got %v", err)
		}
		exps, err := q.ListExpenses(ctx, "u2", "p1")
		if err != nil || len(exps) != 0 {
			t.Errorf("u2 ListExpenses = %v, %v", exps, err)
		}
		if _, _, err := q.FindExpense(ctx, "u2", "e1"); !core.IsNotFound(err) {
			t.Errorf("u2 FindExpense: expected not found, got %v", err)
		}
		if err := q.DeleteExpense(ctx, "u2", "e1"); !core.IsNotFound(err) {
			t.Errorf("u2 DeleteExpense: expected not found, got %v", err)
		}
		if err := q.UpdateSalary(ctx, "u2", "p1", core.Money{Cents: 1}, now); !core.IsNotFound(err) {
			t.Errorf("u2 UpdateSalary: expected not found, got %v", err)
		}

		stamp := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
		if err := q.UpdateSalary(ctx, "u1", "p1", core.Money{Cents: 500000}, stamp); err != nil {
			t.Errorf("u1 UpdateSalary: %v", err)
		}
		if p, err := q.FindPeriod(ctx, "u1", 2025, 6); err != nil || p.Salary.Cents != 500000 || !p.UpdatedAt.Equal(stamp) {
			t.Errorf("u1 FindPeriod after update = %+v, %v", p, err)
		}

		e, p, err := q.FindExpense(ctx, "u1", "e1")
		if err != nil || e.Amount.Cents != 120050 || p.ID != "p1" {
			t.Errorf("u1 FindExpense = %+v %+v %v", e, p, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestListExpensesOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")
	base := time.Now()
	seedPeriod(t, repo, core.Period{ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: base, UpdatedAt: base})

	rows := []core.Expense{
		{ID: "a", Date: core.NewDate(2025, 6, 2), CreatedAt: base},
		{ID: "b", Date: core.NewDate(2025, 6, 10), CreatedAt: base.Add(time.Second)},
		{ID: "c", Date: core.NewDate(2025, 6, 2), CreatedAt: base.Add(2 * time.Second)},
	}
	err := repo.InTx(ctx, func(q core.LedgerQueries) error {
		for _, e := range rows {
			e.PeriodID, e.Category, e.Amount = "p1", "Food", core.Money{Cents: 100}
			if err := q.InsertExpense(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var got []string
	_ = repo.InTx(ctx, func(q core.LedgerQueries) error {
		exps, err := q.ListExpenses(ctx, "u1", "p1")
		if err != nil {
			t.Fatalf("ListExpenses: %v", err)
		}
		for _, e := range exps {
			got = append(got, e.ID)
		}
		return nil
	})
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInTxRollback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")

	boom := errors.New("boom")
	now := time.Now()
	err := repo.InTx(ctx, func(q core.LedgerQueries) error {
		if err := q.CreatePeriod(ctx, core.Period{ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_ = repo.InTx(ctx, func(q core.LedgerQueries) error {
		if _, err := q.FindPeriod(ctx, "u1", 2025, 6); !core.IsNotFound(err) {
			t.Fatalf("rolled back period should not exist, got %v", err)
		}
		return nil
	})
}

func TestDeleteUserCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1", "a@example.com")
	now := time.Now()
	seedPeriod(t, repo, core.Period{ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: now, UpdatedAt: now})
	_ = repo.InTx(ctx, func(q core.LedgerQueries) error {
		return q.InsertExpense(ctx, core.Expense{ID: "e1", PeriodID: "p1", Category: "Food", Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 6, 1), CreatedAt: now})
	})

	if err := repo.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	var periods, expenses int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM periods`).Scan(&periods); err != nil {
		t.Fatalf("count periods: %v", err)
	}
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&expenses); err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if periods != 0 || expenses != 0 {
		t.Fatalf("cascade left %d periods and %d expenses", periods, expenses)
	}
}
