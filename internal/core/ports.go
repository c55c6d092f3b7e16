package core

import (
	"context"
	"time"
)

// Ports for the persistence collaborator. Every ledger lookup takes the
// owning user id so rows of other users are filtered out by the query
// itself.
type (
	LedgerQueries interface {
		// FindPeriod returns ErrNotFound when the user has no row for year/month.
		FindPeriod(ctx context.Context, userID string, year, month int) (Period, error)
		// ListPeriods returns the user's periods, newest first.
		ListPeriods(ctx context.Context, userID string) ([]Period, error)
		// CreatePeriod returns ErrConflict when (user, year, month) already exists.
		CreatePeriod(ctx context.Context, p Period) error
		// UpdateSalary stores salary and stamps updated_at with updatedAt.
		UpdateSalary(ctx context.Context, userID, periodID string, salary Money, updatedAt time.Time) error

		InsertExpense(ctx context.Context, e Expense) error
		// ListExpenses orders by date DESC, creation DESC, id.
		ListExpenses(ctx context.Context, userID, periodID string) ([]Expense, error)
		FindExpense(ctx context.Context, userID, expenseID string) (Expense, Period, error)
		DeleteExpense(ctx context.Context, userID, expenseID string) error
	}

	// LedgerStore runs fn atomically. When fn returns an error nothing it
	// wrote is kept.
	LedgerStore interface {
		InTx(ctx context.Context, fn func(q LedgerQueries) error) error
	}

	UserStore interface {
		// CreateUser returns ErrConflict when the email is taken.
		CreateUser(ctx context.Context, u User) error
		FindUserByEmail(ctx context.Context, email string) (User, error)
		FindUserByID(ctx context.Context, id string) (User, error)
		// DeleteUser removes the user together with its periods and expenses.
		DeleteUser(ctx context.Context, id string) error
	}
)
