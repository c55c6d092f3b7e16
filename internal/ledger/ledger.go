// Package ledger implements the period-scoped ledger: salary per month,
// expenses inside a month and the derived summary. Every operation runs
// as one transaction of the backing store and is scoped to the caller's
// user id.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"

	"github.com/google/uuid"
)

// Publisher receives committed ledger events.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
}

type Service struct {
	store     core.LedgerStore
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

// NewService wires the ledger to its store. publisher may be nil.
func NewService(store core.LedgerStore, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ResolveOrCreate returns the user's period for year/month, inserting it
// with defaultSalary when missing. A concurrent first write surfaces as
// core.ErrConflict from the store; the row is then read again and the
// winner's period is used.
func (s *Service) ResolveOrCreate(ctx context.Context, q core.LedgerQueries, userID string, year, month int, defaultSalary core.Money) (core.Period, bool, error) {
	p, err := q.FindPeriod(ctx, userID, year, month)
	if err == nil {
		return p, false, nil
	}
	if !core.IsNotFound(err) {
		return core.Period{}, false, fmt.Errorf("find period: %w", err)
	}

	now := s.now()
	p = core.Period{
		ID:        s.newID(),
		UserID:    userID,
		Year:      year,
		Month:     month,
		Salary:    defaultSalary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = q.CreatePeriod(ctx, p)
	if err == nil {
		return p, true, nil
	}
	if !core.IsConflict(err) {
		return core.Period{}, false, fmt.Errorf("create period: %w", err)
	}

	slog.InfoContext(ctx, "Period created concurrently, re-reading",
		"user_id", userID, "year", year, "month", month)
	p, err = q.FindPeriod(ctx, userID, year, month)
	if err != nil {
		return core.Period{}, false, fmt.Errorf("find period after conflict: %w", err)
	}
	return p, false, nil
}

// SetSalary overwrites the salary of the period, creating the period first
// when needed. The last writer wins.
func (s *Service) SetSalary(ctx context.Context, userID string, year, month int, salary string) (core.Period, error) {
	amount, err := core.ParseSalary(year, month, salary)
	if err != nil {
		return core.Period{}, err
	}

	var period core.Period
	err = s.store.InTx(ctx, func(q core.LedgerQueries) error {
		p, created, err := s.ResolveOrCreate(ctx, q, userID, year, month, amount)
		if err != nil {
			return err
		}
		if !created {
			updatedAt := s.now()
			if err := q.UpdateSalary(ctx, userID, p.ID, amount, updatedAt); err != nil {
				return fmt.Errorf("update salary: %w", err)
			}
			p.Salary = amount
			p.UpdatedAt = updatedAt
		}
		period = p
		return nil
	})
	if err != nil {
		return core.Period{}, err
	}

	slog.InfoContext(ctx, "Salary saved",
		"user_id", userID, "period_id", period.ID,
		"year", year, "month", month, "salary_cents", amount.Cents)

	s.publish(ctx, core.LedgerEvent{
		Type:     core.EventSalarySet,
		UserID:   userID,
		PeriodID: period.ID,
		Year:     year,
		Month:    month,
		Salary:   amount.String(),
	})
	return period, nil
}

// AddExpense validates the input before touching the store, then records
// the expense under the (possibly new) period.
func (s *Service) AddExpense(ctx context.Context, userID string, in core.ExpenseInput) (core.Expense, error) {
	exp, err := in.Parse()
	if err != nil {
		return core.Expense{}, err
	}

	var period core.Period
	err = s.store.InTx(ctx, func(q core.LedgerQueries) error {
		p, _, err := s.ResolveOrCreate(ctx, q, userID, in.Year, in.Month, core.Money{})
		if err != nil {
			return err
		}
		exp.ID = s.newID()
		exp.PeriodID = p.ID
		exp.CreatedAt = s.now()
		if err := q.InsertExpense(ctx, exp); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		period = p
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved",
		"user_id", userID, "expense_id", exp.ID, "period_id", period.ID,
		"category", exp.Category, "amount_cents", exp.Amount.Cents, "date", exp.Date.String())

	s.publish(ctx, core.LedgerEvent{
		Type:     core.EventExpenseCreated,
		UserID:   userID,
		PeriodID: period.ID,
		Year:     period.Year,
		Month:    period.Month,
		Expense:  core.NewExpenseEvent(exp),
	})
	return exp, nil
}

// ListExpenses returns the period's expenses, newest date first. A month
// without a period row yields an empty slice.
func (s *Service) ListExpenses(ctx context.Context, userID string, year, month int) ([]core.Expense, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	expenses := []core.Expense{}
	err := s.store.InTx(ctx, func(q core.LedgerQueries) error {
		p, err := q.FindPeriod(ctx, userID, year, month)
		if core.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find period: %w", err)
		}
		expenses, err = q.ListExpenses(ctx, userID, p.ID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense removes one expense of the caller. Missing and foreign ids
// both yield a NotFoundError.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if expenseID == "" {
		return &core.NotFoundError{Resource: "expense"}
	}

	var (
		exp    core.Expense
		period core.Period
	)
	err := s.store.InTx(ctx, func(q core.LedgerQueries) error {
		var err error
		exp, period, err = q.FindExpense(ctx, userID, expenseID)
		if err != nil {
			return err
		}
		return q.DeleteExpense(ctx, userID, expenseID)
	})
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return &core.NotFoundError{Resource: "expense"}
		}
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted",
		"user_id", userID, "expense_id", expenseID, "period_id", period.ID)

	s.publish(ctx, core.LedgerEvent{
		Type:     core.EventExpenseDeleted,
		UserID:   userID,
		PeriodID: period.ID,
		Year:     period.Year,
		Month:    period.Month,
		Expense:  core.NewExpenseEvent(exp),
	})
	return nil
}

// Summarize recomputes salary, total and balance from the current rows.
func (s *Service) Summarize(ctx context.Context, userID string, year, month int) (core.Summary, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return core.Summary{}, err
	}

	var summary core.Summary
	err := s.store.InTx(ctx, func(q core.LedgerQueries) error {
		p, err := q.FindPeriod(ctx, userID, year, month)
		if core.IsNotFound(err) {
			summary = core.Summary{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("find period: %w", err)
		}
		expenses, err := q.ListExpenses(ctx, userID, p.ID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		summary, err = core.Summarize(&p, expenses)
		if err != nil {
			return fmt.Errorf("summarize period %s: %w", p.ID, err)
		}
		return nil
	})
	if err != nil {
		return core.Summary{}, err
	}
	return summary, nil
}

// ListPeriods returns every period of the user, newest first.
func (s *Service) ListPeriods(ctx context.Context, userID string) ([]core.Period, error) {
	var periods []core.Period
	err := s.store.InTx(ctx, func(q core.LedgerQueries) error {
		var err error
		periods, err = q.ListPeriods(ctx, userID)
		if err != nil {
			return fmt.Errorf("list periods: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (s *Service) publish(ctx context.Context, ev core.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	ev.Timestamp = s.now()
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The ledger row is committed; consumers catch up from the store.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type, "user_id", ev.UserID, "period_id", ev.PeriodID, "error", err)
	}
}
