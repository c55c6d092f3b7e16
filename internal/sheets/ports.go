package sheets

import (
	"context"
	"fmt"

	"budget/internal/core"
)

// Mirror is an append-mostly copy of the ledger kept outside the database.
type Mirror interface {
	AppendExpense(ctx context.Context, ev core.LedgerEvent) error
	DeleteExpense(ctx context.Context, expenseID string) error
	AppendSalary(ctx context.Context, ev core.LedgerEvent) error
}

// Apply routes one ledger event to the matching mirror operation.
func Apply(ctx context.Context, m Mirror, ev *core.LedgerEvent) error {
	switch ev.Type {
	case core.EventExpenseCreated:
		return m.AppendExpense(ctx, *ev)
	case core.EventExpenseDeleted:
		return m.DeleteExpense(ctx, ev.Expense.ID)
	case core.EventSalarySet:
		return m.AppendSalary(ctx, *ev)
	default:
		return fmt.Errorf("unsupported event type %q", ev.Type)
	}
}

// ExpenseRow is the column layout of the expenses sheet.
func ExpenseRow(ev core.LedgerEvent) []any {
	e := ev.Expense
	return []any{e.ID, ev.UserID, ev.Year, ev.Month, e.Date, e.Category, e.Amount, e.Note}
}

// SalaryRow is the column layout of the salaries sheet.
func SalaryRow(ev core.LedgerEvent) []any {
	return []any{ev.PeriodID, ev.UserID, ev.Year, ev.Month, ev.Salary, ev.Timestamp.UTC().Format("2006-01-02T15:04:05Z")}
}
