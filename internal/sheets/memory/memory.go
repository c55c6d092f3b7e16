// Package memory is an in-process Sheets mirror for local runs and tests.
package memory

import (
	"context"
	"sync"

	"budget/internal/core"
	ports "budget/internal/sheets"
)

type Mirror struct {
	mu       sync.Mutex
	expenses [][]any
	salaries [][]any
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendExpense(_ context.Context, ev core.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, ports.ExpenseRow(ev))
	return nil
}

// DeleteExpense blanks the matching row like the Sheets client does.
func (m *Mirror) DeleteExpense(_ context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.expenses {
		if len(row) > 0 && row[0] == expenseID {
			m.expenses[i] = nil
		}
	}
	return nil
}

func (m *Mirror) AppendSalary(_ context.Context, ev core.LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salaries = append(m.salaries, ports.SalaryRow(ev))
	return nil
}

// ExpenseRows returns a copy of the expense rows, cleared rows included.
func (m *Mirror) ExpenseRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.expenses...)
}

func (m *Mirror) SalaryRows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.salaries...)
}
