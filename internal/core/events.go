package core

import "time"

const (
	EventSalarySet      = "salary.set"
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// LedgerEvent is emitted after a ledger mutation has been committed.
type LedgerEvent struct {
	Type      string        `json:"type"`
	UserID    string        `json:"user_id"`
	PeriodID  string        `json:"period_id"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Salary    string        `json:"salary,omitempty"`
	Expense   *ExpenseEvent `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ExpenseEvent carries the expense fields so consumers do not need to read
// the database.
type ExpenseEvent struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Note     string `json:"note,omitempty"`
}

func NewExpenseEvent(e Expense) *ExpenseEvent {
	return &ExpenseEvent{
		ID:       e.ID,
		Category: e.Category,
		Amount:   e.Amount.String(),
		Date:     e.Date.String(),
		Note:     e.Note,
	}
}
