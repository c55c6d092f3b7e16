package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"budget/internal/core"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds every SQL statement of the ledger. Reads and writes on
// periods and expenses always carry the owner's user_id in the WHERE
// clause.
type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

var _ core.LedgerQueries = (*Queries)(nil)

const (
	createUser = `INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`

	getUserByEmail = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`

	getUserByID = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`

	deleteUser = `DELETE FROM users WHERE id = ?`

	getPeriod = `SELECT id, user_id, year, month, salary_cents, created_at, updated_at
FROM periods
WHERE user_id = ? AND year = ? AND month = ?`

	listPeriods = `SELECT id, user_id, year, month, salary_cents, created_at, updated_at
FROM periods
WHERE user_id = ?
ORDER BY year DESC, month DESC`

	createPeriod = `INSERT INTO periods (id, user_id, year, month, salary_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	updateSalary = `UPDATE periods SET salary_cents = ?, updated_at = ?
WHERE id = ? AND user_id = ?`

	insertExpense = `INSERT INTO expenses (id, period_id, category, amount_cents, note, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	listExpenses = `SELECT e.id, e.period_id, e.category, e.amount_cents, e.note, e.date, e.created_at
FROM expenses e
JOIN periods p ON p.id = e.period_id
WHERE p.user_id = ? AND e.period_id = ?
ORDER BY e.date DESC, e.created_at DESC, e.id ASC`

	getExpense = `SELECT e.id, e.period_id, e.category, e.amount_cents, e.note, e.date, e.created_at,
       p.id, p.user_id, p.year, p.month, p.salary_cents, p.created_at, p.updated_at
FROM expenses e
JOIN periods p ON p.id = e.period_id
WHERE e.id = ? AND p.user_id = ?`

	deleteExpense = `DELETE FROM expenses
WHERE id = ? AND period_id IN (SELECT id FROM periods WHERE user_id = ?)`
)

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	now := u.CreatedAt.UnixNano()
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Name, u.Email, u.PasswordHash, now, now)
	if err != nil {
		return mapError("create user", err)
	}
	return nil
}

func (q *Queries) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

func (q *Queries) FindUserByID(ctx context.Context, id string) (core.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

func (q *Queries) scanUser(row *sql.Row) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, &core.NotFoundError{Resource: "user"}
		}
		return core.User{}, mapError("get user", err)
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return expectOneRow(res, "user")
}

func (q *Queries) FindPeriod(ctx context.Context, userID string, year, month int) (core.Period, error) {
	row := q.db.QueryRowContext(ctx, getPeriod, userID, year, month)
	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Period{}, &core.NotFoundError{Resource: "period"}
		}
		return core.Period{}, mapError("get period", err)
	}
	return p, nil
}

func (q *Queries) ListPeriods(ctx context.Context, userID string) ([]core.Period, error) {
	rows, err := q.db.QueryContext(ctx, listPeriods, userID)
	if err != nil {
		return nil, mapError("list periods", err)
	}
	defer rows.Close()

	periods := []core.Period{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, mapError("scan period", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list periods", err)
	}
	return periods, nil
}

func (q *Queries) CreatePeriod(ctx context.Context, p core.Period) error {
	_, err := q.db.ExecContext(ctx, createPeriod,
		p.ID, p.UserID, p.Year, p.Month, p.Salary.Cents,
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return mapError("create period", err)
	}
	return nil
}

func (q *Queries) UpdateSalary(ctx context.Context, userID, periodID string, salary core.Money, updatedAt time.Time) error {
	res, err := q.db.ExecContext(ctx, updateSalary, salary.Cents, updatedAt.UnixNano(), periodID, userID)
	if err != nil {
		return mapError("update salary", err)
	}
	return expectOneRow(res, "period")
}

func (q *Queries) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		e.ID, e.PeriodID, e.Category, e.Amount.Cents, e.Note, e.Date.String(), e.CreatedAt.UnixNano())
	if err != nil {
		return mapError("insert expense", err)
	}
	return nil
}

func (q *Queries) ListExpenses(ctx context.Context, userID, periodID string) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, userID, periodID)
	if err != nil {
		return nil, mapError("list expenses", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e       core.Expense
			date    string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.PeriodID, &e.Category, &e.Amount.Cents, &e.Note, &date, &created); err != nil {
			return nil, mapError("scan expense", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, mapError("parse expense date", err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list expenses", err)
	}
	return expenses, nil
}

func (q *Queries) FindExpense(ctx context.Context, userID, expenseID string) (core.Expense, core.Period, error) {
	var (
		e                        core.Expense
		p                        core.Period
		date                     string
		eCreated, pCreated, pUpd int64
	)
	err := q.db.QueryRowContext(ctx, getExpense, expenseID, userID).Scan(
		&e.ID, &e.PeriodID, &e.Category, &e.Amount.Cents, &e.Note, &date, &eCreated,
		&p.ID, &p.UserID, &p.Year, &p.Month, &p.Salary.Cents, &pCreated, &pUpd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, core.Period{}, &core.NotFoundError{Resource: "expense"}
		}
		return core.Expense{}, core.Period{}, mapError("get expense", err)
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, core.Period{}, mapError("parse expense date", err)
	}
	e.CreatedAt = time.Unix(0, eCreated).UTC()
	p.CreatedAt = time.Unix(0, pCreated).UTC()
	p.UpdatedAt = time.Unix(0, pUpd).UTC()
	return e, p, nil
}

func (q *Queries) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	res, err := q.db.ExecContext(ctx, deleteExpense, expenseID, userID)
	if err != nil {
		return mapError("delete expense", err)
	}
	return expectOneRow(res, "expense")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPeriod(s scanner) (core.Period, error) {
	var (
		p                core.Period
		created, updated int64
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Year, &p.Month, &p.Salary.Cents, &created, &updated); err != nil {
		return core.Period{}, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}

func expectOneRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("rows affected", err)
	}
	if n == 0 {
		return &core.NotFoundError{Resource: resource}
	}
	return nil
}

// mapError turns unique violations into core.ErrConflict and wraps
// everything else as a StorageError.
func mapError(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, core.ErrConflict)
	}
	return &core.StorageError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
