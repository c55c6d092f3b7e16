// Package memory keeps the ledger in process. It enforces the same
// uniqueness, ownership and cascade rules as the SQLite store and is used
// by tests and the "memory" backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"budget/internal/core"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	users    map[string]core.User
	periods  map[string]core.Period
	expenses map[string]core.Expense
}

var (
	_ core.LedgerStore   = (*Store)(nil)
	_ core.UserStore     = (*Store)(nil)
	_ core.LedgerQueries = (*state)(nil)
)

func New() *Store {
	return &Store{state: &state{
		users:    map[string]core.User{},
		periods:  map[string]core.Period{},
		expenses: map[string]core.Expense{},
	}}
}

// InTx runs fn on a copy of the state and keeps the copy only when fn
// succeeds.
func (s *Store) InTx(_ context.Context, fn func(q core.LedgerQueries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrConflict)
		}
	}
	if _, ok := s.state.users[u.ID]; ok {
		return fmt.Errorf("create user: %w", core.ErrConflict)
	}
	s.state.users[u.ID] = u
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, &core.NotFoundError{Resource: "user"}
}

func (s *Store) FindUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	if !ok {
		return core.User{}, &core.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.users[id]; !ok {
		return &core.NotFoundError{Resource: "user"}
	}
	delete(s.state.users, id)
	for pid, p := range s.state.periods {
		if p.UserID != id {
			continue
		}
		delete(s.state.periods, pid)
		for eid, e := range s.state.expenses {
			if e.PeriodID == pid {
				delete(s.state.expenses, eid)
			}
		}
	}
	return nil
}

func (st *state) clone() *state {
	c := &state{
		users:    make(map[string]core.User, len(st.users)),
		periods:  make(map[string]core.Period, len(st.periods)),
		expenses: make(map[string]core.Expense, len(st.expenses)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.periods {
		c.periods[k] = v
	}
	for k, v := range st.expenses {
		c.expenses[k] = v
	}
	return c
}

func (st *state) FindPeriod(_ context.Context, userID string, year, month int) (core.Period, error) {
	for _, p := range st.periods {
		if p.UserID == userID && p.Year == year && p.Month == month {
			return p, nil
		}
	}
	return core.Period{}, &core.NotFoundError{Resource: "period"}
}

func (st *state) ListPeriods(_ context.Context, userID string) ([]core.Period, error) {
	out := []core.Period{}
	for _, p := range st.periods {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (st *state) CreatePeriod(ctx context.Context, p core.Period) error {
	if _, err := st.FindPeriod(ctx, p.UserID, p.Year, p.Month); err == nil {
		return fmt.Errorf("create period: %w", core.ErrConflict)
	}
	if _, ok := st.periods[p.ID]; ok {
		return fmt.Errorf("create period: %w", core.ErrConflict)
	}
	if _, ok := st.users[p.UserID]; !ok {
		return &core.StorageError{Op: "create period", Err: fmt.Errorf("unknown user %q", p.UserID)}
	}
	st.periods[p.ID] = p
	return nil
}

func (st *state) UpdateSalary(_ context.Context, userID, periodID string, salary core.Money, updatedAt time.Time) error {
	p, ok := st.periods[periodID]
	if !ok || p.UserID != userID {
		return &core.NotFoundError{Resource: "period"}
	}
	p.Salary = salary
	p.UpdatedAt = updatedAt
	st.periods[periodID] = p
	return nil
}

func (st *state) InsertExpense(_ context.Context, e core.Expense) error {
	if _, ok := st.periods[e.PeriodID]; !ok {
		return &core.StorageError{Op: "insert expense", Err: fmt.Errorf("unknown period %q", e.PeriodID)}
	}
	if _, ok := st.expenses[e.ID]; ok {
		return fmt.Errorf("insert expense: %w", core.ErrConflict)
	}
	st.expenses[e.ID] = e
	return nil
}

func (st *state) ListExpenses(_ context.Context, userID, periodID string) ([]core.Expense, error) {
	out := []core.Expense{}
	p, ok := st.periods[periodID]
	if !ok || p.UserID != userID {
		return out, nil
	}
	for _, e := range st.expenses {
		if e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (st *state) FindExpense(_ context.Context, userID, expenseID string) (core.Expense, core.Period, error) {
	e, ok := st.expenses[expenseID]
	if !ok {
		return core.Expense{}, core.Period{}, &core.NotFoundError{Resource: "expense"}
	}
	p, ok := st.periods[e.PeriodID]
	if !ok || p.UserID != userID {
		return core.Expense{}, core.Period{}, &core.NotFoundError{Resource: "expense"}
	}
	return e, p, nil
}

func (st *state) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if _, _, err := st.FindExpense(ctx, userID, expenseID); err != nil {
		return err
	}
	delete(st.expenses, expenseID)
	return nil
}
