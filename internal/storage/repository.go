package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ core.LedgerStore = (*SQLiteRepository)(nil)
	_ core.UserStore   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: SQLite allows a single writer and the ledger runs
	// every mutation inside a transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx implements core.LedgerStore.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(q core.LedgerQueries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.StorageError{Op: "begin transaction", Err: err}
	}

	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &core.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// CreateUser implements core.UserStore
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	if err := r.queries.CreateUser(ctx, u); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User saved to SQLite", "user_id", u.ID)
	return nil
}

// FindUserByEmail implements core.UserStore
func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.queries.FindUserByEmail(ctx, email)
}

// FindUserByID implements core.UserStore
func (r *SQLiteRepository) FindUserByID(ctx context.Context, id string) (core.User, error) {
	return r.queries.FindUserByID(ctx, id)
}

// DeleteUser implements core.UserStore. Periods and expenses go with the
// user through ON DELETE CASCADE.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	if err := r.queries.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User deleted from SQLite", "user_id", id)
	return nil
}
