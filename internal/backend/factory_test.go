package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/config"
	"budget/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "memory", cfg: &config.Config{DataBackend: "memory"}, want: MemoryBackend},
		{name: "sqlite", cfg: &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, want: SQLiteBackend},
		{name: "unknown", cfg: &config.Config{DataBackend: "sheets"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without a path should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory: %v", err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	configs := map[string]Config{
		"memory": {Type: MemoryBackend},
		"sqlite": {Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "budget.db")},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Close()

			if err := res.Ready(ctx); err != nil {
				t.Fatalf("Ready: %v", err)
			}

			user := core.User{ID: "u1", Name: "Test", Email: "u1@example.com", PasswordHash: "h", CreatedAt: time.Now()}
			if err := res.Users.CreateUser(ctx, user); err != nil {
				t.Fatalf("CreateUser: %v", err)
			}
			err = res.Ledger.InTx(ctx, func(q core.LedgerQueries) error {
				return q.CreatePeriod(ctx, core.Period{
					ID: "p1", UserID: "u1", Year: 2025, Month: 6, CreatedAt: time.Now(), UpdatedAt: time.Now(),
				})
			})
			if err != nil {
				t.Fatalf("CreatePeriod: %v", err)
			}
		})
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error")
	}
}
