package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/memory"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnRepos(t *testing.T) {
	db := newDB(t)
	store := memory.NewStore()

	tests := []struct {
		name string
		m    RepositoryManager
		db   dbx.DBTX
	}{
		{"postgres", NewPostgresRepositoryManager(), db},
		{"memory", NewInMemoryRepositoryManager(store), store},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.m.Users(tt.db) == nil || tt.m.Addresses(tt.db) == nil || tt.m.Profiles(tt.db) == nil ||
				tt.m.Details(tt.db) == nil || tt.m.Archive(tt.db) == nil || tt.m.Sessions(tt.db) == nil {
				t.Fatal("factory returned nil repository")
			}
		})
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestInMemory_RunMigrationsIsNoop(t *testing.T) {
	m := NewInMemoryRepositoryManager(memory.NewStore())
	if err := m.RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
