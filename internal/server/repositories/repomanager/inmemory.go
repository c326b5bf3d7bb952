package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/addresses"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/archive"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/details"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends repositories over a memory.Store. Pass the
// store itself (or a handle from its WithTx) as the DBTX argument.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager(store *memory.Store) RepositoryManager {
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.store.Users(db)
}

func (m *InMemoryRepositoryManager) Addresses(db dbx.DBTX) addresses.Repository {
	return m.store.Addresses(db)
}

func (m *InMemoryRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return m.store.Profiles(db)
}

func (m *InMemoryRepositoryManager) Details(db dbx.DBTX) details.Repository {
	return m.store.Details(db)
}

func (m *InMemoryRepositoryManager) Archive(db dbx.DBTX) archive.Repository {
	return m.store.Archive(db)
}

func (m *InMemoryRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return m.store.Sessions(db)
}
