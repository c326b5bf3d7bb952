package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/addresses"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/archive"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/details"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works with a plain connection or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Addresses(db dbx.DBTX) addresses.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Details(db dbx.DBTX) details.Repository
	Archive(db dbx.DBTX) archive.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
