package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/movies"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/otps"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/refreshtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Otps(db dbx.DBTX) otps.Repository
	Movies(db dbx.DBTX) movies.Repository
}
