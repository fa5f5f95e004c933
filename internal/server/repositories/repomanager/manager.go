package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/breaches"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/scans"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/vulnerabilities"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// repository code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Scans(db dbx.DBTX) scans.Repository
	Breaches(db dbx.DBTX) breaches.Repository
	Vulnerabilities(db dbx.DBTX) vulnerabilities.Repository
}
