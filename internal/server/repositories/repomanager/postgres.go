// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// repository constructors and the goose schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/darktrack/internal/dbx"
	"github.com/dmitrijs2005/darktrack/internal/server/migrations"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/breaches"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/scans"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/darktrack/internal/server/repositories/vulnerabilities"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Scans(db dbx.DBTX) scans.Repository {
	return scans.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Breaches(db dbx.DBTX) breaches.Repository {
	return breaches.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Vulnerabilities(db dbx.DBTX) vulnerabilities.Repository {
	return vulnerabilities.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
