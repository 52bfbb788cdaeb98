package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docshare/internal/dbx"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/associations"
)

// RepositoryManager runs schema migrations and vends SQL-backed stores.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Associations(db dbx.DBTX) associations.Repository
}
