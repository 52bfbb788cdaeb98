// Package dbx holds the database handle abstraction repositories accept,
// so the same repository code runs on a pool or inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX covers the single-row reads and writes the association store issues.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
