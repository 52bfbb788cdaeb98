package associations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/dbx"
)

// PostgresRepository persists associations in the example_documents table
// over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, example string) (string, bool, error) {
	query := `
		SELECT document_id
		FROM example_documents
		WHERE example_name = $1
	`
	var documentID string
	if err := r.db.QueryRowContext(ctx, query, example).Scan(&documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: %w", err)
	}
	return documentID, true, nil
}

func (r *PostgresRepository) Set(ctx context.Context, example, documentID string) error {
	query := `
		INSERT INTO example_documents (example_name, document_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (example_name) DO UPDATE
		SET document_id = EXCLUDED.document_id, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, example, documentID); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, example string) error {
	query := `
		DELETE FROM example_documents
		WHERE example_name = $1
	`
	if _, err := r.db.ExecContext(ctx, query, example); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
