package leads

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BackendPostgres is the config name of the postgres backend.
const BackendPostgres = "postgres"

const insertLead = `INSERT INTO leads (name, project, budget, contact, user_id, submitted_at)
VALUES (:name, :project, :budget, :contact, :user_id, :submitted_at)`

// PostgresSink appends leads to the leads table.
type PostgresSink struct {
	db *sqlx.DB
}

// NewPostgresSink wraps an open connection; the schema comes from migrations.
func NewPostgresSink(db *sqlx.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Name identifies the backend in logs.
func (s *PostgresSink) Name() string { return BackendPostgres }

// Record inserts one row.
func (s *PostgresSink) Record(ctx context.Context, rec Record) error {
	res, err := s.db.NamedExecContext(ctx, insertLead, rec)
	if err != nil {
		return storageErr(BackendPostgres, fmt.Errorf("insert: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return storageErr(BackendPostgres, fmt.Errorf("insert: %d rows affected", n))
	}
	return nil
}
