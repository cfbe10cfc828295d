package daystate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/database"
)

// PostgresStore keeps run state in screener.run_state.
// The table has no unique key on key; the coordinator resolves duplicates.
type PostgresStore struct {
	db *database.DB
}

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS screener;
CREATE TABLE IF NOT EXISTS screener.run_state (
	id         BIGSERIAL PRIMARY KEY,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_run_state_key ON screener.run_state(key);
`

// NewPostgresStore ensures the schema exists and returns the store
func NewPostgresStore(ctx context.Context, db *database.DB) (*PostgresStore, error) {
	if _, err := db.Pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create run_state schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Rows implements contracts.StateStore
func (s *PostgresStore) Rows(ctx context.Context) ([]contracts.StateRow, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, key, value, updated_at FROM screener.run_state ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query run_state: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[contracts.StateRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan run_state: %w", err)
	}
	return out, nil
}

// UpdateRow implements contracts.StateStore
func (s *PostgresStore) UpdateRow(ctx context.Context, row contracts.StateRow, value string) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE screener.run_state SET value = $1, updated_at = now() WHERE id = $2`,
		value, row.ID)
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("row %d: %w", row.ID, contracts.ErrNotFound)
	}
	return nil
}

// AppendRow implements contracts.StateStore
func (s *PostgresStore) AppendRow(ctx context.Context, key, value string) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO screener.run_state (key, value) VALUES ($1, $2)`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to append %s: %w", key, err)
	}
	return nil
}

// Close implements contracts.StateStore
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
