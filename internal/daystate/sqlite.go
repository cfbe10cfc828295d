package daystate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

// SQLiteStore keeps run state in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS run_state (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_state_key ON run_state(key)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Rows implements contracts.StateStore
func (s *SQLiteStore) Rows(ctx context.Context) ([]contracts.StateRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, key, value, updated_at FROM run_state ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query run_state: %w", err)
	}
	defer rows.Close()

	var out []contracts.StateRow
	for rows.Next() {
		var r contracts.StateRow
		var updated int64
		if err := rows.Scan(&r.ID, &r.Key, &r.Value, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan run_state: %w", err)
		}
		r.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateRow implements contracts.StateStore
func (s *SQLiteStore) UpdateRow(ctx context.Context, row contracts.StateRow, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE run_state SET value = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UnixNano(), row.ID)
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", row.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("row %d: %w", row.ID, contracts.ErrNotFound)
	}
	return nil
}

// AppendRow implements contracts.StateStore
func (s *SQLiteStore) AppendRow(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_state (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append %s: %w", key, err)
	}
	return nil
}

// Close implements contracts.StateStore
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
