// Package state provides the persistence layer for BuildLedger.
// Two implementations of core.Store are available: SQLite (embedded,
// default) and Postgres. Schemas are managed with goose migrations
// embedded in this package.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SQLiteStore implements core.Store backed by an embedded SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates an unopened SQLite store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the SQLite database at path, creating parent directories as
// needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL for concurrent readers, foreign keys for cascade semantics.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for migrations and diagnostics.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// checkAllocation sums billing percentages for a project inside the given
// transaction and returns core.ErrOverAllocated when the cap is exceeded.
// This is the write-time guard behind the advisory billing validator: it
// closes the window where two writers validate against the same pre-write
// total.
func checkAllocation(ctx context.Context, tx *sql.Tx, projectID int64) error {
	var total float64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT SUM(billing_percentage) FROM tasks
		                 WHERE project_id = ? AND archived_at IS NULL AND billing_percentage IS NOT NULL), 0)
		     + COALESCE((SELECT SUM(billing_percentage) FROM milestones
		                 WHERE project_id = ? AND archived_at IS NULL AND billing_percentage IS NOT NULL), 0)`,
		projectID, projectID,
	).Scan(&total)
	if err != nil {
		return fmt.Errorf("failed to sum billing percentages: %w", err)
	}
	if total > 100 {
		return fmt.Errorf("project %d at %.1f%%: %w", projectID, total, core.ErrOverAllocated)
	}
	return nil
}

var _ core.Store = (*SQLiteStore)(nil)
