package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// CreateTask inserts a new task. When the task carries a billing
// percentage the project allocation cap is re-checked in the same
// transaction.
func (s *SQLiteStore) CreateTask(ctx context.Context, t *core.Task) error {
	if t.Title == "" {
		return fmt.Errorf("task title is required: %w", core.ErrInvalidInput)
	}
	if t.Status == "" {
		t.Status = core.TaskStatusPending
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (project_id, title, status, billing_percentage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.Title, t.Status, t.BillingPercentage, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if t.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}

	if t.BillingPercentage != nil {
		if err := checkAllocation(ctx, tx, t.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetTask retrieves a task by ID. Archived tasks are not found.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*core.Task, error) {
	t := &core.Task{}
	var pct sql.NullFloat64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, created_at, updated_at
		 FROM tasks WHERE id = ? AND archived_at IS NULL`,
		id,
	).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &pct, &t.CreatedAt, &t.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if pct.Valid {
		t.BillingPercentage = &pct.Float64
	}
	return t, nil
}

// ListTasksByProject retrieves all non-archived tasks for a project in
// creation order.
func (s *SQLiteStore) ListTasksByProject(ctx context.Context, projectID int64) ([]*core.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, created_at, updated_at
		 FROM tasks WHERE project_id = ? AND archived_at IS NULL ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*core.Task
	for rows.Next() {
		t := &core.Task{}
		var pct sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &pct, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if pct.Valid {
			t.BillingPercentage = &pct.Float64
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask writes a task's mutable fields. The project allocation cap is
// re-checked inside the transaction, so a write that would exceed 100%
// rolls back with core.ErrOverAllocated even if an advisory validation
// passed moments earlier.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t *core.Task) error {
	t.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, status = ?, billing_percentage = ?, updated_at = ?
		 WHERE id = ? AND archived_at IS NULL`,
		t.Title, t.Status, t.BillingPercentage, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if err := requireRow(res, "task", t.ID); err != nil {
		return err
	}

	if t.BillingPercentage != nil {
		if err := checkAllocation(ctx, tx, t.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ArchiveTask soft-deletes a task, removing its billing contribution.
func (s *SQLiteStore) ArchiveTask(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET archived_at = ?, updated_at = ? WHERE id = ? AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}
	return requireRow(res, "task", id)
}
