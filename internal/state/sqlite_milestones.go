package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// CreateMilestone inserts a new milestone, re-checking the project
// allocation cap when it carries a billing percentage.
func (s *SQLiteStore) CreateMilestone(ctx context.Context, m *core.Milestone) error {
	if m.Title == "" {
		return fmt.Errorf("milestone title is required: %w", core.ErrInvalidInput)
	}
	if m.Status == "" {
		m.Status = core.MilestoneStatusUpcoming
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO milestones (project_id, title, status, billing_percentage, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ProjectID, m.Title, m.Status, m.BillingPercentage, m.DueDate, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}

	if m.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read milestone id: %w", err)
	}

	if m.BillingPercentage != nil {
		if err := checkAllocation(ctx, tx, m.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetMilestone retrieves a milestone by ID. Archived milestones are not found.
func (s *SQLiteStore) GetMilestone(ctx context.Context, id int64) (*core.Milestone, error) {
	m := &core.Milestone{}
	var pct sql.NullFloat64
	var due sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, due_date, created_at, updated_at
		 FROM milestones WHERE id = ? AND archived_at IS NULL`,
		id,
	).Scan(&m.ID, &m.ProjectID, &m.Title, &m.Status, &pct, &due, &m.CreatedAt, &m.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}

	if pct.Valid {
		m.BillingPercentage = &pct.Float64
	}
	if due.Valid {
		m.DueDate = &due.Time
	}
	return m, nil
}

// ListMilestonesByProject retrieves all non-archived milestones for a
// project in creation order.
func (s *SQLiteStore) ListMilestonesByProject(ctx context.Context, projectID int64) ([]*core.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, due_date, created_at, updated_at
		 FROM milestones WHERE project_id = ? AND archived_at IS NULL ORDER BY id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*core.Milestone
	for rows.Next() {
		m := &core.Milestone{}
		var pct sql.NullFloat64
		var due sql.NullTime
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Status, &pct, &due, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		if pct.Valid {
			m.BillingPercentage = &pct.Float64
		}
		if due.Valid {
			m.DueDate = &due.Time
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// UpdateMilestone writes a milestone's mutable fields with the same
// transaction-scoped allocation re-check as UpdateTask.
func (s *SQLiteStore) UpdateMilestone(ctx context.Context, m *core.Milestone) error {
	m.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE milestones SET title = ?, status = ?, billing_percentage = ?, due_date = ?, updated_at = ?
		 WHERE id = ? AND archived_at IS NULL`,
		m.Title, m.Status, m.BillingPercentage, m.DueDate, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}
	if err := requireRow(res, "milestone", m.ID); err != nil {
		return err
	}

	if m.BillingPercentage != nil {
		if err := checkAllocation(ctx, tx, m.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ArchiveMilestone soft-deletes a milestone, removing its billing
// contribution.
func (s *SQLiteStore) ArchiveMilestone(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE milestones SET archived_at = ?, updated_at = ? WHERE id = ? AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive milestone: %w", err)
	}
	return requireRow(res, "milestone", id)
}
