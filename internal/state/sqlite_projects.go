package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// CreateProject inserts a new project and fills in its generated ID and
// timestamps.
func (s *SQLiteStore) CreateProject(ctx context.Context, p *core.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", core.ErrInvalidInput)
	}
	if p.Status == "" {
		p.Status = core.ProjectStatusPlanning
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, client_name, site_address, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.ClientName, p.SiteAddress, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID. Archived projects are not found.
func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*core.Project, error) {
	p := &core.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, client_name, site_address, status, created_at, updated_at
		 FROM projects WHERE id = ? AND archived_at IS NULL`,
		id,
	).Scan(&p.ID, &p.Name, &p.ClientName, &p.SiteAddress, &p.Status, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListProjects retrieves all non-archived projects, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*core.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, client_name, site_address, status, created_at, updated_at
		 FROM projects WHERE archived_at IS NULL ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*core.Project
	for rows.Next() {
		p := &core.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.SiteAddress, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProjectStatus transitions a project to the given status.
func (s *SQLiteStore) UpdateProjectStatus(ctx context.Context, id int64, status core.ProjectStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND archived_at IS NULL`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return requireRow(res, "project", id)
}

// ArchiveProject soft-deletes a project. Its tasks and milestones stop
// counting toward billing totals via the project lookup, and remain
// cascade-deleted if the row is ever hard-removed.
func (s *SQLiteStore) ArchiveProject(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET archived_at = ?, updated_at = ? WHERE id = ? AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	return requireRow(res, "project", id)
}

// requireRow converts a zero-rows-affected result into core.ErrNotFound.
func requireRow(res sql.Result, entity string, id any) error {
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, core.ErrNotFound)
	}
	return nil
}
