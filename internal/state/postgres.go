package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// PostgresConfig holds connection settings for a Postgres store.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// PostgresStore implements core.Store backed by PostgreSQL via the pgx
// stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates an unopened Postgres store.
func NewPostgresStore() *PostgresStore {
	return &PostgresStore{}
}

// Open establishes and verifies the Postgres connection.
func (s *PostgresStore) Open(ctx context.Context, cfg PostgresConfig) error {
	db, err := sql.Open("pgx", buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.db = db
	return nil
}

// OpenDB attaches an existing connection, used by tests with sqlmock.
func (s *PostgresStore) OpenDB(db *sql.DB) {
	s.db = db
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// buildPostgresDSN constructs a key=value connection string with the
// defaults the teacher environment expects (localhost:5432, sslmode
// disable).
func buildPostgresDSN(cfg PostgresConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

// checkAllocationPG is the Postgres variant of checkAllocation.
func checkAllocationPG(ctx context.Context, tx *sql.Tx, projectID int64) error {
	var total float64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT SUM(billing_percentage) FROM tasks
		                 WHERE project_id = $1 AND archived_at IS NULL AND billing_percentage IS NOT NULL), 0)
		     + COALESCE((SELECT SUM(billing_percentage) FROM milestones
		                 WHERE project_id = $2 AND archived_at IS NULL AND billing_percentage IS NOT NULL), 0)`,
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

// --- Project operations ---

func (s *PostgresStore) CreateProject(ctx context.Context, p *core.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", core.ErrInvalidInput)
	}
	if p.Status == "" {
		p.Status = core.ProjectStatusPlanning
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, client_name, site_address, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.ClientName, p.SiteAddress, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64) (*core.Project, error) {
	p := &core.Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, client_name, site_address, status, created_at, updated_at
		 FROM projects WHERE id = $1 AND archived_at IS NULL`,
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

func (s *PostgresStore) ListProjects(ctx context.Context) ([]*core.Project, error) {
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

func (s *PostgresStore) UpdateProjectStatus(ctx context.Context, id int64, status core.ProjectStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = $1, updated_at = $2 WHERE id = $3 AND archived_at IS NULL`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return requireRow(res, "project", id)
}

func (s *PostgresStore) ArchiveProject(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET archived_at = $1, updated_at = $2 WHERE id = $3 AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	return requireRow(res, "project", id)
}

// --- Task operations ---

func (s *PostgresStore) CreateTask(ctx context.Context, t *core.Task) error {
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

	err = tx.QueryRowContext(ctx,
		`INSERT INTO tasks (project_id, title, status, billing_percentage, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.ProjectID, t.Title, t.Status, t.BillingPercentage, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if t.BillingPercentage != nil {
		if err := checkAllocationPG(ctx, tx, t.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetTask(ctx context.Context, id int64) (*core.Task, error) {
	t := &core.Task{}
	var pct sql.NullFloat64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, created_at, updated_at
		 FROM tasks WHERE id = $1 AND archived_at IS NULL`,
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

func (s *PostgresStore) ListTasksByProject(ctx context.Context, projectID int64) ([]*core.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, created_at, updated_at
		 FROM tasks WHERE project_id = $1 AND archived_at IS NULL ORDER BY id`,
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

func (s *PostgresStore) UpdateTask(ctx context.Context, t *core.Task) error {
	t.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET title = $1, status = $2, billing_percentage = $3, updated_at = $4
		 WHERE id = $5 AND archived_at IS NULL`,
		t.Title, t.Status, t.BillingPercentage, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if err := requireRow(res, "task", t.ID); err != nil {
		return err
	}

	if t.BillingPercentage != nil {
		if err := checkAllocationPG(ctx, tx, t.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ArchiveTask(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET archived_at = $1, updated_at = $2 WHERE id = $3 AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}
	return requireRow(res, "task", id)
}

// --- Milestone operations ---

func (s *PostgresStore) CreateMilestone(ctx context.Context, m *core.Milestone) error {
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

	err = tx.QueryRowContext(ctx,
		`INSERT INTO milestones (project_id, title, status, billing_percentage, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		m.ProjectID, m.Title, m.Status, m.BillingPercentage, m.DueDate, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}

	if m.BillingPercentage != nil {
		if err := checkAllocationPG(ctx, tx, m.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetMilestone(ctx context.Context, id int64) (*core.Milestone, error) {
	m := &core.Milestone{}
	var pct sql.NullFloat64
	var due sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, due_date, created_at, updated_at
		 FROM milestones WHERE id = $1 AND archived_at IS NULL`,
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

func (s *PostgresStore) ListMilestonesByProject(ctx context.Context, projectID int64) ([]*core.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, title, status, billing_percentage, due_date, created_at, updated_at
		 FROM milestones WHERE project_id = $1 AND archived_at IS NULL ORDER BY id`,
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

func (s *PostgresStore) UpdateMilestone(ctx context.Context, m *core.Milestone) error {
	m.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE milestones SET title = $1, status = $2, billing_percentage = $3, due_date = $4, updated_at = $5
		 WHERE id = $6 AND archived_at IS NULL`,
		m.Title, m.Status, m.BillingPercentage, m.DueDate, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}
	if err := requireRow(res, "milestone", m.ID); err != nil {
		return err
	}

	if m.BillingPercentage != nil {
		if err := checkAllocationPG(ctx, tx, m.ProjectID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) ArchiveMilestone(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE milestones SET archived_at = $1, updated_at = $2 WHERE id = $3 AND archived_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive milestone: %w", err)
	}
	return requireRow(res, "milestone", id)
}

var _ core.Store = (*PostgresStore)(nil)
