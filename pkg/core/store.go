package core

import "context"

// Store defines the persistence contract for BuildLedger. Implementations
// live in internal/state (SQLite and Postgres).
//
// List methods exclude archived records, so billing aggregation never counts
// a soft-deleted task or milestone. Updates that change a billing percentage
// re-check the 100% project cap inside the write transaction and return
// ErrOverAllocated on violation.
type Store interface {
	Close() error

	// Project operations
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProjectStatus(ctx context.Context, id int64, status ProjectStatus) error
	ArchiveProject(ctx context.Context, id int64) error

	// Task operations
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasksByProject(ctx context.Context, projectID int64) ([]*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	ArchiveTask(ctx context.Context, id int64) error

	// Milestone operations
	CreateMilestone(ctx context.Context, m *Milestone) error
	GetMilestone(ctx context.Context, id int64) (*Milestone, error)
	ListMilestonesByProject(ctx context.Context, projectID int64) ([]*Milestone, error)
	UpdateMilestone(ctx context.Context, m *Milestone) error
	ArchiveMilestone(ctx context.Context, id int64) error

	// Lead operations
	CreateLead(ctx context.Context, l *Lead) error
	GetLead(ctx context.Context, id string) (*Lead, error)
	ListLeads(ctx context.Context) ([]*Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status LeadStatus) error

	// Quote operations
	SaveQuote(ctx context.Context, q *Quote) error
	ListQuotesByProject(ctx context.Context, projectID int64) ([]*Quote, error)
}
