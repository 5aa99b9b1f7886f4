package projects

import (
	"time"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// CreateProjectRequest is the body for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	ClientName  string `json:"clientName"`
	SiteAddress string `json:"siteAddress"`
}

// UpdateStatusRequest is the body for project status changes.
type UpdateStatusRequest struct {
	Status core.ProjectStatus `json:"status"`
}

// CreateTaskRequest is the body for creating a task.
type CreateTaskRequest struct {
	Title             string   `json:"title"`
	BillingPercentage *float64 `json:"billingPercentage,omitempty"`
}

// UpdateTaskRequest is the body for patching a task. Nil fields are left
// unchanged; clearBilling removes the billing percentage.
type UpdateTaskRequest struct {
	Title             *string          `json:"title,omitempty"`
	Status            *core.TaskStatus `json:"status,omitempty"`
	BillingPercentage *float64         `json:"billingPercentage,omitempty"`
	ClearBilling      bool             `json:"clearBilling,omitempty"`
}

// CreateMilestoneRequest is the body for creating a milestone.
type CreateMilestoneRequest struct {
	Title             string     `json:"title"`
	BillingPercentage *float64   `json:"billingPercentage,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
}

// UpdateMilestoneRequest is the body for patching a milestone.
type UpdateMilestoneRequest struct {
	Title             *string               `json:"title,omitempty"`
	Status            *core.MilestoneStatus `json:"status,omitempty"`
	BillingPercentage *float64              `json:"billingPercentage,omitempty"`
	ClearBilling      bool                  `json:"clearBilling,omitempty"`
	DueDate           *time.Time            `json:"dueDate,omitempty"`
}
