// Package core defines the domain types shared by the storage, billing,
// and API layers of BuildLedger.
package core

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

// Project status constants.
const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// TaskStatus represents the state of a task.
type TaskStatus string

// Task status constants.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// MilestoneStatus represents the state of a milestone.
type MilestoneStatus string

// Milestone status constants.
const (
	MilestoneStatusUpcoming MilestoneStatus = "upcoming"
	MilestoneStatusReached  MilestoneStatus = "reached"
	MilestoneStatusInvoiced MilestoneStatus = "invoiced"
)

// LeadStatus represents the state of a captured lead.
type LeadStatus string

// Lead status constants.
const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusClosed    LeadStatus = "closed"
)

// Project is a construction project owning tasks and milestones.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	ClientName  string        `json:"clientName"`
	SiteAddress string        `json:"siteAddress"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Task is a unit of work within a project. BillingPercentage is the share
// of the project's contract value attributed to the task for invoicing;
// nil means the task is not billed.
type Task struct {
	ID                int64      `json:"id"`
	ProjectID         int64      `json:"projectId"`
	Title             string     `json:"title"`
	Status            TaskStatus `json:"status"`
	BillingPercentage *float64   `json:"billingPercentage"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Milestone is a billable checkpoint within a project.
type Milestone struct {
	ID                int64           `json:"id"`
	ProjectID         int64           `json:"projectId"`
	Title             string          `json:"title"`
	Status            MilestoneStatus `json:"status"`
	BillingPercentage *float64        `json:"billingPercentage"`
	DueDate           *time.Time      `json:"dueDate"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Lead is a prospective customer captured from the public intake form.
type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	SiteAddress string     `json:"siteAddress"`
	Notes       string     `json:"notes"`
	Status      LeadStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuoteLineItem is a single priced line in a quote.
type QuoteLineItem struct {
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	MaterialCost float64 `json:"materialCost"`
	LaborCost    float64 `json:"laborCost"`
}

// Total returns the combined material and labor cost of the line.
func (li QuoteLineItem) Total() float64 {
	return li.MaterialCost + li.LaborCost
}

// Quote is a complete priced estimate, optionally attached to a project.
type Quote struct {
	ID                string          `json:"id"`
	ProjectID         int64           `json:"projectId,omitempty"`
	LineItems         []QuoteLineItem `json:"lineItems"`
	MaterialsSubtotal float64         `json:"materialsSubtotal"`
	LaborSubtotal     float64         `json:"laborSubtotal"`
	PermitFees        float64         `json:"permitFees"`
	Subtotal          float64         `json:"subtotal"`
	MarginAmount      float64         `json:"marginAmount"`
	Total             float64         `json:"total"`
	DeckSqft          float64         `json:"deckSqft"`
	PricePerSqft      float64         `json:"pricePerSqft"`
	CreatedAt         time.Time       `json:"createdAt"`
}
