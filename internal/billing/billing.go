// Package billing computes and validates billing-percentage allocations
// for a project. The invariant it guards: the sum of non-nil billing
// percentages across a project's tasks and milestones must not exceed 100.
//
// Every call re-reads current storage; nothing is cached and nothing is
// written. The validator is advisory: two concurrent writers can each pass
// validation against the same pre-write total, so the storage layer
// re-checks the cap inside its update transactions (see internal/state).
package billing

import (
	"context"
	"fmt"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// maxAllocation is the project-wide billing cap in percent.
const maxAllocation = 100.0

// Ledger is the read-only slice of the store the aggregator needs.
type Ledger interface {
	GetProject(ctx context.Context, id int64) (*core.Project, error)
	ListTasksByProject(ctx context.Context, projectID int64) ([]*core.Task, error)
	ListMilestonesByProject(ctx context.Context, projectID int64) ([]*core.Milestone, error)
}

// Totals is the aggregated allocation state of a project.
// RemainingPercentage is 100 minus GrandTotal and may be negative when a
// project is already over-allocated; it is reported unclamped.
type Totals struct {
	TotalFromTasks      float64 `json:"totalFromTasks"`
	TotalFromMilestones float64 `json:"totalFromMilestones"`
	GrandTotal          float64 `json:"grandTotal"`
	RemainingPercentage float64 `json:"remainingPercentage"`
}

// Result is the verdict for a proposed allocation.
type Result struct {
	IsValid             bool    `json:"isValid"`
	CurrentTotal        float64 `json:"currentTotal"`
	RemainingPercentage float64 `json:"remainingPercentage"`
	ErrorMessage        string  `json:"errorMessage,omitempty"`
}

// Validator checks proposed billing percentages against a project's
// remaining allowance. It holds no state between calls.
type Validator struct {
	ledger Ledger
}

// NewValidator creates a Validator reading from the given ledger.
func NewValidator(ledger Ledger) *Validator {
	return &Validator{ledger: ledger}
}

// ComputeTotals sums billing percentages over a project's tasks and
// milestones. A nil percentage counts as 0. excludeTaskID and
// excludeMilestoneID remove a single record's contribution, used when
// re-validating an edit of that record.
//
// Returns core.ErrNotFound (wrapped) when the project does not exist.
func (v *Validator) ComputeTotals(ctx context.Context, projectID int64, excludeTaskID, excludeMilestoneID *int64) (Totals, error) {
	if _, err := v.ledger.GetProject(ctx, projectID); err != nil {
		return Totals{}, fmt.Errorf("billing totals for project %d: %w", projectID, err)
	}

	tasks, err := v.ledger.ListTasksByProject(ctx, projectID)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to list tasks for project %d: %w", projectID, err)
	}

	milestones, err := v.ledger.ListMilestonesByProject(ctx, projectID)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to list milestones for project %d: %w", projectID, err)
	}

	var totals Totals
	for _, t := range tasks {
		if excludeTaskID != nil && t.ID == *excludeTaskID {
			continue
		}
		if t.BillingPercentage != nil {
			totals.TotalFromTasks += *t.BillingPercentage
		}
	}
	for _, m := range milestones {
		if excludeMilestoneID != nil && m.ID == *excludeMilestoneID {
			continue
		}
		if m.BillingPercentage != nil {
			totals.TotalFromMilestones += *m.BillingPercentage
		}
	}

	totals.GrandTotal = totals.TotalFromTasks + totals.TotalFromMilestones
	totals.RemainingPercentage = maxAllocation - totals.GrandTotal
	return totals, nil
}
