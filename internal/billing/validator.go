package billing

import (
	"context"
	"fmt"
)

// ValidateTaskBilling checks whether a task may take the proposed billing
// percentage, excluding the task being edited (if any) from the current
// total.
//
// A proposed percentage of zero or less short-circuits to valid without a
// storage read: it is the "clearing a percentage" fast path, and the
// reported CurrentTotal/RemainingPercentage are the fixed 0/100 of that
// path, not the project's actual state.
func (v *Validator) ValidateTaskBilling(ctx context.Context, projectID int64, proposed float64, excludeTaskID *int64) (Result, error) {
	return v.validate(ctx, projectID, proposed, excludeTaskID, nil, "task")
}

// ValidateMilestoneBilling is the milestone counterpart of
// ValidateTaskBilling; the exclusion applies to a milestone instead.
func (v *Validator) ValidateMilestoneBilling(ctx context.Context, projectID int64, proposed float64, excludeMilestoneID *int64) (Result, error) {
	return v.validate(ctx, projectID, proposed, nil, excludeMilestoneID, "milestone")
}

func (v *Validator) validate(ctx context.Context, projectID int64, proposed float64, excludeTaskID, excludeMilestoneID *int64, kind string) (Result, error) {
	if proposed <= 0 {
		return Result{
			IsValid:             true,
			CurrentTotal:        0,
			RemainingPercentage: maxAllocation,
		}, nil
	}

	totals, err := v.ComputeTotals(ctx, projectID, excludeTaskID, excludeMilestoneID)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		CurrentTotal:        totals.GrandTotal,
		RemainingPercentage: totals.RemainingPercentage,
	}

	if totals.GrandTotal+proposed > maxAllocation {
		// The message clamps the allowance at 0 for readability; the numeric
		// RemainingPercentage field stays unclamped.
		allowed := totals.RemainingPercentage
		if allowed < 0 {
			allowed = 0
		}
		res.ErrorMessage = fmt.Sprintf(
			"cannot set %s billing to %.1f%%: project is at %.1f%% of 100%%, at most %.1f%% may be added",
			kind, proposed, totals.GrandTotal, allowed,
		)
		return res, nil
	}

	res.IsValid = true
	return res, nil
}
