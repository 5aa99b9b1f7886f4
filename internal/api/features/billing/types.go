package billing

// ValidateTaskRequest is the body for the validate-task endpoint. The
// exclude field lets edit forms re-validate a task against the rest of
// the project.
type ValidateTaskRequest struct {
	BillingPercentage float64 `json:"billingPercentage"`
	ExcludeTaskID     *int64  `json:"excludeTaskId,omitempty"`
}

// ValidateMilestoneRequest is the milestone counterpart. Keeping the two
// bodies separate means a mismatched exclusion field (excludeTaskId on a
// milestone validation, or vice versa) is rejected by the strict decoder
// instead of being silently dropped.
type ValidateMilestoneRequest struct {
	BillingPercentage  float64 `json:"billingPercentage"`
	ExcludeMilestoneID *int64  `json:"excludeMilestoneId,omitempty"`
}
