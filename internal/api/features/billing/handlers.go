package billing

import (
	"log/slog"
	"net/http"

	"github.com/kolmo-labs/buildledger/internal/api/features/common"
	billingcore "github.com/kolmo-labs/buildledger/internal/billing"
)

// Handlers serves billing allocation queries.
type Handlers struct {
	validator *billingcore.Validator
	logger    *slog.Logger
}

// NewHandlers creates billing handlers.
func NewHandlers(validator *billingcore.Validator, logger *slog.Logger) *Handlers {
	return &Handlers{validator: validator, logger: logger}
}

// GetTotals returns the current allocation totals for a project. The
// optional excludeTaskId/excludeMilestoneId query parameters remove a
// single record's contribution, for edit forms re-validating that record.
func (h *Handlers) GetTotals(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	excludeTaskID, err := common.Int64Query(r, "excludeTaskId")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	excludeMilestoneID, err := common.Int64Query(r, "excludeMilestoneId")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	totals, err := h.validator.ComputeTotals(r.Context(), projectID, excludeTaskID, excludeMilestoneID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, totals)
}

// ValidateTask checks whether a proposed task percentage fits within the
// project's remaining allocation.
func (h *Handlers) ValidateTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req ValidateTaskRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	result, err := h.validator.ValidateTaskBilling(r.Context(), projectID, req.BillingPercentage, req.ExcludeTaskID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}

// ValidateMilestone checks whether a proposed milestone percentage fits
// within the project's remaining allocation.
func (h *Handlers) ValidateMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req ValidateMilestoneRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	result, err := h.validator.ValidateMilestoneBilling(r.Context(), projectID, req.BillingPercentage, req.ExcludeMilestoneID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}
