package projects

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kolmo-labs/buildledger/internal/api/features/common"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// Handlers serves project, task, and milestone CRUD.
type Handlers struct {
	store  core.Store
	logger *slog.Logger
}

// NewHandlers creates project handlers.
func NewHandlers(store core.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// validBillingPercentage rejects percentages a single item can never
// legally hold. The project-level cap is enforced by the store.
func validBillingPercentage(pct *float64) error {
	if pct == nil {
		return nil
	}
	if *pct < 0 || *pct > 100 {
		return fmt.Errorf("billing percentage %.1f must be between 0 and 100: %w", *pct, core.ErrInvalidInput)
	}
	return nil
}

// --- Projects ---

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if projects == nil {
		projects = []*core.Project{}
	}
	common.JSON(w, http.StatusOK, projects)
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	p := &core.Project{
		Name:        req.Name,
		ClientName:  req.ClientName,
		SiteAddress: req.SiteAddress,
	}
	if err := h.store.CreateProject(r.Context(), p); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req UpdateStatusRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	switch req.Status {
	case core.ProjectStatusPlanning, core.ProjectStatusActive, core.ProjectStatusOnHold, core.ProjectStatusCompleted:
	default:
		common.Error(w, h.logger, fmt.Errorf("unknown project status %q: %w", req.Status, core.ErrInvalidInput))
		return
	}

	if err := h.store.UpdateProjectStatus(r.Context(), id, req.Status); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, p)
}

func (h *Handlers) ArchiveProject(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if err := h.store.ArchiveProject(r.Context(), id); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tasks ---

func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	// Listing an unknown project should 404, not return an empty list.
	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	tasks, err := h.store.ListTasksByProject(r.Context(), projectID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []*core.Task{}
	}
	common.JSON(w, http.StatusOK, tasks)
}

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req CreateTaskRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validBillingPercentage(req.BillingPercentage); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	t := &core.Task{
		ProjectID:         projectID,
		Title:             req.Title,
		BillingPercentage: req.BillingPercentage,
	}
	if err := h.store.CreateTask(r.Context(), t); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "taskID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, t)
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "taskID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req UpdateTaskRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validBillingPercentage(req.BillingPercentage); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		switch *req.Status {
		case core.TaskStatusPending, core.TaskStatusInProgress, core.TaskStatusCompleted:
			t.Status = *req.Status
		default:
			common.Error(w, h.logger, fmt.Errorf("unknown task status %q: %w", *req.Status, core.ErrInvalidInput))
			return
		}
	}
	if req.ClearBilling {
		t.BillingPercentage = nil
	} else if req.BillingPercentage != nil {
		t.BillingPercentage = req.BillingPercentage
	}

	if err := h.store.UpdateTask(r.Context(), t); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, t)
}

func (h *Handlers) ArchiveTask(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "taskID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if err := h.store.ArchiveTask(r.Context(), id); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Milestones ---

func (h *Handlers) ListMilestones(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	milestones, err := h.store.ListMilestonesByProject(r.Context(), projectID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if milestones == nil {
		milestones = []*core.Milestone{}
	}
	common.JSON(w, http.StatusOK, milestones)
}

func (h *Handlers) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req CreateMilestoneRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validBillingPercentage(req.BillingPercentage); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	m := &core.Milestone{
		ProjectID:         projectID,
		Title:             req.Title,
		BillingPercentage: req.BillingPercentage,
		DueDate:           req.DueDate,
	}
	if err := h.store.CreateMilestone(r.Context(), m); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusCreated, m)
}

func (h *Handlers) GetMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "milestoneID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	m, err := h.store.GetMilestone(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, m)
}

func (h *Handlers) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "milestoneID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var req UpdateMilestoneRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validBillingPercentage(req.BillingPercentage); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	m, err := h.store.GetMilestone(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Status != nil {
		switch *req.Status {
		case core.MilestoneStatusUpcoming, core.MilestoneStatusReached, core.MilestoneStatusInvoiced:
			m.Status = *req.Status
		default:
			common.Error(w, h.logger, fmt.Errorf("unknown milestone status %q: %w", *req.Status, core.ErrInvalidInput))
			return
		}
	}
	if req.DueDate != nil {
		m.DueDate = req.DueDate
	}
	if req.ClearBilling {
		m.BillingPercentage = nil
	} else if req.BillingPercentage != nil {
		m.BillingPercentage = req.BillingPercentage
	}

	if err := h.store.UpdateMilestone(r.Context(), m); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, m)
}

func (h *Handlers) ArchiveMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := common.Int64Param(r, "milestoneID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if err := h.store.ArchiveMilestone(r.Context(), id); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
