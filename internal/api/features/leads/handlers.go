package leads

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/kolmo-labs/buildledger/internal/api/features/common"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

const (
	sessionName    = "buildledger"
	sessionLeadKey = "lead_ids"
)

func init() {
	// Session values are gob-encoded into the cookie.
	gob.Register([]string{})
}

// CreateLeadRequest is the public intake form payload.
type CreateLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SiteAddress string `json:"siteAddress"`
	Notes       string `json:"notes"`
}

// UpdateLeadStatusRequest is the body for lead status changes.
type UpdateLeadStatusRequest struct {
	Status core.LeadStatus `json:"status"`
}

// Handlers serves lead intake and pipeline management.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates lead handlers.
func NewHandlers(store core.Store, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, sessionStore: sessionStore, logger: logger}
}

// CreateLead records an inquiry from the public form and remembers it in
// the visitor's session so they can check back without an account.
func (h *Handlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	l := &core.Lead{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		SiteAddress: req.SiteAddress,
		Notes:       req.Notes,
	}
	if err := h.store.CreateLead(r.Context(), l); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	session, _ := h.sessionStore.Get(r, sessionName)
	ids, _ := session.Values[sessionLeadKey].([]string)
	session.Values[sessionLeadKey] = append(ids, l.ID)
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}

	common.JSON(w, http.StatusCreated, l)
}

// MyLeads returns the leads submitted from this browser session.
func (h *Handlers) MyLeads(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessionStore.Get(r, sessionName)
	ids, _ := session.Values[sessionLeadKey].([]string)

	leads := []*core.Lead{}
	for _, id := range ids {
		l, err := h.store.GetLead(r.Context(), id)
		if err != nil {
			// A lead deleted server-side just drops out of the view.
			continue
		}
		leads = append(leads, l)
	}
	common.JSON(w, http.StatusOK, leads)
}

// ListLeads returns every lead, newest first.
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.ListLeads(r.Context())
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if leads == nil {
		leads = []*core.Lead{}
	}
	common.JSON(w, http.StatusOK, leads)
}

// GetLead returns a single lead by id.
func (h *Handlers) GetLead(w http.ResponseWriter, r *http.Request) {
	l, err := h.store.GetLead(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, l)
}

// UpdateLeadStatus moves a lead through the pipeline.
func (h *Handlers) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	var req UpdateLeadStatusRequest
	if err := common.Decode(r, &req); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	switch req.Status {
	case core.LeadStatusNew, core.LeadStatusContacted, core.LeadStatusQualified, core.LeadStatusConverted, core.LeadStatusClosed:
	default:
		common.Error(w, h.logger, fmt.Errorf("unknown lead status %q: %w", req.Status, core.ErrInvalidInput))
		return
	}

	if err := h.store.UpdateLeadStatus(r.Context(), id, req.Status); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	l, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, l)
}
