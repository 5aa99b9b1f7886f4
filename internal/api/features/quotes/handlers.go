package quotes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kolmo-labs/buildledger/internal/api/features/common"
	"github.com/kolmo-labs/buildledger/internal/deck"
	"github.com/kolmo-labs/buildledger/internal/quote"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// EstimateResponse pairs the generated structure with its priced quote.
type EstimateResponse struct {
	Structure *deck.Structure `json:"structure"`
	Quote     *core.Quote     `json:"quote"`
}

// Handlers serves deck estimates and project quotes.
type Handlers struct {
	store  core.Store
	book   *quote.Book
	logger *slog.Logger
}

// NewHandlers creates quote handlers.
func NewHandlers(store core.Store, book *quote.Book, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, book: book, logger: logger}
}

func validateSiteInput(in deck.SiteInput) error {
	if in.WidthFt <= 0 || in.DepthFt <= 0 || in.HeightFt <= 0 {
		return fmt.Errorf("width, depth, and height must be positive: %w", core.ErrInvalidInput)
	}
	return nil
}

// Estimate designs a deck from site measurements and prices it, without
// persisting anything.
func (h *Handlers) Estimate(w http.ResponseWriter, r *http.Request) {
	var in deck.SiteInput
	if err := common.Decode(r, &in); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validateSiteInput(in); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	structure := deck.GenerateStructure(in)
	if !structure.Compliant {
		// A non-compliant design still returns 200 with the errors so the
		// configurator can show what to change.
		common.JSON(w, http.StatusOK, EstimateResponse{Structure: structure})
		return
	}

	q := quote.Calculate(structure, h.book.Current())
	common.JSON(w, http.StatusOK, EstimateResponse{Structure: structure, Quote: q})
}

// CreateQuote designs, prices, and saves a quote against a project.
func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	var in deck.SiteInput
	if err := common.Decode(r, &in); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if err := validateSiteInput(in); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	structure := deck.GenerateStructure(in)
	if !structure.Compliant {
		common.Error(w, h.logger, fmt.Errorf("design is not code compliant: %v: %w", structure.Errors, core.ErrInvalidInput))
		return
	}

	q := quote.Calculate(structure, h.book.Current())
	q.ProjectID = projectID
	if err := h.store.SaveQuote(r.Context(), q); err != nil {
		common.Error(w, h.logger, err)
		return
	}
	common.JSON(w, http.StatusCreated, EstimateResponse{Structure: structure, Quote: q})
}

// ListQuotes returns a project's saved quotes, newest first.
func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	projectID, err := common.Int64Param(r, "projectID")
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}

	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		common.Error(w, h.logger, err)
		return
	}

	quotes, err := h.store.ListQuotesByProject(r.Context(), projectID)
	if err != nil {
		common.Error(w, h.logger, err)
		return
	}
	if quotes == nil {
		quotes = []*core.Quote{}
	}
	common.JSON(w, http.StatusOK, quotes)
}
