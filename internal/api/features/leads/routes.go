// Package leads handles the public lead intake form and the back-office
// lead pipeline.
package leads

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SetupRoutes registers the lead routes.
func SetupRoutes(router chi.Router, store core.Store, sessionStore sessions.Store, logger *slog.Logger) {
	handlers := NewHandlers(store, sessionStore, logger)

	router.Route("/api/leads", func(r chi.Router) {
		r.Post("/", handlers.CreateLead)
		r.Get("/", handlers.ListLeads)
		r.Get("/mine", handlers.MyLeads)
		r.Get("/{leadID}", handlers.GetLead)
		r.Patch("/{leadID}/status", handlers.UpdateLeadStatus)
	})
}
