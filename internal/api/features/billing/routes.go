// Package billing exposes the billing allocation validator over HTTP.
package billing

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	billingcore "github.com/kolmo-labs/buildledger/internal/billing"
)

// SetupRoutes registers the billing validation routes.
func SetupRoutes(router chi.Router, validator *billingcore.Validator, logger *slog.Logger) {
	handlers := NewHandlers(validator, logger)

	router.Route("/api/projects/{projectID}/billing-validation", func(r chi.Router) {
		r.Get("/", handlers.GetTotals)
		r.Post("/validate-task", handlers.ValidateTask)
		r.Post("/validate-milestone", handlers.ValidateMilestone)
	})
}
