// Package router wires the API feature routes onto a chi router.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	billingFeature "github.com/kolmo-labs/buildledger/internal/api/features/billing"
	leadsFeature "github.com/kolmo-labs/buildledger/internal/api/features/leads"
	projectsFeature "github.com/kolmo-labs/buildledger/internal/api/features/projects"
	quotesFeature "github.com/kolmo-labs/buildledger/internal/api/features/quotes"
	"github.com/kolmo-labs/buildledger/internal/billing"
	"github.com/kolmo-labs/buildledger/internal/quote"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SetupRoutes configures all API routes.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	validator *billing.Validator,
	book *quote.Book,
	sessionStore sessions.Store,
	logger *slog.Logger,
) {
	projectsFeature.SetupRoutes(router, store, logger)
	billingFeature.SetupRoutes(router, validator, logger)
	leadsFeature.SetupRoutes(router, store, sessionStore, logger)
	quotesFeature.SetupRoutes(router, store, book, logger)
}
