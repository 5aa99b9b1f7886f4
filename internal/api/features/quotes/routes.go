// Package quotes exposes the deck design and pricing pipeline over HTTP.
package quotes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/kolmo-labs/buildledger/internal/quote"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SetupRoutes registers the quoting routes.
func SetupRoutes(router chi.Router, store core.Store, book *quote.Book, logger *slog.Logger) {
	handlers := NewHandlers(store, book, logger)

	// Stateless estimate for the public configurator.
	router.Post("/api/quotes/estimate", handlers.Estimate)

	router.Route("/api/projects/{projectID}/quotes", func(r chi.Router) {
		r.Get("/", handlers.ListQuotes)
		r.Post("/", handlers.CreateQuote)
	})
}
