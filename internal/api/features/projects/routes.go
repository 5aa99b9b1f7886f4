// Package projects provides CRUD handlers for projects and their tasks
// and milestones.
package projects

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// SetupRoutes registers the project management routes.
func SetupRoutes(router chi.Router, store core.Store, logger *slog.Logger) {
	handlers := NewHandlers(store, logger)

	router.Route("/api/projects", func(r chi.Router) {
		r.Get("/", handlers.ListProjects)
		r.Post("/", handlers.CreateProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", handlers.GetProject)
			r.Patch("/status", handlers.UpdateProjectStatus)
			r.Delete("/", handlers.ArchiveProject)

			r.Get("/tasks", handlers.ListTasks)
			r.Post("/tasks", handlers.CreateTask)
			r.Get("/milestones", handlers.ListMilestones)
			r.Post("/milestones", handlers.CreateMilestone)
		})
	})

	router.Route("/api/tasks/{taskID}", func(r chi.Router) {
		r.Get("/", handlers.GetTask)
		r.Patch("/", handlers.UpdateTask)
		r.Delete("/", handlers.ArchiveTask)
	})

	router.Route("/api/milestones/{milestoneID}", func(r chi.Router) {
		r.Get("/", handlers.GetMilestone)
		r.Patch("/", handlers.UpdateMilestone)
		r.Delete("/", handlers.ArchiveMilestone)
	})
}
