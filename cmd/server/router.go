package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/relia-oss/relia-api/internal/api"
	apiMiddleware "github.com/relia-oss/relia-api/internal/api/middleware"
	"github.com/relia-oss/relia-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.taskQueue, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Get("/tasks/{id}/result", taskHandler.GetTaskResult)
			r.Post("/tasks/{id}/cancel", taskHandler.CancelTask)
		})
	})

	// Health check endpoint with aggregate task counts.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
			"status": "ok",
			"tasks":  app.taskQueue.Counts(),
		})
	})

	return r
}
