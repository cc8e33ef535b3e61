/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*   Employee management, balances, summaries
  /api/leaves/*      Leave record management
  /api/calendar      Month view of overlapping records
  /api/renewals/*    Renewal trigger and audit
  /api/scenarios/*   Demo scenarios (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Post("/{id}/balance", h.OverrideBalance)
			r.Get("/{id}/leaves", h.ListEmployeeLeaves)
			r.Get("/{id}/summary", h.GetSummary)
			r.Get("/{id}/summary.pdf", h.GetSummaryPDF)
		})

		// Leave record routes
		r.Route("/leaves", func(r chi.Router) {
			r.Get("/", h.ListLeaves)
			r.Post("/", h.CreateLeave)
			r.Put("/{id}", h.UpdateLeave)
			r.Delete("/{id}", h.DeleteLeave)
		})

		// Calendar view
		r.Get("/calendar", h.GetCalendar)

		// Renewal routes
		r.Route("/renewals", func(r chi.Router) {
			r.Post("/run", h.RunRenewals)
			r.Get("/runs", h.ListRenewalRuns)
		})

		// Scenario routes (dev/demo)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
