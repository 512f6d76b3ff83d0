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
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Logger:     Request logging
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/requests/*        Leave requests
  /api/overtimes/*       Overtime declarations
  /api/rightrenewals/*   Entitlement renewal windows
  /api/accounts/*        Collection periods and balances

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Leave request routes
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListRequests)
			r.Delete("/{id}", h.DeleteRequest)
		})

		// Overtime routes
		r.Route("/overtimes", func(r chi.Router) {
			r.Post("/", h.SaveOvertime)
			r.Get("/{id}", h.GetOvertime)
		})

		// Right renewal routes
		r.Get("/rightrenewals/{id}", h.GetRenewal)

		// Account routes
		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Post("/collections", h.SaveCollection)
			r.Get("/renewals/{renewalID}/balance", h.GetBalance)
		})
	})

	return r
}
