/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Warehouse web console access

ROUTE GROUPS:
  /api/po/*     Purchase-order confirmation intake
  /api/rma/*    Return-merchandise-authorization intake
  /api/io/*     Inter-org shipment receipt intake

SECURITY NOTE:
  No authentication middleware; the service sits on the warehouse
  network behind the integration gateway.

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
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/po", func(r chi.Router) {
			r.Post("/confirm", h.ConfirmPO)
			r.Get("/confirm", h.ListPO)
		})

		r.Route("/rma", func(r chi.Router) {
			r.Post("/confirm", h.ConfirmRMA)
			r.Get("/confirm", h.ListRMA)
		})

		r.Route("/io", func(r chi.Router) {
			r.Post("/confirm", h.ConfirmIO)
			r.Get("/confirm", h.ListIO)
		})
	})

	return r
}
