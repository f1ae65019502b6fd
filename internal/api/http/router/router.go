// Package router assembles the chi route tree of the vault API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/passvault/passvault-server/internal/api/http/handler"
	"github.com/passvault/passvault-server/internal/api/http/middleware"
	"github.com/passvault/passvault-server/internal/logger"
)

// Handlers groups the handler set the router mounts.
type Handlers struct {
	Auth         *handler.Auth
	Record       *handler.Record
	Subscription *handler.Subscription
	Health       *handler.Health
}

// New builds the route tree. Everything under /api/records and the
// subscription status endpoint require a session token; registration, login,
// billing events and health do not.
func New(h Handlers, auth *middleware.Auth, l *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(l))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Post("/billing/events", h.Subscription.ApplyEvent)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", h.Record.List)
				r.Post("/", h.Record.Create)
				r.Get("/{id}", h.Record.Get)
				r.Put("/{id}", h.Record.Update)
				r.Delete("/{id}", h.Record.Delete)
			})

			r.Get("/subscription/status", h.Subscription.Status)
		})
	})

	return r
}
