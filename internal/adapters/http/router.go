package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gradlink/accounts-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for account and subscription
// use-cases. Keeping only the application dependency here preserves clean
// adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers HTTP routes and the middleware stack. Centralizing
// routes here keeps auth and error behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/accounts/v1", func(r chi.Router) {
		r.Post("/signup", handler.signup)
		r.Post("/signup/admin", handler.adminSignup)
		r.Post("/signup/event", handler.eventSignup)
		r.Post("/login", handler.login)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/subscriptions/activate", handler.activateSubscription)
			r.Post("/subscriptions/{subscription_id}/cancel", handler.cancelSubscription)
			r.Get("/subscriptions", handler.listSubscriptions)
			r.Get("/payments", handler.listPayments)
		})
	})

	return r
}
