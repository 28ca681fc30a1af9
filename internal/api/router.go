/**
 * @description
 * This file sets up the HTTP router for the entitlement-service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps the routes to their
 * corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the entitlement-service
// routes. paymentLimiter may be nil when Redis is not configured.
func NewRouter(h *Handler, jwksURL string, paymentLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Entitlement service is healthy"))
	})

	// Protected routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Post("/check-subscription", h.handleCheckSubscription)
		r.Post("/entitlements", h.handleEntitlements)

		// Payment routes additionally go through the rate limiter.
		r.Group(func(r chi.Router) {
			r.Use(paymentLimiter.Middleware)

			r.Post("/create-razorpay-order", h.handleCreateSubscriptionOrder)
			r.Post("/create-pay-per-view-order", h.handleCreatePayPerViewOrder)
			r.Post("/verify-razorpay-payment", h.handleVerifySubscriptionPayment)
			r.Post("/verify-pay-per-view-payment", h.handleVerifyPayPerViewPayment)
		})
	})

	return r
}
