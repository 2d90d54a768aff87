package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/mmeshcher/evolve-charging/internal/middleware"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware маркетплейса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(handlers.CORS(
		handlers.AllowedOrigins(h.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept-Encoding"}),
		handlers.AllowCredentials(),
	))
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	if h.serveMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
			r.With(h.authMiddleware.Middleware).Get("/me", h.Me)
		})

		r.Route("/stations", func(r chi.Router) {
			r.Get("/", h.ListStations)
			r.Get("/{id}", h.GetStation)
			r.Get("/{id}/wait", h.GetWaitTime)
			r.With(
				h.authMiddleware.Middleware,
				custommiddleware.RequireRole(model.RoleHost, model.RoleAdmin),
			).Get("/{id}/bookings", h.ListStationBookings)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/bookings", h.CreateBooking)
			r.Get("/bookings", h.ListBookings)
			r.Get("/bookings/{id}", h.GetBooking)
			r.Post("/bookings/{id}/payment", h.ProcessPayment)

			r.Get("/user/eco-points", h.GetEcoPoints)

			r.Route("/host", func(r chi.Router) {
				r.Use(custommiddleware.RequireRole(model.RoleHost))

				r.Post("/stations", h.CreateStation)
				r.Get("/stations", h.ListHostStations)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(custommiddleware.RequireRole(model.RoleAdmin))

				r.Get("/stats", h.GetAdminStats)
				r.Get("/trends/bookings", h.GetBookingTrends)
				r.Get("/trends/revenue", h.GetRevenueTrends)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
