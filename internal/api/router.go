package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(instrument)

	// Public routes
	r.Get("/health", apiHandler.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", apiHandler.RegisterHandler)
		r.Post("/login", apiHandler.LoginHandler)
	})

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.JWTAuthMiddleware)

		r.Post("/chat/ai", apiHandler.ChatHandler)

		r.Route("/banks", func(r chi.Router) {
			r.Get("/user/{userID}", apiHandler.ListBanksHandler)
			r.Post("/", apiHandler.CreateBankHandler)
			r.Put("/{id}", apiHandler.UpdateBankHandler)
			r.Delete("/{id}", apiHandler.DeleteBankHandler)
		})

		r.Route("/finances", func(r chi.Router) {
			r.Get("/", apiHandler.ListFinancesHandler)
			r.Post("/", apiHandler.CreateFinanceHandler)
			r.Delete("/{id}", apiHandler.DeleteFinanceHandler)
		})
	})

	return r
}
