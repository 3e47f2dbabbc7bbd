package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"betsafe-ai/internal/handlers"
	"betsafe-ai/internal/middleware"
)

func New(
	sessions *middleware.Sessions,
	queryLimiter *middleware.RateLimiter,
	pageHandler *handlers.PageHandler,
	apiHandler *handlers.APIHandler,
	static http.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/static/*", static)

	// ──── Page Routes ────
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Get("/", pageHandler.Index)
		r.Post("/credential", pageHandler.SaveCredential)
		r.Post("/credential/clear", pageHandler.ClearCredential)
		r.Post("/query", pageHandler.Query)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(sessions.Middleware)

		// ──── Session Routes ────
		r.Route("/session", func(r chi.Router) {
			r.Get("/", apiHandler.GetSession)
			r.Put("/credential", apiHandler.SetCredential)
			r.Delete("/credential", apiHandler.ClearCredential)
		})

		r.Post("/arbitrage", apiHandler.Arbitrage)

		// ──── Query Routes ────
		r.Group(func(r chi.Router) {
			r.Use(queryLimiter.Middleware)
			r.Post("/query", apiHandler.Query)
		})
	})

	return r
}
