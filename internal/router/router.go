package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"playermarket-api/internal/handler"
	"playermarket-api/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	ListingHandler      *handler.ListingHandler
	BlacklistHandler    *handler.BlacklistHandler
	PlayerHandler       *handler.PlayerHandler
	ModeratorMiddleware func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Player-ID", "X-Moderator-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.ModeratorMiddleware != nil {
		r.Use(cfg.ModeratorMiddleware)
	}

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.ListingHandler != nil {
			r.Route("/listings", func(r chi.Router) {
				r.Get("/", cfg.ListingHandler.List)
				r.Post("/", cfg.ListingHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.ListingHandler.Get)
					r.Delete("/", cfg.ListingHandler.Remove)
					r.Post("/stock", cfg.ListingHandler.AddStock)
					r.Post("/purchase", cfg.ListingHandler.Purchase)
				})
			})
		}

		if cfg.BlacklistHandler != nil {
			r.Route("/blacklist", func(r chi.Router) {
				r.Get("/", cfg.BlacklistHandler.List)
				r.Post("/", cfg.BlacklistHandler.Add)
				r.Delete("/{item}", cfg.BlacklistHandler.Remove)
			})
		}

		if cfg.PlayerHandler != nil {
			r.Route("/players/{uuid}/name", func(r chi.Router) {
				r.Put("/", cfg.PlayerHandler.CacheName)
				r.Get("/", cfg.PlayerHandler.ResolveName)
			})
		}
	})

	return r
}
