package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"

	"github.com/Dosada05/golf-association/handlers"
	"github.com/Dosada05/golf-association/middleware"
	"github.com/Dosada05/golf-association/repositories"
)

type Handlers struct {
	Event        *handlers.EventHandler
	Bracket      *handlers.BracketHandler
	Championship *handlers.ChampionshipHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// RateLimiter guards the HTTP API; nil disables limiting.
	RateLimiter *limiter.Limiter
	Profiles    repositories.ProfileRepository
	Logger      *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// websocket connections are long-lived and stay outside the limiter
	router.Get("/ws/events/{eventID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(middleware.RateLimit(opts.RateLimiter, opts.Logger))
		}
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", h.Event.GetPublicHandler)
			r.Get("/bracket", h.Bracket.GetDisplayHandler)
		})

		r.Route("/admin/events/{eventID}", func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.RequireEventAdmin(opts.Profiles, opts.Logger))

			r.Get("/", h.Event.GetHandler)
			r.Patch("/", h.Event.UpdateHandler)
			r.Get("/classification-history", h.Event.HistoryHandler)
			r.Post("/classification/rank", h.Event.RankHandler)
			r.Post("/points/recalculate", h.Event.RecalculatePointsHandler)
			r.Post("/championship/recompute", h.Championship.RecomputeHandler)

			r.Post("/bracket", h.Bracket.GenerateHandler)
			r.Route("/bracket/manual", func(r chi.Router) {
				r.Get("/", h.Bracket.GetManualHandler)
				r.Put("/", h.Bracket.SaveManualHandler)
				r.Delete("/", h.Bracket.ResetManualHandler)
				r.Patch("/slot", h.Bracket.UpdateSlotHandler)
			})
		})
	})
}
