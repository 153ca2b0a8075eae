package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salescoach-api/internal/coach"
	httpmiddleware "github.com/wolfman30/salescoach-api/internal/http/middleware"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Coach              *coach.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Now backs generated session IDs; nil uses the wall clock.
	Now func() time.Time
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()
	h := cfg.Coach

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(httpmiddleware.SessionID(cfg.Now))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Get("/summary", h.ChatSummary)
	r.Post("/summary", h.ChatSummary)

	r.Route("/api", func(api chi.Router) {
		api.Get("/status", h.Status)

		api.Route("/chat", func(r chi.Router) {
			r.Post("/send", h.ChatSend)
			r.Get("/messages", h.ChatMessages)
			r.Post("/clear", h.ChatClear)
			r.Get("/summary", h.ChatSummary)
			r.Post("/summary", h.ChatSummary)
		})

		api.Route("/roleplay", func(r chi.Router) {
			r.Post("/start", h.RoleplayStart)
			r.Post("/respond", h.RoleplayRespond)
			r.Post("/eq-analysis", h.RoleplayEQ)
			r.Post("/end", h.RoleplayEnd)
			r.Get("/session", h.RoleplaySession)
		})

		api.Get("/dashboard/insights", h.DashboardInsights)
		api.Get("/daily-focus", h.DailyFocus)

		api.Route("/sql", func(r chi.Router) {
			r.Post("/translate", h.SQLTranslate)
			r.Get("/history", h.SQLHistory)
		})

		api.Post("/knowledge/ask", h.KnowledgeAsk)
		api.Post("/frameworks/advice", h.FrameworksAdvice)
		api.Post("/heuristics/customize", h.HeuristicsCustomize)
		api.Post("/modules/exercise", h.ModulesExercise)
		api.Get("/coach/prompts", h.CoachPrompts)
		api.Post("/coach/prompts", h.CoachPrompts)
	})

	return r
}
