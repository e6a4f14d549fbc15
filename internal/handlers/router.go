package handlers

import (
	"net/http"

	customMiddleware "feedback-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	Auth           *AuthHandler
	Feedback       *FeedbackHandler
	Admin          *AdminHandler
	Metrics        http.Handler
	AllowedOrigins []string
	// AccessLog enables chi's request logger.
	AccessLog bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "feedback-backend"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.SessionToken)

		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/admin/login", cfg.Auth.AdminLogin)
		r.Post("/auth/logout", cfg.Auth.Logout)

		r.Post("/feedback", cfg.Feedback.SubmitFeedback)
		r.Get("/feedback", cfg.Admin.ListFeedback)
		r.Get("/admin/stats", cfg.Admin.GetStats)
	})

	return r
}
