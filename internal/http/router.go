// Package http собирает HTTP-роутер sports-api на chi.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/pribylovaa/go-sports-feed/internal/apierror"
	"github.com/pribylovaa/go-sports-feed/internal/http/handlers"
	"github.com/pribylovaa/go-sports-feed/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой, роуты регистрируются на корне.

	// CORSOrigins — разрешённые Origin; пустой список -> "*".
	CORSOrigins []string

	// RateLimit — запросов с одного IP за RateWindow; 0 отключает лимит.
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики по шаблону маршрута
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposedHeaders: []string{middleware.HeaderRequestID},
			MaxAge:         300,
		}),
	)
	if opts.RateLimit > 0 {
		root.Use(httprate.Limit(
			opts.RateLimit,
			opts.RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited),
		))
	}
	root.Use(middleware.AuthBearer()) // токен уходит в хранилище для политик доступа
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	root.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	root.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// news
	r.Get("/articles", h.ListArticles)
	r.Get("/clusters", h.ListClusters)
	r.Get("/clusters/{id}", h.GetCluster)
	r.Get("/clusters/{id}/story", h.GetClusterStory)

	// sports
	r.Get("/teams/{teamId}/roster", h.TeamRoster)
	r.Get("/schedule", h.Schedule)
	r.Get("/standings", h.Standings)
	r.Get("/injuries", h.Injuries)
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, "too many requests")
}

// writeError пишет ответ роутера (404/405/429) в формате apierror.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apierror.ErrorResponse{Error: msg})
}
