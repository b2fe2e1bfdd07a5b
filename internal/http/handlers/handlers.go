// handlers содержит HTTP-хендлеры sports-api: разбор query/path параметров,
// вызов сервиса и запись JSON-ответа. Ошибки выводятся через apierror.WriteError.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pribylovaa/go-sports-feed/internal/apierror"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/service"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// Service — сценарии, которые вызывают хендлеры. Реализуется *service.Service.
type Service interface {
	ListArticles(ctx context.Context, f service.ArticleFilter, opts models.ListOptions) (models.Page[models.Article], error)
	ListClusters(ctx context.Context, f service.ClusterFilter, opts models.ListOptions) (models.Page[models.Cluster], error)
	ClusterByID(ctx context.Context, id, locale string) (models.Cluster, error)
	ClusterStory(ctx context.Context, id string) (models.Story, error)
	TeamRoster(ctx context.Context, teamID int64, opts models.ListOptions) (models.Page[models.Player], error)
	Schedule(ctx context.Context, f service.ScheduleFilter, opts models.ListOptions) (models.Page[models.Game], error)
	Standings(ctx context.Context, season string, opts models.OffsetOptions) (models.OffsetPage[models.Standing], error)
	Injuries(ctx context.Context, f service.InjuryFilter, opts models.ListOptions) (models.Page[models.Injury], error)
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	svc Service
}

func New(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// fail классифицирует ошибку, пишет ответ и логирует итог.
// Отменённые клиентом запросы логируются уровнем Debug.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apierror.WriteError(w, err)

	level := slog.LevelInfo
	switch {
	case apierror.IsClientGone(err):
		level = slog.LevelDebug
	case e.Kind == apierror.UpstreamFailure:
		level = slog.LevelError
	case e.Kind == apierror.AuthFailure:
		level = slog.LevelWarn
	}

	log.From(r.Context()).LogAttrs(r.Context(), level, "request_failed",
		slog.String("kind", e.Kind.String()),
		slog.Int("status", e.Status),
		slog.String("err", err.Error()),
	)
}
