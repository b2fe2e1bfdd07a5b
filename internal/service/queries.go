package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-sports-feed/internal/aggregate"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// ArticleFilter — фильтры ленты статей. TeamID == 0 — без фильтра;
// пустой Status -> "published"; пустой Locale -> базовая локаль.
type ArticleFilter struct {
	TeamID int64
	Status string
	Locale string
}

// ClusterFilter — фильтры ленты кластеров.
type ClusterFilter struct {
	Status string
	Locale string
}

// ScheduleFilter — фильтры расписания. TeamID совпадает с хозяином или гостем.
type ScheduleFilter struct {
	TeamID int64
	Season string
}

// InjuryFilter — фильтры списка травм.
type InjuryFilter struct {
	TeamID int64
}

// list — общий курсорный сценарий: нормализация limit -> aggregate.List -> маппинг ошибок.
func list[T any](ctx context.Context, s *Service, op, event string, src aggregate.Source, key pagination.SortKey, opts models.ListOptions, build aggregate.Builder[T]) (models.Page[T], error) {
	lg := log.From(ctx)
	lg.Info(event+"_request",
		slog.String("op", op),
		slog.Int("limit", opts.Limit),
		slog.Bool("has_cursor", opts.Cursor != ""),
		slog.String("locale", src.Locale),
	)

	limit, err := normalizeLimit(opts.Limit, s.cfg.LimitsConfig.Default, s.cfg.LimitsConfig.Max)
	if err != nil {
		return models.Page[T]{}, fail(ctx, op, event, "limit", err)
	}
	opts.Limit = limit

	page, err := aggregate.List(ctx, s.engine, src, key, opts, build)
	if err != nil {
		return models.Page[T]{}, fail(ctx, op, event, "", err)
	}

	lg.Info(event+"_ok",
		slog.String("op", op),
		slog.Int("items", len(page.Data)),
		slog.Bool("has_next_page", page.NextCursor != nil),
	)

	return page, nil
}

// ListArticles возвращает страницу статей (published_at desc, id desc).
func (s *Service) ListArticles(ctx context.Context, f ArticleFilter, opts models.ListOptions) (models.Page[models.Article], error) {
	const op = "service.queries.ListArticles"

	status := f.Status
	if status == "" {
		status = "published"
	}

	src := aggregate.Source{
		Collection:   "articles",
		Filters:      []storage.Filter{storage.Eq("status", status)},
		Refs:         []aggregate.RefSpec{teamsBy("team_id")},
		Translations: articleTranslations,
		Locale:       f.Locale,
	}
	if f.TeamID != 0 {
		src.Filters = append(src.Filters, storage.Eq("team_id", f.TeamID))
	}

	return list(ctx, s, op, "list_articles", src, articleKey, opts, buildArticle)
}

// ListClusters возвращает страницу кластеров (updated_at desc, id desc) с исходными статьями и изданиями.
func (s *Service) ListClusters(ctx context.Context, f ClusterFilter, opts models.ListOptions) (models.Page[models.Cluster], error) {
	const op = "service.queries.ListClusters"

	return list(ctx, s, op, "list_clusters", clusterSource(f.Status, f.Locale), clusterKey, opts, buildCluster)
}

// ClusterByID возвращает один кластер.
//
// Ошибки:
//   - ErrInvalidArgument — id не UUID;
//   - ErrNotFound — кластера нет;
//   - прочие ошибки стораджа — обёрнутые и прокинуты наверх.
func (s *Service) ClusterByID(ctx context.Context, id, locale string) (models.Cluster, error) {
	const op = "service.queries.ClusterByID"

	lg := log.From(ctx)
	lg.Info("cluster_by_id_request",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("locale", locale),
	)

	uid, err := uuid.Parse(id)
	if err != nil {
		return models.Cluster{}, fail(ctx, op, "cluster_by_id", "id", InvalidParam("id"))
	}

	c, err := aggregate.Get(ctx, s.engine, clusterSource("", locale), uid, buildCluster)
	if err != nil {
		return models.Cluster{}, fail(ctx, op, "cluster_by_id", "id", err)
	}

	lg.Info("cluster_by_id_ok",
		slog.String("op", op),
		slog.String("id", id),
		slog.Int("sources", len(c.Sources)),
	)

	return c, nil
}

// ClusterStory возвращает многоязычное представление кластера.
func (s *Service) ClusterStory(ctx context.Context, id string) (models.Story, error) {
	const op = "service.queries.ClusterStory"

	lg := log.From(ctx)
	lg.Info("cluster_story_request",
		slog.String("op", op),
		slog.String("id", id),
	)

	uid, err := uuid.Parse(id)
	if err != nil {
		return models.Story{}, fail(ctx, op, "cluster_story", "id", InvalidParam("id"))
	}

	story, err := aggregate.Story(ctx, s.engine, clusterSource("", ""), uid)
	if err != nil {
		return models.Story{}, fail(ctx, op, "cluster_story", "id", err)
	}

	lg.Info("cluster_story_ok",
		slog.String("op", op),
		slog.String("id", id),
		slog.Int("languages", len(story.Translations)+1),
	)

	return story, nil
}

func clusterSource(status, locale string) aggregate.Source {
	src := aggregate.Source{
		Collection:   "story_clusters",
		Refs:         []aggregate.RefSpec{clusterSources},
		Translations: clusterTranslations,
		Locale:       locale,
	}
	if status != "" {
		src.Filters = []storage.Filter{storage.Eq("status", status)}
	}

	return src
}

// TeamRoster возвращает состав команды (id asc).
func (s *Service) TeamRoster(ctx context.Context, teamID int64, opts models.ListOptions) (models.Page[models.Player], error) {
	const op = "service.queries.TeamRoster"

	if teamID <= 0 {
		return models.Page[models.Player]{}, fail(ctx, op, "team_roster", "teamId", InvalidParam("teamId"))
	}

	src := aggregate.Source{
		Collection: "players",
		Filters:    []storage.Filter{storage.Eq("team_id", teamID)},
		Refs:       []aggregate.RefSpec{teamsBy("team_id")},
	}

	return list(ctx, s, op, "team_roster", src, rosterKey, opts, buildPlayer)
}

// Schedule возвращает расписание матчей (starts_at asc, id asc).
// Хозяева и гости разрешаются одной выборкой команд.
func (s *Service) Schedule(ctx context.Context, f ScheduleFilter, opts models.ListOptions) (models.Page[models.Game], error) {
	const op = "service.queries.Schedule"

	src := aggregate.Source{
		Collection: "games",
		Refs:       []aggregate.RefSpec{teamsBy("home_team_id", "away_team_id")},
	}
	if f.TeamID != 0 {
		src.Filters = append(src.Filters, storage.Has("team_ids", f.TeamID))
	}
	if f.Season != "" {
		src.Filters = append(src.Filters, storage.Eq("season", f.Season))
	}

	return list(ctx, s, op, "schedule", src, scheduleKey, opts, buildGame)
}

// Injuries возвращает список травм (reported_at desc, id desc).
// Игроки и команды разрешаются параллельно.
func (s *Service) Injuries(ctx context.Context, f InjuryFilter, opts models.ListOptions) (models.Page[models.Injury], error) {
	const op = "service.queries.Injuries"

	src := aggregate.Source{
		Collection: "injuries",
		Refs: []aggregate.RefSpec{
			{
				Name:       refPlayers,
				Fields:     []string{"player_id"},
				Collection: "players",
				Columns:    []string{"id", "name", "position", "jersey_number"},
			},
			teamsBy("team_id"),
		},
	}
	if f.TeamID != 0 {
		src.Filters = append(src.Filters, storage.Eq("team_id", f.TeamID))
	}

	return list(ctx, s, op, "injuries", src, injuryKey, opts, buildInjury)
}
