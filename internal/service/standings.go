package service

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/pribylovaa/go-sports-feed/internal/aggregate"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// Standings возвращает offset-страницу турнирной таблицы сезона (rank asc, id asc).
//
// Особенности:
//   - season обязателен -> иначе ErrInvalidArgument("season");
//   - page <= 0 -> 1, page_size по правилам normalizeLimit с верхней границей limits.offset_max;
//   - результат кэшируется по (season, page, page_size); кэш рекомендательный,
//     его ошибки только логируются;
//   - деградированная страница (не разрешились команды) отдаётся, но не кэшируется;
//   - запрос с bearer-токеном идёт мимо кэша: политики доступа хранилища могут
//     дать другой набор строк, а ключ не зависит от вызывающего.
func (s *Service) Standings(ctx context.Context, season string, opts models.OffsetOptions) (models.OffsetPage[models.Standing], error) {
	const op = "service.standings.Standings"

	lg := log.From(ctx)
	lg.Info("standings_request",
		slog.String("op", op),
		slog.String("season", season),
		slog.Int("page", opts.Page),
		slog.Int("page_size", opts.PageSize),
	)

	if season == "" {
		return models.OffsetPage[models.Standing]{}, fail(ctx, op, "standings", "season", InvalidParam("season"))
	}
	if opts.Page < 0 {
		return models.OffsetPage[models.Standing]{}, fail(ctx, op, "standings", "page", InvalidParam("page"))
	}
	if opts.Page == 0 {
		opts.Page = 1
	}

	size, err := normalizeLimit(opts.PageSize, s.cfg.LimitsConfig.Default, s.cfg.LimitsConfig.OffsetMax)
	if err != nil {
		return models.OffsetPage[models.Standing]{}, fail(ctx, op, "standings", "page_size", InvalidParam("page_size"))
	}
	opts.PageSize = size

	key := standingsKey(season, opts)
	if page, ok := s.cachedStandings(ctx, key); ok {
		lg.Info("standings_cache_hit",
			slog.String("op", op),
			slog.String("key", key),
		)

		return page, nil
	}

	src := aggregate.Source{
		Collection: "standings",
		Filters:    []storage.Filter{storage.Eq("season", season)},
		Refs:       []aggregate.RefSpec{teamsBy("team_id")},
	}

	page, err := aggregate.ListOffset(ctx, s.engine, src, standingsOrder, opts, buildStanding)
	if err != nil {
		return models.OffsetPage[models.Standing]{}, fail(ctx, op, "standings", "season", err)
	}

	if !page.Degraded {
		s.storeStandings(ctx, key, page)
	}

	lg.Info("standings_ok",
		slog.String("op", op),
		slog.Int("items", len(page.Data)),
		slog.Int("total_pages", page.TotalPages),
		slog.Bool("degraded", page.Degraded),
	)

	return page, nil
}

func standingsKey(season string, opts models.OffsetOptions) string {
	return fmt.Sprintf("standings:%s:%d:%d", season, opts.Page, opts.PageSize)
}

// cacheable: кэш общий для всех анонимных вызывающих.
func (s *Service) cacheable(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	_, scoped := storage.AccessToken(ctx)
	return !scoped
}

func (s *Service) cachedStandings(ctx context.Context, key string) (models.OffsetPage[models.Standing], bool) {
	if !s.cacheable(ctx) {
		return models.OffsetPage[models.Standing]{}, false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.From(ctx).Warn("standings_cache_get_failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return models.OffsetPage[models.Standing]{}, false
	}
	if !ok {
		return models.OffsetPage[models.Standing]{}, false
	}

	var page models.OffsetPage[models.Standing]
	if err := json.Unmarshal(raw, &page); err != nil {
		log.From(ctx).Warn("standings_cache_decode_failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return models.OffsetPage[models.Standing]{}, false
	}

	return page, true
}

func (s *Service) storeStandings(ctx context.Context, key string, page models.OffsetPage[models.Standing]) {
	if !s.cacheable(ctx) {
		return
	}

	raw, err := json.Marshal(page)
	if err == nil {
		err = s.cache.Set(ctx, key, raw)
	}
	if err != nil {
		log.From(ctx).Warn("standings_cache_set_failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}
