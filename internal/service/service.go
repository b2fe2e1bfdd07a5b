// service содержит сценарии эндпоинтов sports-api поверх движка агрегации.
//
// Каждый сценарий:
//   - нормализует лимит по конфигу;
//   - описывает первичную коллекцию, ключ сортировки и спецификации ссылок/переводов;
//   - переводит ошибки нижних слоёв в ошибки сервиса (ErrInvalidArgument/ErrNotFound)
//     с именем параметра, остальные прокидывает как есть.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-sports-feed/internal/aggregate"
	"github.com/pribylovaa/go-sports-feed/internal/config"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

var (
	// ErrNotFound — обязательная сущность отсутствует.
	// Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — некорректный параметр запроса (курсор, лимит, фильтр).
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid parameter")
)

// ParamError связывает ошибку сервиса с именем параметра запроса.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return e.Err.Error() + ": " + e.Param
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// InvalidParam — ошибка ErrInvalidArgument для параметра param.
func InvalidParam(param string) error {
	return &ParamError{Param: param, Err: ErrInvalidArgument}
}

// NotFoundParam — ошибка ErrNotFound для параметра param.
func NotFoundParam(param string) error {
	return &ParamError{Param: param, Err: ErrNotFound}
}

// Cache — необязательный кэш сериализованных результатов.
// Ошибки кэша не влияют на ответ: промах и отказ обрабатываются одинаково.
//
//go:generate mockgen -destination=../../mocks/mock_cache.go -package=mocks . Cache
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Service — сценарии эндпоинтов.
type Service struct {
	engine *aggregate.Engine
	cache  Cache
	cfg    config.Config
}

// New создает новый экземпляр Service. cache == nil отключает кэширование.
func New(st storage.Store, cache Cache, cfg config.Config) *Service {
	return &Service{
		engine: aggregate.New(st, cfg.Locale.Base),
		cache:  cache,
		cfg:    cfg,
	}
}

// normalizeLimit применяет серверные правила к limit:
//   - limit < 0 -> ErrInvalidArgument;
//   - limit == 0 -> cfg.LimitsConfig.Default;
//   - limit > max -> max.
func normalizeLimit(limit, def, max int) (int, error) {
	switch {
	case limit < 0:
		return 0, InvalidParam("limit")
	case limit == 0:
		limit = def
	}

	if max > 0 && limit > max {
		limit = max
	}

	return limit, nil
}

// fail логирует и переводит ошибку нижнего слоя в ошибку сервиса.
// param — имя параметра для ErrNotFound (идентификатор сущности).
func fail(ctx context.Context, op, event, param string, err error) error {
	lg := log.From(ctx)

	var pe *ParamError
	switch {
	case errors.As(err, &pe):
		lg.Warn(event+"_invalid_argument",
			slog.String("op", op),
			slog.String("param", pe.Param),
		)

		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, pagination.ErrFormat):
		lg.Warn(event+"_invalid_cursor",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return fmt.Errorf("%s: %w", op, InvalidParam("cursor"))
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn(event+"_not_found",
			slog.String("op", op),
			slog.String("param", param),
		)

		return fmt.Errorf("%s: %w", op, NotFoundParam(param))
	}

	lg.Error(event+"_storage_error",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)

	return fmt.Errorf("%s: %w", op, err)
}
