// aggregate — движок курсорной пагинации и сборки ответов из нескольких выборок.
//
// Поток одного запроса:
//
//	Fetch (первичная выборка) -> ResolveReferences (пакетные ссылки)
//	                          -> ResolveTranslations (локализация с фолбэками)
//	                          -> Assemble (страница + следующий курсор)
//
// Ссылки и переводы независимы и выбираются параллельно (fan-out/fan-in).
// Ошибка первичной выборки прерывает запрос; ошибки вторичных выборок
// деградируют до «нет данных» и не валят страницу.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/go-sports-feed/internal/metrics"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// FetchSpec — одна ограниченная отсортированная выборка.
type FetchSpec struct {
	Collection string
	Columns    []string
	Filters    []storage.Filter
	SortKey    pagination.SortKey
	// After == nil -> первая страница.
	After pagination.Value
	Limit int
}

// Fetched — результат первичной выборки.
// Full == (len(Rows) == limit) — единственный сигнал для вычисления nextCursor.
type Fetched struct {
	Rows []storage.Row
	Full bool
}

// Fetch выполняет первичную выборку: фильтры -> строгий keyset-предикат -> сортировка по
// полному ключу -> limit. Ошибки хранилища возвращаются без ретраев.
func Fetch(ctx context.Context, st storage.Store, spec FetchSpec) (Fetched, error) {
	const op = "aggregate.Fetch"

	if err := spec.SortKey.Validate(); err != nil {
		return Fetched{}, fmt.Errorf("%s: %w", op, err)
	}
	if spec.Limit <= 0 {
		return Fetched{}, fmt.Errorf("%s: limit must be positive, got %d", op, spec.Limit)
	}

	q := storage.Query{
		Collection: spec.Collection,
		Columns:    spec.Columns,
		Filters:    spec.Filters,
		Order:      orderOf(spec.SortKey),
		Limit:      spec.Limit,
	}
	if spec.After != nil {
		if len(spec.After) != len(spec.SortKey.Fields) {
			return Fetched{}, fmt.Errorf("%s: cursor arity %d != sort key arity %d", op, len(spec.After), len(spec.SortKey.Fields))
		}
		q.After = &storage.Keyset{
			Fields: spec.SortKey.Names(),
			Values: []any(spec.After),
			Desc:   spec.SortKey.Desc,
		}
	}

	rows, err := observe(ctx, st, q, metrics.StagePrimary)
	if err != nil {
		return Fetched{}, fmt.Errorf("%s: %w", op, err)
	}

	return Fetched{Rows: rows, Full: len(rows) == spec.Limit}, nil
}

func orderOf(k pagination.SortKey) []storage.Order {
	out := make([]storage.Order, len(k.Fields))
	for i, f := range k.Fields {
		out[i] = storage.Order{Field: f.Name, Desc: k.Desc}
	}

	return out
}

// observe выполняет Select и пишет метрики выборки.
func observe(ctx context.Context, st storage.Store, q storage.Query, stage string) ([]storage.Row, error) {
	start := time.Now()
	rows, err := st.Select(ctx, q)
	metrics.FetchDuration.WithLabelValues(q.Collection, stage).Observe(time.Since(start).Seconds())
	metrics.FetchTotal.WithLabelValues(q.Collection, stage, metrics.Result(err)).Inc()

	return rows, err
}
