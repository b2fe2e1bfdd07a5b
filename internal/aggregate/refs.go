package aggregate

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-sports-feed/internal/metrics"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// RefSpec описывает разрешение внешних ключей в одну коллекцию.
//
// Особенности:
//   - Fields — колонки исходных строк со ссылками (скаляр или массив); значения из всех
//     колонок объединяются, поэтому home_team_id и away_team_id дают одну выборку;
//   - Nested разрешаются по записям этой спецификации (цепочка article -> source -> outlet),
//     каждая ступень остаётся пакетной.
type RefSpec struct {
	// Name — ключ таблицы в References; по умолчанию Collection.
	Name       string
	Fields     []string
	Collection string
	// Key — колонка ключа в Collection; по умолчанию "id".
	Key     string
	Columns []string
	Nested  []RefSpec
}

func (s RefSpec) name() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Collection
}

func (s RefSpec) key() string {
	if s.Key != "" {
		return s.Key
	}
	return "id"
}

// Table — ключ (см. Key) -> запись ссылочной коллекции.
type Table map[string]storage.Row

// References — таблицы соответствий по именам спецификаций.
// Построены на одну страницу и содержат только id, встреченные на ней.
type References map[string]Table

// Lookup возвращает запись по внешнему ключу; отсутствие — штатный результат.
func (r References) Lookup(name string, fk any) (storage.Row, bool) {
	k, ok := Key(fk)
	if !ok {
		return nil, false
	}

	row, ok := r[name][k]
	return row, ok
}

// LookupAll разрешает массив внешних ключей, пропуская неразрешённые и сохраняя порядок.
func (r References) LookupAll(name string, fks any) []storage.Row {
	var out []storage.Row
	for _, fk := range values(fks) {
		if row, ok := r.Lookup(name, fk); ok {
			out = append(out, row)
		}
	}

	return out
}

// Harvest собирает различающиеся значения внешних ключей из колонок fields всех строк.
// Порядок — порядок первого появления.
func Harvest(rows []storage.Row, fields []string) []any {
	seen := make(map[string]struct{})
	var out []any

	for _, r := range rows {
		for _, f := range fields {
			for _, v := range values(r[f]) {
				k, ok := Key(v)
				if !ok {
					continue
				}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, v)
			}
		}
	}

	return out
}

// ResolveReferences строит таблицы соответствий для rows.
//
// Инварианты:
//   - на спецификацию — ровно одна IN-выборка по различающимся ключам (без N+1);
//   - при отсутствии ключей выборка не выполняется;
//   - ошибка выборки не фатальна: таблица остаётся пустой, вложенные спецификации пропускаются;
//   - независимые спецификации выбираются параллельно, результат собирается после join.
//
// degraded == true, если хотя бы одна выборка на любой ступени цепочки завершилась ошибкой.
func ResolveReferences(ctx context.Context, st storage.Store, rows []storage.Row, specs []RefSpec) (refs References, degraded bool) {
	out := make(References)
	if len(specs) == 0 {
		return out, false
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, spec := range specs {
		g.Go(func() error {
			resolved, failed := resolveOne(gctx, st, rows, spec)

			mu.Lock()
			for name, table := range resolved {
				out[name] = table
			}
			degraded = degraded || failed
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return out, degraded
}

func resolveOne(ctx context.Context, st storage.Store, rows []storage.Row, spec RefSpec) (References, bool) {
	const op = "aggregate.ResolveReferences"

	out := References{spec.name(): Table{}}

	ids := Harvest(rows, spec.Fields)
	if len(ids) == 0 {
		return out, false
	}

	found, err := observe(ctx, st, storage.Query{
		Collection: spec.Collection,
		Columns:    withColumn(spec.Columns, spec.key()),
		Filters:    []storage.Filter{storage.In(spec.key(), ids...)},
	}, metrics.StageReference)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues(metrics.StageReference).Inc()
		log.From(ctx).Warn("reference_resolve_failed",
			slog.String("op", op),
			slog.String("collection", spec.Collection),
			slog.Int("ids", len(ids)),
			slog.String("err", err.Error()),
		)

		return out, true
	}

	table := out[spec.name()]
	records := make([]storage.Row, 0, len(found))
	for _, r := range found {
		k, ok := Key(r[spec.key()])
		if !ok {
			continue
		}
		table[k] = r
		records = append(records, r)
	}

	var degraded bool
	if len(spec.Nested) > 0 {
		var nested References
		nested, degraded = ResolveReferences(ctx, st, records, spec.Nested)
		for name, t := range nested {
			out[name] = t
		}
	}

	return out, degraded
}

// withColumn гарантирует, что колонка ключа попадёт в проекцию.
func withColumn(cols []string, col string) []string {
	if len(cols) == 0 {
		return nil
	}
	for _, c := range cols {
		if c == col {
			return cols
		}
	}

	return append(append([]string(nil), cols...), col)
}
