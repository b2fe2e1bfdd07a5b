package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/go-sports-feed/internal/metrics"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// Engine связывает хранилище и базовую локаль; одинаков для всех эндпоинтов.
type Engine struct {
	store      storage.Store
	baseLocale string
}

// New создаёт движок агрегации.
func New(st storage.Store, baseLocale string) *Engine {
	return &Engine{store: st, baseLocale: baseLocale}
}

// Builder превращает первичную строку в элемент ответа, используя разрешённые ссылки и переводы.
type Builder[T any] func(row storage.Row, refs References, tr Translations) (T, error)

// Source описывает первичную коллекцию и её обогащение.
type Source struct {
	Collection string
	Columns    []string
	Filters    []storage.Filter
	// IDColumn — колонка первичного ключа; по умолчанию "id".
	IDColumn     string
	Refs         []RefSpec
	Translations *TranslationSpec
	// Locale — запрошенная локаль; пустая == базовая.
	Locale string
}

func (s Source) idColumn() string {
	if s.IDColumn != "" {
		return s.IDColumn
	}
	return "id"
}

// List выполняет курсорную выборку страницы: decode cursor -> Fetch -> ссылки ∥ переводы -> Assemble.
//
// Ошибки:
//   - битый курсор — ошибка, удовлетворяющая errors.Is(err, pagination.ErrFormat);
//   - ошибка первичной выборки — как есть, обёрнутая op;
//   - ошибки вторичных выборок не возвращаются (деградация).
func List[T any](ctx context.Context, e *Engine, src Source, key pagination.SortKey, opts models.ListOptions, build Builder[T]) (models.Page[T], error) {
	const op = "aggregate.List"

	var after pagination.Value
	if opts.Cursor != "" {
		v, err := key.Decode(opts.Cursor)
		if err != nil {
			return models.Page[T]{}, fmt.Errorf("%s: %w", op, err)
		}
		after = v
	}

	fetched, err := Fetch(ctx, e.store, FetchSpec{
		Collection: src.Collection,
		Columns:    src.Columns,
		Filters:    src.Filters,
		SortKey:    key,
		After:      after,
		Limit:      opts.Limit,
	})
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("%s: %w", op, err)
	}

	refs, tr, degraded := e.enrich(ctx, src, fetched.Rows)

	page, err := Assemble(fetched, key, func(r storage.Row) (T, error) {
		return build(r, refs, tr)
	})
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	page.Degraded = degraded

	return page, nil
}

// ListOffset выполняет offset-выборку страницы page (с 1) размером pageSize.
// Подсчёт и выборка страницы — обе первичные: ошибка любой прерывает запрос.
func ListOffset[T any](ctx context.Context, e *Engine, src Source, order []storage.Order, opts models.OffsetOptions, build Builder[T]) (models.OffsetPage[T], error) {
	const op = "aggregate.ListOffset"

	if opts.Page < 1 || opts.PageSize < 1 {
		return models.OffsetPage[T]{}, fmt.Errorf("%s: page and page size must be positive", op)
	}

	var (
		rows  []storage.Row
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.store.Count(gctx, src.Collection, src.Filters)
		total = n
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = observe(gctx, e.store, storage.Query{
			Collection: src.Collection,
			Columns:    src.Columns,
			Filters:    src.Filters,
			Order:      order,
			Limit:      opts.PageSize,
			Offset:     (opts.Page - 1) * opts.PageSize,
		}, metrics.StagePrimary)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.OffsetPage[T]{}, fmt.Errorf("%s: %w", op, err)
	}

	refs, tr, degraded := e.enrich(ctx, src, rows)

	page, err := AssembleOffset(rows, opts.Page, opts.PageSize, total, func(r storage.Row) (T, error) {
		return build(r, refs, tr)
	})
	if err != nil {
		return models.OffsetPage[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	page.Degraded = degraded

	return page, nil
}

// Get разрешает одну обязательную запись по первичному ключу.
// Отсутствие записи — storage.ErrNotFound.
func Get[T any](ctx context.Context, e *Engine, src Source, id any, build Builder[T]) (T, error) {
	const op = "aggregate.Get"

	var zero T

	row, err := e.one(ctx, src, id)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	rows := []storage.Row{row}
	refs, tr, _ := e.enrich(ctx, src, rows)

	item, err := build(row, refs, tr)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// Story собирает многоязычное представление одной записи.
func Story(ctx context.Context, e *Engine, src Source, id any) (models.Story, error) {
	const op = "aggregate.Story"

	if src.Translations == nil {
		return models.Story{}, fmt.Errorf("%s: source %s has no translations", op, src.Collection)
	}

	row, err := e.one(ctx, src, id)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	key, err := ID(row, src.idColumn())
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, _ := Time(row, "updated_at")
	c := Content{ID: row[src.idColumn()], Base: bundleOf(row, e.baseLocale)}

	story := models.Story{
		ID:           key,
		BaseLocale:   e.baseLocale,
		Base:         c.Base,
		Translations: ResolveStory(ctx, e.store, *src.Translations, c, e.baseLocale),
	}
	if !updated.IsZero() {
		story.UpdatedAt = updated.Format(time.RFC3339)
	}

	return story, nil
}

func (e *Engine) one(ctx context.Context, src Source, id any) (storage.Row, error) {
	rows, err := observe(ctx, e.store, storage.Query{
		Collection: src.Collection,
		Columns:    src.Columns,
		Filters:    append([]storage.Filter{storage.Eq(src.idColumn(), id)}, src.Filters...),
		Limit:      1,
	}, metrics.StagePrimary)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %v: %w", src.Collection, id, storage.ErrNotFound)
	}

	return rows[0], nil
}

// enrich параллельно разрешает ссылки и переводы и дожидается обоих (fan-out/fan-in).
// Третий результат сообщает, что хотя бы одна вторичная выборка деградировала.
func (e *Engine) enrich(ctx context.Context, src Source, rows []storage.Row) (References, Translations, bool) {
	var (
		refs         References
		tr           Translations
		refsDegraded bool
		trDegraded   bool
	)

	// Записи о деградации помечаются первичной коллекцией.
	ctx = log.With(ctx, slog.String("source", src.Collection))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refs, refsDegraded = ResolveReferences(gctx, e.store, rows, src.Refs)
		return nil
	})
	g.Go(func() error {
		if src.Translations == nil {
			tr = Translations{}
			return nil
		}
		tr, trDegraded = ResolveTranslations(gctx, e.store, *src.Translations, BaseContent(rows, src.idColumn(), e.baseLocale), src.Locale, e.baseLocale)
		return nil
	})
	_ = g.Wait()

	return refs, tr, refsDegraded || trDegraded
}
