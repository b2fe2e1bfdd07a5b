package aggregate

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-sports-feed/internal/metrics"
	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

// Колонки локализуемого контента — одинаковые в первичных коллекциях и в коллекциях переводов.
const (
	ColHeadline = "headline"
	ColSummary  = "summary"
	ColContent  = "content"
)

// TranslationSpec описывает коллекцию переопределений по локалям.
type TranslationSpec struct {
	Collection string
	// ForeignKey — колонка со ссылкой на первичную запись (article_id, cluster_id).
	ForeignKey string
	// LocaleColumn — колонка кода локали; по умолчанию "language_code".
	LocaleColumn string
}

func (s TranslationSpec) localeColumn() string {
	if s.LocaleColumn != "" {
		return s.LocaleColumn
	}
	return "language_code"
}

// Content — базовый контент первичной записи.
type Content struct {
	ID   any
	Base models.Bundle
}

// BaseContent извлекает базовый контент из первичных строк по колонке idCol.
func BaseContent(rows []storage.Row, idCol, baseLocale string) []Content {
	out := make([]Content, 0, len(rows))
	for _, r := range rows {
		out = append(out, Content{ID: r[idCol], Base: bundleOf(r, baseLocale)})
	}

	return out
}

func bundleOf(r storage.Row, locale string) models.Bundle {
	h, _ := r[ColHeadline].(string)
	s, _ := r[ColSummary].(string)
	c, _ := r[ColContent].(string)

	return models.Bundle{Headline: h, Summary: s, Content: c, Locale: locale}
}

// Translations — ключ первичной записи (см. Key) -> локализованный контент.
type Translations map[string]models.Bundle

// For возвращает контент записи; для неизвестного id — пустой Bundle и false.
func (t Translations) For(id any) (models.Bundle, bool) {
	k, ok := Key(id)
	if !ok {
		return models.Bundle{}, false
	}

	b, ok := t[k]
	return b, ok
}

// ResolveTranslations применяет цепочку фолбэков locale -> baseLocale.
//
// Инварианты:
//   - locale == baseLocale: базовый контент без вторичной выборки;
//   - иначе одна пакетная выборка по (locale, id IN ...);
//   - каждое поле независимо: пустое или NULL значение перевода заменяется базовым;
//   - ошибка выборки деградирует до базового контента с Fallback == true;
//   - коды локалей сравниваются как есть, с учётом регистра.
//
// degraded == true, если выборка переводов завершилась ошибкой.
func ResolveTranslations(ctx context.Context, st storage.Store, spec TranslationSpec, content []Content, locale, baseLocale string) (tr Translations, degraded bool) {
	const op = "aggregate.ResolveTranslations"

	out := make(Translations, len(content))
	if locale == "" || locale == baseLocale {
		for _, c := range content {
			if k, ok := Key(c.ID); ok {
				b := c.Base
				b.Locale = baseLocale
				out[k] = b
			}
		}

		return out, false
	}

	ids := make([]any, 0, len(content))
	for _, c := range content {
		if _, ok := Key(c.ID); ok {
			ids = append(ids, c.ID)
		}
	}

	overrides := make(map[string]storage.Row, len(ids))
	if len(ids) > 0 {
		rows, err := observe(ctx, st, storage.Query{
			Collection: spec.Collection,
			Filters: []storage.Filter{
				storage.Eq(spec.localeColumn(), locale),
				storage.In(spec.ForeignKey, ids...),
			},
		}, metrics.StageTranslation)
		if err != nil {
			metrics.DegradedTotal.WithLabelValues(metrics.StageTranslation).Inc()
			log.From(ctx).Warn("translation_resolve_failed",
				slog.String("op", op),
				slog.String("collection", spec.Collection),
				slog.String("locale", locale),
				slog.String("err", err.Error()),
			)
			degraded = true
		}

		for _, r := range rows {
			if k, ok := Key(r[spec.ForeignKey]); ok {
				overrides[k] = r
			}
		}
	}

	for _, c := range content {
		k, ok := Key(c.ID)
		if !ok {
			continue
		}
		out[k] = Localize(c.Base, overrides[k], locale, baseLocale)
	}

	return out, degraded
}

// Localize накладывает строку перевода на базовый контент поле за полем.
// row == nil — перевода нет, результат — базовый контент с Fallback == true.
func Localize(base models.Bundle, row storage.Row, locale, baseLocale string) models.Bundle {
	out := base
	out.Locale = baseLocale
	out.Fallback = locale != baseLocale

	if row == nil {
		return out
	}

	out.Locale = locale
	out.Fallback = false

	pick := func(col string, baseVal string) string {
		if v, ok := row[col].(string); ok && v != "" {
			return v
		}
		out.Fallback = true
		return baseVal
	}

	out.Headline = pick(ColHeadline, base.Headline)
	out.Summary = pick(ColSummary, base.Summary)
	out.Content = pick(ColContent, base.Content)

	return out
}

// ResolveStory собирает многоязычное представление одной записи: все строки переводов,
// каждая с пофилдовым фолбэком на базовый контент. Ошибка выборки деградирует до истории
// без переводов.
func ResolveStory(ctx context.Context, st storage.Store, spec TranslationSpec, c Content, baseLocale string) map[string]models.Bundle {
	const op = "aggregate.ResolveStory"

	out := make(map[string]models.Bundle)

	rows, err := observe(ctx, st, storage.Query{
		Collection: spec.Collection,
		Filters:    []storage.Filter{storage.Eq(spec.ForeignKey, c.ID)},
		Order:      []storage.Order{{Field: spec.localeColumn()}},
	}, metrics.StageTranslation)
	if err != nil {
		metrics.DegradedTotal.WithLabelValues(metrics.StageTranslation).Inc()
		log.From(ctx).Warn("story_translations_failed",
			slog.String("op", op),
			slog.String("collection", spec.Collection),
			slog.String("err", err.Error()),
		)

		return out
	}

	for _, r := range rows {
		locale, _ := r[spec.localeColumn()].(string)
		if locale == "" || locale == baseLocale {
			continue
		}
		out[locale] = Localize(c.Base, r, locale, baseLocale)
	}

	return out
}
