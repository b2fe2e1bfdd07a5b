package models

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Bundle — локализованный контент после применения цепочки фолбэков.
//
// Особенности:
//   - каждое поле независимо берётся из базовой локали, если локализованное значение пустое;
//   - Locale — локаль, чья строка переводов была применена (базовая, если строки нет);
//   - Fallback == true, если хотя бы одно поле взято из базовой локали при запросе другой.
type Bundle struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Locale   string `json:"locale"`
	Fallback bool   `json:"fallback"`
}

// Story — многоязычное представление материала: базовый контент и переводы по кодам локалей.
//
// Внутри сервиса переводы типизированы (map[locale]Bundle); плоские ключи
// headline_<locale>/summary_<locale>/content_<locale> появляются только при сериализации.
type Story struct {
	ID           string
	BaseLocale   string
	Base         Bundle
	Translations map[string]Bundle
	UpdatedAt    string
}

// Locales возвращает отсортированный список локалей с переводами.
func (s Story) Locales() []string {
	out := make([]string, 0, len(s.Translations))
	for l := range s.Translations {
		out = append(out, l)
	}
	sort.Strings(out)

	return out
}

// MarshalJSON сериализует историю плоским объектом.
func (s Story) MarshalJSON() ([]byte, error) {
	flat := map[string]any{
		"id":         s.ID,
		"locale":     s.BaseLocale,
		"headline":   s.Base.Headline,
		"summary":    s.Base.Summary,
		"content":    s.Base.Content,
		"languages":  append([]string{s.BaseLocale}, s.Locales()...),
		"updated_at": s.UpdatedAt,
	}

	for locale, b := range s.Translations {
		flat["headline_"+locale] = b.Headline
		flat["summary_"+locale] = b.Summary
		flat["content_"+locale] = b.Content
	}

	return json.Marshal(flat)
}
