// models содержит доменные сущности и конверты ответов сервиса.
// Типы используются агрегатором, сервисным слоем и HTTP-транспортом.
package models

// ListOptions — параметры курсорной выборки.
//
// Особенности:
//   - при Limit == 0 применяется серверный default (config.LimitsConfig.Default);
//   - Cursor == "" -> первая страница.
type ListOptions struct {
	Limit  int
	Cursor string
}

// OffsetOptions — параметры offset-выборки (page нумеруется с 1).
type OffsetOptions struct {
	Page     int
	PageSize int
}

// Page — страница курсорной пагинации.
// NextCursor != nil тогда и только тогда, когда выборка вернула ровно limit строк.
type Page[T any] struct {
	Data       []T     `json:"data"`
	NextCursor *string `json:"nextCursor"`
	// Degraded — хотя бы одна вторичная выборка (ссылки, переводы) завершилась ошибкой.
	Degraded bool `json:"-"`
}

// OffsetPage — страница offset-пагинации.
type OffsetPage[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	// Degraded — см. Page.Degraded; такую страницу не кэшируют.
	Degraded bool `json:"-"`
}
