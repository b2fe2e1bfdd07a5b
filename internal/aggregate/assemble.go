package aggregate

import (
	"fmt"

	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/pagination"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Assemble собирает курсорную страницу.
//
// Инварианты:
//   - порядок элементов == порядок выборки (курсор зависит от него);
//   - NextCursor = encode(ключ последней строки) тогда и только тогда, когда f.Full;
//   - пустая выборка -> {data: [], nextCursor: null}.
func Assemble[T any](f Fetched, key pagination.SortKey, build func(storage.Row) (T, error)) (models.Page[T], error) {
	const op = "aggregate.Assemble"

	page := models.Page[T]{Data: make([]T, 0, len(f.Rows))}
	for i, r := range f.Rows {
		item, err := build(r)
		if err != nil {
			return models.Page[T]{}, fmt.Errorf("%s: row %d: %w", op, i, err)
		}
		page.Data = append(page.Data, item)
	}

	if f.Full && len(f.Rows) > 0 {
		last, err := key.ValueOf(f.Rows[len(f.Rows)-1])
		if err != nil {
			return models.Page[T]{}, fmt.Errorf("%s: %w", op, err)
		}

		token, err := key.Encode(last)
		if err != nil {
			return models.Page[T]{}, fmt.Errorf("%s: %w", op, err)
		}
		page.NextCursor = &token
	}

	return page, nil
}

// AssembleOffset собирает offset-страницу: totalPages = ceil(total / pageSize).
func AssembleOffset[T any](rows []storage.Row, page, pageSize, total int, build func(storage.Row) (T, error)) (models.OffsetPage[T], error) {
	const op = "aggregate.AssembleOffset"

	out := models.OffsetPage[T]{
		Data: make([]T, 0, len(rows)),
		Page: page,
	}
	if pageSize > 0 {
		out.TotalPages = (total + pageSize - 1) / pageSize
	}

	for i, r := range rows {
		item, err := build(r)
		if err != nil {
			return models.OffsetPage[T]{}, fmt.Errorf("%s: row %d: %w", op, i, err)
		}
		out.Data = append(out.Data, item)
	}

	return out, nil
}
