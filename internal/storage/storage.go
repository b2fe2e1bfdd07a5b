// storage определяет контракт доступа к реляционному хранилищу.
//
// Агрегатор потребляет хранилище только двумя формами запросов:
//   - «select с фильтром, сортировкой и limit/offset» (включая keyset-предикат);
//   - «select where key in (...)» для пакетного разрешения ссылок.
//
// Строки возвращаются как Row (колонка -> значение); типизация — на границе эндпоинтов.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound — обязательная одиночная запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized — хранилище отклонило учётные данные запроса (JWT/пароль).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPermissionDenied — политика доступа (RLS/GRANT) запретила чтение.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidQuery — запрос не может быть построен (программная ошибка вызывающего).
	ErrInvalidQuery = errors.New("invalid query")
)

// Row — строка выборки: имя колонки -> значение драйвера.
type Row map[string]any

// Op — оператор фильтра.
type Op int

const (
	// OpEq — field = value.
	OpEq Op = iota
	// OpIn — field IN (values...).
	OpIn
	// OpHas — массивная колонка содержит value.
	OpHas
)

// Filter — предикат равенства/включения, накладываемый до пагинации.
type Filter struct {
	Field  string
	Op     Op
	Values []any
}

// Eq — фильтр field = value.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Values: []any{value}}
}

// In — фильтр field IN (values...).
func In(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// Has — фильтр «массив field содержит value».
func Has(field string, value any) Filter {
	return Filter{Field: field, Op: OpHas, Values: []any{value}}
}

// Order — элемент сортировки.
type Order struct {
	Field string
	Desc  bool
}

// Keyset — строгий предикат продолжения после последнего увиденного ключа.
//
// Для одного поля: A < a (A > a при возрастании).
// Для двух полей: A < a OR (A = a AND B < b).
type Keyset struct {
	Fields []string
	Values []any
	Desc   bool
}

// Query — одна ограниченная выборка из именованной коллекции.
type Query struct {
	Collection string
	// Columns == nil означает все колонки.
	Columns []string
	Filters []Filter
	Order   []Order
	After   *Keyset
	// Limit <= 0 — без ограничения (используется для IN-выборок).
	Limit  int
	Offset int
}

// Validate — базовая проверка структуры запроса.
func (q Query) Validate() error {
	if q.Collection == "" {
		return errors.Join(ErrInvalidQuery, errors.New("empty collection"))
	}

	for _, f := range q.Filters {
		if f.Field == "" {
			return errors.Join(ErrInvalidQuery, errors.New("filter without field"))
		}
		if f.Op != OpIn && len(f.Values) != 1 {
			return errors.Join(ErrInvalidQuery, errors.New("eq/has filter needs exactly one value"))
		}
	}

	if q.After != nil {
		if n := len(q.After.Fields); n == 0 || n > 2 || n != len(q.After.Values) {
			return errors.Join(ErrInvalidQuery, errors.New("keyset needs 1-2 fields with matching values"))
		}
	}

	if q.Offset < 0 {
		return errors.Join(ErrInvalidQuery, errors.New("negative offset"))
	}

	return nil
}

// Store — контракт хранилища для агрегатора.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store
type Store interface {
	// Select выполняет выборку. Фильтры применяются до keyset-предиката,
	// сортировка — до limit/offset.
	Select(ctx context.Context, q Query) ([]Row, error)
	// Count возвращает число строк коллекции под фильтрами (для offset-режима).
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
}
