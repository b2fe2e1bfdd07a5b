// memory — реализация storage.Store в памяти процесса.
//
// Семантика совпадает с postgres-реализацией (фильтры -> keyset -> сортировка -> offset/limit),
// поэтому хранилище используется как фикстура в тестах агрегатора, сервиса и HTTP-слоя.
// Дополнительно умеет записывать выполненные запросы и отказывать по имени коллекции.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Store — потокобезопасное in-memory хранилище.
type Store struct {
	mu          sync.Mutex
	collections map[string][]storage.Row
	failures    map[string]error
	queries     []storage.Query
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		collections: make(map[string][]storage.Row),
		failures:    make(map[string]error),
	}
}

// Insert добавляет строки в коллекцию.
func (s *Store) Insert(collection string, rows ...storage.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[collection] = append(s.collections[collection], rows...)
}

// FailOn заставляет все запросы к коллекции возвращать err (nil снимает отказ).
func (s *Store) FailOn(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.failures, collection)
		return
	}
	s.failures[collection] = err
}

// Queries возвращает копию журнала выполненных Select-запросов.
func (s *Store) Queries() []storage.Query {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]storage.Query(nil), s.queries...)
}

// QueriesTo возвращает запросы к конкретной коллекции.
func (s *Store) QueriesTo(collection string) []storage.Query {
	var out []storage.Query
	for _, q := range s.Queries() {
		if q.Collection == collection {
			out = append(out, q)
		}
	}

	return out
}

// Select выполняет выборку.
func (s *Store) Select(ctx context.Context, q storage.Query) ([]storage.Row, error) {
	const op = "storage.memory.Select"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.queries = append(s.queries, q)
	if err, ok := s.failures[q.Collection]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %s: %w", op, q.Collection, err)
	}
	src := append([]storage.Row(nil), s.collections[q.Collection]...)
	s.mu.Unlock()

	var out []storage.Row
	for _, r := range src {
		ok, err := matchAll(r, q.Filters)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}

		if q.After != nil {
			after, err := afterKeyset(r, *q.After)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if !after {
				continue
			}
		}

		out = append(out, r)
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Order {
			c, err := compare(out[i][o.Field], out[j][o.Field])
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, fmt.Errorf("%s: %w", op, sortErr)
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			out = nil
		} else {
			out = out[q.Offset:]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	for i := range out {
		out[i] = project(out[i], q.Columns)
	}

	return out, nil
}

// Count возвращает число строк под фильтрами.
func (s *Store) Count(ctx context.Context, collection string, filters []storage.Filter) (int, error) {
	const op = "storage.memory.Count"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if err, ok := s.failures[collection]; ok {
		s.mu.Unlock()
		return 0, fmt.Errorf("%s: %s: %w", op, collection, err)
	}
	src := append([]storage.Row(nil), s.collections[collection]...)
	s.mu.Unlock()

	n := 0
	for _, r := range src {
		ok, err := matchAll(r, filters)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			n++
		}
	}

	return n, nil
}

// project копирует строку, оставляя только запрошенные колонки.
func project(r storage.Row, cols []string) storage.Row {
	out := make(storage.Row, len(r))
	if len(cols) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}

	for _, c := range cols {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}

	return out
}

func matchAll(r storage.Row, filters []storage.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := match(r, f)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func match(r storage.Row, f storage.Filter) (bool, error) {
	v := r[f.Field]

	switch f.Op {
	case storage.OpEq:
		return equal(v, f.Values[0])
	case storage.OpIn:
		for _, want := range f.Values {
			if ok, err := equal(v, want); err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case storage.OpHas:
		for _, el := range elements(v) {
			if ok, err := equal(el, f.Values[0]); err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}

	return false, fmt.Errorf("unknown filter op %d", f.Op)
}

// afterKeyset реализует тот же предикат, что и SQL: A < a OR (A = a AND B < b).
func afterKeyset(r storage.Row, k storage.Keyset) (bool, error) {
	c0, err := compare(r[k.Fields[0]], k.Values[0])
	if err != nil {
		return false, err
	}

	beyond := func(c int) bool {
		if k.Desc {
			return c < 0
		}
		return c > 0
	}

	if len(k.Fields) == 1 {
		return beyond(c0), nil
	}
	if beyond(c0) {
		return true, nil
	}
	if c0 != 0 {
		return false, nil
	}

	c1, err := compare(r[k.Fields[1]], k.Values[1])
	if err != nil {
		return false, err
	}

	return beyond(c1), nil
}

func elements(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []int64:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	}

	return nil
}

func equal(a, b any) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}

	c, err := compare(a, b)
	return c == 0, err
}

// compare сравнивает значения совместимых типов; NULL меньше любого значения.
func compare(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if ai, ok := asInt(a); ok {
		bi, ok := asInt(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case ai < bi:
			return -1, nil
		case ai > bi:
			return 1, nil
		}
		return 0, nil
	}

	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return x.Compare(y), nil
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return strings.Compare(x, y), nil
	case uuid.UUID:
		y, ok := b.(uuid.UUID)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return bytes.Compare(x[:], y[:]), nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		if x == y {
			return 0, nil
		}
		if !x {
			return -1, nil
		}
		return 1, nil
	}

	return 0, fmt.Errorf("unsupported type %T", a)
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	case int16:
		return int64(x), true
	}

	return 0, false
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Store = (*Store)(nil)
