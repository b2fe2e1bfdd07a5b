package aggregate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Key приводит значение внешнего ключа к канонической строке для таблиц соответствий.
// Разные целочисленные типы драйвера (int32/int64) дают одинаковый ключ.
func Key(v any) (string, bool) {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int:
		return strconv.Itoa(x), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case uuid.UUID:
		return x.String(), true
	case [16]byte:
		return uuid.UUID(x).String(), true
	}

	return "", false
}

// values раскладывает значение колонки на элементы: скаляр -> один элемент, массив -> все.
func values(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case []int64:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	case []int32:
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
	case []uuid.UUID:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	default:
		return []any{v}
	}
}

// Row-геттеры: терпимы к отсутствию значения (NULL -> нулевое значение),
// строги к неожиданному типу.

// Int64 читает целочисленную колонку.
func Int64(r storage.Row, col string) (int64, error) {
	switch x := r[col].(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("column %s: unexpected %T", col, x)
	}
}

// OptInt32 читает nullable целочисленную колонку.
func OptInt32(r storage.Row, col string) (*int32, error) {
	if r[col] == nil {
		return nil, nil
	}

	n, err := Int64(r, col)
	if err != nil {
		return nil, err
	}
	v := int32(n)

	return &v, nil
}

// Int32 читает целочисленную колонку как int32.
func Int32(r storage.Row, col string) (int32, error) {
	n, err := Int64(r, col)
	return int32(n), err
}

// String читает текстовую колонку.
func String(r storage.Row, col string) (string, error) {
	switch x := r[col].(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	default:
		return "", fmt.Errorf("column %s: unexpected %T", col, x)
	}
}

// Time читает колонку-метку времени и нормализует в UTC.
func Time(r storage.Row, col string) (time.Time, error) {
	switch x := r[col].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected %T", col, x)
	}
}

// ID читает идентификатор любого поддерживаемого типа в каноническую строку.
func ID(r storage.Row, col string) (string, error) {
	k, ok := Key(r[col])
	if !ok {
		return "", fmt.Errorf("column %s: unexpected id %T", col, r[col])
	}

	return k, nil
}
