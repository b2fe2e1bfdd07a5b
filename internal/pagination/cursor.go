// pagination реализует курсорный кодек keyset-пагинации.
//
// Курсор — сериализованное значение ключа сортировки последнего элемента
// предыдущей страницы. Клиенту он непрозрачен, но формат стабилен:
//   - ключ из одного поля: каноническая строка значения;
//   - ключ из двух полей: обе канонические строки через Delimiter.
//
// Канонические формы: int64 — десятичная запись (отрицательные запрещены),
// time.Time — RFC3339Nano в UTC, uuid.UUID — каноническая запись, string — как есть.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Delimiter разделяет части составного курсора.
// Не встречается ни в RFC3339, ни в десятичных id, ни в UUID.
const Delimiter = "|"

// ErrFormat — курсор не разбирается для данного ключа сортировки.
var ErrFormat = errors.New("invalid cursor")

// FormatError — типизированная ошибка декодирования курсора.
// errors.Is(err, ErrFormat) == true.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid cursor %q: %s", e.Token, e.Reason)
}

// Is позволяет сравнивать с ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Kind — тип поля ключа сортировки.
type Kind int

const (
	KindInt Kind = iota
	KindTime
	KindUUID
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Field — одно поле ключа сортировки.
type Field struct {
	Name string
	Kind Kind
}

// SortKey — упорядоченный кортеж из 1–2 полей, полностью упорядочивающий коллекцию.
// Второе поле (обычно уникальный id) разбивает ничьи по первому.
// Desc задаёт направление для всех полей сразу.
type SortKey struct {
	Fields []Field
	Desc   bool
}

// Value — значение ключа сортировки, по одному элементу на поле.
// Элементы имеют типы int64, time.Time, uuid.UUID или string согласно Kind.
type Value []any

// Desc — ключ по убыванию.
func Desc(fields ...Field) SortKey {
	return SortKey{Fields: fields, Desc: true}
}

// Asc — ключ по возрастанию.
func Asc(fields ...Field) SortKey {
	return SortKey{Fields: fields}
}

// Names возвращает имена полей ключа в порядке объявления.
func (k SortKey) Names() []string {
	out := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		out[i] = f.Name
	}

	return out
}

// Validate проверяет, что ключ состоит из 1–2 полей с непустыми именами.
func (k SortKey) Validate() error {
	if len(k.Fields) == 0 || len(k.Fields) > 2 {
		return fmt.Errorf("sort key must have 1 or 2 fields, got %d", len(k.Fields))
	}

	for _, f := range k.Fields {
		if f.Name == "" {
			return fmt.Errorf("sort key field without name")
		}
	}

	return nil
}

// Encode сериализует значение ключа в курсор.
func (k SortKey) Encode(v Value) (string, error) {
	if err := k.Validate(); err != nil {
		return "", err
	}

	if len(v) != len(k.Fields) {
		return "", fmt.Errorf("sort key has %d fields, value has %d", len(k.Fields), len(v))
	}

	parts := make([]string, len(v))
	for i, f := range k.Fields {
		s, err := format(f, v[i])
		if err != nil {
			return "", err
		}

		if len(k.Fields) == 2 && (s == "" || strings.Contains(s, Delimiter)) {
			return "", fmt.Errorf("field %s: value %q cannot be a cursor part", f.Name, s)
		}

		parts[i] = s
	}

	return strings.Join(parts, Delimiter), nil
}

// Decode разбирает курсор обратно в значение ключа.
// Любая ошибка формата — *FormatError.
func (k SortKey) Decode(token string) (Value, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	if token == "" {
		return nil, &FormatError{Token: token, Reason: "empty"}
	}

	var parts []string
	if len(k.Fields) == 1 {
		parts = []string{token}
	} else {
		if strings.Count(token, Delimiter) != 1 {
			return nil, &FormatError{Token: token, Reason: "expected exactly one delimiter"}
		}

		parts = strings.SplitN(token, Delimiter, 2)
		if parts[0] == "" || parts[1] == "" {
			return nil, &FormatError{Token: token, Reason: "empty cursor part"}
		}
	}

	out := make(Value, len(parts))
	for i, f := range k.Fields {
		v, err := parse(f.Kind, parts[i])
		if err != nil {
			return nil, &FormatError{Token: token, Reason: fmt.Sprintf("%s: %v", f.Name, err)}
		}

		out[i] = v
	}

	return out, nil
}

// ValueOf извлекает значение ключа из строки выборки и нормализует типы.
func (k SortKey) ValueOf(row map[string]any) (Value, error) {
	out := make(Value, len(k.Fields))
	for i, f := range k.Fields {
		raw, ok := row[f.Name]
		if !ok || raw == nil {
			return nil, fmt.Errorf("row has no value for sort field %s", f.Name)
		}

		v, err := Normalize(f.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("sort field %s: %w", f.Name, err)
		}

		out[i] = v
	}

	return out, nil
}

// Normalize приводит значение, полученное от драйвера, к каноническому Go-типу поля.
func Normalize(kind Kind, raw any) (any, error) {
	switch kind {
	case KindInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case int32:
			return int64(v), nil
		case int:
			return int64(v), nil
		case int16:
			return int64(v), nil
		}
	case KindTime:
		if v, ok := raw.(time.Time); ok {
			return v.UTC(), nil
		}
	case KindUUID:
		switch v := raw.(type) {
		case uuid.UUID:
			return v, nil
		case [16]byte:
			return uuid.UUID(v), nil
		case string:
			return uuid.Parse(v)
		}
	case KindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("unexpected %T for %s field", raw, kind)
}

func format(f Field, v any) (string, error) {
	n, err := Normalize(f.Kind, v)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.Name, err)
	}

	switch x := n.(type) {
	case int64:
		if x < 0 {
			return "", fmt.Errorf("field %s: negative id %d", f.Name, x)
		}
		return strconv.FormatInt(x, 10), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return x.String(), nil
	case string:
		return x, nil
	}

	return "", fmt.Errorf("field %s: unsupported value %T", f.Name, v)
}

func parse(kind Kind, s string) (any, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number")
		}
		if n < 0 {
			return nil, fmt.Errorf("negative")
		}
		return n, nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("not a timestamp")
		}
		return t.UTC(), nil
	case KindUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("not a uuid")
		}
		return id, nil
	case KindString:
		return s, nil
	}

	return nil, fmt.Errorf("unsupported kind %s", kind)
}
