package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Unit-тесты курсорного кодека:
//   - round-trip decode(encode(k)) == k для всех видов полей;
//   - строгий разбор составного курсора (ровно один разделитель, непустые части);
//   - отказ для не-чисел и отрицательных id;
//   - извлечение значения ключа из строки выборки с нормализацией типов драйвера.

var (
	updatedAt = Field{Name: "updated_at", Kind: KindTime}
	intID     = Field{Name: "id", Kind: KindInt}
	uuidID    = Field{Name: "id", Kind: KindUUID}
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)
	id := uuid.MustParse("5f0c9f3e-1b2a-4c44-9f6e-1d2f3a4b5c6d")

	tcs := []struct {
		name string
		key  SortKey
		val  Value
	}{
		{"single_int_zero", Desc(intID), Value{int64(0)}},
		{"single_int", Asc(intID), Value{int64(9007199254740993)}},
		{"single_string", Asc(Field{Name: "slug", Kind: KindString}), Value{"arsenal|chelsea"}},
		{"time_int", Desc(updatedAt, intID), Value{ts, int64(42)}},
		{"time_uuid", Desc(updatedAt, uuidID), Value{ts, id}},
		{"time_whole_second", Desc(updatedAt, intID), Value{ts.Truncate(time.Second), int64(1)}},
		{"string_int", Asc(Field{Name: "season", Kind: KindString}, intID), Value{"2025-26", int64(7)}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			token, err := tc.key.Encode(tc.val)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			got, err := tc.key.Decode(token)
			require.NoError(t, err)
			require.Len(t, got, len(tc.val))

			for i := range tc.val {
				if want, ok := tc.val[i].(time.Time); ok {
					require.True(t, want.Equal(got[i].(time.Time)), "time must round-trip exactly")
					continue
				}
				require.Equal(t, tc.val[i], got[i])
			}
		})
	}
}

func TestEncode_CanonicalForms(t *testing.T) {
	t.Parallel()

	token, err := Desc(intID).Encode(Value{int64(17)})
	require.NoError(t, err)
	require.Equal(t, "17", token, "single-field token is the canonical string")

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	token, err = Desc(updatedAt, intID).Encode(Value{ts, int32(5)})
	require.NoError(t, err)
	require.Equal(t, "2026-01-02T02:04:05Z|5", token, "time is rendered in UTC, int32 widened")
}

func TestEncode_Rejects(t *testing.T) {
	t.Parallel()

	_, err := Desc(intID).Encode(Value{int64(-1)})
	require.Error(t, err, "negative ids are never valid")

	_, err = Desc(updatedAt, intID).Encode(Value{time.Now()})
	require.Error(t, err, "arity mismatch")

	_, err = Asc(Field{Name: "s", Kind: KindString}, intID).Encode(Value{"a|b", int64(1)})
	require.Error(t, err, "delimiter inside a composite part")

	_, err = SortKey{}.Encode(Value{})
	require.Error(t, err, "empty sort key")
}

func TestDecode_FormatErrors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name  string
		key   SortKey
		token string
	}{
		{"not_a_number", Desc(intID), "not-a-number"},
		{"negative", Desc(intID), "-5"},
		{"empty", Desc(intID), ""},
		{"float", Desc(intID), "1.5"},
		{"no_delimiter", Desc(updatedAt, intID), "2026-01-02T02:04:05Z"},
		{"two_delimiters", Desc(updatedAt, intID), "2026-01-02T02:04:05Z|1|2"},
		{"empty_first", Desc(updatedAt, intID), "|1"},
		{"empty_second", Desc(updatedAt, intID), "2026-01-02T02:04:05Z|"},
		{"bad_time", Desc(updatedAt, intID), "yesterday|1"},
		{"bad_uuid", Desc(updatedAt, uuidID), "2026-01-02T02:04:05Z|nope"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.key.Decode(tc.token)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrFormat)

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			require.Equal(t, tc.token, fe.Token)
		})
	}
}

func TestValueOf_NormalizesDriverTypes(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	raw := [16]byte(uuid.MustParse("5f0c9f3e-1b2a-4c44-9f6e-1d2f3a4b5c6d"))

	got, err := Desc(updatedAt, uuidID).ValueOf(map[string]any{"updated_at": ts, "id": raw})
	require.NoError(t, err)
	require.Equal(t, time.UTC, got[0].(time.Time).Location())
	require.Equal(t, uuid.UUID(raw), got[1])

	got, err = Asc(intID).ValueOf(map[string]any{"id": int32(3)})
	require.NoError(t, err)
	require.Equal(t, Value{int64(3)}, got)

	_, err = Asc(intID).ValueOf(map[string]any{"other": 1})
	require.Error(t, err)

	_, err = Asc(intID).ValueOf(map[string]any{"id": "3"})
	require.Error(t, err)
}
