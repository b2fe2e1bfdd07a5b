package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Unit-тесты построителя SQL: без базы, проверяем текст запроса и параметры.

func TestBuildSelect_FirstPage(t *testing.T) {
	t.Parallel()

	sql, args, err := buildSelect(storage.Query{
		Collection: "articles",
		Columns:    []string{"id", "headline"},
		Filters:    []storage.Filter{storage.Eq("status", "published"), storage.Eq("team_id", int64(7))},
		Order:      []storage.Order{{Field: "published_at", Desc: true}, {Field: "id", Desc: true}},
		Limit:      20,
	})
	require.NoError(t, err)
	require.Equal(t,
		`SELECT "id", "headline" FROM "articles" WHERE "status" = $1 AND "team_id" = $2 ORDER BY "published_at" DESC, "id" DESC LIMIT $3`,
		sql)
	require.Equal(t, []any{"published", int64(7), 20}, args)
}

func TestBuildSelect_TwoFieldKeyset_Desc(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := buildSelect(storage.Query{
		Collection: "story_clusters",
		Filters:    []storage.Filter{storage.Eq("status", "live")},
		Order:      []storage.Order{{Field: "updated_at", Desc: true}, {Field: "id", Desc: true}},
		After:      &storage.Keyset{Fields: []string{"updated_at", "id"}, Values: []any{ts, int64(5)}, Desc: true},
		Limit:      2,
	})
	require.NoError(t, err)
	require.Equal(t,
		`SELECT * FROM "story_clusters" WHERE "status" = $1 AND ("updated_at" < $2 OR ("updated_at" = $2 AND "id" < $3)) ORDER BY "updated_at" DESC, "id" DESC LIMIT $4`,
		sql)
	require.Equal(t, []any{"live", ts, int64(5), 2}, args)
}

func TestBuildSelect_SingleKeyset_Asc_Offset(t *testing.T) {
	t.Parallel()

	sql, args, err := buildSelect(storage.Query{
		Collection: "players",
		Order:      []storage.Order{{Field: "id"}},
		After:      &storage.Keyset{Fields: []string{"id"}, Values: []any{int64(10)}},
		Limit:      5,
		Offset:     15,
	})
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM "players" WHERE "id" > $1 ORDER BY "id" ASC LIMIT $2 OFFSET $3`, sql)
	require.Equal(t, []any{int64(10), 5, 15}, args)
}

func TestBuildSelect_InAndHas(t *testing.T) {
	t.Parallel()

	sql, args, err := buildSelect(storage.Query{
		Collection: "games",
		Filters:    []storage.Filter{storage.Has("team_ids", int64(3)), storage.In("season", "2025", "2026")},
	})
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM "games" WHERE $1 = ANY("team_ids") AND "season" IN ($2, $3)`, sql)
	require.Equal(t, []any{int64(3), "2025", "2026"}, args)

	sql, args, err = buildSelect(storage.Query{Collection: "teams", Filters: []storage.Filter{storage.In("id")}})
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM "teams" WHERE FALSE`, sql)
	require.Empty(t, args)
}

func TestBuildSelect_QuotesIdentifiers(t *testing.T) {
	t.Parallel()

	sql, _, err := buildSelect(storage.Query{Collection: `teams"; DROP TABLE x; --`})
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM "teams""; DROP TABLE x; --"`, sql)
}

func TestBuildSelect_Invalid(t *testing.T) {
	t.Parallel()

	_, _, err := buildSelect(storage.Query{})
	require.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestBuildCount(t *testing.T) {
	t.Parallel()

	sql, args, err := buildCount("standings", []storage.Filter{storage.Eq("season", "2026")})
	require.NoError(t, err)
	require.Equal(t, `SELECT count(*) FROM "standings" WHERE "season" = $1`, sql)
	require.Equal(t, []any{"2026"}, args)

	sql, args, err = buildCount("teams", nil)
	require.NoError(t, err)
	require.Equal(t, `SELECT count(*) FROM "teams"`, sql)
	require.Empty(t, args)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	denied := fmt.Errorf("query: %w", &pgconn.PgError{Code: pgerrcode.InsufficientPrivilege})
	require.ErrorIs(t, classify(denied), storage.ErrPermissionDenied)

	badPass := &pgconn.PgError{Code: pgerrcode.InvalidPassword}
	require.ErrorIs(t, classify(badPass), storage.ErrUnauthorized)

	badAuth := &pgconn.PgError{Code: pgerrcode.InvalidAuthorizationSpecification}
	require.ErrorIs(t, classify(badAuth), storage.ErrUnauthorized)

	undefined := &pgconn.PgError{Code: pgerrcode.UndefinedTable}
	got := classify(undefined)
	require.NotErrorIs(t, got, storage.ErrPermissionDenied)
	require.NotErrorIs(t, got, storage.ErrUnauthorized)

	plain := errors.New("conn reset")
	require.Equal(t, plain, classify(plain))
}
