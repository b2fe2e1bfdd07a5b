package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-sports-feed/internal/config"
	"github.com/pribylovaa/go-sports-feed/internal/service"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
	"github.com/pribylovaa/go-sports-feed/internal/storage/memory"
)

// Тесты хендлеров поверх настоящего service и in-memory хранилища:
//   - разбор параметров (limit/page_size, teamId, page) и 400 на мусор;
//   - конверт {data, nextCursor} и обход страниц по курсору;
//   - 404/401/500 через apierror без утечки деталей.

var (
	t0        = time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	clusterID = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
)

func seed() *memory.Store {
	st := memory.New()
	st.Insert("teams",
		storage.Row{"id": int64(10), "name": "Arsenal", "short_name": "ARS", "logo_url": "a.png"},
		storage.Row{"id": int64(20), "name": "Chelsea", "short_name": "CHE", "logo_url": "c.png"},
	)
	st.Insert("articles",
		storage.Row{"id": int64(1), "team_id": int64(10), "status": "published", "headline": "One", "summary": "s1", "content": "c1", "published_at": t0, "updated_at": t0},
		storage.Row{"id": int64(2), "team_id": int64(20), "status": "published", "headline": "Two", "summary": "s2", "content": "c2", "published_at": t0.Add(time.Hour), "updated_at": t0},
		storage.Row{"id": int64(3), "team_id": int64(10), "status": "published", "headline": "Three", "summary": "s3", "content": "c3", "published_at": t0.Add(2 * time.Hour), "updated_at": t0},
	)
	st.Insert("article_translations",
		storage.Row{"article_id": int64(3), "language_code": "es", "headline": "Tres", "summary": nil, "content": "c3-es"},
	)
	st.Insert("story_clusters",
		storage.Row{"id": clusterID, "status": "live", "headline": "Derby", "summary": "sum", "content": "body", "source_article_ids": []int64{}, "updated_at": t0},
	)
	st.Insert("cluster_translations",
		storage.Row{"cluster_id": clusterID, "language_code": "fr", "headline": "Le derby", "summary": "résumé", "content": "corps"},
	)
	st.Insert("players",
		storage.Row{"id": int64(7), "team_id": int64(10), "name": "Saka", "position": "RW", "jersey_number": int32(7)},
	)
	st.Insert("standings",
		storage.Row{"id": int64(1), "season": "2026", "team_id": int64(10), "rank": int32(1), "points": int32(9)},
		storage.Row{"id": int64(2), "season": "2026", "team_id": int64(20), "rank": int32(2), "points": int32(6)},
	)

	return st
}

func newServer(t *testing.T, st storage.Store) http.Handler {
	t.Helper()

	cfg := config.Config{
		LimitsConfig: config.LimitsConfig{Default: 20, Max: 100, OffsetMax: 50},
		Locale:       config.LocaleConfig{Base: "en"},
	}
	h := New(service.New(st, nil, cfg))

	r := chi.NewRouter()
	r.Get("/articles", h.ListArticles)
	r.Get("/clusters", h.ListClusters)
	r.Get("/clusters/{id}", h.GetCluster)
	r.Get("/clusters/{id}/story", h.GetClusterStory)
	r.Get("/teams/{teamId}/roster", h.TeamRoster)
	r.Get("/schedule", h.Schedule)
	r.Get("/standings", h.Standings)
	r.Get("/injuries", h.Injuries)

	return r
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

type articlesPage struct {
	Data []struct {
		ID       int64  `json:"id"`
		Headline string `json:"headline"`
		Summary  string `json:"summary"`
		Content  string `json:"content"`
		Locale   string `json:"locale"`
		Team     *struct {
			Name string `json:"name"`
		} `json:"team"`
	} `json:"data"`
	NextCursor *string `json:"nextCursor"`
}

func TestListArticles_PagesWithCursor(t *testing.T) {
	t.Parallel()

	srv := newServer(t, seed())

	var ids []int64
	target := "/articles?limit=2"
	for i := 0; i < 5; i++ {
		rr := do(t, srv, target)
		require.Equal(t, http.StatusOK, rr.Code)

		var page articlesPage
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		for _, a := range page.Data {
			ids = append(ids, a.ID)
		}
		if page.NextCursor == nil {
			break
		}
		target = "/articles?limit=2&cursor=" + url.QueryEscape(*page.NextCursor)
	}

	require.Equal(t, []int64{3, 2, 1}, ids)
}

func TestListArticles_PageSizeAlias(t *testing.T) {
	t.Parallel()

	st := seed()
	srv := newServer(t, st)

	rr := do(t, srv, "/articles?page_size=1")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	require.Len(t, body["data"], 1)
	require.NotNil(t, body["nextCursor"])

	qs := st.QueriesTo("articles")
	require.NotEmpty(t, qs)
	require.Equal(t, 1, qs[0].Limit)
}

func TestListArticles_EmptyResultHasNullCursor(t *testing.T) {
	t.Parallel()

	rr := do(t, newServer(t, seed()), "/articles?status=archived")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":[],"nextCursor":null}`, rr.Body.String())
}

func TestListArticles_Localized(t *testing.T) {
	t.Parallel()

	rr := do(t, newServer(t, seed()), "/articles?language_code=es&teamId=10&limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var page articlesPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)

	a := page.Data[0]
	require.Equal(t, "Tres", a.Headline)
	require.Equal(t, "s3", a.Summary)
	require.Equal(t, "c3-es", a.Content)
	require.Equal(t, "es", a.Locale)
	require.NotNil(t, a.Team)
	require.Equal(t, "Arsenal", a.Team.Name)
}

func TestBadRequests(t *testing.T) {
	t.Parallel()

	srv := newServer(t, seed())

	tcs := []struct {
		target string
		msg    string
	}{
		{"/articles?limit=abc", "invalid parameter: limit"},
		{"/articles?limit=0", "invalid parameter: limit"},
		{"/articles?limit=-5", "invalid parameter: limit"},
		{"/articles?page_size=1.5", "invalid parameter: limit"},
		{"/articles?cursor=garbage", "invalid parameter: cursor"},
		{"/articles?teamId=x", "invalid parameter: teamId"},
		{"/schedule?teamId=0", "invalid parameter: teamId"},
		{"/injuries?teamId=-1", "invalid parameter: teamId"},
		{"/teams/abc/roster", "invalid parameter: teamId"},
		{"/clusters/not-a-uuid", "invalid parameter: id"},
		{"/clusters/not-a-uuid/story", "invalid parameter: id"},
		{"/standings", "invalid parameter: season"},
		{"/standings?season=2026&page=0", "invalid parameter: page"},
		{"/standings?season=2026&page_size=x", "invalid parameter: page_size"},
	}

	for _, tc := range tcs {
		t.Run(tc.target, func(t *testing.T) {
			rr := do(t, srv, tc.target)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.JSONEq(t, `{"error":"`+tc.msg+`"}`, rr.Body.String())
		})
	}
}

func TestLimitAboveMaxIsClamped(t *testing.T) {
	t.Parallel()

	st := seed()
	rr := do(t, newServer(t, st), "/articles?limit=5000")
	require.Equal(t, http.StatusOK, rr.Code)

	qs := st.QueriesTo("articles")
	require.NotEmpty(t, qs)
	require.Equal(t, 100, qs[0].Limit)
}

func TestGetCluster(t *testing.T) {
	t.Parallel()

	srv := newServer(t, seed())

	rr := do(t, srv, "/clusters/"+clusterID.String()+"?language_code=fr")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	require.Equal(t, clusterID.String(), body["id"])
	require.Equal(t, "Le derby", body["headline"])
	require.Equal(t, "fr", body["locale"])

	rr = do(t, srv, "/clusters/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"error":"not found: id"}`, rr.Body.String())
}

func TestGetClusterStory(t *testing.T) {
	t.Parallel()

	rr := do(t, newServer(t, seed()), "/clusters/"+clusterID.String()+"/story")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	require.Equal(t, "Derby", body["headline"])
	require.Equal(t, "Le derby", body["headline_fr"])
	require.Equal(t, []any{"en", "fr"}, body["languages"])
}

func TestTeamRoster(t *testing.T) {
	t.Parallel()

	rr := do(t, newServer(t, seed()), "/teams/10/roster")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	require.Nil(t, body["nextCursor"])
}

func TestStandings(t *testing.T) {
	t.Parallel()

	rr := do(t, newServer(t, seed()), "/standings?season=2026&page=2&page_size=1")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	require.EqualValues(t, 2, body["page"])
	require.EqualValues(t, 2, body["totalPages"])
	require.Len(t, body["data"], 1)
}

// TestErrorClassification — ошибки хранилища классифицируются без утечки деталей.
func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unauthorized", storage.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", storage.ErrPermissionDenied, http.StatusForbidden, "forbidden"},
		{"upstream", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st := seed()
			st.FailOn("injuries", tc.err)

			rr := do(t, newServer(t, st), "/injuries")
			require.Equal(t, tc.status, rr.Code)
			require.JSONEq(t, `{"error":"`+tc.msg+`"}`, rr.Body.String())
		})
	}
}

// TestSecondaryFailureDegrades — отказ справочника команд не ломает ответ.
func TestSecondaryFailureDegrades(t *testing.T) {
	t.Parallel()

	st := seed()
	st.FailOn("teams", errors.New("teams unavailable"))

	rr := do(t, newServer(t, st), "/articles?limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var page articlesPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	require.Nil(t, page.Data[0].Team)
}
