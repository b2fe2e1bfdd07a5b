package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-sports-feed/internal/models"
	"github.com/pribylovaa/go-sports-feed/internal/service"
)

// positiveInt разбирает необязательный целочисленный параметр >= 1.
// Пустое значение -> 0 (серверный default).
func positiveInt(raw, param string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, service.InvalidParam(param)
	}

	return n, nil
}

// listOptions читает cursor и limit (или его синоним page_size).
func listOptions(r *http.Request) (models.ListOptions, error) {
	q := r.URL.Query()

	raw := q.Get("limit")
	if raw == "" {
		raw = q.Get("page_size")
	}

	limit, err := positiveInt(raw, "limit")
	if err != nil {
		return models.ListOptions{}, err
	}

	return models.ListOptions{Limit: limit, Cursor: q.Get("cursor")}, nil
}

// offsetOptions читает page и page_size (или его синоним limit).
func offsetOptions(r *http.Request) (models.OffsetOptions, error) {
	q := r.URL.Query()

	page, err := positiveInt(q.Get("page"), "page")
	if err != nil {
		return models.OffsetOptions{}, err
	}

	raw := q.Get("page_size")
	if raw == "" {
		raw = q.Get("limit")
	}

	size, err := positiveInt(raw, "page_size")
	if err != nil {
		return models.OffsetOptions{}, err
	}

	return models.OffsetOptions{Page: page, PageSize: size}, nil
}

// teamID разбирает необязательный числовой идентификатор команды.
func teamID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, service.InvalidParam("teamId")
	}

	return id, nil
}

func queryTeamID(r *http.Request) (int64, error) {
	return teamID(r.URL.Query().Get("teamId"))
}

func pathTeamID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "teamId")
	if raw == "" {
		return 0, service.InvalidParam("teamId")
	}

	return teamID(raw)
}

func locale(r *http.Request) string {
	return r.URL.Query().Get("language_code")
}
