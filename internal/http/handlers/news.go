package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-sports-feed/internal/service"
)

// ListArticles — GET /articles?teamId=&status=&language_code=&cursor=&limit=
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	team, err := queryTeamID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	f := service.ArticleFilter{
		TeamID: team,
		Status: r.URL.Query().Get("status"),
		Locale: locale(r),
	}

	page, err := h.svc.ListArticles(r.Context(), f, opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ListClusters — GET /clusters?status=&language_code=&cursor=&limit=
func (h *Handlers) ListClusters(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	f := service.ClusterFilter{
		Status: r.URL.Query().Get("status"),
		Locale: locale(r),
	}

	page, err := h.svc.ListClusters(r.Context(), f, opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetCluster — GET /clusters/{id}?language_code=
func (h *Handlers) GetCluster(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.ClusterByID(r.Context(), chi.URLParam(r, "id"), locale(r))
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// GetClusterStory — GET /clusters/{id}/story
func (h *Handlers) GetClusterStory(w http.ResponseWriter, r *http.Request) {
	story, err := h.svc.ClusterStory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, story)
}
