package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-sports-feed/internal/service"
)

// TeamRoster — GET /teams/{teamId}/roster?cursor=&limit=
func (h *Handlers) TeamRoster(w http.ResponseWriter, r *http.Request) {
	team, err := pathTeamID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	opts, err := listOptions(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	page, err := h.svc.TeamRoster(r.Context(), team, opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Schedule — GET /schedule?teamId=&season=&cursor=&limit=
func (h *Handlers) Schedule(w http.ResponseWriter, r *http.Request) {
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

	f := service.ScheduleFilter{TeamID: team, Season: r.URL.Query().Get("season")}

	page, err := h.svc.Schedule(r.Context(), f, opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Standings — GET /standings?season=&page=&page_size=
func (h *Handlers) Standings(w http.ResponseWriter, r *http.Request) {
	opts, err := offsetOptions(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	page, err := h.svc.Standings(r.Context(), r.URL.Query().Get("season"), opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Injuries — GET /injuries?teamId=&cursor=&limit=
func (h *Handlers) Injuries(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.svc.Injuries(r.Context(), service.InjuryFilter{TeamID: team}, opts)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
