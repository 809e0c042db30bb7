package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// validate trims names. Leader counts are not checked; a team may have
// any number of leaders, including none.
func (req *AdminTeamRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	for i := range req.Players {
		p := &req.Players[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Email = strings.TrimSpace(p.Email)
		if p.Name == "" {
			return "player name is required"
		}
		if p.ID == 0 {
			p.ID = i + 1
		}
	}
	return ""
}

func handleAdminListTeams(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := dir.ListTeams(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func handleAdminCreateTeam(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		team, err := dir.CreateTeam(r.Context(), req)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func handleAdminGetTeam(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := dir.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func handleAdminUpdateTeam(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		team, err := dir.UpdateTeam(r.Context(), chi.URLParam(r, "teamID"), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func handleAdminDeleteTeam(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := dir.DeleteTeam(r.Context(), chi.URLParam(r, "teamID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func handleAdminJoinGame(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminJoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.GameID = strings.TrimSpace(req.GameID)
		if req.GameID == "" {
			writeError(w, http.StatusBadRequest, "gameId is required")
			return
		}

		booking, err := dir.JoinGame(r.Context(), chi.URLParam(r, "teamID"), req.GameID)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "team or game not found")
			return
		case errors.Is(err, ErrConflict):
			writeError(w, http.StatusConflict, "team is already part of this game")
			return
		case err != nil:
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)
	}
}
