package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

func (req *AdminGameRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return "name is required"
	}
	for i := range req.Puzzles {
		if msg := req.Puzzles[i].validate(); msg != "" {
			return msg
		}
	}
	return ""
}

func (req *AdminPuzzleRequest) validate() string {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return "question is required"
	}
	if req.Answer == "" {
		return "answer is required"
	}
	if req.Type == "" {
		req.Type = hunt.PuzzleInput
	}
	if !req.Type.Valid() {
		return "type must be input, multiple_choice, qrcode, image, or location"
	}
	if req.Type == hunt.PuzzleMultipleChoice && len(req.Choices) == 0 {
		return "choices are required for multiple_choice puzzles"
	}
	return ""
}

func handleAdminListGames(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := dir.ListGames(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleAdminCreateGame(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		game, err := dir.CreateGame(r.Context(), req)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, game)
	}
}

func handleAdminGetGame(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := dir.GetGame(r.Context(), chi.URLParam(r, "gameID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}

// handleAdminUpdateGame changes name and description. Puzzles are managed
// through their own endpoints.
func handleAdminUpdateGame(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Puzzles = nil
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		game, err := dir.UpdateGame(r.Context(), chi.URLParam(r, "gameID"), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}

func handleAdminDeleteGame(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := dir.DeleteGame(r.Context(), chi.URLParam(r, "gameID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func handleAdminAddPuzzle(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminPuzzleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		p, err := dir.AddPuzzle(r.Context(), chi.URLParam(r, "gameID"), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleAdminUpdatePuzzle(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminPuzzleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		p, err := dir.UpdatePuzzle(r.Context(), chi.URLParam(r, "gameID"), chi.URLParam(r, "puzzleID"), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleAdminDeletePuzzle(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := dir.DeletePuzzle(r.Context(), chi.URLParam(r, "gameID"), chi.URLParam(r, "puzzleID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// handleAdminMovePuzzle swaps a puzzle with its neighbour and returns the
// reordered game.
func handleAdminMovePuzzle(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminMoveRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var up bool
		switch req.Direction {
		case "up":
			up = true
		case "down":
		default:
			writeError(w, http.StatusBadRequest, "direction must be up or down")
			return
		}

		gameID := chi.URLParam(r, "gameID")
		err := dir.MovePuzzle(r.Context(), gameID, chi.URLParam(r, "puzzleID"), up)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		game, err := dir.GetGame(r.Context(), gameID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}
