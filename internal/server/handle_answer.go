package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

type AnswerRequest struct {
	PuzzleID string  `json:"puzzleId"`
	Answer   *string `json:"answer,omitempty"`
	Restore  bool    `json:"restore,omitempty"`
}

type AnswerResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	NextPuzzle *hunt.Puzzle `json:"nextPuzzle,omitempty"`
}

// handleAnswer answers 200 for wrong answers too; success carries the
// verdict.
func handleAnswer(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.PuzzleID = strings.TrimSpace(req.PuzzleID)
		if req.PuzzleID == "" {
			writeError(w, http.StatusBadRequest, "puzzleId is required")
			return
		}

		res, err := svc.SubmitAnswer(r.Context(), chi.URLParam(r, "code"), progress.SubmitRequest{
			PuzzleID: req.PuzzleID,
			Answer:   req.Answer,
			Restore:  req.Restore,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, AnswerResponse{
			Success:    res.Success,
			Message:    res.Message,
			NextPuzzle: res.NextPuzzle,
		})
	}
}
