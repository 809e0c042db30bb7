package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

type SkipRequest struct {
	Order *int `json:"order"`
}

type InstanceResponse struct {
	Success  bool              `json:"success"`
	Instance hunt.GameInstance `json:"instance"`
}

func handleSkip(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SkipRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Order == nil {
			writeError(w, http.StatusBadRequest, "order is required")
			return
		}

		code := chi.URLParam(r, "code")
		logOverride(logger, r, "skip", code, "order", *req.Order)
		gi, err := svc.Skip(r.Context(), code, *req.Order)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, InstanceResponse{Success: true, Instance: gi})
	}
}

func handlePrevious(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		logOverride(logger, r, "previous", code)
		gi, err := svc.Previous(r.Context(), code)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, InstanceResponse{Success: true, Instance: gi})
	}
}

func handleReset(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		logOverride(logger, r, "reset", code)
		gi, err := svc.Reset(r.Context(), code)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, InstanceResponse{Success: true, Instance: gi})
	}
}

// logOverride records which staff member moved a team's progress by hand.
func logOverride(logger *slog.Logger, r *http.Request, action, code string, args ...any) {
	sess, _ := adminFrom(r)
	args = append([]any{"action", action, "code", code, "admin", sess.Email}, args...)
	logger.Info("progress override", args...)
}
