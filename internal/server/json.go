package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/puzzlehunt/internal/bookingcode"
	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{bookingcode.ErrInvalidCodeFormat, http.StatusBadRequest, "INVALID_CODE_FORMAT"},
	{bookingcode.ErrCodeGenerationExhausted, http.StatusServiceUnavailable, "CODE_GENERATION_EXHAUSTED"},
	{hunt.ErrBookingNotFound, http.StatusNotFound, "BOOKING_NOT_FOUND"},
	{hunt.ErrBookingExpired, http.StatusBadRequest, "BOOKING_EXPIRED"},
	{hunt.ErrPuzzleNotFound, http.StatusNotFound, "PUZZLE_NOT_FOUND"},
	{hunt.ErrOutOfTurn, http.StatusConflict, "OUT_OF_TURN"},
	{hunt.ErrInvalidPuzzleOrder, http.StatusBadRequest, "INVALID_PUZZLE_ORDER"},
	{hunt.ErrAlreadyAtFirstPuzzle, http.StatusBadRequest, "ALREADY_AT_FIRST_PUZZLE"},
	{hunt.ErrNoInstanceFound, http.StatusNotFound, "NO_INSTANCE_FOUND"},
	{progress.ErrAnswerRequired, http.StatusBadRequest, "ANSWER_REQUIRED"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
	{ErrCannotMove, http.StatusBadRequest, "CANNOT_MOVE"},
}

// writeServiceError maps a domain error to its status and code. Anything
// unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, ErrorResponse{Error: e.err.Error(), Code: e.code})
			return
		}
	}
	logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"})
}
