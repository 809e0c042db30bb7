package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/bookingcode"
)

func (req *AdminBookingRequest) validate() string {
	req.TeamID = strings.TrimSpace(req.TeamID)
	req.GameID = strings.TrimSpace(req.GameID)
	if req.TeamID == "" || req.GameID == "" {
		return "teamId and gameId are required"
	}
	if req.StartTime != nil && req.ExpiresAt != nil && req.ExpiresAt.Before(*req.StartTime) {
		return "expiresAt must not be before startTime"
	}
	return ""
}

func handleAdminListBookings(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := dir.ListBookings(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, bookings)
	}
}

func handleAdminCreateBooking(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminBookingRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		booking, err := dir.CreateBooking(r.Context(), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusBadRequest, "team or game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)
	}
}

func handleAdminUpdateBooking(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := bookingcode.Canonical(chi.URLParam(r, "code"), false)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		var req AdminBookingRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		booking, err := dir.UpdateBooking(r.Context(), code, req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking, team or game not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	}
}

func handleAdminDeleteBooking(dir Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := bookingcode.Canonical(chi.URLParam(r, "code"), false)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		err = dir.DeleteBooking(r.Context(), code)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
