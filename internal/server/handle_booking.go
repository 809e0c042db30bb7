package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/puzzlehunt/internal/hunt"
	"github.com/playperu/puzzlehunt/internal/progress"
)

type LoginRequest struct {
	Code string `json:"code"`
}

// BookingView is a booking with its team, game and instance. Puzzle
// answers are never included.
type BookingView struct {
	hunt.Booking
	Team     hunt.Team          `json:"team"`
	Game     hunt.Game          `json:"game"`
	Instance *hunt.GameInstance `json:"instance"`
}

type LoginResponse struct {
	Success      bool               `json:"success"`
	Booking      BookingView        `json:"booking"`
	GameInstance *hunt.GameInstance `json:"gameInstance"`
	Team         hunt.Team          `json:"team"`
}

type BookingResponse struct {
	Booking BookingView `json:"booking"`
}

func newBookingView(agg hunt.Aggregate) BookingView {
	return BookingView{
		Booking:  agg.Booking,
		Team:     agg.Team,
		Game:     agg.Game,
		Instance: agg.Instance,
	}
}

func handleLogin(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		agg, err := svc.LoginOrResume(r.Context(), req.Code)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Success:      true,
			Booking:      newBookingView(agg),
			GameInstance: agg.Instance,
			Team:         agg.Team,
		})
	}
}

func handleGetBooking(svc *progress.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agg, err := svc.Booking(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, BookingResponse{Booking: newBookingView(agg)})
	}
}
