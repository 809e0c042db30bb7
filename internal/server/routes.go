package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	svc := deps.Service
	admin := deps.Admin
	dir := deps.Directory
	feed := deps.Feed

	r.Get("/openapi.json", handleOpenAPI(logger))
	r.Mount("/docs", v5emb.New("Puzzle Hunt API", "/openapi.json", "/docs"))
	if deps.Mount != nil {
		deps.Mount(r)
	}

	// Player routes: the booking code is the credential.
	r.Post("/api/login", handleLogin(svc, logger))
	r.Route("/api/bookings/{code}", func(r chi.Router) {
		r.Get("/", handleGetBooking(svc, logger))
		r.Post("/answer", handleAnswer(svc, logger))
		r.Get("/events", handleEvents(svc, feed, logger))
		r.Get("/ws", handleWS(svc, feed, logger))
		r.Get("/qr", handleQR(svc, logger))

		// Progress overrides are for staff only.
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(admin, logger))
			r.Post("/skip", handleSkip(svc, logger))
			r.Post("/previous", handlePrevious(svc, logger))
			r.Post("/reset", handleReset(svc, logger))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleAdminLogin(admin, logger))
		r.Post("/logout", handleAdminLogout(admin, logger))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(admin, logger))
			r.Get("/me", handleAdminMe())

			r.Get("/games", handleAdminListGames(dir, logger))
			r.Post("/games", handleAdminCreateGame(dir, logger))
			r.Get("/games/{gameID}", handleAdminGetGame(dir, logger))
			r.Put("/games/{gameID}", handleAdminUpdateGame(dir, logger))
			r.Delete("/games/{gameID}", handleAdminDeleteGame(dir, logger))
			r.Post("/games/{gameID}/puzzles", handleAdminAddPuzzle(dir, logger))
			r.Put("/games/{gameID}/puzzles/{puzzleID}", handleAdminUpdatePuzzle(dir, logger))
			r.Delete("/games/{gameID}/puzzles/{puzzleID}", handleAdminDeletePuzzle(dir, logger))
			r.Post("/games/{gameID}/puzzles/{puzzleID}/move", handleAdminMovePuzzle(dir, logger))

			r.Get("/teams", handleAdminListTeams(dir, logger))
			r.Post("/teams", handleAdminCreateTeam(dir, logger))
			r.Get("/teams/{teamID}", handleAdminGetTeam(dir, logger))
			r.Put("/teams/{teamID}", handleAdminUpdateTeam(dir, logger))
			r.Delete("/teams/{teamID}", handleAdminDeleteTeam(dir, logger))
			r.Post("/teams/{teamID}/join", handleAdminJoinGame(dir, logger))

			r.Get("/bookings", handleAdminListBookings(dir, logger))
			r.Post("/bookings", handleAdminCreateBooking(dir, logger))
			r.Patch("/bookings/{code}", handleAdminUpdateBooking(dir, logger))
			r.Delete("/bookings/{code}", handleAdminDeleteBooking(dir, logger))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
