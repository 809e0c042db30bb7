package server

import (
	"context"
	"log/slog"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

func demoGame() AdminGameRequest {
	return AdminGameRequest{
		Name:        "Lima Centro Historico",
		Description: "A walk through the historic centre of Lima.",
		Puzzles: []AdminPuzzleRequest{
			{
				Question: "In what year was the Cathedral of Lima consecrated?",
				Answer:   "1625",
				Type:     hunt.PuzzleInput,
			},
			{
				Question: "What lies beneath the Convento de San Francisco?",
				Answer:   "b",
				Type:     hunt.PuzzleMultipleChoice,
				Choices: []hunt.Choice{
					{ID: "a", Text: "A river"},
					{ID: "b", Text: "Catacombs"},
					{ID: "c", Text: "A railway"},
				},
			},
			{
				Question: "Scan the code on the fountain in the Plaza de Armas.",
				Answer:   "pileta-1651",
				Type:     hunt.PuzzleQRCode,
			},
			{
				Question:     "Find the statue of San Martin and enter the name of the square.",
				Answer:       "San Martin",
				Type:         hunt.PuzzleLocation,
				LocationData: `{"lat":-12.0514,"lng":-77.0344}`,
			},
		},
	}
}

// SeedDemo creates a demo game, team and booking if no games exist.
// Idempotent: does nothing if any game already exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store *SQLiteStore) error {
	existing, err := store.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	game, err := store.CreateGame(ctx, demoGame())
	if err != nil {
		return err
	}

	team, err := store.CreateTeam(ctx, AdminTeamRequest{
		Name: "Los Incas",
		Players: []hunt.Player{
			{ID: 1, Name: "Maria", Email: "maria@example.com", IsTeamLeader: true},
			{ID: 2, Name: "Carlos", Email: "carlos@example.com"},
		},
	})
	if err != nil {
		return err
	}

	booking, err := store.JoinGame(ctx, team.ID, game.ID)
	if err != nil {
		return err
	}

	logger.Info("demo game seeded", "game", game.Name, "code", booking.Code)
	return nil
}
