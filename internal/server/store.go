package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrCannotMove is returned when a puzzle is already first or last.
	ErrCannotMove = errors.New("puzzle cannot move further")
)

// AdminPuzzle is a puzzle as administrators see it, answer included.
type AdminPuzzle struct {
	hunt.Puzzle
	Answer string `json:"answer"`
}

type AdminGameSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PuzzleCount int       `json:"puzzleCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AdminGameDetail struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Puzzles     []AdminPuzzle `json:"puzzles"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type AdminGameRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Puzzles     []AdminPuzzleRequest `json:"puzzles,omitempty"`
}

type AdminPuzzleRequest struct {
	Question     string          `json:"question"`
	Answer       string          `json:"answer"`
	Type         hunt.PuzzleType `json:"type"`
	Choices      []hunt.Choice   `json:"choices,omitempty"`
	LocationData string          `json:"locationData,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

type AdminMoveRequest struct {
	Direction string `json:"direction"`
}

type AdminTeamRequest struct {
	Name    string        `json:"name"`
	Players []hunt.Player `json:"players"`
}

// AdminTeamBooking is one game a team is booked on.
type AdminTeamBooking struct {
	Code     string `json:"code"`
	GameID   string `json:"gameId"`
	GameName string `json:"gameName"`
}

type AdminTeamDetail struct {
	hunt.Team
	Bookings []AdminTeamBooking `json:"bookings"`
}

type AdminJoinRequest struct {
	GameID string `json:"gameId"`
}

type AdminBookingRequest struct {
	TeamID    string     `json:"teamId"`
	GameID    string     `json:"gameId"`
	StartTime *time.Time `json:"startTime"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Voucher   *string    `json:"voucher"`
	Paid      bool       `json:"paid"`
	Notes     *string    `json:"notes"`
}

// InstanceSummary is the part of a game instance shown in booking lists.
type InstanceSummary struct {
	StartedAt          time.Time  `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt"`
	CurrentPuzzleOrder *int       `json:"currentPuzzleOrder"`
}

type AdminBookingItem struct {
	hunt.Booking
	TeamName string           `json:"teamName"`
	GameName string           `json:"gameName"`
	Instance *InstanceSummary `json:"instance"`
}

type adminSession struct {
	AdminID string
	Email   string
}

// AdminStore backs administrator authentication.
type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
}

// Directory is the CRUD surface over games, puzzles, teams and bookings.
type Directory interface {
	ListGames(ctx context.Context) ([]AdminGameSummary, error)
	CreateGame(ctx context.Context, req AdminGameRequest) (AdminGameDetail, error)
	GetGame(ctx context.Context, id string) (AdminGameDetail, error)
	UpdateGame(ctx context.Context, id string, req AdminGameRequest) (AdminGameDetail, error)
	DeleteGame(ctx context.Context, id string) error

	AddPuzzle(ctx context.Context, gameID string, req AdminPuzzleRequest) (AdminPuzzle, error)
	UpdatePuzzle(ctx context.Context, gameID, puzzleID string, req AdminPuzzleRequest) (AdminPuzzle, error)
	DeletePuzzle(ctx context.Context, gameID, puzzleID string) error
	MovePuzzle(ctx context.Context, gameID, puzzleID string, up bool) error

	ListTeams(ctx context.Context) ([]hunt.Team, error)
	CreateTeam(ctx context.Context, req AdminTeamRequest) (hunt.Team, error)
	GetTeam(ctx context.Context, id string) (AdminTeamDetail, error)
	UpdateTeam(ctx context.Context, id string, req AdminTeamRequest) (hunt.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	JoinGame(ctx context.Context, teamID, gameID string) (hunt.Booking, error)

	ListBookings(ctx context.Context) ([]AdminBookingItem, error)
	CreateBooking(ctx context.Context, req AdminBookingRequest) (hunt.Booking, error)
	UpdateBooking(ctx context.Context, code string, req AdminBookingRequest) (hunt.Booking, error)
	DeleteBooking(ctx context.Context, code string) error
}
