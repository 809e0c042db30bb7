// Package hunt defines the core domain types and the puzzle progression
// state machine. It has no storage or transport dependencies.
package hunt

import "time"

type PuzzleType string

const (
	PuzzleInput          PuzzleType = "input"
	PuzzleMultipleChoice PuzzleType = "multiple_choice"
	PuzzleQRCode         PuzzleType = "qrcode"
	PuzzleImage          PuzzleType = "image"
	PuzzleLocation       PuzzleType = "location"
)

// Valid reports whether t is one of the known puzzle types.
func (t PuzzleType) Valid() bool {
	switch t {
	case PuzzleInput, PuzzleMultipleChoice, PuzzleQRCode, PuzzleImage, PuzzleLocation:
		return true
	}
	return false
}

type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Puzzle struct {
	ID           string     `json:"id"`
	GameID       string     `json:"gameId"`
	Order        int        `json:"order"`
	Question     string     `json:"question"`
	Answer       string     `json:"-"`
	Type         PuzzleType `json:"type"`
	Choices      []Choice   `json:"choices,omitempty"`
	LocationData string     `json:"locationData,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
}

type Game struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Puzzles     Catalog   `json:"puzzles"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Player struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        *string        `json:"phone"`
	IsTeamLeader bool           `json:"isTeamLeader"`
	Details      map[string]any `json:"details"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Players   []Player  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

type Booking struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	TeamID    string     `json:"teamId"`
	GameID    string     `json:"gameId"`
	StartTime *time.Time `json:"startTime"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Voucher   *string    `json:"voucher"`
	Paid      bool       `json:"paid"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Expired reports whether the booking has an expiry strictly before now.
func (b Booking) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// Aggregate is everything progression needs to know about one booking,
// read in a single pass: the booking, its team, its game with puzzles in
// ascending order, and the instance if the team has logged in.
type Aggregate struct {
	Booking  Booking
	Team     Team
	Game     Game
	Instance *GameInstance
}
