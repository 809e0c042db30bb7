package hunt

import (
	"fmt"
	"strings"
	"time"
)

// GameInstance is a team's progress through one booked game.
//
// While in progress CurrentPuzzleOrder holds the order of the puzzle the team
// must answer next. A finished instance has a nil CurrentPuzzleOrder and a
// non-nil CompletedAt.
type GameInstance struct {
	ID                 string               `json:"id"`
	TeamID             string               `json:"teamId"`
	GameID             string               `json:"gameId"`
	BookingID          string               `json:"bookingId"`
	CurrentPuzzleOrder *int                 `json:"currentPuzzleOrder"`
	StartedAt          time.Time            `json:"startedAt"`
	CompletedAt        *time.Time           `json:"completedAt"`
	SolvedPuzzles      map[string]time.Time `json:"solvedPuzzles"`
}

type State int

const (
	StateInProgress State = iota
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// NewInstance starts a booking's team at order 1.
func NewInstance(b Booking, now time.Time) GameInstance {
	return GameInstance{
		TeamID:             b.TeamID,
		GameID:             b.GameID,
		BookingID:          b.ID,
		CurrentPuzzleOrder: intPtr(1),
		StartedAt:          now,
		SolvedPuzzles:      map[string]time.Time{},
	}
}

func (gi *GameInstance) State() State {
	if gi.CurrentPuzzleOrder == nil && gi.CompletedAt != nil {
		return StateCompleted
	}
	return StateInProgress
}

// Outcome describes the result of a submitted answer.
type Outcome struct {
	Correct   bool
	Next      *Puzzle
	Completed bool
}

// Submit checks answer against the puzzle identified by puzzleID. The puzzle
// must be the current one. Comparison lowercases both sides and does nothing
// else. A wrong answer leaves the instance untouched.
func (gi *GameInstance) Submit(cat Catalog, puzzleID, answer string, now time.Time) (Outcome, error) {
	puzzle, ok := cat.Find(puzzleID)
	if !ok {
		return Outcome{}, ErrPuzzleNotFound
	}
	if gi.CurrentPuzzleOrder == nil || puzzle.Order != *gi.CurrentPuzzleOrder {
		return Outcome{}, ErrOutOfTurn
	}
	if strings.ToLower(answer) != strings.ToLower(puzzle.Answer) {
		return Outcome{}, nil
	}

	if gi.SolvedPuzzles == nil {
		gi.SolvedPuzzles = map[string]time.Time{}
	}
	gi.SolvedPuzzles[puzzle.ID] = now

	next, ok := cat.Next(puzzle.Order)
	if !ok {
		gi.CurrentPuzzleOrder = nil
		gi.CompletedAt = timePtr(now)
		return Outcome{Correct: true, Completed: true}, nil
	}
	gi.CurrentPuzzleOrder = intPtr(next.Order)
	return Outcome{Correct: true, Next: &next}, nil
}

// Skip moves the team to target regardless of what has been solved. Target
// must be at least 1 and no larger than the highest order in the catalog.
func (gi *GameInstance) Skip(cat Catalog, target int) error {
	if target < 1 || target > cat.MaxOrder() {
		return ErrInvalidPuzzleOrder
	}
	gi.CurrentPuzzleOrder = intPtr(target)
	return nil
}

type PreviousMode string

const (
	// PreviousDecrement subtracts one from the current order even when no
	// puzzle has that order.
	PreviousDecrement PreviousMode = "decrement"
	// PreviousCatalog moves to the closest lower order present in the
	// catalog.
	PreviousCatalog PreviousMode = "catalog"
)

func (m PreviousMode) Valid() bool {
	return m == PreviousDecrement || m == PreviousCatalog
}

func (gi *GameInstance) Previous(cat Catalog, mode PreviousMode) error {
	if gi.CurrentPuzzleOrder == nil || *gi.CurrentPuzzleOrder <= 1 {
		return ErrAlreadyAtFirstPuzzle
	}
	current := *gi.CurrentPuzzleOrder

	if mode == PreviousCatalog {
		prev, ok := cat.Prev(current)
		if !ok {
			return ErrAlreadyAtFirstPuzzle
		}
		gi.CurrentPuzzleOrder = intPtr(prev.Order)
		return nil
	}
	gi.CurrentPuzzleOrder = intPtr(current - 1)
	return nil
}

// Reset puts the team back on order 1 with nothing solved.
func (gi *GameInstance) Reset() {
	gi.CurrentPuzzleOrder = intPtr(1)
	gi.SolvedPuzzles = map[string]time.Time{}
	gi.CompletedAt = nil
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
