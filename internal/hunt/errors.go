package hunt

import "errors"

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingExpired       = errors.New("this booking has expired")
	ErrPuzzleNotFound       = errors.New("puzzle not found")
	ErrOutOfTurn            = errors.New("this is not your current puzzle")
	ErrInvalidPuzzleOrder   = errors.New("invalid puzzle order")
	ErrAlreadyAtFirstPuzzle = errors.New("already at first puzzle")
	ErrNoInstanceFound      = errors.New("no game instance found")
)
