package apperror

import "errors"

var (
	ErrInvalidSize      = errors.New("invalid board size")
	ErrOutOfBounds      = errors.New("cell is out of bounds")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrAlreadyInMatch   = errors.New("user is already in a match")
	ErrSelfPlay         = errors.New("user can't play against themselves")
	ErrNoActiveMatch    = errors.New("no active match")
	ErrMalformedCommand = errors.New("malformed command")
)
