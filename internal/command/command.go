// Package command turns chat text into typed commands for the router.
package command

// Command is one of NewMatch, Move, EndMatch, State or Help.
type Command interface {
	Name() string
}

const DefaultSize = 3

// NewMatch starts a match between the sender and Opponent.
type NewMatch struct {
	Opponent string
	Size     int
}

// Move places the sender's marker. Row and Col are 1-based as typed by the user.
type Move struct {
	Row int
	Col int
}

type EndMatch struct{}

type State struct{}

type Help struct{}

func (NewMatch) Name() string { return "new" }

func (Move) Name() string { return "move" }

func (EndMatch) Name() string { return "end" }

func (State) Name() string { return "state" }

func (Help) Name() string { return "help" }
