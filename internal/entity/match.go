package entity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

type Result string

const (
	ResultContinue Result = "continue"
	ResultWin      Result = "win"
	ResultDraw     Result = "draw"
)

// Outcome is the result of an accepted move. Winner is meaningful only for ResultWin.
type Outcome struct {
	Result Result
	Winner Player
}

func (that Outcome) IsTerminal() bool {
	return that.Result == ResultWin || that.Result == ResultDraw
}

// Match is one game between two users. All methods are safe for concurrent use.
type Match struct {
	mu sync.Mutex

	ID    string
	UserA string
	UserB string

	board   *Board
	turn    Player
	moves   int
	outcome Outcome
}

// MatchView is a consistent copy of a match taken under its lock.
type MatchView struct {
	ID       string
	UserA    string
	UserB    string
	Size     int
	Cells    [][]CellState
	Turn     Player
	TurnUser string
	Moves    int
	Outcome  Outcome
}

func NewMatch(userA, userB string, size int) (*Match, error) {
	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}

	return &Match{
		ID:      uuid.NewString(),
		UserA:   userA,
		UserB:   userB,
		board:   board,
		turn:    PlayerA,
		outcome: Outcome{Result: ResultContinue},
	}, nil
}

// ApplyMove places the marker of the user whose turn it is at (row, col).
// A failed move leaves the match untouched.
func (that *Match) ApplyMove(user string, row, col int) (Outcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.outcome.IsTerminal() {
		return that.outcome, fmt.Errorf("%w: match %s is concluded", apperror.ErrNoActiveMatch, that.ID)
	}

	if !SameUser(that.userOf(that.turn), user) {
		return that.outcome, apperror.ErrNotYourTurn
	}

	cell, err := that.board.Get(row, col)
	if err != nil {
		return that.outcome, err
	}

	if cell != EmptyCell {
		return that.outcome, apperror.ErrCellOccupied
	}

	if err = that.board.Set(row, col, that.turn.Cell()); err != nil {
		return that.outcome, err
	}
	that.moves++

	switch {
	case that.completesLine(row, col, that.turn):
		that.outcome = Outcome{Result: ResultWin, Winner: that.turn}
	case that.moves == that.board.Size()*that.board.Size():
		that.outcome = Outcome{Result: ResultDraw}
	default:
		that.advanceTurn()
	}

	return that.outcome, nil
}

func (that *Match) advanceTurn() {
	that.turn = that.turn.Other()
}

// completesLine checks the row, column and both diagonals through (row, col) in one pass.
func (that *Match) completesLine(row, col int, player Player) bool {
	size := that.board.Size()
	mark := player.Cell()

	rowLine, colLine := true, true
	mainDiag := row == col
	antiDiag := true

	for i := 0; i < size; i++ {
		if rowLine && that.board.at(row, i) != mark {
			rowLine = false
		}
		if colLine && that.board.at(i, col) != mark {
			colLine = false
		}
		if mainDiag && that.board.at(i, i) != mark {
			mainDiag = false
		}
		if antiDiag && that.board.at(i, size-1-i) != mark {
			antiDiag = false
		}

		if !rowLine && !colLine && !mainDiag && !antiDiag {
			return false
		}
	}

	return rowLine || colLine || mainDiag || antiDiag
}

// PlayerOf returns the marker assigned to user.
func (that *Match) PlayerOf(user string) (Player, bool) {
	switch {
	case SameUser(that.UserA, user):
		return PlayerA, true
	case SameUser(that.UserB, user):
		return PlayerB, true
	default:
		return PlayerA, false
	}
}

func (that *Match) Size() int {
	return that.board.Size()
}

func (that *Match) View() MatchView {
	that.mu.Lock()
	defer that.mu.Unlock()

	size := that.board.Size()
	cells := make([][]CellState, size)
	for row := range cells {
		cells[row] = make([]CellState, size)
		for col := range cells[row] {
			cells[row][col] = that.board.at(row, col)
		}
	}

	return MatchView{
		ID:       that.ID,
		UserA:    that.UserA,
		UserB:    that.UserB,
		Size:     size,
		Cells:    cells,
		Turn:     that.turn,
		TurnUser: that.userOf(that.turn),
		Moves:    that.moves,
		Outcome:  that.outcome,
	}
}

func (that *Match) userOf(player Player) string {
	if player == PlayerA {
		return that.UserA
	}
	return that.UserB
}
