package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

type CellState uint8

const (
	EmptyCell CellState = iota
	CellA
	CellB
)

// Board is a fixed N×N grid stored row-major in a flat buffer.
type Board struct {
	size  int
	cells []CellState
}

func NewBoard(size int) (*Board, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidSize, size)
	}

	return &Board{
		size:  size,
		cells: make([]CellState, size*size),
	}, nil
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) Get(row, col int) (CellState, error) {
	idx, err := that.index(row, col)
	if err != nil {
		return EmptyCell, err
	}

	return that.cells[idx], nil
}

func (that *Board) Set(row, col int, state CellState) error {
	idx, err := that.index(row, col)
	if err != nil {
		return err
	}

	that.cells[idx] = state

	return nil
}

// at skips bounds checks; callers iterate within [0, size).
func (that *Board) at(row, col int) CellState {
	return that.cells[row*that.size+col]
}

func (that *Board) index(row, col int) (int, error) {
	if row < 0 || row >= that.size || col < 0 || col >= that.size {
		return 0, fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfBounds, row, col)
	}

	return row*that.size + col, nil
}
