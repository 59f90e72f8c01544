package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

const BoardSize = 3

type Cell int

const (
	EmptyCell Cell = iota
	PlayerMark
	BotMark
)

func (that Cell) String() string {
	switch that {
	case PlayerMark:
		return "X"
	case BotMark:
		return "O"
	default:
		return "_"
	}
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDraw
)

// Result - outcome of a board evaluation, Winner is set only for OutcomeWin.
type Result struct {
	Outcome Outcome
	Winner  Cell
}

func (that Result) IsTerminal() bool {
	return that.Outcome != OutcomeNone
}

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Coord) IsValid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

func (that Coord) String() string {
	return fmt.Sprintf("%d,%d", that.Row, that.Col)
}

// WinLines - 3 rows, 3 columns, 2 diagonals.
var WinLines = [][3]Coord{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a value type: ApplyMove returns a copy, so a rejected move never leaves a partial write.
type Board [BoardSize][BoardSize]Cell

func (that Board) At(coord Coord) Cell {
	return that[coord.Row][coord.Col]
}

// ApplyMove - places mark on an empty cell and returns the updated board.
func ApplyMove(board Board, coord Coord, mark Cell) (Board, error) {
	if !coord.IsValid() {
		return board, fmt.Errorf("%w: %s", apperror.ErrInvalidCoordinate, coord)
	}

	if board.At(coord) != EmptyCell {
		return board, fmt.Errorf("%w: %s", apperror.ErrCellOccupied, coord)
	}

	board[coord.Row][coord.Col] = mark

	return board, nil
}

// Evaluate - checks the win lines first, a full board without a line is a draw.
func Evaluate(board Board) Result {
	for _, line := range WinLines {
		a, b, c := board.At(line[0]), board.At(line[1]), board.At(line[2])
		if a != EmptyCell && a == b && b == c {
			return Result{Outcome: OutcomeWin, Winner: a}
		}
	}

	if board.IsFull() {
		return Result{Outcome: OutcomeDraw}
	}

	return Result{Outcome: OutcomeNone}
}

func (that Board) IsFull() bool {
	return len(that.EmptyCells()) == 0
}

// EmptyCells - empty coordinates in row-major order.
func (that Board) EmptyCells() []Coord {
	cells := make([]Coord, 0, BoardSize*BoardSize)
	for row := range BoardSize {
		for col := range BoardSize {
			if that[row][col] == EmptyCell {
				cells = append(cells, Coord{Row: row, Col: col})
			}
		}
	}

	return cells
}

func (that Board) String() string {
	out := make([]byte, 0, 17)
	for row := range BoardSize {
		if row > 0 {
			out = append(out, '/')
		}
		for col := range BoardSize {
			if col > 0 {
				out = append(out, ',')
			}
			out = append(out, that[row][col].String()...)
		}
	}

	return string(out)
}
