package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = PlayerMark
	o = BotMark
	e = EmptyCell
)

func TestApplyMove(t *testing.T) {
	t.Run("Sets exactly the target cell for every coordinate", func(t *testing.T) {
		for row := range BoardSize {
			for col := range BoardSize {
				// Given: an empty board
				board := Board{}
				coord := Coord{Row: row, Col: col}

				// When: the player marks the cell
				updated, err := ApplyMove(board, coord, PlayerMark)
				require.NoError(t, err)

				// Then: only that cell changes
				expected := Board{}
				expected[row][col] = PlayerMark
				assert.Equal(t, expected, updated, "coord %s", coord)
				assert.Equal(t, Board{}, board, "input board must stay untouched")
			}
		}
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a board where (1,1) belongs to the bot
		board := Board{
			{e, e, e},
			{e, o, e},
			{e, e, e},
		}

		// When: the player tries the same cell
		updated, err := ApplyMove(board, Coord{Row: 1, Col: 1}, PlayerMark)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, board, updated)
		assert.Equal(t, BotMark, updated[1][1])
	})

	t.Run("Error on invalid coordinate", func(t *testing.T) {
		for _, coord := range []Coord{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}} {
			// When: the coordinate is outside the grid
			_, err := ApplyMove(Board{}, coord, PlayerMark)

			// Then: ErrInvalidCoordinate is returned
			assert.ErrorIs(t, err, apperror.ErrInvalidCoordinate, "coord %s", coord)
		}
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("Detects every winning line", func(t *testing.T) {
		for _, mark := range []Cell{PlayerMark, BotMark} {
			for _, line := range WinLines {
				// Given: a board holding only this line
				board := Board{}
				for _, coord := range line {
					board[coord.Row][coord.Col] = mark
				}

				// When: evaluating the board
				result := Evaluate(board)

				// Then: the mark wins
				assert.Equal(t, Result{Outcome: OutcomeWin, Winner: mark}, result, "line %v", line)
				assert.True(t, result.IsTerminal())
			}
		}
	})

	t.Run("Returns none while the game goes on", func(t *testing.T) {
		// Given: a board without three in a line
		board := Board{
			{x, o, x},
			{e, o, e},
			{x, e, e},
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: nothing is decided
		assert.Equal(t, OutcomeNone, result.Outcome)
		assert.False(t, result.IsTerminal())
	})

	t.Run("Returns draw on a full board without a line", func(t *testing.T) {
		// Given: a full board that nobody won
		board := Board{
			{x, o, x},
			{x, o, o},
			{o, x, x},
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the game is a draw
		assert.Equal(t, Result{Outcome: OutcomeDraw}, result)
	})

	t.Run("A full board with a line is a win, not a draw", func(t *testing.T) {
		// Given: the last move completed a row
		board := Board{
			{x, x, x},
			{o, o, x},
			{x, o, o},
		}

		// Then: the player wins
		assert.Equal(t, Result{Outcome: OutcomeWin, Winner: PlayerMark}, Evaluate(board))
	})
}

func TestBoard_EmptyCells(t *testing.T) {
	// Given: a partially filled board
	board := Board{
		{x, e, e},
		{e, o, e},
		{x, o, x},
	}

	// Then: empty cells come in row-major order
	assert.Equal(t, []Coord{{0, 1}, {0, 2}, {1, 0}, {1, 2}}, board.EmptyCells())
	assert.False(t, board.IsFull())
	assert.Equal(t, "X,_,_/_,O,_/X,O,X", board.String())
}
