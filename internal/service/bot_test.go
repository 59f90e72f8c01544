package service

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	idx   int
	calls []int
}

func (that *fixedSource) Intn(n int) int {
	that.calls = append(that.calls, n)
	return that.idx % n
}

func TestBotService_ChooseMove(t *testing.T) {
	t.Run("Picks among empty cells in row-major order", func(t *testing.T) {
		// Given: the player took (0,0) and the source always answers 3
		source := &fixedSource{idx: 3}
		bot := NewBotService(source)

		board, err := entity.ApplyMove(entity.Board{}, entity.Coord{Row: 0, Col: 0}, entity.PlayerMark)
		require.NoError(t, err)

		// When: the bot chooses
		coord, err := bot.ChooseMove(board)

		// Then: the fourth empty cell (1,1) is chosen out of 8 candidates
		require.NoError(t, err)
		assert.Equal(t, entity.Coord{Row: 1, Col: 1}, coord)
		assert.Equal(t, []int{8}, source.calls)
	})

	t.Run("Always returns an empty cell", func(t *testing.T) {
		// Given: a seeded generator and a half filled board
		bot := NewBotService(rand.New(rand.NewSource(7))) //nolint: gosec // it's ok
		board := entity.Board{
			{entity.PlayerMark, entity.EmptyCell, entity.BotMark},
			{entity.EmptyCell, entity.PlayerMark, entity.EmptyCell},
			{entity.BotMark, entity.EmptyCell, entity.EmptyCell},
		}

		for range 100 {
			// When: the bot chooses
			coord, err := bot.ChooseMove(board)

			// Then: the cell is empty
			require.NoError(t, err)
			assert.Equal(t, entity.EmptyCell, board.At(coord))
		}
	})

	t.Run("Same seed gives the same sequence", func(t *testing.T) {
		first := NewBotService(rand.New(rand.NewSource(42)))  //nolint: gosec // it's ok
		second := NewBotService(rand.New(rand.NewSource(42))) //nolint: gosec // it's ok

		for range 20 {
			a, err := first.ChooseMove(entity.Board{})
			require.NoError(t, err)
			b, err := second.ChooseMove(entity.Board{})
			require.NoError(t, err)

			assert.Equal(t, a, b)
		}
	})

	t.Run("Full board signals no move available", func(t *testing.T) {
		// Given: a full board
		source := &fixedSource{}
		bot := NewBotService(source)
		board := entity.Board{
			{entity.PlayerMark, entity.BotMark, entity.PlayerMark},
			{entity.PlayerMark, entity.BotMark, entity.BotMark},
			{entity.BotMark, entity.PlayerMark, entity.PlayerMark},
		}

		// When: the bot chooses
		_, err := bot.ChooseMove(board)

		// Then: ErrNoMoveAvailable is returned without touching the source
		require.ErrorIs(t, err, apperror.ErrNoMoveAvailable)
		assert.Empty(t, source.calls)
	})
}
