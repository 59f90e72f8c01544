package service

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

type BotService interface {
	ChooseMove(board entity.Board) (entity.Coord, error)
}

// randSource - satisfied by *rand.Rand, tests inject a fixed picker.
type randSource interface {
	Intn(n int) int
}

type botService struct {
	mu     sync.Mutex
	source randSource
}

func NewBotService(source randSource) BotService {
	return &botService{
		source: source,
	}
}

// ChooseMove - picks a uniformly random empty cell.
func (that *botService) ChooseMove(board entity.Board) (entity.Coord, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.Coord{}, fmt.Errorf("bot has nothing to play: %w", apperror.ErrNoMoveAvailable)
	}

	that.mu.Lock()
	idx := that.source.Intn(len(availableCells))
	that.mu.Unlock()

	return availableCells[idx], nil
}
