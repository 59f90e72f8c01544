package service

import "github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"

const (
	StatusAwaitingMove = "awaiting your move"
	StatusPlayerWins   = "you win"
	StatusBotWins      = "bot wins"
	StatusDraw         = "draw"

	RestartButtonText = "New game"
)

var glyphs = map[entity.Cell]string{
	entity.EmptyCell:  " ",
	entity.PlayerMark: "X",
	entity.BotMark:    "O",
}

// Button - one actionable cell of the inline keyboard.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

type Keyboard struct {
	Rows [][]Button `json:"rows"`
}

type RenderService interface {
	Render(board entity.Board, terminal bool) Keyboard
}

type renderService struct{}

func NewRenderService() RenderService {
	return &renderService{}
}

// Render - projects the board into a 3x3 keyboard, terminal boards get a restart row.
func (that *renderService) Render(board entity.Board, terminal bool) Keyboard {
	rows := make([][]Button, 0, entity.BoardSize+1)

	for row := range entity.BoardSize {
		buttons := make([]Button, 0, entity.BoardSize)
		for col := range entity.BoardSize {
			coord := entity.Coord{Row: row, Col: col}
			buttons = append(buttons, Button{
				Text: glyphs[board.At(coord)],
				Data: coord.String(),
			})
		}
		rows = append(rows, buttons)
	}

	if terminal {
		rows = append(rows, []Button{{Text: RestartButtonText, Data: entity.RestartData}})
	}

	return Keyboard{Rows: rows}
}

// StatusText - status line shown above the board.
func StatusText(result entity.Result) string {
	switch result.Outcome {
	case entity.OutcomeWin:
		if result.Winner == entity.BotMark {
			return StatusBotWins
		}
		return StatusPlayerWins
	case entity.OutcomeDraw:
		return StatusDraw
	default:
		return StatusAwaitingMove
	}
}
