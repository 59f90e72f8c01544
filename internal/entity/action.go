package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
)

const (
	NewGameData = "game_tictactoe"
	RestartData = "game_tictactoe_new"
)

type ActionKind int

const (
	ActionNewGame ActionKind = iota + 1
	ActionMove
)

// Action - typed inbound event, the engine never looks at raw callback data.
type Action struct {
	Kind       ActionKind
	CallbackID string

	// ConversationID is set for ActionNewGame, Key and Coord for ActionMove.
	ConversationID int64
	Key            SessionKey
	Coord          Coord
}

func NewGameAction(callbackID string, conversationID int64) Action {
	return Action{
		Kind:           ActionNewGame,
		CallbackID:     callbackID,
		ConversationID: conversationID,
	}
}

func MoveAction(callbackID string, key SessionKey, coord Coord) Action {
	return Action{
		Kind:       ActionMove,
		CallbackID: callbackID,
		Key:        key,
		Coord:      coord,
	}
}

// ParseAction - turns a callback payload pressed on messageID into an Action.
// Moves must have the exact form "<digit>,<digit>"; range is checked by ApplyMove.
func ParseAction(callbackID string, conversationID, messageID int64, data string) (Action, error) {
	switch data {
	case NewGameData, RestartData:
		return NewGameAction(callbackID, conversationID), nil
	}

	if len(data) != 3 || data[1] != ',' || !isDigit(data[0]) || !isDigit(data[2]) {
		return Action{}, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, data)
	}

	coord := Coord{
		Row: int(data[0] - '0'),
		Col: int(data[2] - '0'),
	}

	return MoveAction(callbackID, NewSessionKey(conversationID, messageID), coord), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
