package entity

import (
	"fmt"
	"time"
)

type Turn string

const (
	TurnPlayer Turn = "player"
	TurnBot    Turn = "bot"
)

// SessionKey - identifies a game by the conversation and the message hosting its board.
type SessionKey struct {
	ConversationID int64 `json:"conversation_id"`
	MessageID      int64 `json:"message_id"`
}

// NewSessionKey - derives the session key of the game rendered in messageID.
func NewSessionKey(conversationID, messageID int64) SessionKey {
	return SessionKey{
		ConversationID: conversationID,
		MessageID:      messageID,
	}
}

func (that SessionKey) String() string {
	return fmt.Sprintf("%d-%d", that.ConversationID, that.MessageID)
}

type GameSession struct {
	Key       SessionKey
	Board     Board
	Turn      Turn
	Terminal  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewGameSession(key SessionKey, now time.Time) *GameSession {
	return &GameSession{
		Key:       key,
		Board:     Board{},
		Turn:      TurnPlayer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Finish - marks the session terminal; the turn no longer advances.
func (that *GameSession) Finish(now time.Time) {
	that.Terminal = true
	that.UpdatedAt = now
}
