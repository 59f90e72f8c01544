package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/service"
)

// Inbound actions.
const (
	actionConnect  = "connect"
	actionCallback = "callback"
)

// Outbound actions.
const (
	actionMessageNew     = "message:new"
	actionMessageEdit    = "message:edit"
	actionCallbackAnswer = "callback:answer"
	actionError          = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectPayload struct {
	ConversationID int64  `json:"conversation_id"`
	ConnectionID   string `json:"connection_id,omitempty"`
}

// CallbackPayload - a button press on the board hosted in MessageID.
type CallbackPayload struct {
	ID             string `json:"id"`
	ConversationID int64  `json:"conversation_id"`
	MessageID      int64  `json:"message_id"`
	Data           string `json:"data"`
}

type BoardPayload struct {
	MessageID int64            `json:"message_id"`
	Text      string           `json:"text"`
	Keyboard  service.Keyboard `json:"keyboard"`
}

type AnswerPayload struct {
	CallbackID string `json:"callback_id"`
	Text       string `json:"text"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func encodeMessage(action string, payload any) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
