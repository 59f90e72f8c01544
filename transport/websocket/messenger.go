package websocket

import (
	"bytes"
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/service"
)

// maxMessagesPerConversation - older board messages are forgotten and can no longer be edited.
const maxMessagesPerConversation = 64

// maxConversations - the least recently used conversation history is dropped past this count.
const maxConversations = 4096

var ErrUnknownCallback = errors.New("unknown callback")

type conversationHistory struct {
	recent   *list.Element
	nextID   int64
	order    []int64
	contents map[int64][]byte
}

// Messenger - chat surface on top of the hub: numbered board messages per conversation.
type Messenger struct {
	hub *Hub

	mu               sync.Mutex
	conversations    map[int64]*conversationHistory
	recent           *list.List
	maxConversations int
	callbacks        map[string]*Connection
}

func NewMessenger(hub *Hub) *Messenger {
	return &Messenger{
		hub:              hub,
		conversations:    make(map[int64]*conversationHistory),
		recent:           list.New(),
		maxConversations: maxConversations,
		callbacks:        make(map[string]*Connection),
	}
}

func (that *Messenger) SendBoard(_ context.Context, conversationID int64, text string, keyboard service.Keyboard) (int64, error) {
	content, err := json.Marshal(BoardPayload{Text: text, Keyboard: keyboard})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal board: %w", err)
	}

	that.mu.Lock()
	history := that.history(conversationID)
	history.nextID++
	messageID := history.nextID
	history.contents[messageID] = content
	history.order = append(history.order, messageID)
	if len(history.order) > maxMessagesPerConversation {
		delete(history.contents, history.order[0])
		history.order = history.order[1:]
	}
	that.mu.Unlock()

	if err = that.broadcast(conversationID, actionMessageNew, BoardPayload{
		MessageID: messageID,
		Text:      text,
		Keyboard:  keyboard,
	}); err != nil {
		return 0, err
	}

	return messageID, nil
}

func (that *Messenger) EditBoard(_ context.Context, key entity.SessionKey, text string, keyboard service.Keyboard) error {
	content, err := json.Marshal(BoardPayload{Text: text, Keyboard: keyboard})
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	that.mu.Lock()
	history, ok := that.conversations[key.ConversationID]
	if !ok {
		that.mu.Unlock()
		return fmt.Errorf("%w: %s", apperror.ErrMessageNotFound, key)
	}

	current, ok := history.contents[key.MessageID]
	if !ok {
		that.mu.Unlock()
		return fmt.Errorf("%w: %s", apperror.ErrMessageNotFound, key)
	}

	that.recent.MoveToFront(history.recent)

	if bytes.Equal(current, content) {
		that.mu.Unlock()
		return fmt.Errorf("%w: %s", apperror.ErrMessageNotModified, key)
	}

	history.contents[key.MessageID] = content
	that.mu.Unlock()

	return that.broadcast(key.ConversationID, actionMessageEdit, BoardPayload{
		MessageID: key.MessageID,
		Text:      text,
		Keyboard:  keyboard,
	})
}

// Answer - acknowledges a callback to the connection that pressed the button.
func (that *Messenger) Answer(_ context.Context, callbackID, text string) error {
	that.mu.Lock()
	conn, ok := that.callbacks[callbackID]
	delete(that.callbacks, callbackID)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCallback, callbackID)
	}

	data, err := encodeMessage(actionCallbackAnswer, AnswerPayload{CallbackID: callbackID, Text: text})
	if err != nil {
		return err
	}

	if err = that.hub.Send(conn, data); err != nil {
		return fmt.Errorf("failed to send answer: %w", err)
	}

	return nil
}

// expect - remembers who should receive the answer to callbackID.
func (that *Messenger) expect(callbackID string, conn *Connection) {
	that.mu.Lock()
	that.callbacks[callbackID] = conn
	that.mu.Unlock()
}

// forget - drops a callback that was never answered.
func (that *Messenger) forget(callbackID string) {
	that.mu.Lock()
	delete(that.callbacks, callbackID)
	that.mu.Unlock()
}

// history - returns the conversation history marked as most recently used, the caller holds mu.
func (that *Messenger) history(conversationID int64) *conversationHistory {
	history, ok := that.conversations[conversationID]
	if ok {
		that.recent.MoveToFront(history.recent)
		return history
	}

	history = &conversationHistory{
		recent:   that.recent.PushFront(conversationID),
		contents: make(map[int64][]byte),
	}
	that.conversations[conversationID] = history

	for that.recent.Len() > that.maxConversations {
		oldest := that.recent.Back()
		delete(that.conversations, that.recent.Remove(oldest).(int64))
	}

	return history
}

// ConversationCount - number of conversations whose board messages are remembered.
func (that *Messenger) ConversationCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.conversations)
}

func (that *Messenger) broadcast(conversationID int64, action string, payload any) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	that.hub.Broadcast(conversationID, data)

	return nil
}
