package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

var ErrBufferFull = errors.New("send buffer full")

// Connection - one client socket, all writes go through its write pump.
type Connection struct {
	ID             string
	ConversationID int64

	conn *websocket.Conn
	send chan []byte
}

func (that *Connection) writeMessage(messageType int, data []byte, deadline time.Time) error {
	if err := that.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return that.conn.WriteMessage(messageType, data)
}

// Hub - registry of live connections grouped by conversation.
type Hub struct {
	mu            sync.RWMutex
	connections   map[string]*Connection
	conversations map[int64]map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{
		connections:   make(map[string]*Connection),
		conversations: make(map[int64]map[string]*Connection),
	}
}

func (that *Hub) Register(ws *websocket.Conn) *Connection {
	conn := &Connection{
		ID:   uuid.New().String(),
		conn: ws,
		send: make(chan []byte, sendBufferSize),
	}

	that.mu.Lock()
	that.connections[conn.ID] = conn
	that.mu.Unlock()

	return conn
}

// Unregister - closes the send channel once, the write pump then closes the socket.
func (that *Hub) Unregister(conn *Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.connections[conn.ID]; !ok {
		return
	}

	delete(that.connections, conn.ID)
	that.unbindLocked(conn)
	close(conn.send)
}

// Bind - moves the connection to conversationID.
func (that *Hub) Bind(conn *Connection, conversationID int64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.connections[conn.ID]; !ok {
		return
	}

	that.unbindLocked(conn)

	conn.ConversationID = conversationID
	if that.conversations[conversationID] == nil {
		that.conversations[conversationID] = make(map[string]*Connection)
	}
	that.conversations[conversationID][conn.ID] = conn
}

func (that *Hub) unbindLocked(conn *Connection) {
	members, ok := that.conversations[conn.ConversationID]
	if !ok {
		return
	}

	delete(members, conn.ID)
	if len(members) == 0 {
		delete(that.conversations, conn.ConversationID)
	}
}

// Send - queues data for one connection.
func (that *Hub) Send(conn *Connection, data []byte) error {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if _, ok := that.connections[conn.ID]; !ok {
		return nil
	}

	return enqueue(conn, data)
}

// Broadcast - queues data for every connection of the conversation and returns how many got it.
func (that *Hub) Broadcast(conversationID int64, data []byte) int {
	var overflowed []*Connection

	that.mu.RLock()
	delivered := 0
	for _, conn := range that.conversations[conversationID] {
		if err := enqueue(conn, data); err != nil {
			overflowed = append(overflowed, conn)
			continue
		}
		delivered++
	}
	that.mu.RUnlock()

	// slow readers are dropped rather than blocking the game
	for _, conn := range overflowed {
		that.Unregister(conn)
	}

	return delivered
}

func enqueue(conn *Connection, data []byte) error {
	select {
	case conn.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

func (that *Hub) ConnectionCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.connections)
}

func (that *Hub) ConversationCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.conversations)
}
