package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/config"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

var errNotConnected = errors.New("connection is not bound to a conversation")

type gameUseCase interface {
	HandleAction(ctx context.Context, action entity.Action) error
}

type updateRepo interface {
	MarkProcessed(ctx context.Context, updateID string) (bool, error)
	Release(ctx context.Context, updateID string) error
}

type Server struct {
	logger *slog.Logger
	conf   config.WebSocket

	hub       *Hub
	messenger *Messenger
	game      gameUseCase
	updates   updateRepo

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, conn *Connection, msg *Message) error
}

func New(logger *slog.Logger, conf config.WebSocket, hub *Hub, messenger *Messenger, game gameUseCase, updates updateRepo) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		conf:   conf,

		hub:       hub,
		messenger: messenger,
		game:      game,
		updates:   updates,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]func(context.Context, *Connection, *Message) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionCallback] = server.handleCallback

	return server
}

// HandleWebSocket - upgrades the request and serves the connection until it closes.
func (that *Server) HandleWebSocket(ctx echo.Context) error {
	log := that.logger.With("method", "HandleWebSocket")

	ws, err := that.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return nil
	}

	ws.SetReadLimit(that.conf.MaxMessageSize)

	conn := that.hub.Register(ws)
	log.Info("WebSocket connection established", "connection", conn.ID)

	go that.writePump(conn)
	that.readPump(ctx.Request().Context(), conn)

	return nil
}

// readPump - handles the connection's messages one at a time, in arrival order.
func (that *Server) readPump(ctx context.Context, conn *Connection) {
	log := that.logger.With("method", "readPump", "connection", conn.ID)

	defer that.hub.Unregister(conn)

	_ = conn.conn.SetReadDeadline(time.Now().Add(that.conf.ReadTimeout))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(that.conf.ReadTimeout))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(conn, "invalid message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(conn, "unknown action: "+message.Action)
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			that.sendError(conn, err.Error())
		}
	}
}

// writePump - the only writer of the socket, also keeps it alive with pings.
func (that *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(that.conf.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.conn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.send:
			deadline := time.Now().Add(that.conf.WriteTimeout)
			if !ok {
				_ = conn.writeMessage(websocket.CloseMessage, []byte{}, deadline)
				return
			}

			if err := conn.writeMessage(websocket.TextMessage, data, deadline); err != nil {
				that.logger.Error("failed to write message", "connection", conn.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := conn.writeMessage(websocket.PingMessage, nil, time.Now().Add(that.conf.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (that *Server) sendMessage(conn *Connection, action string, payload any) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	if err = that.hub.Send(conn, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}

	return nil
}

func (that *Server) sendError(conn *Connection, errorMsg string) {
	if err := that.sendMessage(conn, actionError, ErrorPayload{Error: errorMsg}); err != nil {
		that.logger.Error("failed to send error response", "connection", conn.ID, "error", err)
	}
}
