package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers interface {
	Ping(ctx echo.Context) error
	Health(ctx echo.Context) error
}

type sessionCounter interface {
	Len() int
}

type connectionCounter interface {
	ConnectionCount() int
	ConversationCount() int
}

type HealthResponse struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	Connections   int    `json:"connections"`
	Conversations int    `json:"conversations"`
}

type handlers struct {
	sessions    sessionCounter
	connections connectionCounter
}

func NewHandlers(sessions sessionCounter, connections connectionCounter) Handlers {
	return &handlers{
		sessions:    sessions,
		connections: connections,
	}
}

func (that *handlers) Ping(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pong")
}

// Health - live game sessions and connected chat clients.
func (that *handlers) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Sessions:      that.sessions.Len(),
		Connections:   that.connections.ConnectionCount(),
		Conversations: that.connections.ConversationCount(),
	})
}
