package apperror

import "errors"

var (
	ErrInvalidCoordinate    = errors.New("invalid coordinate")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrNoMoveAvailable      = errors.New("no move available")
	ErrUnknownAction        = errors.New("unknown action")

	// ErrMessageNotModified - the chat surface already shows exactly this content.
	ErrMessageNotModified = errors.New("message is not modified")
	ErrMessageNotFound    = errors.New("message not found")
)
