package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/service"
)

// Acknowledgement reasons shown to the player next to the pressed button.
const (
	AckCellTaken    = "cell already taken"
	AckGameFinished = "game already finished"
	AckInvalidCell  = "invalid cell"
	AckNoText       = ""
)

type sessionRepo interface {
	Create(key entity.SessionKey, now time.Time) (*entity.GameSession, error)
	Get(key entity.SessionKey) (*entity.GameSession, error)
	Remove(key entity.SessionKey)
	Touch(key entity.SessionKey, now time.Time)
	Lock(key entity.SessionKey) (unlock func())
}

type botService interface {
	ChooseMove(board entity.Board) (entity.Coord, error)
}

type renderService interface {
	Render(board entity.Board, terminal bool) service.Keyboard
}

// Messenger - chat surface hosting the board messages.
type Messenger interface {
	// SendBoard - posts a new board message and returns its message id.
	SendBoard(ctx context.Context, conversationID int64, text string, keyboard service.Keyboard) (int64, error)

	// EditBoard - replaces the board message, ErrMessageNotModified when nothing changed.
	EditBoard(ctx context.Context, key entity.SessionKey, text string, keyboard service.Keyboard) error

	Answer(ctx context.Context, callbackID, text string) error
}

type GameUseCase struct {
	logger *slog.Logger

	sessions  sessionRepo
	bot       botService
	render    renderService
	messenger Messenger
	pending   *pendingGames

	now func() time.Time
}

func NewGameUseCase(
	logger *slog.Logger,
	sessions sessionRepo,
	bot botService,
	render renderService,
	messenger Messenger,
) *GameUseCase {
	return &GameUseCase{
		logger: logger.With("component", "game"),

		sessions:  sessions,
		bot:       bot,
		render:    render,
		messenger: messenger,
		pending:   newPendingGames(),

		now: time.Now,
	}
}

// HandleAction - runs one inbound action to completion, every action is acknowledged.
func (that *GameUseCase) HandleAction(ctx context.Context, action entity.Action) error {
	switch action.Kind {
	case entity.ActionNewGame:
		return that.newGame(ctx, action)
	case entity.ActionMove:
		return that.move(ctx, action)
	default:
		return fmt.Errorf("%w: kind %d", apperror.ErrUnknownAction, action.Kind)
	}
}

func (that *GameUseCase) newGame(ctx context.Context, action entity.Action) error {
	log := that.logger.With("method", "newGame", "conversation", action.ConversationID)

	keyboard := that.render.Render(entity.Board{}, false)

	// the board is visible before its key exists, moves on it wait in lookup until Create
	endPending := that.pending.begin(action.ConversationID)
	defer endPending()

	messageID, err := that.messenger.SendBoard(ctx, action.ConversationID, service.StatusAwaitingMove, keyboard)
	if err != nil {
		return fmt.Errorf("failed to send board: %w", err)
	}

	key := entity.NewSessionKey(action.ConversationID, messageID)

	if _, err = that.sessions.Create(key, that.now()); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	endPending()

	log.Info("game started", "session", key.String())

	return that.answer(ctx, action.CallbackID, AckNoText)
}

func (that *GameUseCase) move(ctx context.Context, action entity.Action) error {
	log := that.logger.With("method", "move", "session", action.Key.String())

	unlock := that.sessions.Lock(action.Key)
	defer unlock()

	session, err := that.lookup(ctx, action.Key)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		log.Debug("move on a finished game", "cell", action.Coord.String())
		return that.answer(ctx, action.CallbackID, AckGameFinished)
	}

	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.Terminal {
		return that.answer(ctx, action.CallbackID, AckGameFinished)
	}

	board, err := entity.ApplyMove(session.Board, action.Coord, entity.PlayerMark)
	switch {
	case errors.Is(err, apperror.ErrInvalidCoordinate):
		log.Warn("rejected move", "error", err)
		return that.answer(ctx, action.CallbackID, AckInvalidCell)
	case errors.Is(err, apperror.ErrCellOccupied):
		return that.answer(ctx, action.CallbackID, AckCellTaken)
	case err != nil:
		return fmt.Errorf("failed to apply player move: %w", err)
	}

	// the turn is built on locals and committed whole, a failed bot move leaves the session as it was
	turn := entity.TurnPlayer
	result := entity.Evaluate(board)

	if !result.IsTerminal() {
		turn = entity.TurnBot

		board, result, err = that.botMove(board)
		if errors.Is(err, apperror.ErrNoMoveAvailable) {
			log.Error("bot asked to move on a full board", "board", board.String(), "error", err)
			return that.answer(ctx, action.CallbackID, AckNoText)
		}

		if err != nil {
			return fmt.Errorf("failed to apply bot move: %w", err)
		}

		if !result.IsTerminal() {
			turn = entity.TurnPlayer
		}
	}

	session.Board = board
	session.Turn = turn

	now := that.now()
	if result.IsTerminal() {
		session.Finish(now)
		that.sessions.Remove(action.Key)

		log.Info("game finished", "board", session.Board.String(), "status", service.StatusText(result))
	} else {
		session.UpdatedAt = now
		that.sessions.Touch(action.Key, now)
	}

	status := service.StatusText(result)
	keyboard := that.render.Render(session.Board, result.IsTerminal())

	if err = that.messenger.EditBoard(ctx, action.Key, status, keyboard); err != nil {
		if !errors.Is(err, apperror.ErrMessageNotModified) {
			return fmt.Errorf("failed to edit board: %w", err)
		}

		log.Debug("board unchanged")
	}

	ack := AckNoText
	if result.IsTerminal() {
		ack = status
	}

	return that.answer(ctx, action.CallbackID, ack)
}

// lookup - a missing session may belong to a board whose game start is still in flight.
func (that *GameUseCase) lookup(ctx context.Context, key entity.SessionKey) (*entity.GameSession, error) {
	session, err := that.sessions.Get(key)
	if !errors.Is(err, apperror.ErrSessionNotFound) {
		return session, err
	}

	if err = that.pending.wait(ctx, key.ConversationID); err != nil {
		return nil, fmt.Errorf("failed to wait for game start: %w", err)
	}

	return that.sessions.Get(key)
}

// botMove - plays the bot's countermove and returns the new board with its evaluation.
func (that *GameUseCase) botMove(board entity.Board) (entity.Board, entity.Result, error) {
	coord, err := that.bot.ChooseMove(board)
	if err != nil {
		return board, entity.Result{}, err
	}

	board, err = entity.ApplyMove(board, coord, entity.BotMark)
	if err != nil {
		return board, entity.Result{}, err
	}

	return board, entity.Evaluate(board), nil
}

func (that *GameUseCase) answer(ctx context.Context, callbackID, text string) error {
	if err := that.messenger.Answer(ctx, callbackID, text); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}

	return nil
}
