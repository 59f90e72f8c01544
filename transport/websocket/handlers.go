package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

func (that *Server) handleConnect(_ context.Context, conn *Connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq ConnectPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.ConversationID == 0 {
		return errors.New("conversation_id is required")
	}

	that.hub.Bind(conn, payloadReq.ConversationID)

	payloadResp := ConnectPayload{
		ConversationID: payloadReq.ConversationID,
		ConnectionID:   conn.ID,
	}

	if err := that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("connection bound to conversation", "connection", conn.ID, "conversation", payloadReq.ConversationID)

	return nil
}

func (that *Server) handleCallback(ctx context.Context, conn *Connection, msg *Message) error {
	log := that.logger.With("method", "handleCallback", "connection", conn.ID)

	var payloadReq CallbackPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if conn.ConversationID == 0 {
		return errNotConnected
	}

	if payloadReq.ID == "" {
		return errors.New("callback id is required")
	}

	if payloadReq.ConversationID == 0 {
		payloadReq.ConversationID = conn.ConversationID
	}

	if payloadReq.ConversationID != conn.ConversationID {
		return fmt.Errorf("callback for conversation %d on a connection bound to %d",
			payloadReq.ConversationID, conn.ConversationID)
	}

	fresh, err := that.updates.MarkProcessed(ctx, payloadReq.ID)
	if err != nil {
		return fmt.Errorf("failed to check callback: %w", err)
	}

	that.messenger.expect(payloadReq.ID, conn)
	defer that.messenger.forget(payloadReq.ID)

	if !fresh {
		log.Debug("redelivered callback acknowledged", "callback", payloadReq.ID)
		return that.messenger.Answer(ctx, payloadReq.ID, "")
	}

	if err = that.runCallback(ctx, payloadReq); err != nil {
		// a failed callback may be retried by the client under the same id
		if releaseErr := that.updates.Release(context.WithoutCancel(ctx), payloadReq.ID); releaseErr != nil {
			log.Error("failed to release callback", "callback", payloadReq.ID, "error", releaseErr)
		}

		return err
	}

	return nil
}

func (that *Server) runCallback(ctx context.Context, payloadReq CallbackPayload) error {
	log := that.logger.With("method", "runCallback", "callback", payloadReq.ID)

	action, err := entity.ParseAction(payloadReq.ID, payloadReq.ConversationID, payloadReq.MessageID, payloadReq.Data)
	if errors.Is(err, apperror.ErrUnknownAction) {
		log.Warn("unsupported callback data", "data", payloadReq.Data)
		return that.messenger.Answer(ctx, payloadReq.ID, "")
	}

	if err != nil {
		return fmt.Errorf("failed to parse callback: %w", err)
	}

	if err = that.game.HandleAction(ctx, action); err != nil {
		return fmt.Errorf("failed to handle callback: %w", err)
	}

	return nil
}
