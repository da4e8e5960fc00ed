package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

func (that *Server) handleGameState(_ context.Context, c *client, msg *Message) error {
	return that.sendMessage(c, msg.Action, Payload{Game: that.games.State()})
}

// handleGameTurn - applies the move. Accepted moves reach the sender through the
// game:update broadcast, ignored moves produce no message.
func (that *Server) handleGameTurn(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		log.Debug("failed to unmarshal payload", "error", err)
		return that.sendError(c, msg.Action, apperror.ErrInvalidPayload.Error())
	}

	if payloadReq.Cell == nil {
		log.Debug("Cell is missing in payload")
		return that.sendError(c, msg.Action, "cell is required")
	}

	_, err := that.games.MakeTurn(ctx, *payloadReq.Cell)
	if errors.Is(err, apperror.ErrInvalidIndex) {
		return that.sendError(c, msg.Action, apperror.ErrInvalidIndex.Error())
	}

	if err != nil {
		log.Error("failed to make turn", "error", err)
		return that.sendError(c, msg.Action, fmt.Sprintf("failed to make turn: %v", err))
	}

	return nil
}

func (that *Server) handleResetRound(ctx context.Context, _ *client, _ *Message) error {
	that.games.ResetRound(ctx)
	return nil
}

func (that *Server) handleResetAll(ctx context.Context, _ *client, _ *Message) error {
	that.games.ResetAll(ctx)
	return nil
}
