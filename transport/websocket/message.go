package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const (
	actionGameState  = "game:state"
	actionGameTurn   = "game:turn"
	actionResetRound = "game:reset-round"
	actionResetAll   = "game:reset"
	actionGameUpdate = "game:update"
	actionError      = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game  *entity.Game     `json:"game,omitempty"`
	Event entity.EventType `json:"event,omitempty"`
	Cell  *int             `json:"cell,omitempty"`
	Error string           `json:"error,omitempty"`
}
