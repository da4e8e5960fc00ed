package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMove         EventType = "game:move"
	EventRoundWon     EventType = "round:won"
	EventRoundDraw    EventType = "round:draw"
	EventRoundReset   EventType = "round:reset"
	EventSessionReset EventType = "session:reset"
)

// Event describes one accepted state change of the session.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Cell      *int      `json:"cell,omitempty"`
	Mark      Mark      `json:"mark,omitempty"`
	Game      *Game     `json:"game"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEvent(eventType EventType, game *Game) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Game:      game,
		CreatedAt: time.Now().UTC(),
	}
}

// NewMoveEvent types the event by what the move did to the round.
func NewMoveEvent(cell int, mark Mark, game *Game) *Event {
	eventType := EventMove

	switch game.Outcome.Status {
	case StatusWon:
		eventType = EventRoundWon
	case StatusDraw:
		eventType = EventRoundDraw
	}

	event := NewEvent(eventType, game)
	event.Cell = &cell
	event.Mark = mark

	return event
}
