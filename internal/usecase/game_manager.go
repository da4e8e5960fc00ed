package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type gameEngine interface {
	ApplyMove(cell int) (bool, error)
	ResetRound()
	ResetAll()
	Turn() entity.Mark
	Snapshot() *entity.Game
}

type eventPublisher interface {
	Publish(ctx context.Context, event *entity.Event) error
}

// GameManager serialises every presentation surface onto one engine and
// fans accepted changes out to the subscribed publishers.
type GameManager struct {
	logger *slog.Logger

	mu         sync.Mutex
	engine     gameEngine
	publishers []eventPublisher
}

func NewGameManager(logger *slog.Logger, engine gameEngine, publishers ...eventPublisher) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		engine:     engine,
		publishers: publishers,
	}
}

// Subscribe adds a publisher that receives every following event.
func (that *GameManager) Subscribe(publisher eventPublisher) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.publishers = append(that.publishers, publisher)
}

func (that *GameManager) MakeTurn(ctx context.Context, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "cell", cell)

	that.mu.Lock()
	defer that.mu.Unlock()

	mark := that.engine.Turn()

	accepted, err := that.engine.ApplyMove(cell)
	if err != nil {
		log.Warn("move refused", "error", err)
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	game := that.engine.Snapshot()
	if !accepted {
		log.Debug("move ignored", "status", game.Status)
		return game, nil
	}

	log.Info("move accepted", "mark", mark, "status", game.Status)

	that.publish(ctx, entity.NewMoveEvent(cell, mark, game))

	return game, nil
}

func (that *GameManager) ResetRound(ctx context.Context) *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.engine.ResetRound()
	game := that.engine.Snapshot()

	that.logger.Info("round reset", "scores", game.Scores)
	that.publish(ctx, entity.NewEvent(entity.EventRoundReset, game))

	return game
}

func (that *GameManager) ResetAll(ctx context.Context) *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.engine.ResetAll()
	game := that.engine.Snapshot()

	that.logger.Info("session reset")
	that.publish(ctx, entity.NewEvent(entity.EventSessionReset, game))

	return game
}

func (that *GameManager) State() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.engine.Snapshot()
}

// publish must be called with mu held so that subscribers observe events in order.
func (that *GameManager) publish(ctx context.Context, event *entity.Event) {
	log := that.logger.With("method", "publish", "event", event.Type, "eventID", event.ID)

	for _, publisher := range that.publishers {
		if err := publisher.Publish(ctx, event); err != nil {
			log.Error("failed to publish event", "error", err)
		}
	}
}
