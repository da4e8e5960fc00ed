package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// GameEngine owns the board, the turn and the session scores.
// It is not safe for concurrent use.
type GameEngine struct {
	board  entity.Board
	turn   entity.Mark
	scores entity.ScoreBoard
}

func NewGameEngine() *GameEngine {
	return &GameEngine{
		turn: entity.PlayerX,
	}
}

// ApplyMove places the current mark on cell. Moves on an occupied cell or after
// the round is decided are ignored and report false. An index outside the
// board is a caller bug and returns ErrInvalidIndex.
func (that *GameEngine) ApplyMove(cell int) (bool, error) {
	if cell < 0 || cell >= len(that.board) {
		return false, fmt.Errorf("%w: cell %d", apperror.ErrInvalidIndex, cell)
	}

	if !that.Outcome().IsInProgress() {
		return false, nil
	}

	if that.board[cell] != entity.EmptyCell {
		return false, nil
	}

	mark := that.turn
	that.board[cell] = mark
	that.turn = mark.Opponent()

	// the round was in progress before this move, so a win here is the transition edge
	if outcome := that.Outcome(); outcome.IsWon() {
		that.scores.Increment(outcome.Winner)
	}

	return true, nil
}

func (that *GameEngine) Outcome() entity.Outcome {
	return entity.ComputeOutcome(that.board)
}

func (that *GameEngine) StatusText() string {
	return entity.StatusText(that.board, that.turn)
}

// ResetRound clears the board and gives the first move to X. Scores are kept.
func (that *GameEngine) ResetRound() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX
}

// ResetAll starts a new session.
func (that *GameEngine) ResetAll() {
	that.ResetRound()
	that.scores.Reset()
}

func (that *GameEngine) Board() entity.Board {
	return that.board
}

func (that *GameEngine) Turn() entity.Mark {
	return that.turn
}

func (that *GameEngine) Scores() entity.ScoreBoard {
	return that.scores
}

func (that *GameEngine) Snapshot() *entity.Game {
	return entity.NewGame(that.board, that.turn, that.scores)
}
