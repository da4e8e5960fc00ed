package tui

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const keyHint = "1-9 place  r reset round  R reset all  t theme  q quit"

// cellLabel shows the mark, or the key that plays an empty cell.
func cellLabel(board entity.Board, index int) string {
	if board[index] == entity.EmptyCell {
		return fmt.Sprintf("%d", index+1)
	}

	return string(board[index])
}

func isHighlighted(game *entity.Game, index int) bool {
	return game.Outcome.IsWon() && game.Outcome.Line != nil && game.Outcome.Line.Contains(index)
}

func scoreText(scores entity.ScoreBoard) string {
	return fmt.Sprintf("%s: %d   %s: %d", entity.PlayerX, scores.Of(entity.PlayerX), entity.PlayerO, scores.Of(entity.PlayerO))
}

// cellForKey maps the keys 1-9 to board indices in row-major order.
func cellForKey(key rune) (int, bool) {
	if key < '1' || key > '9' {
		return 0, false
	}

	return int(key - '1'), true
}
