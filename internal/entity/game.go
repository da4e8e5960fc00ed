package entity

import "fmt"

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

const (
	StatusInProgress OutcomeStatus = "in_progress"
	StatusWon        OutcomeStatus = "won"
	StatusDraw       OutcomeStatus = "draw"
)

const BoardSize = 9

// WinLines is the fixed set of winning triples: rows, then columns, then diagonals.
var WinLines = [8]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Mark is the symbol a player places on the board.
type Mark string

// Opponent returns the mark that plays after this one.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Board is the 3x3 grid stored row-major.
type Board [BoardSize]Mark

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// WinLine is an index triple that wins when all three cells hold the same mark.
type WinLine [3]int

// Contains reports whether cell is part of the line.
func (that WinLine) Contains(cell int) bool {
	return that[0] == cell || that[1] == cell || that[2] == cell
}

type OutcomeStatus string

// Outcome is derived from a Board and never stored.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
	Line   *WinLine      `json:"line,omitempty"`
}

func (that Outcome) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that Outcome) IsWon() bool {
	return that.Status == StatusWon
}

func (that Outcome) IsDraw() bool {
	return that.Status == StatusDraw
}

// ComputeOutcome returns the first completed line in WinLines order, a draw for a
// full board without one, and in-progress otherwise.
func ComputeOutcome(board Board) Outcome {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != EmptyCell && a == b && b == c {
			won := line
			return Outcome{Status: StatusWon, Winner: a, Line: &won}
		}
	}

	// the round continues until all the cells are full
	if board.IsFull() {
		return Outcome{Status: StatusDraw}
	}

	return Outcome{Status: StatusInProgress}
}

// StatusText is the one-line summary shown by the presentation layer.
func StatusText(board Board, turn Mark) string {
	outcome := ComputeOutcome(board)

	switch outcome.Status {
	case StatusWon:
		return fmt.Sprintf("Winner: %s", outcome.Winner)
	case StatusDraw:
		return "It's a draw"
	default:
		return fmt.Sprintf("Turn: %s", turn)
	}
}

// ScoreBoard counts won rounds per mark for the session.
type ScoreBoard struct {
	X int `json:"x"`
	O int `json:"o"`
}

func (that *ScoreBoard) Increment(mark Mark) {
	switch mark {
	case PlayerX:
		that.X++
	case PlayerO:
		that.O++
	}
}

func (that ScoreBoard) Of(mark Mark) int {
	switch mark {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return 0
	}
}

func (that *ScoreBoard) Reset() {
	that.X = 0
	that.O = 0
}

// Game is a read-only snapshot handed to the presentation layer.
type Game struct {
	Board   Board      `json:"board"`
	Turn    Mark       `json:"turn"`
	Outcome Outcome    `json:"outcome"`
	Scores  ScoreBoard `json:"scores"`
	Status  string     `json:"status"`
}

func NewGame(board Board, turn Mark, scores ScoreBoard) *Game {
	return &Game{
		Board:   board,
		Turn:    turn,
		Outcome: ComputeOutcome(board),
		Scores:  scores,
		Status:  StatusText(board, turn),
	}
}
