package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const cellWidth = 7

type gameManager interface {
	State() *entity.Game
	MakeTurn(ctx context.Context, cell int) (*entity.Game, error)
	ResetRound(ctx context.Context) *entity.Game
	ResetAll(ctx context.Context) *entity.Game
}

// UI renders the shared game on the terminal. All drawing happens on the tview
// event goroutine; changes made elsewhere arrive through Publish.
type UI struct {
	logger *slog.Logger
	games  gameManager

	app   *tview.Application
	theme Theme

	root     *tview.Flex
	board    *tview.Grid
	cells    [entity.BoardSize]*tview.Button
	status   *tview.TextView
	score    *tview.TextView
	hint     *tview.TextView
	controls []*tview.Button

	last    *entity.Game
	stopped atomic.Bool

	pending atomic.Pointer[entity.Game]
	redraw  chan struct{}
}

func New(logger *slog.Logger, games gameManager, themeName string) *UI {
	ui := &UI{
		logger: logger.With("component", "tui"),
		games:  games,
		app:    tview.NewApplication(),
		theme:  ThemeByName(themeName),
		redraw: make(chan struct{}, 1),
	}

	ui.board = tview.NewGrid().
		SetRows(3, 3, 3).
		SetColumns(cellWidth, cellWidth, cellWidth).
		SetGap(1, 1)

	for i := range ui.cells {
		cell := i
		button := tview.NewButton(cellLabel(entity.Board{}, cell)).
			SetSelectedFunc(func() { ui.makeTurn(cell) })

		ui.cells[i] = button
		ui.board.AddItem(button, cell/3, cell%3, 1, 1, 0, 0, false)
	}

	ui.status = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	ui.score = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	ui.hint = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText(keyHint)

	ui.controls = []*tview.Button{
		tview.NewButton("Reset round").SetSelectedFunc(ui.resetRound),
		tview.NewButton("Reset all").SetSelectedFunc(ui.resetAll),
		tview.NewButton("Theme").SetSelectedFunc(ui.toggleTheme),
	}

	controls := tview.NewFlex()
	for _, button := range ui.controls {
		controls.AddItem(button, 0, 1, false)
	}

	boardWidth := 3*cellWidth + 2
	centered := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(ui.board, boardWidth, 0, true).
		AddItem(nil, 0, 1, false)

	ui.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.status, 1, 0, false).
		AddItem(ui.score, 1, 0, false).
		AddItem(centered, 11, 0, true).
		AddItem(controls, 1, 0, false).
		AddItem(ui.hint, 1, 0, false)
	ui.root.SetBorder(true).SetTitle(" Tic-Tac-Toe ")

	ui.app.SetRoot(ui.root, true).
		EnableMouse(true).
		SetInputCapture(ui.handleKey)

	return ui
}

// Run - blocks until the user quits or ctx is canceled.
func (that *UI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		that.stop()
	}()

	go that.redrawLoop(ctx)

	that.render(that.games.State())

	if err := that.app.Run(); err != nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}

	that.stopped.Store(true)

	return nil
}

// Publish - records the newest snapshot and wakes the redraw loop. It never
// blocks, so it is safe to call while the game manager holds its lock.
func (that *UI) Publish(_ context.Context, event *entity.Event) error {
	if that.stopped.Load() {
		return nil
	}

	that.pending.Store(event.Game)

	select {
	case that.redraw <- struct{}{}:
	default:
	}

	return nil
}

// redrawLoop - queues a draw of the newest snapshot. Snapshots published while
// a draw is pending are coalesced into it.
func (that *UI) redrawLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-that.redraw:
			that.app.QueueUpdateDraw(func() {
				if game := that.pending.Load(); game != nil {
					that.render(game)
				}
			})
		}
	}
}

func (that *UI) stop() {
	if that.stopped.CompareAndSwap(false, true) {
		that.app.Stop()
	}
}

func (that *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}

	if cell, ok := cellForKey(event.Rune()); ok {
		that.makeTurn(cell)
		return nil
	}

	switch event.Rune() {
	case 'r':
		that.resetRound()
	case 'R':
		that.resetAll()
	case 't':
		that.toggleTheme()
	case 'q':
		that.stop()
	default:
		return event
	}

	return nil
}

func (that *UI) makeTurn(cell int) {
	game, err := that.games.MakeTurn(context.Background(), cell)
	if errors.Is(err, apperror.ErrInvalidIndex) {
		that.logger.Warn("key outside the board", "cell", cell)
		return
	}

	if err != nil {
		that.logger.Error("failed to make turn", "error", err)
		return
	}

	that.render(game)
}

func (that *UI) resetRound() {
	that.render(that.games.ResetRound(context.Background()))
}

func (that *UI) resetAll() {
	that.render(that.games.ResetAll(context.Background()))
}

func (that *UI) toggleTheme() {
	that.theme = that.theme.Toggle()
	that.logger.Debug("theme changed", "theme", that.theme.Name)

	if that.last != nil {
		that.render(that.last)
	}
}

// render must run on the event goroutine.
func (that *UI) render(game *entity.Game) {
	that.last = game

	that.root.SetBackgroundColor(that.theme.Background)
	that.root.SetBorderColor(that.theme.Border)
	that.root.SetTitleColor(that.theme.Text)
	that.board.SetBackgroundColor(that.theme.Background)

	for _, view := range []*tview.TextView{that.status, that.score, that.hint} {
		view.SetBackgroundColor(that.theme.Background)
		view.SetTextColor(that.theme.Text)
	}

	that.status.SetText(game.Status)
	that.score.SetText(scoreText(game.Scores))

	for i, button := range that.cells {
		style := that.theme.cellStyle(isHighlighted(game, i))

		button.SetLabel(cellLabel(game.Board, i))
		button.SetStyle(style)
		button.SetActivatedStyle(style.Reverse(true))
	}

	for _, button := range that.controls {
		button.SetStyle(that.theme.controlStyle())
		button.SetActivatedStyle(that.theme.controlStyle().Reverse(true))
	}
}
