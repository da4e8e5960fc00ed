package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
)

type Theme struct {
	Name string

	Background    tcell.Color
	Text          tcell.Color
	Border        tcell.Color
	Cell          tcell.Color
	CellText      tcell.Color
	Highlight     tcell.Color
	HighlightText tcell.Color
}

var (
	LightTheme = Theme{
		Name:          config.ThemeLight,
		Background:    tcell.ColorWhite,
		Text:          tcell.ColorBlack,
		Border:        tcell.ColorDarkSlateGray,
		Cell:          tcell.ColorLightGray,
		CellText:      tcell.ColorBlack,
		Highlight:     tcell.ColorGold,
		HighlightText: tcell.ColorBlack,
	}

	DarkTheme = Theme{
		Name:          config.ThemeDark,
		Background:    tcell.ColorBlack,
		Text:          tcell.ColorWhite,
		Border:        tcell.ColorSilver,
		Cell:          tcell.ColorDarkSlateGray,
		CellText:      tcell.ColorWhite,
		Highlight:     tcell.ColorDarkGreen,
		HighlightText: tcell.ColorWhite,
	}
)

// ThemeByName returns the dark theme for "dark" and the light theme otherwise.
func ThemeByName(name string) Theme {
	if name == config.ThemeDark {
		return DarkTheme
	}

	return LightTheme
}

func (that Theme) Toggle() Theme {
	if that.Name == config.ThemeDark {
		return LightTheme
	}

	return DarkTheme
}

func (that Theme) cellStyle(highlighted bool) tcell.Style {
	if highlighted {
		return tcell.StyleDefault.Background(that.Highlight).Foreground(that.HighlightText).Bold(true)
	}

	return tcell.StyleDefault.Background(that.Cell).Foreground(that.CellText)
}

func (that Theme) controlStyle() tcell.Style {
	return tcell.StyleDefault.Background(that.Border).Foreground(that.Background)
}
