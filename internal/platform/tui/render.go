package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/core"
)

const (
	tokenGlyph  = "●"
	emptyGlyph  = "·"
	cursorGlyph = "▼"
)

// playerColors assigns each seat a terminal color. Seats past the end wrap.
var playerColors = []lipgloss.Color{
	lipgloss.Color("9"),   // red
	lipgloss.Color("11"),  // yellow
	lipgloss.Color("12"),  // blue
	lipgloss.Color("10"),  // green
	lipgloss.Color("13"),  // magenta
	lipgloss.Color("14"),  // cyan
	lipgloss.Color("208"), // orange
	lipgloss.Color("15"),  // white
	lipgloss.Color("5"),
	lipgloss.Color("6"),
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	darkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	lightStyle  = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237"))
	targetStyle = lipgloss.NewStyle().Reverse(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// playerStyle returns the token style of a seat.
func playerStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(playerColors[player%len(playerColors)])
}

// boardView is what the renderer needs besides the board itself.
type boardView struct {
	active   int
	cursor   int
	removing bool
	target   core.Coord
	falling  map[int64]fallingMsg
}

// renderBoard draws the board with the column cursor above it.
// Hidden cells render empty; in-flight tokens render where they currently are.
func renderBoard(b *connectplus.Board, v boardView) string {
	airborne := make(map[core.Coord]int, len(v.falling))
	for _, f := range v.falling {
		airborne[f.at] = f.player
	}

	var sb strings.Builder
	for x := range b.Width() {
		glyph := " "
		if !v.removing && x == v.cursor {
			glyph = playerStyle(v.active).Render(cursorGlyph)
		}
		sb.WriteString(" " + glyph + " ")
	}
	sb.WriteRune('\n')

	for y := range b.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := range b.Width() {
			c := core.C(x, y)
			cell := renderCell(b.Get(c), b.Style(c))
			if p, ok := airborne[c]; ok {
				cell = playerStyle(p).Render(tokenGlyph)
			}
			if v.removing && c == v.target {
				cell = targetStyle.Render(cell)
			}
			sb.WriteString(" " + cell + " ")
		}
	}

	sb.WriteRune('\n')
	for x := range b.Width() {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%2d ", x+1)))
	}
	return frameStyle.Render(sb.String())
}

// renderCell draws a single cell according to its token and style flags.
func renderCell(t connectplus.Token, s connectplus.Style) string {
	if t.Empty() || !s.Visible {
		return emptyStyle.Render(emptyGlyph)
	}
	style := playerStyle(int(t))
	switch {
	case s.Dark:
		style = darkStyle
	case s.Light:
		style = style.Inherit(lightStyle)
	}
	return style.Render(tokenGlyph)
}

// centerText centers s within width columns.
func centerText(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
