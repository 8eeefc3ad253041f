// Package tui provides the Bubble Tea front end for Connect Plus.
// It mirrors the engine's board from its events, turns key presses into
// moves for human seats and serves the same UI over SSH.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/core"
)

// MatchModel is the Bubble Tea model for a single match.
type MatchModel struct {
	match *Match
	board *connectplus.Board // mirror fed by engine events
	keys  MatchKeyMap
	help  help.Model

	active    int
	canRemove bool
	waiting   bool // a human seat is to move
	powerups  []int
	cursor    int
	removing  bool
	target    core.Coord
	falling   map[int64]fallingMsg
	status    string
	result    *connectplus.Result

	width    int
	height   int
	quitting bool
}

// NewMatchModel creates the model for a match that has not started yet.
func NewMatchModel(match *Match) MatchModel {
	g := match.Game()
	powerups := make([]int, len(g.Players()))
	for i, p := range g.Players() {
		powerups[i] = p.Powerups
	}

	return MatchModel{
		match:    match,
		board:    g.Board().Clone(),
		keys:     DefaultMatchKeyMap(),
		help:     help.New(),
		active:   g.Active(),
		powerups: powerups,
		cursor:   g.Config().Width / 2,
		falling:  make(map[int64]fallingMsg),
	}
}

// Init starts the engine.
func (m MatchModel) Init() tea.Cmd {
	return m.match.Start()
}

// Update handles messages.
func (m MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case eventMsg:
		m.applyEvent(msg.event)
		return m, m.match.Wait()
	case fallingMsg:
		if msg.done {
			delete(m.falling, msg.id)
		} else {
			m.falling[msg.id] = msg
		}
		return m, m.match.Wait()
	case matchDoneMsg:
		result := msg.result
		m.result = &result
		m.waiting = false
		m.removing = false
		// Highlights may still be cleared after the match ends.
		return m, m.match.Wait()
	}
	return m, nil
}

// applyEvent updates the mirror and the turn state from an engine event.
func (m *MatchModel) applyEvent(e connectplus.Event) {
	switch e := e.(type) {
	case connectplus.CellChanged:
		m.board.Set(e.At, e.Token)
	case connectplus.StyleChanged:
		m.board.SetStyle(e.At, e.Style)
	case connectplus.TurnStarted:
		m.active = e.Player
		m.canRemove = e.CanRemove
		m.powerups[e.Player] = e.Powerups
		m.waiting = m.match.Local(e.Player) != nil
		if !e.CanRemove {
			m.removing = false
		}
	case connectplus.PowerupGranted:
		m.powerups[e.Player] = e.Total
		m.status = fmt.Sprintf("%s earned %d power-up(s)", m.match.SeatName(e.Player), e.Count)
	case connectplus.MoveApplied:
		m.waiting = false
		m.removing = false
		if e.Outcome.Move.Kind == connectplus.MoveRemoval {
			m.powerups[e.Outcome.Player]--
			m.status = fmt.Sprintf("%s removed a token, %d fell", m.match.SeatName(e.Outcome.Player), e.Outcome.Collapsed)
		} else if e.Outcome.Granted == 0 {
			m.status = ""
		}
	case connectplus.MatchEnded:
		result := e.Result
		m.result = &result
		m.waiting = false
	}
}

// handleKey processes keyboard input.
func (m MatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.match.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.result != nil {
		return m, nil
	}

	width, height := m.board.Width(), m.board.Height()
	if column, ok := columnKey(msg); ok && column < width {
		m.cursor = column
		m.target.X = column
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.cursor = max(m.cursor-1, 0)
		m.target.X = max(m.target.X-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.cursor = min(m.cursor+1, width-1)
		m.target.X = min(m.target.X+1, width-1)
	case key.Matches(msg, m.keys.Up):
		if m.removing {
			m.target.Y = max(m.target.Y-1, 0)
		}
	case key.Matches(msg, m.keys.Down):
		if m.removing {
			m.target.Y = min(m.target.Y+1, height-1)
		}
	case key.Matches(msg, m.keys.Remove):
		m.toggleRemove()
	case key.Matches(msg, m.keys.Drop):
		m.submit()
	}
	return m, nil
}

// toggleRemove enters or leaves power-up mode, starting on the top token
// of the cursor column.
func (m *MatchModel) toggleRemove() {
	if m.removing {
		m.removing = false
		return
	}
	if !m.waiting || !m.canRemove {
		m.status = "No power-up available"
		return
	}
	m.removing = true
	m.target = core.C(m.cursor, m.board.Height()-1)
	for y := range m.board.Height() {
		if !m.board.IsEmpty(core.C(m.cursor, y)) {
			m.target.Y = y
			break
		}
	}
}

// submit hands the selected move to the active human seat.
func (m *MatchModel) submit() {
	local := m.match.Local(m.active)
	if !m.waiting || local == nil {
		m.status = fmt.Sprintf("Waiting for %s", m.match.SeatName(m.active))
		return
	}

	var move connectplus.Move
	if m.removing {
		if m.board.IsEmpty(m.target) {
			m.status = "Pick a token to remove"
			return
		}
		move = connectplus.Removal(m.target)
	} else {
		if _, ok := m.board.RestingCoord(m.cursor); !ok {
			m.status = fmt.Sprintf("Column %d is full", m.cursor+1)
			return
		}
		move = connectplus.Placement(m.cursor)
	}

	if local.Submit(move) {
		m.waiting = false
		m.removing = false
		m.status = ""
	}
}

// View renders the match.
func (m MatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("CONNECT PLUS"))
	b.WriteString("\n\n")
	b.WriteString(m.renderSeats())
	b.WriteString("\n\n")
	b.WriteString(renderBoard(m.board, boardView{
		active:   m.active,
		cursor:   m.cursor,
		removing: m.removing,
		target:   m.target,
		falling:  m.falling,
	}))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))

	if m.width == 0 {
		return b.String()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// renderSeats lists the players with their color and power-up credit.
func (m MatchModel) renderSeats() string {
	powerupsOn := m.match.Game().Config().PowerupsEnabled
	lines := make([]string, len(m.powerups))
	for i := range m.powerups {
		marker := "  "
		if i == m.active && m.result == nil {
			marker = "▶ "
		}
		line := marker + playerStyle(i).Render(tokenGlyph) + " " + m.match.SeatName(i)
		if powerupsOn {
			line += mutedStyle.Render(fmt.Sprintf("  power-ups: %d", m.powerups[i]))
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// renderStatus describes whose move it is or how the match ended.
func (m MatchModel) renderStatus() string {
	if m.result != nil {
		switch m.result.State {
		case connectplus.Won:
			return playerStyle(m.result.Winner).Bold(true).
				Render(fmt.Sprintf("%s wins after %d moves!", m.match.SeatName(m.result.Winner), m.result.Moves))
		case connectplus.Draw:
			return titleStyle.Render(fmt.Sprintf("Draw after %d moves", m.result.Moves))
		default:
			return mutedStyle.Render("Match cancelled. It can be resumed later.")
		}
	}

	prompt := fmt.Sprintf("%s is thinking...", m.match.SeatName(m.active))
	if m.match.Local(m.active) != nil {
		prompt = fmt.Sprintf("%s to move", m.match.SeatName(m.active))
		if m.removing {
			prompt = fmt.Sprintf("%s: choose a token to remove", m.match.SeatName(m.active))
		}
	}
	prompt = playerStyle(m.active).Render(prompt)
	if m.status != "" {
		prompt += "  " + mutedStyle.Render(m.status)
	}
	return prompt
}

// Result returns the match result once the engine has finished, or nil.
func (m MatchModel) Result() *connectplus.Result {
	return m.result
}

// RunMatch plays a match in the terminal and returns its result.
func RunMatch(opts MatchOptions) (connectplus.Result, error) {
	match, err := NewMatch(opts)
	if err != nil {
		return connectplus.Result{}, err
	}

	p := tea.NewProgram(NewMatchModel(match), tea.WithAltScreen())
	_, err = p.Run()
	result := match.Close()
	return result, err
}
