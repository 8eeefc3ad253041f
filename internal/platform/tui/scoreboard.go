package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/connect-plus/internal/storage"
)

// DefaultResultsLimit is how many past matches the scoreboard loads.
const DefaultResultsLimit = 100

// ResultColumns are the scoreboard columns, shared with the plain-text listing.
var ResultColumns = []table.Column{
	{Title: "When", Width: 14},
	{Title: "Board", Width: 8},
	{Title: "Players", Width: 24},
	{Title: "Outcome", Width: 12},
	{Title: "Moves", Width: 6},
	{Title: "Time", Width: 8},
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model listing recorded matches.
type ScoreboardModel struct {
	results []storage.MatchResult
	stats   *storage.MatchStats
	table   table.Model
	help    help.Model
	keys    ScoreboardKeyMap
	width   int
	height  int
}

// NewScoreboardModel loads the latest results from the store.
func NewScoreboardModel(store *storage.Store, limit int) (ScoreboardModel, error) {
	results, err := store.RecentResults(limit)
	if err != nil {
		return ScoreboardModel{}, err
	}
	stats, err := store.Stats()
	if err != nil {
		return ScoreboardModel{}, err
	}

	m := ScoreboardModel{
		results: results,
		stats:   stats,
		help:    help.New(),
		keys:    DefaultScoreboardKeyMap(),
		height:  24,
	}
	m.table = m.createTable()
	return m, nil
}

// createTable creates the results table sized to the window.
func (m ScoreboardModel) createTable() table.Model {
	rows := make([]table.Row, len(m.results))
	for i, r := range m.results {
		rows[i] = ResultRow(r)
	}

	t := table.New(
		table.WithColumns(ResultColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // header, summary and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// ResultRow formats a recorded match for display.
func ResultRow(r storage.MatchResult) []string {
	outcome := r.Outcome
	if outcome == "won" {
		outcome = fmt.Sprintf("P%d won", r.Winner+1)
	}
	return []string{
		r.CreatedAt.Local().Format("Jan 02 15:04"),
		fmt.Sprintf("%dx%d/%d", r.Width, r.Height, r.WinningLength),
		strings.Join(r.Players, " vs "),
		outcome,
		fmt.Sprintf("%d", r.Moves),
		(time.Duration(r.Duration) * time.Second).String(),
	}
}

// Summary describes the aggregate statistics in one line.
func Summary(stats *storage.MatchStats) string {
	if stats == nil || stats.Matches == 0 {
		return "No matches recorded yet."
	}

	seats := make([]int, 0, len(stats.WinsBySeat))
	for seat := range stats.WinsBySeat {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	wins := make([]string, len(seats))
	for i, seat := range seats {
		wins[i] = fmt.Sprintf("P%d %d", seat+1, stats.WinsBySeat[seat])
	}

	return fmt.Sprintf("%d matches, %d draws, %d cancelled, avg %.1f moves. Wins: %s",
		stats.Matches, stats.Draws, stats.Cancelled, stats.AvgMoves, strings.Join(wins, ", "))
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.table.SetCursor(cursor)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MATCH HISTORY"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(Summary(m.stats)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	if len(m.results) == 0 {
		b.WriteString(tableStyle.Render(mutedStyle.Italic(true).Padding(1, 4).Render("Play a match to fill the scoreboard.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	if m.width == 0 {
		return b.String()
	}
	return centerText(b.String(), m.width)
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(store *storage.Store, limit int) error {
	model, err := NewScoreboardModel(store, limit)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
