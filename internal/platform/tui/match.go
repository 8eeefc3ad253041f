package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/connect-plus/internal/config"
	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/registry"
	"github.com/vovakirdan/connect-plus/internal/storage"
)

// msgBuffer is how many engine messages may queue before the engine
// waits for the UI.
const msgBuffer = 64

// eventMsg carries an engine event into the Bubble Tea loop.
type eventMsg struct {
	event connectplus.Event
}

// matchDoneMsg is sent once the engine goroutine has returned.
type matchDoneMsg struct {
	result connectplus.Result
}

// MatchOptions configures a terminal match.
type MatchOptions struct {
	Config config.MatchConfig
	// Store saves the match between moves and records its result. Optional.
	Store *storage.Store
	// Slot is the save slot; empty uses the default slot.
	Slot string
	// Resume loads the match from Slot instead of starting a new one.
	Resume bool
	Seed   int64
	Logger *log.Logger
}

// Match runs a connectplus.Game on its own goroutine and forwards its
// events to a Bubble Tea program through a channel.
type Match struct {
	game    *connectplus.Game
	seats   []config.PlayerConfig
	locals  []*connectplus.Local // nil for bot seats
	store   *storage.Store
	logger  *log.Logger
	dropRow time.Duration

	msgs    chan tea.Msg
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
	once    sync.Once
	done    chan struct{}
}

// NewMatch creates a new or resumed match. Nothing runs until Start.
func NewMatch(opts MatchOptions) (*Match, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Match{
		store:   opts.Store,
		logger:  logger,
		dropRow: opts.Config.DropDelay(),
		msgs:    make(chan tea.Msg, msgBuffer),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	gameOpts := []connectplus.Option{
		connectplus.WithAnimator(newAnimator(m.send, m.dropRow)),
		connectplus.WithLogger(logger.WithPrefix("connectplus")),
	}

	var (
		game *connectplus.Game
		err  error
	)
	switch {
	case opts.Resume:
		if opts.Store == nil {
			err = errors.New("resume needs a database")
			break
		}
		game, err = connectplus.NewSaver(opts.Store, opts.Slot).Load(gameOpts...)
	default:
		cfg := opts.Config
		cfg.Normalize()
		var strategies []connectplus.Strategy
		strategies, err = registry.FromConfig(cfg, opts.Seed)
		if err != nil {
			break
		}
		if opts.Store != nil {
			gameOpts = append(gameOpts, connectplus.WithPersister(connectplus.NewSaver(opts.Store, opts.Slot)))
		}
		game, err = connectplus.NewGame(cfg.Engine(), strategies, gameOpts...)
		m.seats = cfg.Players
	}
	if err != nil {
		cancel()
		return nil, err
	}

	m.game = game
	if m.seats == nil {
		m.seats = seatsOf(game)
	}
	for _, p := range game.Players() {
		local, _ := p.Strategy.(*connectplus.Local)
		m.locals = append(m.locals, local)
	}
	return m, nil
}

// seatsOf rebuilds seat descriptions for a resumed match.
func seatsOf(g *connectplus.Game) []config.PlayerConfig {
	players := g.Players()
	seats := make([]config.PlayerConfig, len(players))
	for i, p := range players {
		switch s := p.Strategy.(type) {
		case *connectplus.Local:
			seats[i] = config.PlayerConfig{Kind: config.KindHuman}
		case *connectplus.RandomBot:
			seats[i] = config.PlayerConfig{Kind: config.KindRandom}
		case *connectplus.MinimaxBot:
			seats[i] = config.PlayerConfig{Kind: config.KindMinimax, Depth: s.Depth}
		default:
			seats[i] = config.PlayerConfig{Kind: string(p.Kind())}
		}
	}
	return seats
}

// Game returns the engine match.
func (m *Match) Game() *connectplus.Game {
	return m.game
}

// Seats returns the seat descriptions, in turn order.
func (m *Match) Seats() []config.PlayerConfig {
	return m.seats
}

// Local returns the input strategy of a human seat, or nil for a bot.
func (m *Match) Local(seat int) *connectplus.Local {
	if seat < 0 || seat >= len(m.locals) {
		return nil
	}
	return m.locals[seat]
}

// Start subscribes to the engine and runs the turn loop in the background.
// It returns the command that delivers the first engine message.
func (m *Match) Start() tea.Cmd {
	m.once.Do(func() {
		m.started = time.Now()
		m.game.Subscribe(func(e connectplus.Event) {
			m.send(eventMsg{event: e})
		})
		go func() {
			defer close(m.done)
			result := m.game.Run(m.ctx)
			m.record(result)
			m.send(matchDoneMsg{result: result})
		}()
	})
	return m.Wait()
}

// Wait returns a command that blocks until the next engine message.
func (m *Match) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.msgs:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Stop cancels the match without waiting for the engine. The last save is
// kept for resuming.
func (m *Match) Stop() {
	m.game.Cancel()
	m.cancel()
}

// Close stops the match, waits for the engine goroutine if it was started
// and returns the final result.
func (m *Match) Close() connectplus.Result {
	m.Stop()
	// A match that never started has no goroutine to wait for.
	m.once.Do(func() { close(m.done) })
	<-m.done
	return m.game.Result()
}

// send queues a message for the UI, giving up once the match is closed.
func (m *Match) send(msg tea.Msg) {
	select {
	case m.msgs <- msg:
	case <-m.ctx.Done():
	}
}

// record stores the match outcome in the results table.
func (m *Match) record(result connectplus.Result) {
	if m.store == nil {
		return
	}
	if _, err := m.store.SaveResult(storage.ResultOf(m.game, time.Since(m.started))); err != nil {
		m.logger.Warn("could not record result", "id", m.game.ID(), "error", err)
		return
	}
	m.logger.Debug("result recorded", "id", m.game.ID(), "state", result.State)
}

// SeatName returns the display name of a seat.
func (m *Match) SeatName(seat int) string {
	if seat < 0 || seat >= len(m.seats) {
		return fmt.Sprintf("Player %d", seat+1)
	}
	return m.seats[seat].DisplayName(seat)
}
