package connectplus

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// scripted plays a fixed list of moves and fails once it runs out.
type scripted struct {
	mu    sync.Mutex
	moves []Move
	asked int
}

func script(moves ...Move) *scripted {
	return &scripted{moves: moves}
}

func drops(columns ...int) *scripted {
	moves := make([]Move, len(columns))
	for i, c := range columns {
		moves[i] = Placement(c)
	}
	return script(moves...)
}

func (s *scripted) Kind() Kind { return KindLocal }

func (s *scripted) ChooseMove(context.Context, Turn) (Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked++
	if len(s.moves) == 0 {
		return Move{}, errors.New("script exhausted")
	}
	m := s.moves[0]
	s.moves = s.moves[1:]
	return m, nil
}

type strategyFunc func(ctx context.Context, turn Turn) (Move, error)

func (f strategyFunc) Kind() Kind { return KindLocal }

func (f strategyFunc) ChooseMove(ctx context.Context, turn Turn) (Move, error) {
	return f(ctx, turn)
}

// countingPersister records how often the match was saved and deleted.
type countingPersister struct {
	mu      sync.Mutex
	saves   []int
	deletes int
}

func (p *countingPersister) Save(g *Game) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, g.Moves())
	return nil
}

func (p *countingPersister) Delete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes++
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testConfig(width, height, win int, powerups bool) Config {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.WinningLength = win
	cfg.PowerupsEnabled = powerups
	cfg.CollapseStagger = 0
	cfg.HighlightDuration = 0
	return cfg
}

func newTestGame(t *testing.T, cfg Config, rows []string, strategies ...Strategy) *Game {
	t.Helper()
	g, err := NewGame(cfg, strategies, WithLogger(quietLogger()))
	require.NoError(t, err)
	if rows != nil {
		b := mustParse(t, len(strategies), rows...)
		require.Equal(t, cfg.Width, b.Width())
		require.Equal(t, cfg.Height, b.Height())
		copy(g.board.tokens, b.tokens)
	}
	return g
}

func TestVerticalWinScenario(t *testing.T) {
	persister := &countingPersister{}
	g, err := NewGame(testConfig(7, 6, 4, false),
		[]Strategy{drops(0, 0, 0, 0), drops(6, 6, 6)},
		WithLogger(quietLogger()), WithPersister(persister))
	require.NoError(t, err)

	result := g.Run(context.Background())

	assert.Equal(t, Result{State: Won, Winner: 0, Moves: 7}, result)
	assert.Equal(t, result, g.Result())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, persister.saves)
	assert.Equal(t, 1, persister.deletes)

	for y := 2; y < 6; y++ {
		assert.False(t, g.Board().Style(core.C(0, y)).Dark, "winning cell (0,%d)", y)
	}
	assert.True(t, g.Board().Style(core.C(6, 5)).Dark)
	assert.True(t, g.Board().Style(core.C(3, 0)).Dark)
}

func TestDrawOnFullBoard(t *testing.T) {
	persister := &countingPersister{}
	g, err := NewGame(testConfig(2, 1, 3, true),
		[]Strategy{drops(0), drops(1)},
		WithLogger(quietLogger()), WithPersister(persister))
	require.NoError(t, err)

	result := g.Run(context.Background())

	assert.Equal(t, Result{State: Draw, Winner: -1, Moves: 2}, result)
	assert.Equal(t, 1, persister.deletes)
}

func TestDrawBySimultaneousCollapse(t *testing.T) {
	cfg := testConfig(3, 4, 3, true)
	g := newTestGame(t, cfg, []string{
		"...",
		"..1",
		"110",
		"001",
	}, drops(), drops())
	g.players[0].Powerups = 1

	outcome, err := g.Apply(context.Background(), Removal(core.C(2, 3)))
	require.NoError(t, err)

	assert.Equal(t, Draw, outcome.State)
	assert.Equal(t, -1, outcome.Winner)
	assert.Equal(t, 2, outcome.Collapsed)
	assert.Len(t, outcome.Winning, 6)
	assert.Equal(t, "...\n...\n111\n000", g.Board().String())
	assert.Equal(t, Draw, g.State())

	players := g.Players()
	assert.Zero(t, players[0].Powerups)
	assert.Zero(t, players[1].Powerups)
}

func TestRemovalWinGrantsNothing(t *testing.T) {
	cfg := testConfig(3, 3, 3, true)
	cfg.PowerupLength = 2
	g := newTestGame(t, cfg, []string{
		"...",
		"..0",
		"001",
	}, drops(), drops())
	g.players[0].Powerups = 2

	outcome, err := g.Apply(context.Background(), Removal(core.C(2, 2)))
	require.NoError(t, err)

	assert.Equal(t, Won, outcome.State)
	assert.Equal(t, 0, outcome.Winner)
	assert.Zero(t, outcome.Granted)

	players := g.Players()
	assert.Equal(t, 1, players[0].Powerups)
	assert.Zero(t, players[1].Powerups)
}

func TestRemovalKeepsTurn(t *testing.T) {
	cfg := testConfig(4, 3, 4, true)
	cfg.PowerupLength = 2
	persister := &countingPersister{}
	g := newTestGame(t, cfg, []string{
		"....",
		".0..",
		"01..",
	}, drops(), drops())
	g.persister = persister
	g.players[0].Powerups = 2
	ctx := context.Background()

	outcome, err := g.Apply(ctx, Removal(core.C(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, InProgress, outcome.State)
	assert.Equal(t, 1, outcome.Collapsed)
	assert.Zero(t, outcome.Granted, "runs formed by a collapse earn nothing")
	assert.Equal(t, "....\n....\n00..", g.Board().String())

	assert.Equal(t, 0, g.Active())
	assert.False(t, g.CanPowerup())
	assert.False(t, g.CanRemove())
	assert.Equal(t, 1, g.Players()[0].Powerups)
	assert.Equal(t, 1, g.Moves())
	assert.Equal(t, []int{1}, persister.saves)

	_, err = g.Apply(ctx, Removal(core.C(0, 2)))
	assert.ErrorIs(t, err, ErrIllegalMove, "no two removals in a row")

	_, err = g.Apply(ctx, Placement(3))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Active())
	assert.True(t, g.CanPowerup())
	assert.Equal(t, 2, g.Moves())
}

func TestPlacementGrantsPowerups(t *testing.T) {
	cfg := testConfig(7, 6, 4, true)
	g := newTestGame(t, cfg, []string{
		".......",
		".......",
		".......",
		"00.....",
		"110....",
		"110....",
	}, drops(), drops())

	var granted []PowerupGranted
	g.Subscribe(func(e Event) {
		if pg, ok := e.(PowerupGranted); ok {
			granted = append(granted, pg)
		}
	})

	outcome, err := g.Apply(context.Background(), Placement(2))
	require.NoError(t, err)

	assert.Equal(t, core.C(2, 3), outcome.At)
	assert.Equal(t, 2, outcome.Granted, "one credit per qualifying run")
	assert.Equal(t, 2, g.Players()[0].Powerups)
	require.Len(t, granted, 1)
	assert.Equal(t, 2, granted[0].Total)
	assert.Len(t, granted[0].Cells, 6)
}

func TestPowerupsDisabledGrantNothing(t *testing.T) {
	g := newTestGame(t, testConfig(7, 6, 4, false), []string{
		".......",
		".......",
		".......",
		".......",
		".......",
		"00.....",
	}, drops(), drops())

	outcome, err := g.Apply(context.Background(), Placement(2))
	require.NoError(t, err)
	assert.Zero(t, outcome.Granted)
	assert.Zero(t, g.Players()[0].Powerups)
}

func TestPowerupHighlightClears(t *testing.T) {
	cfg := testConfig(7, 6, 4, true)
	cfg.HighlightDuration = 20 * time.Millisecond
	g := newTestGame(t, cfg, []string{
		".......",
		".......",
		".......",
		".......",
		".......",
		"00.....",
	}, drops(), drops())

	_, err := g.Apply(context.Background(), Placement(2))
	require.NoError(t, err)
	assert.True(t, g.Board().Style(core.C(0, 5)).Light)

	assert.Eventually(t, func() bool {
		for x := 0; x < 3; x++ {
			if g.Board().Style(core.C(x, 5)).Light {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
}

func TestIllegalMoves(t *testing.T) {
	rows := []string{
		"0..",
		"1..",
		"0..",
	}

	tests := []struct {
		name     string
		powerups bool
		credit   int
		move     Move
	}{
		{"full column", true, 1, Placement(0)},
		{"column off the board", true, 1, Placement(3)},
		{"negative column", true, 1, Placement(-1)},
		{"removal with power-ups disabled", false, 1, Removal(core.C(0, 2))},
		{"removal without credit", true, 0, Removal(core.C(0, 2))},
		{"removal of an empty cell", true, 1, Removal(core.C(1, 2))},
		{"removal off the board", true, 1, Removal(core.C(5, 5))},
		{"unknown move kind", true, 1, Move{Kind: MoveKind(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, testConfig(3, 3, 3, tt.powerups), rows, drops(), drops())
			g.players[0].Powerups = tt.credit

			_, err := g.Apply(context.Background(), tt.move)
			assert.ErrorIs(t, err, ErrIllegalMove)

			assert.Equal(t, "0..\n1..\n0..", g.Board().String())
			assert.Equal(t, 0, g.Active())
			assert.Equal(t, tt.credit, g.Players()[0].Powerups)
			assert.Zero(t, g.Moves())
		})
	}
}

func TestRunReasksAfterIllegalMove(t *testing.T) {
	first := drops(9, 0, 0)
	g, err := NewGame(testConfig(2, 2, 2, false), []Strategy{first, drops(1)}, WithLogger(quietLogger()))
	require.NoError(t, err)

	result := g.Run(context.Background())

	assert.Equal(t, Result{State: Won, Winner: 0, Moves: 3}, result)
	assert.Equal(t, 3, first.asked)
}

func TestStrategyErrorCancels(t *testing.T) {
	persister := &countingPersister{}
	g, err := NewGame(testConfig(7, 6, 4, false), []Strategy{drops(3), drops()},
		WithLogger(quietLogger()), WithPersister(persister))
	require.NoError(t, err)

	result := g.Run(context.Background())

	assert.Equal(t, Result{State: Cancelled, Winner: -1, Moves: 1}, result)
	assert.Zero(t, persister.deletes, "a cancelled match keeps its save")
}

func TestCancelContextReleasesLocal(t *testing.T) {
	g, err := NewGame(testConfig(7, 6, 4, true), []Strategy{NewLocal(), NewLocal()}, WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	cancel()
	select {
	case result := <-done:
		assert.Equal(t, Cancelled, result.State)
	case <-time.After(2 * time.Second):
		t.Fatal("match did not stop after cancellation")
	}
}

func TestCancelDiscardsPendingMove(t *testing.T) {
	var g *Game
	strategy := strategyFunc(func(context.Context, Turn) (Move, error) {
		g.Cancel()
		return Placement(0), nil
	})

	var err error
	g, err = NewGame(testConfig(7, 6, 4, true), []Strategy{strategy, drops()}, WithLogger(quietLogger()))
	require.NoError(t, err)

	var ended []Result
	g.Subscribe(func(e Event) {
		if me, ok := e.(MatchEnded); ok {
			ended = append(ended, me.Result)
		}
	})

	result := g.Run(context.Background())

	assert.Equal(t, Cancelled, result.State)
	assert.Zero(t, g.Board().Count(0), "the move chosen before cancelling is not applied")
	assert.Equal(t, []Result{result}, ended)

	_, err = g.Apply(context.Background(), Placement(0))
	assert.ErrorIs(t, err, ErrMatchOver)
}

func TestCollapseBottomToTop(t *testing.T) {
	cfg := testConfig(3, 5, 5, true)
	g := newTestGame(t, cfg, []string{
		"..1",
		"..0",
		"..1",
		"..0",
		"..1",
	}, drops(), drops())
	g.players[0].Powerups = 1

	var (
		mu         sync.Mutex
		animations []Animation
	)
	g.animator = AnimatorFunc(func(_ context.Context, a Animation) {
		mu.Lock()
		defer mu.Unlock()
		animations = append(animations, a)
	})

	var landed []core.Coord
	g.Subscribe(func(e Event) {
		if cc, ok := e.(CellChanged); ok && !cc.Token.Empty() {
			landed = append(landed, cc.At)
		}
	})

	outcome, err := g.Apply(context.Background(), Removal(core.C(2, 4)))
	require.NoError(t, err)

	assert.Equal(t, 4, outcome.Collapsed)
	assert.Equal(t, "...\n..1\n..0\n..1\n..0", g.Board().String())
	assert.Equal(t, []core.Coord{core.C(2, 4), core.C(2, 3), core.C(2, 2), core.C(2, 1)}, landed)

	mu.Lock()
	assert.Len(t, animations, 4)
	for _, a := range animations {
		assert.Equal(t, AnimationCollapse, a.Kind)
		assert.Equal(t, 1, a.Rows())
	}
	mu.Unlock()

	for _, c := range g.Board().AllCoords() {
		assert.True(t, g.Board().Style(c).Visible, "cell %v hidden after collapse", c)
	}
}

func TestCancelDuringCollapse(t *testing.T) {
	cfg := testConfig(3, 5, 5, true)
	g := newTestGame(t, cfg, []string{
		"..1",
		"..0",
		"..1",
		"..0",
		"..1",
	}, drops(), drops())
	g.players[0].Powerups = 1

	g.Subscribe(func(e Event) {
		if cc, ok := e.(CellChanged); ok && !cc.Token.Empty() {
			g.Cancel()
		}
	})

	outcome, err := g.Apply(context.Background(), Removal(core.C(2, 4)))
	require.NoError(t, err)

	assert.Equal(t, Cancelled, outcome.State)
	assert.Equal(t, Cancelled, g.State())
	assert.Equal(t, "..1\n..0\n..1\n...\n..0", g.Board().String(), "collapse stops after the first relocation")
}

func TestDropAnimation(t *testing.T) {
	var got []Animation
	animator := AnimatorFunc(func(_ context.Context, a Animation) {
		got = append(got, a)
	})

	g, err := NewGame(testConfig(4, 4, 4, false), []Strategy{drops(1), drops(1)},
		WithLogger(quietLogger()), WithAnimator(animator))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = g.Apply(ctx, Placement(1))
	require.NoError(t, err)
	_, err = g.Apply(ctx, Placement(1))
	require.NoError(t, err)

	assert.Equal(t, []Animation{
		{Kind: AnimationDrop, From: core.C(1, -1), To: core.C(1, 3), Player: 0},
		{Kind: AnimationDrop, From: core.C(1, -1), To: core.C(1, 2), Player: 1},
	}, got)
	assert.Equal(t, 4, got[0].Rows())
}

func TestTurnsCycleThroughPlayers(t *testing.T) {
	g, err := NewGame(testConfig(5, 5, 4, false),
		[]Strategy{drops(0, 0), drops(1, 1), drops(2)},
		WithLogger(quietLogger()))
	require.NoError(t, err)

	var order []int
	g.Subscribe(func(e Event) {
		if ts, ok := e.(TurnStarted); ok {
			order = append(order, ts.Player)
		}
	})

	result := g.Run(context.Background())

	assert.Equal(t, Cancelled, result.State, "the third player runs out of moves")
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, order)
	assert.Equal(t, ".....\n.....\n.....\n01...\n012..", g.Board().String())
}

func TestEventsPublished(t *testing.T) {
	g, err := NewGame(testConfig(7, 6, 4, false),
		[]Strategy{drops(0, 0, 0, 0), drops(6, 6, 6)},
		WithLogger(quietLogger()))
	require.NoError(t, err)

	counts := map[string]int{}
	unsubscribe := g.Subscribe(func(e Event) {
		switch e.(type) {
		case CellChanged:
			counts["cell"]++
		case TurnStarted:
			counts["turn"]++
		case MoveApplied:
			counts["move"]++
		case MatchEnded:
			counts["end"]++
		}
	})
	defer unsubscribe()

	g.Run(context.Background())

	assert.Equal(t, 7, counts["cell"])
	assert.Equal(t, 7, counts["turn"])
	assert.Equal(t, 7, counts["move"])
	assert.Equal(t, 1, counts["end"])
}

func TestNewGameValidation(t *testing.T) {
	valid := []Strategy{drops(), drops()}

	tests := []struct {
		name       string
		mutate     func(*Config)
		strategies []Strategy
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, valid},
		{"zero height", func(c *Config) { c.Height = 0 }, valid},
		{"zero winning length", func(c *Config) { c.WinningLength = 0 }, valid},
		{"negative power-up length", func(c *Config) { c.PowerupLength = -1 }, valid},
		{"single player", func(*Config) {}, []Strategy{drops()}},
		{"nil strategy", func(*Config) {}, []Strategy{drops(), nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewGame(cfg, tt.strategies)
			assert.Error(t, err)
		})
	}

	cfg := DefaultConfig()
	cfg.PowerupLength = 0
	g, err := NewGame(cfg, valid)
	require.NoError(t, err)
	assert.Equal(t, DefaultPowerupLength, g.Config().PowerupLength)
	assert.NotEmpty(t, g.ID())

	g, err = NewGame(cfg, valid, WithID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", g.ID())
}

func TestDetectionLength(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.detectionLength())

	cfg.WinningLength = 2
	assert.Equal(t, 2, cfg.detectionLength(), "wins shorter than the power-up length are still found")

	cfg.PowerupsEnabled = false
	cfg.WinningLength = 5
	assert.Equal(t, 5, cfg.detectionLength())
}
