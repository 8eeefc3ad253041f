// Package connectplus implements the Connect Plus engine: an N-in-a-row
// board game where forming shorter runs earns power-ups that remove a token
// and collapse its column.
//
// The engine is headless. Renderers subscribe to events, animations are
// gated through an Animator, and persistence goes through a Persister.
package connectplus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// Default match settings.
const (
	DefaultWidth             = 7
	DefaultHeight            = 6
	DefaultWinningLength     = 4
	DefaultPowerupLength     = 3
	DefaultCollapseStagger   = 39 * time.Millisecond
	DefaultHighlightDuration = time.Second
)

var (
	// ErrIllegalMove is returned by Apply for moves the rules do not allow.
	ErrIllegalMove = errors.New("connectplus: illegal move")
	// ErrMatchOver is returned by Apply once the match has ended.
	ErrMatchOver = errors.New("connectplus: match is over")
)

// Config holds the rules and pacing of a match.
type Config struct {
	Width           int
	Height          int
	WinningLength   int
	PowerupLength   int
	PowerupsEnabled bool

	// CollapseStagger separates successive token relocations in a collapse.
	CollapseStagger time.Duration
	// HighlightDuration is how long cells of a power-up line stay lit.
	// Zero or less disables the highlight.
	HighlightDuration time.Duration
}

// DefaultConfig returns the classic 7x6 connect-four rules with power-ups.
func DefaultConfig() Config {
	return Config{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		WinningLength:     DefaultWinningLength,
		PowerupLength:     DefaultPowerupLength,
		PowerupsEnabled:   true,
		CollapseStagger:   DefaultCollapseStagger,
		HighlightDuration: DefaultHighlightDuration,
	}
}

// Validate checks that the configuration describes a playable match.
// A zero PowerupLength is replaced by DefaultPowerupLength.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("connectplus: board must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if c.WinningLength < 1 {
		return fmt.Errorf("connectplus: winning length must be positive, got %d", c.WinningLength)
	}
	if c.PowerupLength == 0 {
		c.PowerupLength = DefaultPowerupLength
	}
	if c.PowerupLength < 1 {
		return fmt.Errorf("connectplus: power-up length must be positive, got %d", c.PowerupLength)
	}
	if c.CollapseStagger < 0 {
		return fmt.Errorf("connectplus: collapse stagger must not be negative")
	}
	return nil
}

// detectionLength is the shortest run a placement is checked for.
func (c Config) detectionLength() int {
	if c.PowerupsEnabled {
		return min(c.PowerupLength, c.WinningLength)
	}
	return c.WinningLength
}

// State is the lifecycle state of a match.
type State int

const (
	InProgress State = iota
	Won
	Draw
	Cancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Draw:
		return "draw"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal returns true for states that end a match.
func (s State) Terminal() bool {
	return s != InProgress
}

// Result summarizes how a match ended. Winner is -1 unless State is Won.
type Result struct {
	State  State
	Winner int
	Moves  int
}

// String returns a short description of the result.
func (r Result) String() string {
	switch r.State {
	case Won:
		return fmt.Sprintf("player %d won after %d moves", r.Winner+1, r.Moves)
	case Draw:
		return fmt.Sprintf("draw after %d moves", r.Moves)
	case Cancelled:
		return fmt.Sprintf("cancelled after %d moves", r.Moves)
	default:
		return fmt.Sprintf("in progress, %d moves", r.Moves)
	}
}

// Outcome describes a resolved move.
type Outcome struct {
	Player int
	Move   Move
	// At is the landing cell of a placement or the emptied cell of a removal.
	At core.Coord
	// Collapsed counts tokens relocated by a removal.
	Collapsed int
	// Granted is the power-up credit the move earned.
	Granted int
	// Winning lists the cells of winning lines, if any.
	Winning []core.Coord
	State   State
	Winner  int
}

// Persister stores the match between moves. Save is called after every
// completed move, Delete once the match is won or drawn.
type Persister interface {
	Save(g *Game) error
	Delete() error
}

// Option configures a Game.
type Option func(*Game)

// WithPersister saves the match through p.
func WithPersister(p Persister) Option {
	return func(g *Game) {
		g.persister = p
	}
}

// WithAnimator gates drops and collapses on a.
func WithAnimator(a Animator) Option {
	return func(g *Game) {
		if a != nil {
			g.animator = a
		}
	}
}

// WithLogger sets the logger used for match events.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithID sets the match identifier instead of generating one.
func WithID(id string) Option {
	return func(g *Game) {
		if id != "" {
			g.id = id
		}
	}
}

// Game runs one match: it owns the board and the players and drives the
// turn loop. Run is meant to be called from a single goroutine; accessors
// and Cancel are safe to call from others.
type Game struct {
	id      string
	cfg     Config
	board   *Board
	bus     *eventBus
	players []*Player

	mu         sync.Mutex
	active     int
	canPowerup bool
	moves      int
	state      State
	winner     int

	cancelled atomic.Bool

	persister Persister
	animator  Animator
	logger    *log.Logger
}

// NewGame creates a match between the given strategies, seated in order.
func NewGame(cfg Config, strategies []Strategy, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(strategies) < 2 {
		return nil, fmt.Errorf("connectplus: need at least 2 players, got %d", len(strategies))
	}
	if len(strategies) > 10 {
		return nil, fmt.Errorf("connectplus: at most 10 players are supported, got %d", len(strategies))
	}

	g := &Game{
		id:         uuid.NewString(),
		cfg:        cfg,
		bus:        newEventBus(),
		board:      NewBoard(cfg.Width, cfg.Height, len(strategies)),
		canPowerup: true,
		state:      InProgress,
		winner:     -1,
		animator:   NoAnimation,
		logger:     log.Default().WithPrefix("connectplus"),
	}
	g.board.bus = g.bus

	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("connectplus: player %d has no strategy", i)
		}
		g.players = append(g.players, &Player{Index: i, Strategy: s})
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ID returns the match identifier.
func (g *Game) ID() string {
	return g.id
}

// Config returns the match rules.
func (g *Game) Config() Config {
	return g.cfg
}

// Board returns the live board. Callers must not mutate it.
func (g *Game) Board() *Board {
	return g.board
}

// Subscribe registers an observer for board and match events and returns
// a function that unsubscribes it.
func (g *Game) Subscribe(o Observer) func() {
	return g.bus.subscribe(o)
}

// Players returns a copy of the seats.
func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]Player, len(g.players))
	for i, p := range g.players {
		players[i] = *p
	}
	return players
}

// Active returns the index of the player to move.
func (g *Game) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// CanPowerup reports whether the next move may be a removal, ignoring credit.
func (g *Game) CanPowerup() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canPowerup
}

// Moves returns the number of completed moves.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// State returns the lifecycle state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Result returns the current result.
func (g *Game) Result() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resultLocked()
}

func (g *Game) resultLocked() Result {
	return Result{State: g.state, Winner: g.winner, Moves: g.moves}
}

// Cancel asks the match to stop. It does not interrupt a pending strategy;
// the turn loop notices at its next check.
func (g *Game) Cancel() {
	g.cancelled.Store(true)
}

// interrupted reports whether the match was cancelled or its context ended.
func (g *Game) interrupted(ctx context.Context) bool {
	return g.cancelled.Load() || ctx.Err() != nil
}

// CanRemove reports whether the active player may spend a power-up now.
func (g *Game) CanRemove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canRemoveLocked()
}

func (g *Game) canRemoveLocked() bool {
	return g.cfg.PowerupsEnabled && g.canPowerup && g.players[g.active].Powerups > 0
}

// turn builds what the active player is told about the position.
func (g *Game) turn(legal []core.Coord) Turn {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Turn{
		Board:         g.board,
		Legal:         legal,
		Player:        g.active,
		Opponent:      (g.active + 1) % len(g.players),
		CanRemove:     g.canRemoveLocked(),
		WinningLength: g.cfg.WinningLength,
	}
}

// Run drives the turn loop until the match is won, drawn or cancelled.
// Cancelling ctx has the same effect as Cancel.
func (g *Game) Run(ctx context.Context) Result {
	if state := g.State(); state.Terminal() {
		return g.Result()
	}
	g.logger.Info("match started",
		"id", g.id,
		"board", fmt.Sprintf("%dx%d", g.cfg.Width, g.cfg.Height),
		"win", g.cfg.WinningLength,
		"powerups", g.cfg.PowerupsEnabled,
		"players", len(g.players),
	)

	for {
		if result, done := g.step(ctx); done {
			g.logger.Info("match ended", "id", g.id, "state", result.State, "winner", result.Winner, "moves", result.Moves)
			return result
		}
	}
}

// step plays one turn. It returns true once the match has ended.
func (g *Game) step(ctx context.Context) (Result, bool) {
	legal := g.board.LegalMoves()
	if len(legal) == 0 {
		return g.finish(Draw, -1, nil), true
	}

	turn := g.turn(legal)
	g.bus.publish(TurnStarted{
		Player:    turn.Player,
		Legal:     legal,
		CanRemove: turn.CanRemove,
		Powerups:  g.powerups(turn.Player),
	})

	strategy := g.players[turn.Player].Strategy
	move, err := strategy.ChooseMove(ctx, turn)
	if g.interrupted(ctx) {
		return g.cancel(), true
	}
	if err != nil {
		g.logger.Error("strategy failed", "player", turn.Player, "kind", strategy.Kind(), "error", err)
		return g.cancel(), true
	}

	outcome, err := g.Apply(ctx, move)
	switch {
	case errors.Is(err, ErrIllegalMove):
		g.logger.Warn("rejected move", "player", turn.Player, "kind", strategy.Kind(), "move", move, "error", err)
		return Result{}, false
	case err != nil:
		g.logger.Error("move failed", "player", turn.Player, "error", err)
		return g.cancel(), true
	}

	if outcome.State.Terminal() {
		return g.Result(), true
	}
	return Result{}, false
}

// powerups returns the credit held by a player.
func (g *Game) powerups(player int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[player].Powerups
}

// Apply validates and resolves a move for the active player. It is the
// single authority on move legality: rejected moves return ErrIllegalMove
// and leave the match untouched.
func (g *Game) Apply(ctx context.Context, m Move) (Outcome, error) {
	if g.State().Terminal() {
		return Outcome{}, ErrMatchOver
	}

	switch m.Kind {
	case MovePlacement:
		return g.applyPlacement(ctx, m)
	case MoveRemoval:
		return g.applyRemoval(ctx, m)
	default:
		return Outcome{}, fmt.Errorf("%w: unknown move kind %d", ErrIllegalMove, m.Kind)
	}
}

func (g *Game) applyPlacement(ctx context.Context, m Move) (Outcome, error) {
	rest, ok := g.board.RestingCoord(m.Column)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: column %d is not playable", ErrIllegalMove, m.Column)
	}
	player := g.Active()

	g.animator.Animate(ctx, Animation{
		Kind:   AnimationDrop,
		From:   core.C(m.Column, -1),
		To:     rest,
		Player: player,
	})
	if g.interrupted(ctx) {
		return g.cancelledOutcome(player, m), nil
	}

	g.board.Set(rest, Token(player))
	lines := g.board.LinesThrough(rest, g.cfg.detectionLength())

	outcome := Outcome{Player: player, Move: m, At: rest, Winner: -1}
	if g.checkWin(lines, &outcome) {
		return outcome, nil
	}

	if g.cfg.PowerupsEnabled {
		g.grantPowerups(player, lines, &outcome)
	}

	g.mu.Lock()
	g.active = (g.active + 1) % len(g.players)
	g.canPowerup = true
	g.moves++
	g.mu.Unlock()

	g.completed(outcome)
	return outcome, nil
}

func (g *Game) applyRemoval(ctx context.Context, m Move) (Outcome, error) {
	target := m.Target

	g.mu.Lock()
	player := g.active
	switch {
	case !g.cfg.PowerupsEnabled:
		g.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: power-ups are disabled", ErrIllegalMove)
	case !g.canPowerup:
		g.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: power-ups cannot be used twice in a row", ErrIllegalMove)
	case g.players[player].Powerups <= 0:
		g.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: player %d has no power-ups", ErrIllegalMove, player)
	case !g.board.InBounds(target) || g.board.IsEmpty(target):
		g.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: no token at %v", ErrIllegalMove, target)
	}
	g.players[player].Powerups--
	g.canPowerup = false
	g.mu.Unlock()

	g.logger.Debug("power-up used", "player", player, "target", target)
	g.board.Set(target, NoToken)

	outcome := Outcome{Player: player, Move: m, At: target, Winner: -1}
	collapsed, ok := g.collapse(ctx, target.X)
	outcome.Collapsed = collapsed
	if !ok {
		return g.cancelledOutcome(player, m), nil
	}

	// Runs formed by a collapse can win but never earn power-ups.
	lines := g.board.AllLines(g.cfg.WinningLength)
	if g.checkWin(lines, &outcome) {
		return outcome, nil
	}

	// The player keeps the turn and still owes a placement.
	g.mu.Lock()
	g.moves++
	g.mu.Unlock()

	g.completed(outcome)
	return outcome, nil
}

// collapse lets the tokens of a column fall into the gaps below them,
// bottom row first, one relocation per CollapseStagger. It returns the
// number of relocated tokens and false if the match was interrupted.
func (g *Game) collapse(ctx context.Context, column int) (int, bool) {
	var (
		wg    sync.WaitGroup
		moved int
	)
	defer func() {
		wg.Wait()
	}()

	for y := g.cfg.Height - 1; y >= 0; y-- {
		from := core.C(column, y)
		token := g.board.Get(from)
		if token.Empty() {
			continue
		}
		to := from.DropTo(g.board, core.Down)
		if to == from {
			continue
		}

		g.board.updateStyle(to, func(s *Style) { s.Visible = false })
		g.board.Set(to, token)
		g.board.Set(from, NoToken)
		moved++

		wg.Add(1)
		go func(a Animation) {
			defer wg.Done()
			g.animator.Animate(ctx, a)
			g.board.updateStyle(a.To, func(s *Style) { s.Visible = true })
		}(Animation{Kind: AnimationCollapse, From: from, To: to, Player: int(token)})

		if !sleep(ctx, g.cfg.CollapseStagger) || g.interrupted(ctx) {
			return moved, false
		}
	}

	wg.Wait()
	return moved, !g.interrupted(ctx)
}

// sleep pauses for d and returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// checkWin ends the match if any line reaches the winning length: one
// distinct owner wins, several owners draw. Everything but the winning
// cells is dimmed.
func (g *Game) checkWin(lines []*Line, outcome *Outcome) bool {
	var winning []*Line
	owners := make(map[int]struct{})
	for _, l := range lines {
		if l.Len() >= g.cfg.WinningLength {
			winning = append(winning, l)
			owners[l.Player()] = struct{}{}
		}
	}
	if len(winning) == 0 {
		return false
	}

	for _, c := range g.board.AllCoords() {
		g.board.updateStyle(c, func(s *Style) {
			s.Dark = true
			s.Light = false
		})
	}
	for _, l := range winning {
		for _, c := range l.Coords() {
			g.board.updateStyle(c, func(s *Style) { s.Dark = false })
			outcome.Winning = append(outcome.Winning, c)
		}
	}

	g.mu.Lock()
	g.moves++
	g.mu.Unlock()

	if len(owners) == 1 {
		g.finish(Won, winning[0].Player(), outcome)
	} else {
		g.finish(Draw, -1, outcome)
	}
	return true
}

// grantPowerups credits the player once per run that reached the power-up
// length and lights its cells for HighlightDuration.
func (g *Game) grantPowerups(player int, lines []*Line, outcome *Outcome) {
	var cells []core.Coord
	granted := 0
	for _, l := range lines {
		if l.Len() < g.cfg.PowerupLength {
			continue
		}
		granted++
		cells = append(cells, l.Coords()...)
	}
	if granted == 0 {
		return
	}

	g.mu.Lock()
	g.players[player].Powerups += granted
	total := g.players[player].Powerups
	g.mu.Unlock()

	outcome.Granted = granted
	g.logger.Debug("power-up granted", "player", player, "count", granted, "total", total)
	g.bus.publish(PowerupGranted{Player: player, Count: granted, Total: total, Cells: cells})

	if g.cfg.HighlightDuration <= 0 {
		return
	}
	for _, c := range cells {
		g.board.updateStyle(c, func(s *Style) { s.Light = true })
	}
	time.AfterFunc(g.cfg.HighlightDuration, func() {
		for _, c := range cells {
			g.board.updateStyle(c, func(s *Style) { s.Light = false })
		}
	})
}

// completed publishes a resolved non-terminal move and saves the match.
func (g *Game) completed(outcome Outcome) {
	outcome.State = InProgress
	g.bus.publish(MoveApplied{Outcome: outcome})
	g.save()
}

// finish moves the match to a won or drawn state and drops its save.
func (g *Game) finish(state State, winner int, outcome *Outcome) Result {
	g.mu.Lock()
	g.state = state
	g.winner = winner
	result := g.resultLocked()
	g.mu.Unlock()

	if outcome != nil {
		outcome.State = state
		outcome.Winner = winner
		g.bus.publish(MoveApplied{Outcome: *outcome})
	}

	if g.persister != nil {
		if err := g.persister.Delete(); err != nil {
			g.logger.Warn("could not delete saved match", "id", g.id, "error", err)
		}
	}
	g.bus.publish(MatchEnded{Result: result})
	return result
}

// cancel moves the match to the cancelled state. The last save is kept so
// the match can be resumed.
func (g *Game) cancel() Result {
	g.mu.Lock()
	if g.state.Terminal() {
		result := g.resultLocked()
		g.mu.Unlock()
		return result
	}
	g.state = Cancelled
	g.winner = -1
	result := g.resultLocked()
	g.mu.Unlock()

	g.bus.publish(MatchEnded{Result: result})
	return result
}

func (g *Game) cancelledOutcome(player int, m Move) Outcome {
	g.cancel()
	return Outcome{Player: player, Move: m, State: Cancelled, Winner: -1}
}

// save persists the match, logging failures.
func (g *Game) save() {
	if g.persister == nil {
		return
	}
	if err := g.persister.Save(g); err != nil {
		g.logger.Warn("could not save match", "id", g.id, "error", err)
	}
}
