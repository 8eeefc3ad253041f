package connectplus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoSave is returned when loading a slot that holds no match.
	ErrNoSave = errors.New("connectplus: no saved match")
	// ErrUnknownKind is returned for strategies that cannot be saved or restored.
	ErrUnknownKind = errors.New("connectplus: unknown strategy kind")
)

// Snapshot is the saved form of a match in progress.
// Cell styles are not saved; a restored board starts with default styles.
type Snapshot struct {
	ID         string           `json:"id"`
	Config     ConfigSnapshot   `json:"config"`
	Board      [][]int          `json:"board"`
	Players    []PlayerSnapshot `json:"players"`
	Active     int              `json:"active"`
	CanPowerup bool             `json:"can_next_move_be_powerup"`
	Moves      int              `json:"moves"`
	SavedAt    time.Time        `json:"saved_at"`
}

// ConfigSnapshot is the saved form of Config. Durations are milliseconds.
type ConfigSnapshot struct {
	Width           int   `json:"width"`
	Height          int   `json:"height"`
	WinningLength   int   `json:"winning_length"`
	PowerupLength   int   `json:"powerup_length"`
	PowerupsEnabled bool  `json:"powerups_enabled"`
	CollapseStagger int64 `json:"collapse_stagger_ms"`
	Highlight       int64 `json:"highlight_ms"`
}

// PlayerSnapshot is the saved form of a seat. Kind selects the strategy;
// Depth and DelayMS carry its parameters.
type PlayerSnapshot struct {
	Kind     Kind  `json:"kind"`
	Powerups int   `json:"powerups"`
	Depth    int   `json:"depth,omitempty"`
	DelayMS  int64 `json:"delay_ms,omitempty"`
}

// strategyDecoders rebuilds a strategy from its saved form, keyed by kind.
var strategyDecoders = map[Kind]func(PlayerSnapshot) Strategy{
	KindLocal: func(PlayerSnapshot) Strategy {
		return NewLocal()
	},
	KindRandom: func(p PlayerSnapshot) Strategy {
		return NewRandomBot(time.Duration(p.DelayMS)*time.Millisecond, 0)
	},
	KindMinimax: func(p PlayerSnapshot) Strategy {
		return NewMinimaxBot(p.Depth)
	},
}

// encodePlayer captures a seat and its strategy parameters.
func encodePlayer(p Player) (PlayerSnapshot, error) {
	ps := PlayerSnapshot{Kind: p.Kind(), Powerups: p.Powerups}
	switch s := p.Strategy.(type) {
	case *Local:
	case *RandomBot:
		ps.DelayMS = s.Delay.Milliseconds()
	case *MinimaxBot:
		ps.Depth = s.Depth
	default:
		return ps, fmt.Errorf("%w: %T", ErrUnknownKind, p.Strategy)
	}
	return ps, nil
}

// NewSnapshot captures the state of a match.
func NewSnapshot(g *Game) (*Snapshot, error) {
	cfg := g.Config()
	snap := &Snapshot{
		ID: g.ID(),
		Config: ConfigSnapshot{
			Width:           cfg.Width,
			Height:          cfg.Height,
			WinningLength:   cfg.WinningLength,
			PowerupLength:   cfg.PowerupLength,
			PowerupsEnabled: cfg.PowerupsEnabled,
			CollapseStagger: cfg.CollapseStagger.Milliseconds(),
			Highlight:       cfg.HighlightDuration.Milliseconds(),
		},
		SavedAt: time.Now().UTC(),
	}

	for _, row := range g.Board().Tokens() {
		cells := make([]int, len(row))
		for x, t := range row {
			cells[x] = int(t)
		}
		snap.Board = append(snap.Board, cells)
	}

	g.mu.Lock()
	snap.Active = g.active
	snap.CanPowerup = g.canPowerup
	snap.Moves = g.moves
	g.mu.Unlock()

	for _, p := range g.Players() {
		ps, err := encodePlayer(p)
		if err != nil {
			return nil, err
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap, nil
}

// Encode serializes a match to JSON.
func Encode(g *Game) ([]byte, error) {
	snap, err := NewSnapshot(g)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("connectplus: encode snapshot: %w", err)
	}
	return data, nil
}

// Decode restores a match serialized by Encode. Options apply as in NewGame.
func Decode(data []byte, opts ...Option) (*Game, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("connectplus: decode snapshot: %w", err)
	}
	return snap.Restore(opts...)
}

// Config returns the saved rules.
func (c ConfigSnapshot) Config() Config {
	return Config{
		Width:             c.Width,
		Height:            c.Height,
		WinningLength:     c.WinningLength,
		PowerupLength:     c.PowerupLength,
		PowerupsEnabled:   c.PowerupsEnabled,
		CollapseStagger:   time.Duration(c.CollapseStagger) * time.Millisecond,
		HighlightDuration: time.Duration(c.Highlight) * time.Millisecond,
	}
}

// Restore rebuilds the match described by the snapshot.
func (s *Snapshot) Restore(opts ...Option) (*Game, error) {
	strategies := make([]Strategy, 0, len(s.Players))
	for i, p := range s.Players {
		decode, ok := strategyDecoders[p.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: player %d has kind %q", ErrUnknownKind, i, p.Kind)
		}
		strategies = append(strategies, decode(p))
	}

	cfg := s.Config.Config()
	g, err := NewGame(cfg, strategies, append([]Option{WithID(s.ID)}, opts...)...)
	if err != nil {
		return nil, err
	}

	if len(s.Board) != cfg.Height {
		return nil, fmt.Errorf("connectplus: snapshot board has %d rows, expected %d", len(s.Board), cfg.Height)
	}
	for y, row := range s.Board {
		if len(row) != cfg.Width {
			return nil, fmt.Errorf("connectplus: snapshot row %d has %d cells, expected %d", y, len(row), cfg.Width)
		}
		for x, cell := range row {
			if cell < int(NoToken) || cell >= len(strategies) {
				return nil, fmt.Errorf("connectplus: snapshot cell (%d,%d) has owner %d", x, y, cell)
			}
			g.board.tokens[y*cfg.Width+x] = Token(cell)
		}
	}

	if s.Active < 0 || s.Active >= len(strategies) {
		return nil, fmt.Errorf("connectplus: snapshot active player %d out of range", s.Active)
	}
	g.active = s.Active
	g.canPowerup = s.CanPowerup
	g.moves = s.Moves
	for i, p := range s.Players {
		g.players[i].Powerups = p.Powerups
	}
	return g, nil
}

// SlotStore is a key-value store for serialized matches.
type SlotStore interface {
	SaveSlot(slot string, data []byte) error
	LoadSlot(slot string) (data []byte, found bool, err error)
	DeleteSlot(slot string) error
	HasSlot(slot string) (bool, error)
}

// DefaultSlot is the slot interactive matches are saved to.
const DefaultSlot = "current"

// Saver persists matches into one slot of a SlotStore. It implements Persister.
type Saver struct {
	store SlotStore
	slot  string
}

// NewSaver creates a saver for slot. An empty slot uses DefaultSlot.
func NewSaver(store SlotStore, slot string) *Saver {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Saver{store: store, slot: slot}
}

// Slot returns the slot name.
func (s *Saver) Slot() string {
	return s.slot
}

// Save encodes the match into the slot.
func (s *Saver) Save(g *Game) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return s.store.SaveSlot(s.slot, data)
}

// Delete clears the slot.
func (s *Saver) Delete() error {
	return s.store.DeleteSlot(s.slot)
}

// Exists reports whether the slot holds a match.
func (s *Saver) Exists() bool {
	ok, err := s.store.HasSlot(s.slot)
	return err == nil && ok
}

// Load restores the match in the slot. The saver itself is attached as the
// match's persister, after any options given.
func (s *Saver) Load(opts ...Option) (*Game, error) {
	data, found, err := s.store.LoadSlot(s.slot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSave
	}
	return Decode(data, append(opts, WithPersister(s))...)
}
