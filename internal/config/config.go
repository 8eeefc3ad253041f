// Package config provides YAML-based match configuration loading and
// difficulty presets for Connect Plus.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
)

// Player kinds accepted in configuration files.
const (
	KindHuman       = "human"
	KindRandom      = "random"
	KindMinimax     = "minimax"
	KindMinimaxDeep = "minimax-deep"
)

// MatchConfig contains all configuration for a Connect Plus match.
type MatchConfig struct {
	Board    BoardConfig    `yaml:"board"`
	Powerups PowerupConfig  `yaml:"powerups"`
	Players  []PlayerConfig `yaml:"players"`
	Timing   TimingConfig   `yaml:"timing"`
}

// BoardConfig defines the board dimensions and the winning run length.
type BoardConfig struct {
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	WinningLength int `yaml:"winning_length"`
}

// PowerupConfig defines the power-up rules.
type PowerupConfig struct {
	Enabled bool `yaml:"enabled"`
	Length  int  `yaml:"length"` // run length that earns a power-up
}

// PlayerConfig defines one seat.
type PlayerConfig struct {
	Kind    string `yaml:"kind"`               // human, random, minimax or minimax-deep
	Name    string `yaml:"name,omitempty"`     // display name
	Depth   int    `yaml:"depth,omitempty"`    // minimax search depth
	DelayMS int    `yaml:"delay_ms,omitempty"` // random bot pacing
}

// TimingConfig defines animation pacing. None of it affects the rules.
type TimingConfig struct {
	CollapseStaggerMS int `yaml:"collapse_stagger_ms"`
	HighlightMS       int `yaml:"highlight_ms"`
	DropMSPerRow      int `yaml:"drop_ms_per_row"`
}

// IsBot returns true for seats not driven by a person.
func (p PlayerConfig) IsBot() bool {
	return p.Kind != KindHuman
}

// DisplayName returns the configured name or a default based on the seat.
func (p PlayerConfig) DisplayName(seat int) string {
	if p.Name != "" {
		return p.Name
	}
	if p.IsBot() {
		return fmt.Sprintf("Bot %d (%s)", seat+1, p.Kind)
	}
	return fmt.Sprintf("Player %d", seat+1)
}

// KnownKind returns true if kind can be used for a seat.
func KnownKind(kind string) bool {
	switch kind {
	case KindHuman, KindRandom, KindMinimax, KindMinimaxDeep:
		return true
	default:
		return false
	}
}

// Validate checks the configuration for values the engine cannot play with.
func (c MatchConfig) Validate() error {
	var errs []error
	if c.Board.Width < 1 || c.Board.Height < 1 {
		errs = append(errs, fmt.Errorf("board must be at least 1x1, got %dx%d", c.Board.Width, c.Board.Height))
	}
	if c.Board.WinningLength < 1 {
		errs = append(errs, fmt.Errorf("winning_length must be positive, got %d", c.Board.WinningLength))
	}
	if c.Powerups.Length < 0 {
		errs = append(errs, fmt.Errorf("powerups.length must not be negative, got %d", c.Powerups.Length))
	}
	if len(c.Players) < 2 {
		errs = append(errs, fmt.Errorf("need at least 2 players, got %d", len(c.Players)))
	}
	for i, p := range c.Players {
		if !KnownKind(p.Kind) {
			errs = append(errs, fmt.Errorf("player %d: unknown kind %q", i+1, p.Kind))
		}
		if p.Depth < 0 {
			errs = append(errs, fmt.Errorf("player %d: depth must not be negative", i+1))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid match config: %w", errors.Join(errs...))
	}
	return nil
}

// HasBot returns true if any seat is played by a bot.
func (c MatchConfig) HasBot() bool {
	for _, p := range c.Players {
		if p.IsBot() {
			return true
		}
	}
	return false
}

// Normalize applies the rules that depend on the seating: matches against
// a bot are played without power-ups.
func (c *MatchConfig) Normalize() {
	if c.HasBot() {
		c.Powerups.Enabled = false
	}
}

// Engine converts the configuration into engine rules.
func (c MatchConfig) Engine() connectplus.Config {
	return connectplus.Config{
		Width:             c.Board.Width,
		Height:            c.Board.Height,
		WinningLength:     c.Board.WinningLength,
		PowerupLength:     c.Powerups.Length,
		PowerupsEnabled:   c.Powerups.Enabled,
		CollapseStagger:   time.Duration(c.Timing.CollapseStaggerMS) * time.Millisecond,
		HighlightDuration: time.Duration(c.Timing.HighlightMS) * time.Millisecond,
	}
}

// DropDelay returns the per-row pause of the drop animation.
func (c MatchConfig) DropDelay() time.Duration {
	return time.Duration(c.Timing.DropMSPerRow) * time.Millisecond
}
