package connectplus

import (
	"context"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// Kind identifies a strategy variant. It is the tag stored in saved matches.
type Kind string

const (
	KindLocal   Kind = "local"
	KindRandom  Kind = "random"
	KindMinimax Kind = "minimax"
)

// Kinds returns every known strategy kind.
func Kinds() []Kind {
	return []Kind{KindLocal, KindRandom, KindMinimax}
}

// Valid returns true for known strategy kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindLocal, KindRandom, KindMinimax:
		return true
	default:
		return false
	}
}

// Turn is everything a strategy is told when asked for a move.
type Turn struct {
	Board         *Board
	Legal         []core.Coord // resting coordinates of playable columns, center-out
	Player        int          // index of the player to move
	Opponent      int          // index of the player moving next
	CanRemove     bool         // whether a removal would be accepted this turn
	WinningLength int
}

// IsLegalColumn returns true if a token can be dropped into column.
func (t Turn) IsLegalColumn(column int) bool {
	for _, c := range t.Legal {
		if c.X == column {
			return true
		}
	}
	return false
}

// Strategy chooses moves for a player.
// ChooseMove may block; it must return promptly once ctx is done.
type Strategy interface {
	Kind() Kind
	ChooseMove(ctx context.Context, turn Turn) (Move, error)
}

// Player is a seat in a match: its index, its power-up credit and the
// strategy that moves for it.
type Player struct {
	Index    int
	Powerups int
	Strategy Strategy
}

// Kind returns the kind of the player's strategy.
func (p *Player) Kind() Kind {
	return p.Strategy.Kind()
}
