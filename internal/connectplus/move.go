package connectplus

import (
	"fmt"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// MoveKind distinguishes the two kinds of move a player can make.
type MoveKind int

const (
	// MovePlacement drops a token into a column.
	MovePlacement MoveKind = iota
	// MoveRemoval spends a power-up to remove a token and collapse its column.
	MoveRemoval
)

// String returns a human-readable name for the move kind.
func (k MoveKind) String() string {
	switch k {
	case MovePlacement:
		return "placement"
	case MoveRemoval:
		return "removal"
	default:
		return "unknown"
	}
}

// Move is a tagged union: Column is meaningful for placements,
// Target for removals.
type Move struct {
	Kind   MoveKind
	Column int
	Target core.Coord
}

// Placement returns a move dropping a token into column.
func Placement(column int) Move {
	return Move{Kind: MovePlacement, Column: column}
}

// Removal returns a power-up move removing the token at target.
func Removal(target core.Coord) Move {
	return Move{Kind: MoveRemoval, Target: target}
}

// String returns a short description of the move.
func (m Move) String() string {
	if m.Kind == MoveRemoval {
		return fmt.Sprintf("remove %v", m.Target)
	}
	return fmt.Sprintf("drop in column %d", m.Column)
}
