package connectplus

import (
	"slices"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// Line is a contiguous run of same-owner tokens along one orientation.
// Its coordinates are kept sorted in the orientation's true sense.
// Lines are built during a single detection query and are not kept.
type Line struct {
	board       *Board
	start       core.Coord
	orientation core.Orientation
	owner       Token
	coords      []core.Coord
}

// NewLine seeds a line at start. The line takes the owner of the token at
// start; a line seeded on an empty cell is invalid and never grows.
func NewLine(b *Board, start core.Coord, o core.Orientation) *Line {
	l := &Line{
		board:       b,
		start:       start,
		orientation: o,
		owner:       b.Get(start),
	}
	if l.Valid() {
		l.coords = []core.Coord{start}
	}
	return l
}

// Extend grows the line from its start in each requested sense until the
// edge of the board or a cell not owned by the line's player.
func (l *Line) Extend(senses ...bool) {
	if !l.Valid() {
		return
	}

	for _, sense := range senses {
		end := l.start
		next := end.Step(l.orientation, sense)
		for l.board.InBounds(next) && l.board.Get(next) == l.owner {
			end = next
			if sense {
				l.coords = append(l.coords, end)
			} else {
				l.coords = slices.Insert(l.coords, 0, end)
			}
			next = end.Step(l.orientation, sense)
		}
	}
}

// Valid returns true if the line was seeded on a token.
func (l *Line) Valid() bool {
	return !l.owner.Empty()
}

// Len returns the number of cells in the line; zero for invalid lines.
func (l *Line) Len() int {
	return len(l.coords)
}

// Player returns the index of the player owning the line, or -1 if invalid.
func (l *Line) Player() int {
	return int(l.owner)
}

// Orientation returns the axis the line follows.
func (l *Line) Orientation() core.Orientation {
	return l.orientation
}

// Coords returns a copy of the line's coordinates in sense order.
func (l *Line) Coords() []core.Coord {
	return slices.Clone(l.coords)
}

// Contains returns true if c is part of the line.
func (l *Line) Contains(c core.Coord) bool {
	return slices.Contains(l.coords, c)
}

// FindLines returns the lines of at least minLength tokens.
// With a seed, only lines through that cell are probed, in every orientation
// and both senses. Without one, the whole board is scanned.
func (b *Board) FindLines(seed *core.Coord, minLength int) []*Line {
	if seed != nil {
		return b.LinesThrough(*seed, minLength)
	}
	return b.AllLines(minLength)
}

// LinesThrough returns the lines of at least minLength tokens that include c.
// It is used to score the consequences of a single placed token.
func (b *Board) LinesThrough(c core.Coord, minLength int) []*Line {
	var lines []*Line
	for _, o := range core.Orientations() {
		line := NewLine(b, c, o)
		line.Extend(true, false)
		if line.Valid() && line.Len() >= minLength {
			lines = append(lines, line)
		}
	}
	return lines
}

// AllLines scans every orientation and every start cell from which a run of
// minLength could fit on the board, extending forward only.
// Only maximal runs are reported: a start cell whose predecessor has the same
// owner is skipped, since the run through it was already found.
func (b *Board) AllLines(minLength int) []*Line {
	span := max(minLength, 1) - 1

	var lines []*Line
	for _, o := range core.Orientations() {
		v := o.Vector()

		xEnd := b.width - span*v.X
		yStart := max(0, span*-v.Y)
		yEnd := b.height - span*max(0, v.Y)

		for x := 0; x < xEnd; x++ {
			for y := yStart; y < yEnd; y++ {
				start := core.C(x, y)
				owner := b.Get(start)
				if owner.Empty() {
					continue
				}
				if prev := start.Step(o, false); b.InBounds(prev) && b.Get(prev) == owner {
					continue
				}

				line := NewLine(b, start, o)
				line.Extend(true)
				if line.Len() >= minLength {
					lines = append(lines, line)
				}
			}
		}
	}
	return lines
}
