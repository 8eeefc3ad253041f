// Package core provides the grid geometry shared by the engine and the platform:
// coordinates, line orientations, directions and gravity projection.
// It has no dependencies on the engine so it can be tested in isolation.
package core

import "fmt"

// Coord is an immutable grid position.
// X increases to the right, Y increases downward (row 0 is the top of the board).
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the vector sum of two coordinates.
func (c Coord) Add(other Coord) Coord {
	return Coord{X: c.X + other.X, Y: c.Y + other.Y}
}

// Scale returns the coordinate multiplied elementwise by k.
func (c Coord) Scale(k int) Coord {
	return Coord{X: c.X * k, Y: c.Y * k}
}

// Step returns the coordinate one unit away along the orientation.
// A true sense moves along the orientation's vector, false moves against it.
func (c Coord) Step(o Orientation, sense bool) Coord {
	if sense {
		return c.Add(o.Vector())
	}
	return c.Add(o.Vector().Scale(-1))
}

// Next returns the coordinate one unit away in the given direction.
func (c Coord) Next(d Direction) Coord {
	return c.Step(d.Orientation, d.Sense)
}

// Occupancy is the view of a grid needed to apply gravity.
type Occupancy interface {
	InBounds(c Coord) bool
	IsEmpty(c Coord) bool
}

// DropTo simulates gravity: it walks from c in direction d while the next
// cell is in bounds and empty, and returns where the walk stops.
// A coordinate that cannot move is returned unchanged, so a column entry
// above the board (Y = -1) stays at -1 when the column is full.
func (c Coord) DropTo(grid Occupancy, d Direction) Coord {
	current := c
	next := current.Next(d)
	for grid.InBounds(next) && grid.IsEmpty(next) {
		current = next
		next = current.Next(d)
	}
	return current
}

// Orientation is one of the four axes a line can follow.
type Orientation int

const (
	Horizontal       Orientation = iota // (1, 0)
	Vertical                            // (0, 1)
	DiagonalSinister                    // (1, -1): bottom-left to top-right
	DiagonalDexter                      // (1, 1): top-left to bottom-right
)

// orientationVectors holds the unit vector of each orientation in its true sense.
var orientationVectors = [...]Coord{
	Horizontal:       {X: 1, Y: 0},
	Vertical:         {X: 0, Y: 1},
	DiagonalSinister: {X: 1, Y: -1},
	DiagonalDexter:   {X: 1, Y: 1},
}

// Orientations returns all four orientations in a fixed order.
func Orientations() []Orientation {
	return []Orientation{Horizontal, Vertical, DiagonalSinister, DiagonalDexter}
}

// Vector returns the unit vector of the orientation in its true sense.
func (o Orientation) Vector() Coord {
	return orientationVectors[o]
}

// String returns a human-readable name for the orientation.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case DiagonalSinister:
		return "diagonal-sinister"
	case DiagonalDexter:
		return "diagonal-dexter"
	default:
		return "unknown"
	}
}

// Direction pairs an orientation with a sense.
type Direction struct {
	Orientation Orientation
	Sense       bool
}

// Gravity directions.
var (
	Down  = Direction{Orientation: Vertical, Sense: true}
	Left  = Direction{Orientation: Horizontal, Sense: false}
	Right = Direction{Orientation: Horizontal, Sense: true}
)

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
