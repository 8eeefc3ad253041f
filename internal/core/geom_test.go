package core

import "testing"

// sparseGrid is a minimal Occupancy for gravity tests.
type sparseGrid struct {
	w, h   int
	filled map[Coord]bool
}

func (g sparseGrid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

func (g sparseGrid) IsEmpty(c Coord) bool {
	return !g.filled[c]
}

func TestCoordArithmetic(t *testing.T) {
	a := C(2, 3)

	if got := a.Add(C(-1, 4)); got != C(1, 7) {
		t.Errorf("Add() = %v, expected (1,7)", got)
	}
	if got := a.Scale(-2); got != C(-4, -6) {
		t.Errorf("Scale() = %v, expected (-4,-6)", got)
	}
	if a != C(2, 3) {
		t.Error("Coord should be unchanged after arithmetic")
	}
}

func TestCoordStep(t *testing.T) {
	origin := C(5, 5)

	tests := []struct {
		name     string
		o        Orientation
		sense    bool
		expected Coord
	}{
		{"horizontal forward", Horizontal, true, C(6, 5)},
		{"horizontal backward", Horizontal, false, C(4, 5)},
		{"vertical forward", Vertical, true, C(5, 6)},
		{"vertical backward", Vertical, false, C(5, 4)},
		{"sinister forward", DiagonalSinister, true, C(6, 4)},
		{"sinister backward", DiagonalSinister, false, C(4, 6)},
		{"dexter forward", DiagonalDexter, true, C(6, 6)},
		{"dexter backward", DiagonalDexter, false, C(4, 4)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := origin.Step(tc.o, tc.sense)
			if got != tc.expected {
				t.Errorf("Step(%v, %v) = %v, expected %v", tc.o, tc.sense, got, tc.expected)
			}
			sign := -1
			if tc.sense {
				sign = 1
			}
			if alt := origin.Add(tc.o.Vector().Scale(sign)); alt != got {
				t.Errorf("Step() = %v disagrees with Add(Scale()) = %v", got, alt)
			}
		})
	}
}

func TestOrientationsOrder(t *testing.T) {
	got := Orientations()
	if len(got) != 4 {
		t.Fatalf("Orientations() returned %d entries, expected 4", len(got))
	}
	expected := []Coord{C(1, 0), C(0, 1), C(1, -1), C(1, 1)}
	for i, o := range got {
		if o.Vector() != expected[i] {
			t.Errorf("Orientations()[%d].Vector() = %v, expected %v", i, o.Vector(), expected[i])
		}
	}
}

func TestDropTo(t *testing.T) {
	grid := sparseGrid{w: 3, h: 4, filled: map[Coord]bool{
		C(1, 3): true,
		C(1, 2): true,
		C(2, 3): true,
		C(2, 2): true,
		C(2, 1): true,
		C(2, 0): true,
	}}

	tests := []struct {
		name     string
		start    Coord
		expected Coord
	}{
		{"empty column from above", C(0, -1), C(0, 3)},
		{"partly filled column", C(1, -1), C(1, 1)},
		{"full column stays above", C(2, -1), C(2, -1)},
		{"already resting", C(0, 3), C(0, 3)},
		{"mid-air token", C(0, 1), C(0, 3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.start.DropTo(grid, Down)
			if got != tc.expected {
				t.Errorf("DropTo(%v) = %v, expected %v", tc.start, got, tc.expected)
			}
			// Gravity is idempotent
			if again := got.DropTo(grid, Down); again != got {
				t.Errorf("DropTo() not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestDropToSideways(t *testing.T) {
	grid := sparseGrid{w: 5, h: 1, filled: map[Coord]bool{C(0, 0): true}}

	if got := C(4, 0).DropTo(grid, Left); got != C(1, 0) {
		t.Errorf("DropTo(Left) = %v, expected (1,0)", got)
	}
	if got := C(1, 0).DropTo(grid, Right); got != C(4, 0) {
		t.Errorf("DropTo(Right) = %v, expected (4,0)", got)
	}
}

func TestAbs(t *testing.T) {
	if Abs(5) != 5 {
		t.Error("Abs(5) should be 5")
	}
	if Abs(-5) != 5 {
		t.Error("Abs(-5) should be 5")
	}
	if Abs(0) != 0 {
		t.Error("Abs(0) should be 0")
	}
}
